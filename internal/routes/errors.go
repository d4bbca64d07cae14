package routes

import (
	"errors"
	"net/http"

	"estatewatch/internal/jwt"
	"estatewatch/internal/visitor"
)

// HTTPError represents an error with an associated HTTP status code and user message
type HTTPError struct {
	Err        error    // The underlying error
	StatusCode int      // HTTP status code
	Message    string   // User-friendly message
	StopCodes  []string // Optional stop codes for client-side handling
	Internal   bool     // Whether this is an internal error (hide details from user)
}

// ErrorInfo contains error metadata for user-facing errors
type ErrorInfo struct {
	Message   string   // User-friendly message
	StopCodes []string // Optional stop codes for client-side application
}

// Error implements the error interface
func (e *HTTPError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

// Unwrap returns the underlying error
func (e *HTTPError) Unwrap() error {
	return e.Err
}

// NewHTTPError creates a new HTTPError
func NewHTTPError(statusCode int, err error, message string, stopCodes ...string) *HTTPError {
	return &HTTPError{
		Err:        err,
		StatusCode: statusCode,
		Message:    message,
		StopCodes:  stopCodes,
		Internal:   statusCode >= 500,
	}
}

// Routes-specific errors (that don't conflict with other packages)
var (
	// Authentication errors
	ErrUnauthorized       = errors.New("unauthorized")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnknownRole        = errors.New("unknown role")

	// Authorization errors
	ErrForbidden               = errors.New("forbidden")
	ErrInsufficientPermissions = errors.New("insufficient permissions")

	// Validation errors
	ErrInvalidRequest   = errors.New("invalid request")
	ErrMissingParameter = errors.New("missing required parameter")
	ErrInvalidParameter = errors.New("invalid parameter")

	// Internal errors
	ErrInternalServer     = errors.New("internal server error")
	ErrDatabaseError      = errors.New("database error")
	ErrServiceUnavailable = errors.New("service unavailable")
)

// errorStatusMap maps errors to HTTP status codes
var errorStatusMap = map[error]int{
	// 400 Bad Request
	ErrInvalidRequest:   http.StatusBadRequest,
	ErrMissingParameter: http.StatusBadRequest,
	ErrInvalidParameter: http.StatusBadRequest,
	ErrUnknownRole:      http.StatusBadRequest,

	// 401 Unauthorized
	ErrUnauthorized:       http.StatusUnauthorized,
	jwt.ErrNonValidToken:  http.StatusUnauthorized,
	jwt.ErrInvalidNonce:   http.StatusUnauthorized,
	ErrInvalidCredentials: http.StatusUnauthorized,

	// 403 Forbidden
	ErrForbidden:               http.StatusForbidden,
	ErrInsufficientPermissions: http.StatusForbidden,
	visitor.ErrNotAuthorized:   http.StatusForbidden,

	// 404 Not Found
	visitor.ErrNotFound: http.StatusNotFound,

	// 409 Conflict (the record exists but is in the wrong state)
	visitor.ErrWrongDate:         http.StatusConflict,
	visitor.ErrInvalidTransition: http.StatusConflict,

	// 500 Internal Server Error
	ErrInternalServer:        http.StatusInternalServerError,
	ErrDatabaseError:         http.StatusInternalServerError,
	visitor.ErrCodeCollision: http.StatusInternalServerError,

	// 503 Service Unavailable
	ErrServiceUnavailable:         http.StatusServiceUnavailable,
	visitor.ErrStorageUnavailable: http.StatusServiceUnavailable,
}

// errorInfoMap maps errors to user-friendly messages and optional stop codes
var errorInfoMap = map[error]ErrorInfo{
	// Authentication
	ErrUnauthorized: {
		Message:   "Authentication required",
		StopCodes: []string{"AUTH_REQUIRED"},
	},
	jwt.ErrNonValidToken: {
		Message:   "Invalid or expired session token",
		StopCodes: []string{"AUTH_INVALID_TOKEN"},
	},
	jwt.ErrInvalidNonce: {
		Message:   "Invalid or revoked session",
		StopCodes: []string{"AUTH_INVALID_NONCE"},
	},
	ErrInvalidCredentials: {
		Message:   "Invalid credentials provided",
		StopCodes: []string{"AUTH_INVALID_CREDENTIALS"},
	},
	ErrUnknownRole: {
		Message:   "Unknown role",
		StopCodes: []string{"AUTH_UNKNOWN_ROLE"},
	},

	// Authorization
	ErrForbidden: {
		Message:   "Access denied",
		StopCodes: []string{"FORBIDDEN"},
	},
	ErrInsufficientPermissions: {
		Message:   "You don't have permission to perform this action",
		StopCodes: []string{"INSUFFICIENT_PERMISSIONS"},
	},
	visitor.ErrNotAuthorized: {
		Message:   "Only the authorizing resident or an administrator may revoke this record",
		StopCodes: []string{"REVOKE_NOT_AUTHORIZED"},
	},

	// Visitor lifecycle
	visitor.ErrNotFound: {
		Message:   "Invalid access code",
		StopCodes: []string{"CODE_NOT_FOUND"},
	},
	visitor.ErrWrongDate: {
		Message:   "Access code is not valid for today",
		StopCodes: []string{"CODE_WRONG_DATE"},
	},
	visitor.ErrInvalidTransition: {
		Message:   "Visitor is not in the right state for this action",
		StopCodes: []string{"INVALID_TRANSITION"},
	},
	visitor.ErrCodeCollision: {
		Message: "Could not generate a unique access code, please retry",
	},

	// Validation
	ErrInvalidRequest: {
		Message:   "Invalid request format",
		StopCodes: []string{"INVALID_REQUEST"},
	},
	ErrMissingParameter: {
		Message:   "Required parameter is missing",
		StopCodes: []string{"MISSING_PARAMETER"},
	},
	ErrInvalidParameter: {
		Message:   "Invalid parameter value",
		StopCodes: []string{"INVALID_PARAMETER"},
	},

	// Internal (no stop codes for internal errors)
	ErrInternalServer: {
		Message: "An internal error occurred",
	},
	ErrDatabaseError: {
		Message: "Database operation failed",
	},
	ErrServiceUnavailable: {
		Message: "Service is temporarily unavailable",
	},
	visitor.ErrStorageUnavailable: {
		Message: "Visitor storage is temporarily unavailable",
	},
}

// GetErrorStatus returns the HTTP status code for an error
func GetErrorStatus(err error) int {
	// Check if it's already an HTTPError
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode
	}

	// Rejected create input is always a client error
	var validationErr *visitor.ValidationError
	if errors.As(err, &validationErr) {
		return http.StatusBadRequest
	}

	// Check direct match
	if status, ok := errorStatusMap[err]; ok {
		return status
	}

	// Check if error wraps a known error
	for knownErr, status := range errorStatusMap {
		if errors.Is(err, knownErr) {
			return status
		}
	}

	// Default to 500 Internal Server Error
	return http.StatusInternalServerError
}

// GetErrorInfo returns error information including message and stop codes
func GetErrorInfo(err error) ErrorInfo {
	// Check if it's an HTTPError with custom info
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return ErrorInfo{
			Message:   httpErr.Message,
			StopCodes: httpErr.StopCodes,
		}
	}

	// Validation errors carry their own field-level message
	var validationErr *visitor.ValidationError
	if errors.As(err, &validationErr) {
		return ErrorInfo{
			Message:   validationErr.Error(),
			StopCodes: []string{"VALIDATION_FAILED"},
		}
	}

	// Check direct match
	if info, ok := errorInfoMap[err]; ok {
		return info
	}

	// Check if error wraps a known error
	for knownErr, info := range errorInfoMap {
		if errors.Is(err, knownErr) {
			return info
		}
	}

	// For unknown errors, return a generic message for 5xx, specific for others
	status := GetErrorStatus(err)
	if status >= 500 {
		return ErrorInfo{Message: "An internal error occurred"}
	}
	return ErrorInfo{Message: err.Error()}
}
