package routes

import (
	"fmt"
	"net/http"
	"testing"

	"estatewatch/internal/visitor"
)

func TestGetErrorStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{ErrUnauthorized, http.StatusUnauthorized},
		{ErrInsufficientPermissions, http.StatusForbidden},
		{visitor.ErrNotFound, http.StatusNotFound},
		{visitor.ErrWrongDate, http.StatusConflict},
		{visitor.ErrInvalidTransition, http.StatusConflict},
		{visitor.ErrNotAuthorized, http.StatusForbidden},
		{visitor.ErrStorageUnavailable, http.StatusServiceUnavailable},
		{fmt.Errorf("something odd"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := GetErrorStatus(tc.err); got != tc.want {
			t.Errorf("GetErrorStatus(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}

func TestGetErrorStatusWrapped(t *testing.T) {
	// Typed errors carry Is() to their sentinel and keep their status
	wrongDate := &visitor.WrongDateError{}
	if got := GetErrorStatus(wrongDate); got != http.StatusConflict {
		t.Errorf("WrongDateError = %d, want %d", got, http.StatusConflict)
	}

	transition := &visitor.InvalidTransitionError{From: visitor.StatusPending, To: visitor.StatusCheckedOut}
	if got := GetErrorStatus(transition); got != http.StatusConflict {
		t.Errorf("InvalidTransitionError = %d, want %d", got, http.StatusConflict)
	}

	wrapped := fmt.Errorf("%w: disk on fire", visitor.ErrStorageUnavailable)
	if got := GetErrorStatus(wrapped); got != http.StatusServiceUnavailable {
		t.Errorf("wrapped storage error = %d, want %d", got, http.StatusServiceUnavailable)
	}
}

func TestValidationErrorInfo(t *testing.T) {
	err := &visitor.ValidationError{Field: "name", Message: "visitor name must be at least 2 characters"}

	if got := GetErrorStatus(err); got != http.StatusBadRequest {
		t.Errorf("ValidationError status = %d, want %d", got, http.StatusBadRequest)
	}

	info := GetErrorInfo(err)
	if info.Message == "" || info.Message == "An internal error occurred" {
		t.Errorf("validation message lost: %q", info.Message)
	}
}

func TestHTTPErrorOverrides(t *testing.T) {
	err := NewHTTPError(http.StatusTeapot, fmt.Errorf("base"), "custom message", "CUSTOM_CODE")

	if got := GetErrorStatus(err); got != http.StatusTeapot {
		t.Errorf("status = %d, want %d", got, http.StatusTeapot)
	}
	info := GetErrorInfo(err)
	if info.Message != "custom message" {
		t.Errorf("message = %q", info.Message)
	}
	if len(info.StopCodes) != 1 || info.StopCodes[0] != "CUSTOM_CODE" {
		t.Errorf("stop codes = %v", info.StopCodes)
	}
}

func TestGenericMessageForInternalErrors(t *testing.T) {
	info := GetErrorInfo(fmt.Errorf("password is hunter2"))
	if info.Message != "An internal error occurred" {
		t.Errorf("internal error details leaked: %q", info.Message)
	}
}
