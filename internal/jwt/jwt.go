package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"estatewatch/internal/auth"
	. "estatewatch/internal/config"
)

var (
	ErrInvalidNonce     = errors.New("invalid or revoked session token")
	ErrNonValidToken    = errors.New("token did not pass validation")
	ErrInvalidClaimType = errors.New("invalid claim type")
)

var tokenSignatureAlg = jwt.SigningMethodHS256

// Store for live session nonces. Initialized once at server start.
var Nonces = NewNonceStore()

// SessionClaim carries the authenticated role of a session cookie.
// The jti is a nonce so logout can revoke the token.
type SessionClaim struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

func (c *SessionClaim) GetRole() (auth.Role, error) {
	return auth.ParseRole(c.Role)
}

// NewSessionClaim builds a claim for role valid for the configured
// session TTL.
func NewSessionClaim(role auth.Role) SessionClaim {
	ttl := time.Duration(Cfg.SessionTTL) * time.Hour
	return SessionClaim{
		Role:             role.String(),
		RegisteredClaims: mustCreateRegisteredClaim(ttl),
	}
}

func mustCreateRegisteredClaim(ttl time.Duration) jwt.RegisteredClaims {
	nonce, err := generateNonceToken()
	if err != nil {
		panic(fmt.Sprintf("failed to generate nonce: %v", err))
	}

	// nonce TTL is slightly longer than token TTL to allow for clock skew
	if err := Nonces.Put(nonce, ttl+10*time.Second); err != nil {
		panic(fmt.Sprintf("failed to store nonce: %v", err))
	}

	return jwt.RegisteredClaims{
		ID:        nonce,
		IssuedAt:  jwt.NewNumericDate(time.Now().UTC()),
		ExpiresAt: jwt.NewNumericDate(time.Now().UTC().Add(ttl)),
	}
}

// Generic JWT token generation function
func GenerateJWT(claims jwt.Claims) (string, error) {
	token := jwt.NewWithClaims(tokenSignatureAlg, claims)
	JWTSecret := []byte(Cfg.Secret)
	return token.SignedString(JWTSecret)
}

// DecodeSessionJWT validates a session token. The nonce must still be
// live; it is checked, not consumed, because sessions are multi-use
// until logout.
func DecodeSessionJWT(tokenString string) (*SessionClaim, error) {
	claims, err := decodeJWT(tokenString, &SessionClaim{})
	if err != nil {
		return nil, err
	}
	if !Nonces.Exists(claims.ID) {
		return nil, ErrInvalidNonce
	}
	return claims, nil
}

// RevokeSession consumes the token's nonce so the token can no longer
// authenticate.
func RevokeSession(claims *SessionClaim) {
	Nonces.Consume(claims.ID)
}

func decodeJWT[T jwt.Claims](tokenString string, claimsType T) (T, error) {
	var zero T

	parsedToken, err := jwt.ParseWithClaims(tokenString, claimsType, func(token *jwt.Token) (interface{}, error) {
		JWTSecret := []byte(Cfg.Secret)
		return JWTSecret, nil
	}, jwt.WithValidMethods([]string{tokenSignatureAlg.Alg()}))

	if err != nil {
		return zero, err
	} else if parsedToken == nil || !parsedToken.Valid {
		return zero, ErrNonValidToken
	} else if claims, ok := parsedToken.Claims.(T); ok {
		return claims, nil
	}

	return zero, ErrInvalidClaimType
}
