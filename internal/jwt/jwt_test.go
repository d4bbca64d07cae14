package jwt

import (
	"errors"
	"testing"

	"estatewatch/internal/auth"
	"estatewatch/internal/config"
)

func init() {
	config.Cfg = &config.Config{
		Secret:     "test-secret",
		SessionTTL: 1,
	}
}

func TestSessionTokenRoundTrip(t *testing.T) {
	claim := NewSessionClaim(auth.RoleEstateManager)
	token, err := GenerateJWT(&claim)
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}

	decoded, err := DecodeSessionJWT(token)
	if err != nil {
		t.Fatalf("DecodeSessionJWT: %v", err)
	}
	role, err := decoded.GetRole()
	if err != nil {
		t.Fatalf("GetRole: %v", err)
	}
	if role != auth.RoleEstateManager {
		t.Errorf("role = %q", role)
	}
}

func TestRevokedTokenIsRejected(t *testing.T) {
	claim := NewSessionClaim(auth.RoleAdmin)
	token, err := GenerateJWT(&claim)
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}

	decoded, err := DecodeSessionJWT(token)
	if err != nil {
		t.Fatalf("DecodeSessionJWT: %v", err)
	}

	RevokeSession(decoded)

	if _, err := DecodeSessionJWT(token); !errors.Is(err, ErrInvalidNonce) {
		t.Fatalf("expected ErrInvalidNonce after revoke, got %v", err)
	}
}

func TestTamperedTokenIsRejected(t *testing.T) {
	claim := NewSessionClaim(auth.RoleResident)
	token, err := GenerateJWT(&claim)
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}

	tampered := token[:len(token)-2] + "xx"
	if _, err := DecodeSessionJWT(tampered); err == nil {
		t.Fatal("expected tampered token to fail validation")
	}
}

func TestUnknownRoleClaim(t *testing.T) {
	claim := NewSessionClaim(auth.RoleResident)
	claim.Role = "Janitor"
	token, err := GenerateJWT(&claim)
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}

	decoded, err := DecodeSessionJWT(token)
	if err != nil {
		t.Fatalf("DecodeSessionJWT: %v", err)
	}
	if _, err := decoded.GetRole(); err == nil {
		t.Fatal("expected error for unknown role claim")
	}
}
