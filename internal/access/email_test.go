package access

import (
	"errors"
	"testing"
)

func TestValidEmail(t *testing.T) {
	if err := ValidEmail("ada@example.com"); err != nil {
		t.Errorf("valid address rejected: %v", err)
	}
	if err := ValidEmail(""); !errors.Is(err, ErrMissingEmail) {
		t.Errorf("expected ErrMissingEmail, got %v", err)
	}
	for _, bad := range []string{"ada", "@example.com", "ada@"} {
		if err := ValidEmail(bad); !errors.Is(err, ErrInvalidEmail) {
			t.Errorf("%q: expected ErrInvalidEmail, got %v", bad, err)
		}
	}
}
