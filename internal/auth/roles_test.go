package auth

import "testing"

func TestParseRole(t *testing.T) {
	for _, role := range AllRoles {
		parsed, err := ParseRole(role.String())
		if err != nil {
			t.Errorf("ParseRole(%q): %v", role, err)
		}
		if parsed != role {
			t.Errorf("ParseRole(%q) = %q", role, parsed)
		}
	}

	if _, err := ParseRole("Janitor"); err == nil {
		t.Error("expected error for unknown role")
	}
	if _, err := ParseRole(""); err == nil {
		t.Error("expected error for empty role")
	}
}

func TestAdministrative(t *testing.T) {
	cases := map[Role]bool{
		RoleSuperAdmin:        true,
		RoleAdmin:             true,
		RoleEstateManager:     true,
		RoleResident:          false,
		RoleSecurityOperative: false,
	}
	for role, want := range cases {
		if got := role.Administrative(); got != want {
			t.Errorf("%s.Administrative() = %v, want %v", role, got, want)
		}
	}
}
