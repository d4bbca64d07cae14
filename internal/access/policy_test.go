package access

import (
	"os"
	"path/filepath"
	"slices"
	"testing"

	"estatewatch/internal/auth"
)

func TestDefaultPolicy(t *testing.T) {
	p := DefaultPolicy()

	cases := []struct {
		role  auth.Role
		route string
		want  bool
	}{
		// Every role reaches the dashboard shell
		{auth.RoleResident, RouteDashboard, true},
		{auth.RoleSecurityOperative, RouteDashboard, true},
		{auth.RoleSuperAdmin, RouteProfile, true},

		// Pre-authorization is resident-only
		{auth.RoleResident, RoutePreAuthorize, true},
		{auth.RoleSecurityOperative, RoutePreAuthorize, false},
		{auth.RoleAdmin, RoutePreAuthorize, false},

		// The gate desk is operative-only
		{auth.RoleSecurityOperative, RouteCheckInOut, true},
		{auth.RoleResident, RouteCheckInOut, false},

		// Logs are for oversight roles
		{auth.RoleEstateManager, RouteVisitorLogs, true},
		{auth.RoleSecurityOperative, RouteVisitorLogs, true},
		{auth.RoleResident, RouteVisitorLogs, false},

		// Estate administration
		{auth.RoleEstateManager, RouteManageResidents, true},
		{auth.RoleSuperAdmin, RouteManageResidents, false},
		{auth.RoleSuperAdmin, RouteEstateAdministration, true},

		// System management is the other way around
		{auth.RoleSuperAdmin, RouteSystemManagement, true},
		{auth.RoleEstateManager, RouteSystemManagement, false},
	}

	for _, tc := range cases {
		if got := p.Allowed(tc.role, tc.route); got != tc.want {
			t.Errorf("Allowed(%s, %s) = %v, want %v", tc.role, tc.route, got, tc.want)
		}
	}
}

func TestUnlistedRouteIsOpen(t *testing.T) {
	p := DefaultPolicy()
	if !p.Allowed(auth.RoleResident, "/dashboard/announcements") {
		t.Error("routes missing from the table must be open")
	}
}

func TestRoutesForRole(t *testing.T) {
	p := DefaultPolicy()

	routes := p.Routes(auth.RoleResident)
	if !slices.Contains(routes, RoutePreAuthorize) {
		t.Error("resident navigation missing pre-authorize")
	}
	if slices.Contains(routes, RouteCheckInOut) {
		t.Error("resident navigation must not include check-in/out")
	}

	routes = p.Routes(auth.RoleSecurityOperative)
	if !slices.Contains(routes, RouteCheckInOut) {
		t.Error("operative navigation missing check-in/out")
	}
}

func TestLoadPolicyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy.yaml")
	content := `routes:
  /dashboard/visitor-management/pre-authorize:
    - Resident
    - Estate Manager
  /dashboard/system-management:
    - Super Admin
    - Not A Role
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing policy file: %v", err)
	}

	p, err := LoadPolicyFile(path)
	if err != nil {
		t.Fatalf("LoadPolicyFile: %v", err)
	}

	if !p.Allowed(auth.RoleEstateManager, RoutePreAuthorize) {
		t.Error("file policy should extend pre-authorize to managers")
	}
	if p.Allowed(auth.RoleAdmin, RouteSystemManagement) {
		t.Error("file policy replaces the built-in table entirely")
	}
	// Unknown role names are skipped, not fatal
	if !p.Allowed(auth.RoleSuperAdmin, RouteSystemManagement) {
		t.Error("valid roles around an unknown one must survive")
	}
}

func TestNewPolicy(t *testing.T) {
	p, err := NewPolicy("")
	if err != nil {
		t.Fatalf("NewPolicy: %v", err)
	}
	if !p.Allowed(auth.RoleResident, RoutePreAuthorize) {
		t.Error("empty path should fall back to the default table")
	}

	if _, err := NewPolicy(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing policy file")
	}
}
