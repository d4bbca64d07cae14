package access

import (
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"estatewatch/internal/auth"
)

// Route identifiers guarded by the policy. These mirror the dashboard
// navigation tree; child routes declare their allowed roles independently
// of their parent, nothing is inherited.
const (
	RouteDashboard = "/dashboard"
	RouteProfile   = "/dashboard/profile"

	RouteVisitorManagement = "/dashboard/visitor-management"
	RoutePreAuthorize      = "/dashboard/visitor-management/pre-authorize"
	RouteCheckInOut        = "/dashboard/visitor-management/check-in-out"
	RouteVisitorLogs       = "/dashboard/visitor-management/logs"

	RouteEstateAdministration = "/dashboard/estate-administration"
	RouteManageResidents      = "/dashboard/estate-administration/residents"
	RouteManageSecurity       = "/dashboard/estate-administration/security-staff"
	RouteManageVehicles       = "/dashboard/estate-administration/vehicles"

	RouteSecurityOperations = "/dashboard/security-operations"
	RouteSystemManagement   = "/dashboard/system-management"
)

// Policy maps each guarded route to the set of roles allowed to use it.
// Routes absent from the table are open to every role.
type Policy struct {
	routes map[string][]auth.Role
}

// DefaultPolicy returns the built-in route table.
func DefaultPolicy() *Policy {
	all := auth.AllRoles

	return &Policy{routes: map[string][]auth.Role{
		RouteDashboard: all,
		RouteProfile:   all,

		RouteVisitorManagement: {auth.RoleResident, auth.RoleSecurityOperative, auth.RoleEstateManager, auth.RoleAdmin},
		RoutePreAuthorize:      {auth.RoleResident},
		RouteCheckInOut:        {auth.RoleSecurityOperative},
		RouteVisitorLogs:       {auth.RoleEstateManager, auth.RoleAdmin, auth.RoleSecurityOperative},

		RouteEstateAdministration: {auth.RoleEstateManager, auth.RoleAdmin, auth.RoleSuperAdmin},
		RouteManageResidents:      {auth.RoleEstateManager, auth.RoleAdmin},
		RouteManageSecurity:       {auth.RoleEstateManager, auth.RoleAdmin},
		RouteManageVehicles:       {auth.RoleEstateManager, auth.RoleAdmin},

		RouteSecurityOperations: {auth.RoleSecurityOperative, auth.RoleEstateManager, auth.RoleAdmin},
		RouteSystemManagement:   {auth.RoleAdmin, auth.RoleSuperAdmin},
	}}
}

// Allowed reports whether role may use the route. The lookup is pure and
// uncached: it must be re-evaluated on every render so a role change is
// never served stale permissions.
func (p *Policy) Allowed(role auth.Role, route string) bool {
	allowed, restricted := p.routes[route]
	if !restricted {
		return true
	}
	for _, r := range allowed {
		if r == role {
			return true
		}
	}
	return false
}

// Routes returns the guarded route identifiers role may use, in no
// particular order. Used to build role-filtered navigation.
func (p *Policy) Routes(role auth.Role) []string {
	var out []string
	for route := range p.routes {
		if p.Allowed(role, route) {
			out = append(out, route)
		}
	}
	return out
}

type policyFile struct {
	Routes map[string][]string `yaml:"routes"`
}

// LoadPolicyFile replaces the built-in table with one from a YAML file.
func LoadPolicyFile(path string) (*Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read policy file: %w", err)
	}

	var file policyFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse policy file: %w", err)
	}

	routes := make(map[string][]auth.Role, len(file.Routes))
	for route, names := range file.Routes {
		var roles []auth.Role
		for _, name := range names {
			role, err := auth.ParseRole(name)
			if err != nil {
				slog.Warn("Ignoring unknown role in policy file", "route", route, "role", name)
				continue
			}
			roles = append(roles, role)
		}
		routes[route] = roles
	}

	slog.Info("Route policy loaded", "file", path, "routes", len(routes))
	return &Policy{routes: routes}, nil
}

// NewPolicy loads the configured policy file, or the default table when
// none is configured.
func NewPolicy(policyFile string) (*Policy, error) {
	if policyFile == "" {
		return DefaultPolicy(), nil
	}
	return LoadPolicyFile(policyFile)
}
