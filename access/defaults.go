package access

// DefaultRoutes is the route table of the HR dashboard. The whole /admin
// tree belongs to role managers; /app pages are gated per feature.
func DefaultRoutes() []Route {
	return []Route{
		{Path: "/admin/*", AllowedPermissions: []string{"role:manage"}},

		{Path: "/app", AllowedPermissions: []string{"employee:read_self"}},
		{Path: "/app/dashboard", AllowedPermissions: []string{"employee:read_self"}},
		{Path: "/app/profile", AllowedPermissions: []string{"employee:read_self"}},
		{Path: "/app/request-leave", AllowedPermissions: []string{"leave:create_self"}},
		{Path: "/app/my-leaves", AllowedPermissions: []string{"leave:read_self"}},
		{Path: "/app/my-assets", AllowedPermissions: []string{"asset:read_self"}},
		{Path: "/app/my-attendance", AllowedPermissions: []string{"employee:read_self"}},
		{Path: "/app/my-payslips", AllowedPermissions: []string{"payroll:read_self"}},
		{Path: "/app/my-performance-reviews", AllowedPermissions: []string{"performance:read_self"}},
		{Path: "/app/my-skills", AllowedPermissions: []string{"skill:read_self"}},

		{Path: "/app/manage-leaves", AllowedPermissions: []string{"leave:approve", "leave:read_all"}},
		{Path: "/app/manage-assets", AllowedPermissions: []string{"asset:allot", "asset:read_all"}},
		{Path: "/app/attendance-report/*", AllowedPermissions: []string{"employee:read_all"}},
		{Path: "/app/manage-payroll", AllowedPermissions: []string{"payroll:read_all"}},
		{Path: "/app/manage-performance-reviews", AllowedPermissions: []string{"performance:read_all"}},
		{Path: "/app/manage-employee-skills", AllowedPermissions: []string{"skill:read_all"}},
	}
}
