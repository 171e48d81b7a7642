// Package authz decides whether a principal may act on a resource. Role
// permission sets compose with per-resource ownership; elevated roles bypass
// ownership entirely. Every decision emits exactly one security event.
package authz

// Role is the closed set of privilege tiers. Adding a role is a code change,
// not configuration.
type Role string

const (
	RoleViewer     Role = "viewer"
	RoleAnalyst    Role = "analyst"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super_admin"
)

// Valid reports whether r names a known role.
func (r Role) Valid() bool {
	_, ok := rolePermissions[r]
	return ok
}

// Permission is an atomic capability a role may hold.
type Permission string

const (
	PermissionView   Permission = "view_resource"
	PermissionEdit   Permission = "edit_resource"
	PermissionDelete Permission = "delete_resource"
	PermissionAdmin  Permission = "admin_action"
)

// rolePermissions is the static role catalog. It is read-only after process
// start and therefore safe for unlimited concurrent readers.
var rolePermissions = map[Role]map[Permission]struct{}{
	RoleViewer: {
		PermissionView: {},
	},
	RoleAnalyst: {
		PermissionView:   {},
		PermissionEdit:   {},
		PermissionDelete: {},
	},
	RoleAdmin: {
		PermissionView:   {},
		PermissionEdit:   {},
		PermissionDelete: {},
		PermissionAdmin:  {},
	},
	RoleSuperAdmin: {
		PermissionView:   {},
		PermissionEdit:   {},
		PermissionDelete: {},
		PermissionAdmin:  {},
	},
}

// PermissionsOf returns the permission set for role. Unknown roles hold no
// permissions.
func PermissionsOf(role Role) []Permission {
	set := rolePermissions[role]
	perms := make([]Permission, 0, len(set))
	for p := range set {
		perms = append(perms, p)
	}
	return perms
}

// HasPermission reports whether role's permission set contains p.
func HasPermission(role Role, p Permission) bool {
	_, ok := rolePermissions[role][p]
	return ok
}

// IsElevated reports whether role belongs to the elevated tier, which
// bypasses ownership checks entirely.
func IsElevated(role Role) bool {
	return role == RoleAdmin || role == RoleSuperAdmin
}
