package rbac

// Default permission policy for the portal. Writers author and manage their own
// content; admins review everything and manage users and penalties.
var RolePermissions = map[string][]string{
	"writer": {
		"station:create",
		"station:view",
		"station:update",
		"station:delete",
		"submission:create",
		"submission:view",
		"submission:update",
		"submission:delete",
		"asset:upload",
		"asset:view",
		"user:change_password",
	},
	"admin": {
		"*", // everything
	},
}
