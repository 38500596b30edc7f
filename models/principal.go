package models

// Role names assigned to authenticated users. The role decides which
// read-scope permissions a pull may exercise.
const (
	RoleAdministrator = "administrator"
	RoleManager       = "manager"
	RoleCustomer      = "customer"
)

// Principal is the authenticated identity attached to every sync request,
// extracted from the JWT access token.
type Principal struct {
	UserID   string
	TenantID string
	Role     string
}
