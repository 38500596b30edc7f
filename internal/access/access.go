// Package access maps user roles onto the read-scope permissions the sync
// engine consults when differencing. The mapping is static: roles and
// scopes are few and change with code, not with data.
package access

import (
	"context"

	"github.com/declanlscott/printdesk-sub002/internal/store"
	"github.com/declanlscott/printdesk-sub002/models"
)

// Checker reports whether a principal holds a permission.
type Checker interface {
	Allowed(ctx context.Context, principal models.Principal, permission string) (bool, error)
}

// RoleChecker is the static role-to-permission table implementation of
// [Checker]. Unknown roles hold no permissions.
type RoleChecker struct {
	grants map[string]map[string]struct{}
}

// NewRoleChecker constructs a [RoleChecker] with the built-in grants:
// administrators read everything, managers read active rows across the
// tenant, customers read the catalog and their own orders.
func NewRoleChecker() *RoleChecker {
	return &RoleChecker{
		grants: map[string]map[string]struct{}{
			models.RoleAdministrator: permissionSet(
				store.PermissionOrdersRead,
				store.PermissionProductsRead,
				store.PermissionAnnouncementsRead,
			),
			models.RoleManager: permissionSet(
				store.PermissionActiveOrdersRead,
				store.PermissionActiveProductsRead,
				store.PermissionAnnouncementsRead,
			),
			models.RoleCustomer: permissionSet(
				store.PermissionActiveCustomerOrdersRead,
				store.PermissionActiveProductsRead,
				store.PermissionAnnouncementsRead,
			),
		},
	}
}

// Allowed implements [Checker].
func (c *RoleChecker) Allowed(ctx context.Context, principal models.Principal, permission string) (bool, error) {
	permissions, ok := c.grants[principal.Role]
	if !ok {
		return false, nil
	}

	_, allowed := permissions[permission]
	return allowed, nil
}

func permissionSet(permissions ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(permissions))
	for _, permission := range permissions {
		set[permission] = struct{}{}
	}

	return set
}
