package store

import (
	"database/sql"

	sq "github.com/Masterminds/squirrel"
	"github.com/declanlscott/printdesk-sub002/models"
)

// Read-scope permissions for orders. Administrators see every order,
// managers see orders that are not archived, customers only their own
// active orders.
const (
	PermissionOrdersRead               = "orders:read"
	PermissionActiveOrdersRead         = "active_orders:read"
	PermissionActiveCustomerOrdersRead = "active_customer_orders:read"
)

var orderSpec = tableSpec{
	entity: models.EntityOrders,
	table:  "orders",
	columns: []string{
		"id", "tenant_id", "customer_id", "manager_id", "title", "status",
		"version", "created_at", "updated_at", "deleted_at",
	},
	scan: scanOrderRow,
}

// NewOrderResolver returns the difference resolver for the orders entity.
func NewOrderResolver() DifferenceResolver {
	return DifferenceResolver{
		Entity: models.EntityOrders,
		Scopes: []ScopedQueries{
			newScopedQueries(orderSpec, PermissionOrdersRead, allRows),
			newScopedQueries(orderSpec, PermissionActiveOrdersRead, activeRows),
			newScopedQueries(orderSpec, PermissionActiveCustomerOrdersRead, activeCustomerOrders),
		},
	}
}

func allRows(alias, userID string) sq.Sqlizer {
	return nil
}

func activeRows(alias, userID string) sq.Sqlizer {
	return sq.Eq{alias + "deleted_at": nil}
}

func activeCustomerOrders(alias, userID string) sq.Sqlizer {
	return sq.And{
		sq.Eq{alias + "deleted_at": nil},
		sq.Eq{alias + "customer_id": userID},
	}
}

func scanOrderRow(rows *sql.Rows) (models.SyncRow, error) {
	var order models.Order
	err := rows.Scan(
		&order.ID, &order.TenantID, &order.CustomerID, &order.ManagerID,
		&order.Title, &order.Status, &order.Version,
		&order.CreatedAt, &order.UpdatedAt, &order.DeletedAt,
	)
	if err != nil {
		return models.SyncRow{}, err
	}

	return models.SyncRow{ID: order.ID, Version: order.Version, Value: order}, nil
}
