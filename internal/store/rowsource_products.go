package store

import (
	"database/sql"

	"github.com/declanlscott/printdesk-sub002/models"
)

// Read-scope permissions for the product catalog.
const (
	PermissionProductsRead       = "products:read"
	PermissionActiveProductsRead = "active_products:read"
)

var productSpec = tableSpec{
	entity: models.EntityProducts,
	table:  "products",
	columns: []string{
		"id", "tenant_id", "name", "room_id",
		"version", "created_at", "updated_at", "deleted_at",
	},
	scan: scanProductRow,
}

// NewProductResolver returns the difference resolver for the products
// entity.
func NewProductResolver() DifferenceResolver {
	return DifferenceResolver{
		Entity: models.EntityProducts,
		Scopes: []ScopedQueries{
			newScopedQueries(productSpec, PermissionProductsRead, allRows),
			newScopedQueries(productSpec, PermissionActiveProductsRead, activeRows),
		},
	}
}

func scanProductRow(rows *sql.Rows) (models.SyncRow, error) {
	var product models.Product
	err := rows.Scan(
		&product.ID, &product.TenantID, &product.Name, &product.RoomID,
		&product.Version, &product.CreatedAt, &product.UpdatedAt, &product.DeletedAt,
	)
	if err != nil {
		return models.SyncRow{}, err
	}

	return models.SyncRow{ID: product.ID, Version: product.Version, Value: product}, nil
}
