package models

import "time"

// Entity names as they appear in client view keys ("<entity>/<id>") and in
// the replicache_client_view_entries ledger.
const (
	EntityOrders        = "orders"
	EntityProducts      = "products"
	EntityAnnouncements = "announcements"
)

// Order statuses.
const (
	OrderStatusDraft      = "draft"
	OrderStatusSubmitted  = "submitted"
	OrderStatusInProgress = "in_progress"
	OrderStatusCompleted  = "completed"
)

// Order is a print order placed by a customer. Version is bumped on every
// mutation so the sync engine can detect changed rows; DeletedAt marks the
// order archived without removing the row.
type Order struct {
	ID         string     `json:"id"`
	TenantID   string     `json:"tenantId"`
	CustomerID string     `json:"customerId"`
	ManagerID  *string    `json:"managerId"`
	Title      string     `json:"title"`
	Status     string     `json:"status"`
	Version    int64      `json:"version"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
	DeletedAt  *time.Time `json:"deletedAt"`
}
