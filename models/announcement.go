package models

import "time"

// Announcement is a tenant-wide message visible to every role.
type Announcement struct {
	ID        string     `json:"id"`
	TenantID  string     `json:"tenantId"`
	Content   string     `json:"content"`
	Version   int64      `json:"version"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
	DeletedAt *time.Time `json:"deletedAt"`
}
