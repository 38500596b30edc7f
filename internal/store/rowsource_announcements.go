package store

import (
	"database/sql"

	"github.com/declanlscott/printdesk-sub002/models"
)

// PermissionAnnouncementsRead is the single read scope of announcements;
// every role holds it.
const PermissionAnnouncementsRead = "announcements:read"

var announcementSpec = tableSpec{
	entity: models.EntityAnnouncements,
	table:  "announcements",
	columns: []string{
		"id", "tenant_id", "content",
		"version", "created_at", "updated_at", "deleted_at",
	},
	scan: scanAnnouncementRow,
}

// NewAnnouncementResolver returns the difference resolver for the
// announcements entity.
func NewAnnouncementResolver() DifferenceResolver {
	return DifferenceResolver{
		Entity: models.EntityAnnouncements,
		Scopes: []ScopedQueries{
			newScopedQueries(announcementSpec, PermissionAnnouncementsRead, activeRows),
		},
	}
}

func scanAnnouncementRow(rows *sql.Rows) (models.SyncRow, error) {
	var announcement models.Announcement
	err := rows.Scan(
		&announcement.ID, &announcement.TenantID, &announcement.Content,
		&announcement.Version, &announcement.CreatedAt, &announcement.UpdatedAt, &announcement.DeletedAt,
	)
	if err != nil {
		return models.SyncRow{}, err
	}

	return models.SyncRow{ID: announcement.ID, Version: announcement.Version, Value: announcement}, nil
}
