package mutation

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/declanlscott/printdesk-sub002/internal/store"
	"github.com/declanlscott/printdesk-sub002/models"
)

// MutationCreateAnnouncement is the administrator-only mutator publishing a
// tenant-wide announcement.
const MutationCreateAnnouncement = "createAnnouncement"

// RegisterAnnouncementMutations wires the announcement mutators into the
// registry.
func RegisterAnnouncementMutations(registry *Registry) *Registry {
	return registry.Register(MutationCreateAnnouncement, createAnnouncement)
}

type createAnnouncementArgs struct {
	ID      string `json:"id"`
	Content string `json:"content"`
}

func createAnnouncement(ctx context.Context, q store.Querier, principal models.Principal, args []byte) error {
	if principal.Role != models.RoleAdministrator {
		return fmt.Errorf("role %s may not create announcements", principal.Role)
	}

	var payload createAnnouncementArgs
	if err := json.Unmarshal(args, &payload); err != nil {
		return fmt.Errorf("decoding createAnnouncement args: %w", err)
	}

	query, queryArgs, err := sq.Insert("announcements").
		Columns("id", "tenant_id", "content", "version").
		Values(payload.ID, principal.TenantID, payload.Content, 1).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: %w", store.ErrBuildingSQLQuery, err)
	}

	_, err = q.Exec(ctx, query, queryArgs...)
	return err
}

func requireAffected(result sql.Result, notFound error) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return notFound
	}

	return nil
}
