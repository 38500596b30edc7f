package store

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/declanlscott/printdesk-sub002/internal/logger"
	"github.com/declanlscott/printdesk-sub002/models"
)

// ClientViewEntryRepository persists the per-row ledger recording which
// entity versions each client group has been sent.
type ClientViewEntryRepository struct {
	logger *logger.Logger
}

// NewClientViewEntryRepository constructs a [ClientViewEntryRepository].
func NewClientViewEntryRepository(logger *logger.Logger) *ClientViewEntryRepository {
	logger.Debug().Msg("creating client view entry repository")
	return &ClientViewEntryRepository{logger: logger}
}

// UpsertMany writes all entries in one multi-row INSERT. An existing entry
// for the same (group, entity, entity id, tenant) is advanced in place: its
// entity version and client view version are replaced, so the ledger always
// holds exactly one row per tracked entity row.
func (r *ClientViewEntryRepository) UpsertMany(ctx context.Context, q Querier, entries []models.ClientViewEntry) error {
	log := logger.FromContext(ctx)

	if len(entries) == 0 {
		return nil
	}

	query, args, err := buildUpsertClientViewEntriesQuery(entries)
	if err != nil {
		log.Err(err).Str("func", "*ClientViewEntryRepository.UpsertMany").Msg("error building upsert query")
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	if _, err := q.Exec(ctx, query, args...); err != nil {
		log.Err(err).Str("func", "*ClientViewEntryRepository.UpsertMany").Msg("error upserting client view entries")
		return err
	}

	return nil
}

// DeleteByGroupID drops every ledger entry of one client group. The puller
// runs this on a snapshot pull, where the prepended clear operation already
// wiped the client cache the entries described.
func (r *ClientViewEntryRepository) DeleteByGroupID(ctx context.Context, q Querier, clientGroupID, tenantID string) error {
	log := logger.FromContext(ctx)

	if _, err := q.Exec(ctx, deleteClientViewEntriesByGroup, clientGroupID, tenantID); err != nil {
		log.Err(err).Str("func", "*ClientViewEntryRepository.DeleteByGroupID").Str("client_group_id", clientGroupID).Msg("error deleting client view entries")
		return err
	}

	return nil
}

func buildUpsertClientViewEntriesQuery(entries []models.ClientViewEntry) (string, []any, error) {
	builder := sq.Insert("replicache_client_view_entries").
		Columns("client_group_id", "client_view_version", "entity", "entity_id", "entity_version", "tenant_id")

	for _, entry := range entries {
		builder = builder.Values(entry.ClientGroupID, entry.ClientViewVersion, entry.Entity, entry.EntityID, entry.EntityVersion, entry.TenantID)
	}

	builder = builder.Suffix(`ON CONFLICT (client_group_id, entity, entity_id, tenant_id) DO UPDATE SET
        entity_version = EXCLUDED.entity_version,
        client_view_version = EXCLUDED.client_view_version`)

	return builder.PlaceholderFormat(sq.Dollar).ToSql()
}
