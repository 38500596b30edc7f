package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/declanlscott/printdesk-sub002/internal/logger"
	"github.com/declanlscott/printdesk-sub002/models"
)

// ClientGroupRepository persists Replicache client groups. Lookups take a
// row-level lock so concurrent pulls and pushes for the same group
// serialize on the database.
type ClientGroupRepository struct {
	logger *logger.Logger
}

// NewClientGroupRepository constructs a [ClientGroupRepository].
func NewClientGroupRepository(logger *logger.Logger) *ClientGroupRepository {
	logger.Debug().Msg("creating client group repository")
	return &ClientGroupRepository{logger: logger}
}

// FindByIDForUpdate loads a client group and locks its row for the rest of
// the transaction. Returns [ErrNotFound] when the group does not exist.
func (r *ClientGroupRepository) FindByIDForUpdate(ctx context.Context, q Querier, id, tenantID string) (models.ClientGroup, error) {
	log := logger.FromContext(ctx)

	var group models.ClientGroup
	err := q.Query(ctx, func(rows *sql.Rows) error {
		if !rows.Next() {
			return ErrNotFound
		}
		return scanClientGroup(rows, &group)
	}, findClientGroupForUpdate, id, tenantID)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			log.Err(err).Str("func", "*ClientGroupRepository.FindByIDForUpdate").Msg("error finding client group")
		}
		return models.ClientGroup{}, err
	}

	return group, nil
}

// Upsert inserts the client group or updates its counters in place and
// returns the canonical database representation.
func (r *ClientGroupRepository) Upsert(ctx context.Context, q Querier, group models.ClientGroup) (models.ClientGroup, error) {
	log := logger.FromContext(ctx)

	var saved models.ClientGroup
	err := q.Query(ctx, func(rows *sql.Rows) error {
		if !rows.Next() {
			return ErrNotUpserted
		}
		return scanClientGroup(rows, &saved)
	}, upsertClientGroup, group.ID, group.TenantID, group.UserID, group.ClientVersion, group.ClientViewVersion)
	if err != nil {
		log.Err(err).Str("func", "*ClientGroupRepository.Upsert").Msg("error upserting client group")
		return models.ClientGroup{}, err
	}

	return saved, nil
}

func scanClientGroup(rows *sql.Rows, group *models.ClientGroup) error {
	err := rows.Scan(&group.ID, &group.TenantID, &group.UserID, &group.ClientVersion, &group.ClientViewVersion, &group.CreatedAt, &group.UpdatedAt)
	if err != nil {
		return err
	}

	return nil
}
