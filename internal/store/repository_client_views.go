package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/declanlscott/printdesk-sub002/internal/logger"
	"github.com/declanlscott/printdesk-sub002/models"
)

// ClientViewRepository persists the immutable client view markers produced
// by every effective pull.
type ClientViewRepository struct {
	logger *logger.Logger
}

// NewClientViewRepository constructs a [ClientViewRepository].
func NewClientViewRepository(logger *logger.Logger) *ClientViewRepository {
	logger.Debug().Msg("creating client view repository")
	return &ClientViewRepository{logger: logger}
}

// FindByID loads one client view by its composite key. Returns
// [ErrNotFound] when no view with that version exists, which a pull treats
// as an unusable cookie.
func (r *ClientViewRepository) FindByID(ctx context.Context, q Querier, clientGroupID string, version int64, tenantID string) (models.ClientView, error) {
	log := logger.FromContext(ctx)

	var view models.ClientView
	err := q.Query(ctx, func(rows *sql.Rows) error {
		if !rows.Next() {
			return ErrNotFound
		}
		return rows.Scan(&view.ClientGroupID, &view.Version, &view.ClientVersion, &view.TenantID)
	}, findClientView, clientGroupID, version, tenantID)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			log.Err(err).Str("func", "*ClientViewRepository.FindByID").Msg("error finding client view")
		}
		return models.ClientView{}, err
	}

	return view, nil
}

// FindMaxVersionByGroupID returns the highest client view version recorded
// for the group, or zero when the group has no views yet.
func (r *ClientViewRepository) FindMaxVersionByGroupID(ctx context.Context, q Querier, clientGroupID, tenantID string) (int64, error) {
	log := logger.FromContext(ctx)

	var version int64
	err := q.Query(ctx, func(rows *sql.Rows) error {
		if !rows.Next() {
			return ErrNotFound
		}
		return rows.Scan(&version)
	}, findMaxClientViewVersion, clientGroupID, tenantID)
	if err != nil {
		log.Err(err).Str("func", "*ClientViewRepository.FindMaxVersionByGroupID").Msg("error finding max client view version")
		return 0, err
	}

	return version, nil
}

// Upsert records a client view marker and returns the canonical database
// representation.
func (r *ClientViewRepository) Upsert(ctx context.Context, q Querier, view models.ClientView) (models.ClientView, error) {
	log := logger.FromContext(ctx)

	var saved models.ClientView
	err := q.Query(ctx, func(rows *sql.Rows) error {
		if !rows.Next() {
			return ErrNotUpserted
		}
		return rows.Scan(&saved.ClientGroupID, &saved.Version, &saved.ClientVersion, &saved.TenantID)
	}, upsertClientView, view.ClientGroupID, view.Version, view.ClientVersion, view.TenantID)
	if err != nil {
		log.Err(err).Str("func", "*ClientViewRepository.Upsert").Msg("error upserting client view")
		return models.ClientView{}, err
	}

	return saved, nil
}
