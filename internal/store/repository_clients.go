package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/declanlscott/printdesk-sub002/internal/logger"
	"github.com/declanlscott/printdesk-sub002/models"
)

// ClientRepository persists individual Replicache clients.
type ClientRepository struct {
	logger *logger.Logger
}

// NewClientRepository constructs a [ClientRepository].
func NewClientRepository(logger *logger.Logger) *ClientRepository {
	logger.Debug().Msg("creating client repository")
	return &ClientRepository{logger: logger}
}

// FindByIDForUpdate loads a client and locks its row for the rest of the
// transaction. Returns [ErrNotFound] when the client does not exist.
func (r *ClientRepository) FindByIDForUpdate(ctx context.Context, q Querier, id, tenantID string) (models.Client, error) {
	log := logger.FromContext(ctx)

	var client models.Client
	err := q.Query(ctx, func(rows *sql.Rows) error {
		if !rows.Next() {
			return ErrNotFound
		}
		return scanClient(rows, &client)
	}, findClientForUpdate, id, tenantID)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			log.Err(err).Str("func", "*ClientRepository.FindByIDForUpdate").Msg("error finding client")
		}
		return models.Client{}, err
	}

	return client, nil
}

// FindSinceVersionByGroupID returns every client of the group whose last
// mutation was applied after the given group client version. Pulls use the
// result to populate lastMutationIDChanges incrementally.
func (r *ClientRepository) FindSinceVersionByGroupID(ctx context.Context, q Querier, version int64, clientGroupID, tenantID string) ([]models.Client, error) {
	log := logger.FromContext(ctx)

	var clients []models.Client
	err := q.Query(ctx, func(rows *sql.Rows) error {
		for rows.Next() {
			var client models.Client
			if err := scanClient(rows, &client); err != nil {
				return err
			}
			clients = append(clients, client)
		}
		return nil
	}, findClientsSinceVersion, version, clientGroupID, tenantID)
	if err != nil {
		log.Err(err).Str("func", "*ClientRepository.FindSinceVersionByGroupID").Msg("error finding changed clients")
		return nil, err
	}

	return clients, nil
}

// Upsert inserts the client or updates its mutation bookkeeping in place
// and returns the canonical database representation.
func (r *ClientRepository) Upsert(ctx context.Context, q Querier, client models.Client) (models.Client, error) {
	log := logger.FromContext(ctx)

	var saved models.Client
	err := q.Query(ctx, func(rows *sql.Rows) error {
		if !rows.Next() {
			return ErrNotUpserted
		}
		return scanClient(rows, &saved)
	}, upsertClient, client.ID, client.TenantID, client.ClientGroupID, client.LastMutationID, client.Version)
	if err != nil {
		log.Err(err).Str("func", "*ClientRepository.Upsert").Msg("error upserting client")
		return models.Client{}, err
	}

	return saved, nil
}

func scanClient(rows *sql.Rows, client *models.Client) error {
	return rows.Scan(&client.ID, &client.TenantID, &client.ClientGroupID, &client.LastMutationID, &client.Version, &client.CreatedAt, &client.UpdatedAt)
}
