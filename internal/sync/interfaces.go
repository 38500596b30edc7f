// Package sync implements the server side of the Replicache protocol: the
// pull endpoint differences the database against each client group's last
// known view, the push endpoint replays client mutations with exactly-once
// bookkeeping.
package sync

import (
	"context"

	"github.com/declanlscott/printdesk-sub002/internal/store"
	"github.com/declanlscott/printdesk-sub002/models"
)

// TxManager runs a callback inside a database transaction. Implemented by
// [store.DB].
type TxManager interface {
	WithTransaction(ctx context.Context, opts store.TxOptions, fn func(ctx context.Context, tx store.Querier) error) error
}

// ClientGroupRepository is the slice of [store.ClientGroupRepository] the
// sync engine needs.
type ClientGroupRepository interface {
	FindByIDForUpdate(ctx context.Context, q store.Querier, id, tenantID string) (models.ClientGroup, error)
	Upsert(ctx context.Context, q store.Querier, group models.ClientGroup) (models.ClientGroup, error)
}

// ClientRepository is the slice of [store.ClientRepository] the sync engine
// needs.
type ClientRepository interface {
	FindByIDForUpdate(ctx context.Context, q store.Querier, id, tenantID string) (models.Client, error)
	FindSinceVersionByGroupID(ctx context.Context, q store.Querier, version int64, clientGroupID, tenantID string) ([]models.Client, error)
	Upsert(ctx context.Context, q store.Querier, client models.Client) (models.Client, error)
}

// ClientViewRepository is the slice of [store.ClientViewRepository] the
// sync engine needs.
type ClientViewRepository interface {
	FindByID(ctx context.Context, q store.Querier, clientGroupID string, version int64, tenantID string) (models.ClientView, error)
	FindMaxVersionByGroupID(ctx context.Context, q store.Querier, clientGroupID, tenantID string) (int64, error)
	Upsert(ctx context.Context, q store.Querier, view models.ClientView) (models.ClientView, error)
}

// ClientViewEntryRepository is the slice of
// [store.ClientViewEntryRepository] the sync engine needs.
type ClientViewEntryRepository interface {
	UpsertMany(ctx context.Context, q store.Querier, entries []models.ClientViewEntry) error
	DeleteByGroupID(ctx context.Context, q store.Querier, clientGroupID, tenantID string) error
}

// Differ computes the difference between the database and a client view.
// Implemented by [Differentiator].
type Differ interface {
	Differentiate(ctx context.Context, q store.Querier, view models.ClientView, principal models.Principal, reserved int, nextVersion, maxVersion int64) (Diff, error)
}

// Dispatcher applies one named mutation inside the push transaction.
type Dispatcher interface {
	Dispatch(ctx context.Context, q store.Querier, principal models.Principal, mutation models.Mutation) error
}

// Notifier tells connected clients of a tenant that new data is available
// to pull.
type Notifier interface {
	Notify(tenantID, clientGroupID string)
}
