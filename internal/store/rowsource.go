package store

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/declanlscott/printdesk-sub002/models"
)

// DifferenceResolver bundles the permission-scoped difference queries for
// one synced entity. The sync engine registers one resolver per entity and
// runs the queries of every scope the requesting principal holds.
type DifferenceResolver struct {
	Entity string
	Scopes []ScopedQueries
}

// ScopedQueries holds the four difference queries of one read scope. All
// four see the same subset of rows, defined by the scope's predicate, so a
// row leaving the scope surfaces as a delete even though it still exists.
type ScopedQueries struct {
	Permission  string
	Creates     func(ctx context.Context, q Querier, view models.ClientView, userID string) ([]models.SyncRow, error)
	Updates     func(ctx context.Context, q Querier, view models.ClientView, userID string) ([]models.SyncRow, error)
	Deletes     func(ctx context.Context, q Querier, view models.ClientView, userID string) ([]string, error)
	FastForward func(ctx context.Context, q Querier, view models.ClientView, excludeIDs []string, userID string) ([]models.SyncRow, error)
}

// tableSpec describes how one synced table maps onto [models.SyncRow].
type tableSpec struct {
	entity  string
	table   string
	columns []string
	scan    func(rows *sql.Rows) (models.SyncRow, error)
}

// scopePredicate returns the visibility condition of one read scope, with
// column names prefixed by alias ("" or "t."). A nil result means the scope
// sees every row of the tenant.
type scopePredicate func(alias, userID string) sq.Sqlizer

// newScopedQueries builds the four difference queries of one scope over the
// given table.
func newScopedQueries(spec tableSpec, permission string, predicate scopePredicate) ScopedQueries {
	return ScopedQueries{
		Permission:  permission,
		Creates:     createsQuery(spec, predicate),
		Updates:     updatesQuery(spec, predicate),
		Deletes:     deletesQuery(spec, predicate),
		FastForward: fastForwardQuery(spec, predicate),
	}
}

// createsQuery selects the scope-visible rows whose ids the client view
// does not track yet.
func createsQuery(spec tableSpec, predicate scopePredicate) func(ctx context.Context, q Querier, view models.ClientView, userID string) ([]models.SyncRow, error) {
	return func(ctx context.Context, q Querier, view models.ClientView, userID string) ([]models.SyncRow, error) {
		trackedSQL, trackedArgs, err := trackedEntryIDs(spec.entity, view).ToSql()
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
		}

		builder := sq.Select(spec.columns...).
			From(spec.table).
			Where(sq.Eq{"tenant_id": view.TenantID})
		if cond := predicate("", userID); cond != nil {
			builder = builder.Where(cond)
		}
		builder = builder.
			Where(sq.Expr("id NOT IN ("+trackedSQL+")", trackedArgs...)).
			OrderBy("id")

		return selectSyncRows(ctx, q, spec, builder)
	}
}

// updatesQuery joins the ledger against the table and keeps the rows whose
// current version no longer matches the tracked entity version. IS DISTINCT
// FROM makes a row tracked as deleted (NULL entity version) reappear as an
// update once it is visible again.
func updatesQuery(spec tableSpec, predicate scopePredicate) func(ctx context.Context, q Querier, view models.ClientView, userID string) ([]models.SyncRow, error) {
	return func(ctx context.Context, q Querier, view models.ClientView, userID string) ([]models.SyncRow, error) {
		builder := sq.Select(prefixColumns("t.", spec.columns)...).
			From(clientViewEntriesTable + " AS cve").
			Join(spec.table + " AS t ON t.id = cve.entity_id AND t.tenant_id = cve.tenant_id AND t.version IS DISTINCT FROM cve.entity_version").
			Where(sq.Eq{
				"cve.entity":          spec.entity,
				"cve.client_group_id": view.ClientGroupID,
				"cve.tenant_id":       view.TenantID,
			})
		if cond := predicate("t.", userID); cond != nil {
			builder = builder.Where(cond)
		}

		return selectSyncRows(ctx, q, spec, builder)
	}
}

// deletesQuery returns the tracked ids that are no longer visible to the
// scope, whether the row was removed, soft-deleted, or moved out of scope.
func deletesQuery(spec tableSpec, predicate scopePredicate) func(ctx context.Context, q Querier, view models.ClientView, userID string) ([]string, error) {
	return func(ctx context.Context, q Querier, view models.ClientView, userID string) ([]string, error) {
		visible := sq.Select("id").
			From(spec.table).
			Where(sq.Eq{"tenant_id": view.TenantID})
		if cond := predicate("", userID); cond != nil {
			visible = visible.Where(cond)
		}
		visibleSQL, visibleArgs, err := visible.ToSql()
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
		}

		builder := deleteCandidateEntryIDs(spec.entity, view).
			Where(sq.Expr("entity_id NOT IN ("+visibleSQL+")", visibleArgs...))

		query, args, err := builder.PlaceholderFormat(sq.Dollar).ToSql()
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
		}

		var ids []string
		err = q.Query(ctx, func(rows *sql.Rows) error {
			for rows.Next() {
				var id string
				if err := rows.Scan(&id); err != nil {
					return fmt.Errorf("%w: %w", ErrScanningRows, err)
				}
				ids = append(ids, id)
			}
			return nil
		}, query, args...)
		if err != nil {
			return nil, err
		}

		return ids, nil
	}
}

// fastForwardQuery selects the scope-visible rows tracked past the client
// view, excluding ids the current difference already covers. It replays
// work an earlier pull has done, so none of it counts against the budget.
func fastForwardQuery(spec tableSpec, predicate scopePredicate) func(ctx context.Context, q Querier, view models.ClientView, excludeIDs []string, userID string) ([]models.SyncRow, error) {
	return func(ctx context.Context, q Querier, view models.ClientView, excludeIDs []string, userID string) ([]models.SyncRow, error) {
		builder := sq.Select(prefixColumns("t.", spec.columns)...).
			From(clientViewEntriesTable + " AS cve").
			Join(spec.table + " AS t ON t.id = cve.entity_id AND t.tenant_id = cve.tenant_id").
			Where(sq.Eq{
				"cve.entity":          spec.entity,
				"cve.client_group_id": view.ClientGroupID,
				"cve.tenant_id":       view.TenantID,
			}).
			Where(sq.Gt{"cve.client_view_version": view.Version})
		if cond := predicate("t.", userID); cond != nil {
			builder = builder.Where(cond)
		}
		if len(excludeIDs) > 0 {
			builder = builder.Where(sq.NotEq{"t.id": excludeIDs})
		}

		return selectSyncRows(ctx, q, spec, builder)
	}
}

func selectSyncRows(ctx context.Context, q Querier, spec tableSpec, builder sq.SelectBuilder) ([]models.SyncRow, error) {
	query, args, err := builder.PlaceholderFormat(sq.Dollar).ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	var result []models.SyncRow
	err = q.Query(ctx, func(rows *sql.Rows) error {
		for rows.Next() {
			row, err := spec.scan(rows)
			if err != nil {
				return fmt.Errorf("%w: %w", ErrScanningRows, err)
			}
			result = append(result, row)
		}
		return nil
	}, query, args...)
	if err != nil {
		return nil, err
	}

	return result, nil
}

func prefixColumns(alias string, columns []string) []string {
	prefixed := make([]string, len(columns))
	for i, column := range columns {
		prefixed[i] = alias + column
	}

	return prefixed
}
