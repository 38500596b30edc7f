package sync

import (
	"context"

	"github.com/declanlscott/printdesk-sub002/internal/access"
	"github.com/declanlscott/printdesk-sub002/internal/logger"
	"github.com/declanlscott/printdesk-sub002/internal/store"
	"github.com/declanlscott/printdesk-sub002/models"
	"golang.org/x/sync/errgroup"
)

// Diff is the outcome of one differencing run: the patch operations to send
// and the ledger entries recording what the patch told the client.
type Diff struct {
	Patch   []models.PatchOperation
	Entries []models.ClientViewEntry
}

// Differentiator computes, per pull, the difference between what the
// database holds and what a client view last saw. Updates and deletes are
// mandatory; creates are budgeted so one pull never produces more row
// modifications than the configured limit.
type Differentiator struct {
	resolvers []store.DifferenceResolver
	checker   access.Checker
	limit     int
	logger    *logger.Logger
}

// NewDifferentiator constructs a [Differentiator] over the given entity
// resolvers. limit is the row modification cap per pull.
func NewDifferentiator(checker access.Checker, limit int, logger *logger.Logger, resolvers ...store.DifferenceResolver) *Differentiator {
	logger.Debug().Int("limit", limit).Int("resolvers", len(resolvers)).Msg("creating differentiator")
	return &Differentiator{
		resolvers: resolvers,
		checker:   checker,
		limit:     limit,
		logger:    logger,
	}
}

// entityScopes is the per-entity list of scopes the principal may read.
type entityScopes struct {
	entity string
	scopes []store.ScopedQueries
}

// Differentiate implements [Differ].
//
// reserved is the number of row modifications the caller spends on its own
// bookkeeping, taken off the creates budget. nextVersion stamps the new
// ledger entries; maxVersion is the highest view version of the group, used
// to detect that the client is behind the frontier and must fast-forward.
//
// A view at version zero holds no tracked state, so both the incremental
// pass and the fast-forward pass are skipped and the whole budget goes to
// creates. That is the first pull of a fresh group and the forced restart
// after [ErrDifferenceLimitExceeded], which makes the restart immune to the
// overflow that triggered it.
//
// The per-entity queries share the transaction bound to q; [store.Tx]
// serializes their round-trips.
func (d *Differentiator) Differentiate(ctx context.Context, q store.Querier, view models.ClientView, principal models.Principal, reserved int, nextVersion, maxVersion int64) (Diff, error) {
	log := logger.FromContext(ctx)

	allowed, err := d.allowedScopes(ctx, principal)
	if err != nil {
		return Diff{}, err
	}

	budget := d.limit - reserved

	var diff Diff
	if view.Version > 0 {
		updates := make([][]models.SyncRow, len(allowed))
		deletes := make([][]string, len(allowed))

		g, gctx := errgroup.WithContext(ctx)
		for i, es := range allowed {
			g.Go(func() error {
				rows, err := mergeScopedRows(gctx, es.scopes, func(ctx context.Context, scope store.ScopedQueries) ([]models.SyncRow, error) {
					return scope.Updates(ctx, q, view, principal.UserID)
				})
				updates[i] = rows
				return err
			})
			g.Go(func() error {
				ids, err := mergeScopedIDs(gctx, es.scopes, q, view, principal.UserID)
				deletes[i] = ids
				return err
			})
		}
		if err := g.Wait(); err != nil {
			return Diff{}, err
		}

		for i := range allowed {
			// a delete candidate superseded by an update is not a delete
			deletes[i] = subtractIDs(deletes[i], updates[i])
			budget -= len(updates[i]) + len(deletes[i])
		}
		if budget < 0 {
			return Diff{}, ErrDifferenceLimitExceeded
		}

		excludes := make(map[string][]string, len(allowed))
		for i, es := range allowed {
			for _, row := range updates[i] {
				version := row.Version
				diff.Entries = append(diff.Entries, models.ClientViewEntry{
					ClientGroupID:     view.ClientGroupID,
					ClientViewVersion: nextVersion,
					Entity:            es.entity,
					EntityID:          row.ID,
					EntityVersion:     &version,
					TenantID:          view.TenantID,
				})
				diff.Patch = append(diff.Patch, models.PutEntity(es.entity, row.ID, row.Value))
				excludes[es.entity] = append(excludes[es.entity], row.ID)
			}
			for _, id := range deletes[i] {
				diff.Entries = append(diff.Entries, models.ClientViewEntry{
					ClientGroupID:     view.ClientGroupID,
					ClientViewVersion: nextVersion,
					Entity:            es.entity,
					EntityID:          id,
					EntityVersion:     nil,
					TenantID:          view.TenantID,
				})
				diff.Patch = append(diff.Patch, models.DeleteEntity(es.entity, id))
				excludes[es.entity] = append(excludes[es.entity], id)
			}
		}

		if view.Version < maxVersion {
			// The client is behind the group frontier: replay the rows
			// later views already track instead of computing fresh creates.
			patch, err := d.fastForward(ctx, q, view, principal.UserID, allowed, excludes)
			if err != nil {
				return Diff{}, err
			}
			diff.Patch = append(diff.Patch, patch...)

			log.Debug().Str("client_group_id", view.ClientGroupID).Int("patch_size", len(diff.Patch)).Msg("difference computed via fast-forward")
			return diff, nil
		}
	}

	creates := make([][]models.SyncRow, len(allowed))
	cg, cctx := errgroup.WithContext(ctx)
	for i, es := range allowed {
		cg.Go(func() error {
			rows, err := mergeScopedRows(cctx, es.scopes, func(ctx context.Context, scope store.ScopedQueries) ([]models.SyncRow, error) {
				return scope.Creates(ctx, q, view, principal.UserID)
			})
			creates[i] = rows
			return err
		})
	}
	if err := cg.Wait(); err != nil {
		return Diff{}, err
	}

	taken := 0
	isPartial := false
takeCreates:
	for i, es := range allowed {
		for _, row := range creates[i] {
			if taken >= budget {
				isPartial = true
				break takeCreates
			}

			version := row.Version
			diff.Entries = append(diff.Entries, models.ClientViewEntry{
				ClientGroupID:     view.ClientGroupID,
				ClientViewVersion: nextVersion,
				Entity:            es.entity,
				EntityID:          row.ID,
				EntityVersion:     &version,
				TenantID:          view.TenantID,
			})
			diff.Patch = append(diff.Patch, models.PutEntity(es.entity, row.ID, row.Value))
			taken++
		}
	}

	// The completeness marker is written on the first snapshot and whenever
	// the set of delivered creates moved, so an unchanged repeat pull stays
	// a no-op.
	if view.Version == 0 || taken > 0 || isPartial {
		state := models.SyncStateComplete
		if isPartial {
			state = models.SyncStatePartial
		}
		diff.Patch = append(diff.Patch, models.PutSyncState(state))
	}

	log.Debug().Str("client_group_id", view.ClientGroupID).Int("patch_size", len(diff.Patch)).Bool("partial", isPartial).Msg("difference computed")
	return diff, nil
}

func (d *Differentiator) allowedScopes(ctx context.Context, principal models.Principal) ([]entityScopes, error) {
	allowed := make([]entityScopes, 0, len(d.resolvers))
	for _, resolver := range d.resolvers {
		es := entityScopes{entity: resolver.Entity}
		for _, scope := range resolver.Scopes {
			ok, err := d.checker.Allowed(ctx, principal, scope.Permission)
			if err != nil {
				return nil, err
			}
			if ok {
				es.scopes = append(es.scopes, scope)
			}
		}
		allowed = append(allowed, es)
	}

	return allowed, nil
}

func (d *Differentiator) fastForward(ctx context.Context, q store.Querier, view models.ClientView, userID string, allowed []entityScopes, excludes map[string][]string) ([]models.PatchOperation, error) {
	forwarded := make([][]models.SyncRow, len(allowed))

	g, gctx := errgroup.WithContext(ctx)
	for i, es := range allowed {
		g.Go(func() error {
			rows, err := mergeScopedRows(gctx, es.scopes, func(ctx context.Context, scope store.ScopedQueries) ([]models.SyncRow, error) {
				return scope.FastForward(ctx, q, view, excludes[es.entity], userID)
			})
			forwarded[i] = rows
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var patch []models.PatchOperation
	for i, es := range allowed {
		for _, row := range forwarded[i] {
			patch = append(patch, models.PutEntity(es.entity, row.ID, row.Value))
		}
	}

	return patch, nil
}

// mergeScopedRows runs one query across every allowed scope and merges the
// results, first scope wins on duplicate ids.
func mergeScopedRows(ctx context.Context, scopes []store.ScopedQueries, query func(ctx context.Context, scope store.ScopedQueries) ([]models.SyncRow, error)) ([]models.SyncRow, error) {
	var merged []models.SyncRow
	seen := make(map[string]struct{})
	for _, scope := range scopes {
		rows, err := query(ctx, scope)
		if err != nil {
			return nil, err
		}
		for _, row := range rows {
			if _, ok := seen[row.ID]; ok {
				continue
			}
			seen[row.ID] = struct{}{}
			merged = append(merged, row)
		}
	}

	return merged, nil
}

func mergeScopedIDs(ctx context.Context, scopes []store.ScopedQueries, q store.Querier, view models.ClientView, userID string) ([]string, error) {
	var merged []string
	seen := make(map[string]struct{})
	for _, scope := range scopes {
		ids, err := scope.Deletes(ctx, q, view, userID)
		if err != nil {
			return nil, err
		}
		for _, id := range ids {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			merged = append(merged, id)
		}
	}

	return merged, nil
}

func subtractIDs(ids []string, rows []models.SyncRow) []string {
	if len(ids) == 0 || len(rows) == 0 {
		return ids
	}

	updated := make(map[string]struct{}, len(rows))
	for _, row := range rows {
		updated[row.ID] = struct{}{}
	}

	kept := ids[:0]
	for _, id := range ids {
		if _, ok := updated[id]; !ok {
			kept = append(kept, id)
		}
	}

	return kept
}
