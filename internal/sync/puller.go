package sync

import (
	"context"
	"errors"
	"time"

	"github.com/declanlscott/printdesk-sub002/internal/logger"
	"github.com/declanlscott/printdesk-sub002/internal/store"
	"github.com/declanlscott/printdesk-sub002/models"
	"golang.org/x/sync/errgroup"
)

// pullReservedWrites accounts for the client group and client view rows
// every effective pull writes, spent out of the row modification budget.
const pullReservedWrites = 2

// Puller serves the pull half of the protocol: it produces, inside one
// retried transaction, the patch that advances a client group from its
// cookie to a fresh client view.
type Puller struct {
	db      TxManager
	groups  ClientGroupRepository
	clients ClientRepository
	views   ClientViewRepository
	entries ClientViewEntryRepository
	differ  Differ
	logger  *logger.Logger
}

// NewPuller constructs a [Puller].
func NewPuller(db TxManager, groups ClientGroupRepository, clients ClientRepository, views ClientViewRepository, entries ClientViewEntryRepository, differ Differ, logger *logger.Logger) *Puller {
	logger.Debug().Msg("creating puller")
	return &Puller{
		db:      db,
		groups:  groups,
		clients: clients,
		views:   views,
		entries: entries,
		differ:  differ,
		logger:  logger,
	}
}

// PullResult is the outcome of a pull: either a successful response or a
// recoverable protocol error, never both.
type PullResult struct {
	Response *models.PullResponse
	Error    *models.SyncError
}

// Pull processes one pull request for the authenticated principal.
//
// Recoverable conditions (unsupported protocol version, unusable cookie,
// state removed by retention) come back inside [PullResult]; only infra
// failures are returned as errors.
func (p *Puller) Pull(ctx context.Context, principal models.Principal, req models.PullRequest) (PullResult, error) {
	log := logger.FromContext(ctx)
	start := time.Now()

	if req.PullVersion != models.PullVersion {
		log.Warn().Int("pull_version", req.PullVersion).Msg("unsupported pull version")
		return PullResult{Error: models.VersionNotSupported("pull")}, nil
	}

	resp, err := p.process(ctx, principal, req.ClientGroupID, req.Cookie)
	if errors.Is(err, ErrDifferenceLimitExceeded) {
		// The incremental difference alone blew the budget. Start the
		// group over: a reset pull snapshots from scratch with the whole
		// budget available and partial delivery as the fallback.
		log.Warn().Str("client_group_id", req.ClientGroupID).Msg("difference limit exceeded, restarting pull from scratch")
		resp, err = p.process(ctx, principal, req.ClientGroupID, nil)
	}

	switch {
	case errors.Is(err, ErrClientStateNotFound):
		log.Warn().Str("client_group_id", req.ClientGroupID).Msg("client state not found")
		return PullResult{Error: models.ClientStateNotFound()}, nil
	case err != nil:
		log.Err(err).Str("client_group_id", req.ClientGroupID).Msg("pull failed")
		return PullResult{}, err
	}

	log.Debug().
		Str("client_group_id", req.ClientGroupID).
		Int("patch_size", len(resp.Patch)).
		Dur("duration", time.Since(start)).
		Msg("pull processed")

	return PullResult{Response: resp}, nil
}

func (p *Puller) process(ctx context.Context, principal models.Principal, clientGroupID string, cookie *models.Cookie) (*models.PullResponse, error) {
	var resp *models.PullResponse

	err := p.db.WithTransaction(ctx, store.TxOptions{Retry: true}, func(ctx context.Context, tx store.Querier) error {
		var prevView *models.ClientView
		if cookie != nil {
			view, err := p.views.FindByID(ctx, tx, clientGroupID, cookie.Order, principal.TenantID)
			if errors.Is(err, store.ErrNotFound) {
				return ErrClientStateNotFound
			}
			if err != nil {
				return err
			}
			prevView = &view
		}

		group, err := p.groups.FindByIDForUpdate(ctx, tx, clientGroupID, principal.TenantID)
		if errors.Is(err, store.ErrNotFound) {
			group = models.NewClientGroup(clientGroupID, principal.TenantID, principal.UserID)
		} else if err != nil {
			return err
		}

		if group.UserID != principal.UserID {
			return ErrOwnershipViolation
		}

		maxVersion, err := p.views.FindMaxVersionByGroupID(ctx, tx, clientGroupID, principal.TenantID)
		if err != nil {
			return err
		}
		if maxVersion == 0 && cookie != nil {
			// the cookie references views this server no longer has
			return ErrClientStateNotFound
		}

		view := models.NewClientView(clientGroupID, principal.TenantID)
		if prevView != nil {
			view = *prevView
		}

		var cookieOrder int64
		if cookie != nil {
			cookieOrder = cookie.Order
		}
		var groupViewVersion int64
		if group.ClientViewVersion != nil {
			groupViewVersion = *group.ClientViewVersion
		}
		nextVersion := max(cookieOrder, groupViewVersion) + 1

		var diff Diff
		var changed []models.Client

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			diff, err = p.differ.Differentiate(gctx, tx, view, principal, pullReservedWrites, nextVersion, maxVersion)
			return err
		})
		g.Go(func() error {
			var err error
			changed, err = p.clients.FindSinceVersionByGroupID(gctx, tx, view.ClientVersion, clientGroupID, principal.TenantID)
			return err
		})
		if err := g.Wait(); err != nil {
			return err
		}

		changes := make(map[string]int64, len(changed))
		for _, client := range changed {
			changes[client.ID] = client.LastMutationID
		}

		if prevView != nil && len(diff.Patch) == 0 && len(changes) == 0 {
			// Nothing moved since the cookie: answer without writing so
			// repeated idle pulls stay free.
			resp = &models.PullResponse{
				Cookie:                cookie,
				LastMutationIDChanges: map[string]int64{},
				Patch:                 []models.PatchOperation{},
			}
			return nil
		}

		group.ClientViewVersion = &nextVersion
		if _, err := p.groups.Upsert(ctx, tx, group); err != nil {
			return err
		}

		newView := models.ClientView{
			ClientGroupID: clientGroupID,
			Version:       nextVersion,
			ClientVersion: group.ClientVersion,
			TenantID:      principal.TenantID,
		}
		if _, err := p.views.Upsert(ctx, tx, newView); err != nil {
			return err
		}

		if prevView == nil {
			// The response starts with Clear, so entries tracked for
			// earlier views describe a cache the client no longer has.
			// Purging them lets rows cut from a partial snapshot come back
			// as creates on the next pull.
			if err := p.entries.DeleteByGroupID(ctx, tx, clientGroupID, principal.TenantID); err != nil {
				return err
			}
		}

		if err := p.entries.UpsertMany(ctx, tx, diff.Entries); err != nil {
			return err
		}

		patch := diff.Patch
		if prevView == nil {
			// a fresh or reset client starts from an empty local cache
			patch = append([]models.PatchOperation{models.Clear()}, patch...)
		}
		if patch == nil {
			patch = []models.PatchOperation{}
		}

		resp = &models.PullResponse{
			Cookie:                &models.Cookie{Order: nextVersion},
			LastMutationIDChanges: changes,
			Patch:                 patch,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return resp, nil
}
