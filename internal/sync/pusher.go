package sync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/declanlscott/printdesk-sub002/internal/logger"
	"github.com/declanlscott/printdesk-sub002/internal/store"
	"github.com/declanlscott/printdesk-sub002/models"
)

// Pusher serves the push half of the protocol. Each mutation runs in its
// own transaction so one failure never takes down the mutations already
// applied.
type Pusher struct {
	db         TxManager
	groups     ClientGroupRepository
	clients    ClientRepository
	dispatcher Dispatcher
	notifier   Notifier
	logger     *logger.Logger
}

// NewPusher constructs a [Pusher]. notifier may be nil when no realtime
// channel is wired.
func NewPusher(db TxManager, groups ClientGroupRepository, clients ClientRepository, dispatcher Dispatcher, notifier Notifier, logger *logger.Logger) *Pusher {
	logger.Debug().Msg("creating pusher")
	return &Pusher{
		db:         db,
		groups:     groups,
		clients:    clients,
		dispatcher: dispatcher,
		notifier:   notifier,
		logger:     logger,
	}
}

// PushResult is the outcome of a push: Error is set for recoverable
// protocol conditions, nil on success.
type PushResult struct {
	Error *models.SyncError
}

// Push applies the request's mutations in order. Already-applied mutations
// are skipped; a mutation whose application fails is retried in error mode,
// where only the bookkeeping advances so the client can move past it.
func (p *Pusher) Push(ctx context.Context, principal models.Principal, req models.PushRequest) (PushResult, error) {
	log := logger.FromContext(ctx)
	start := time.Now()

	if req.PushVersion != models.PushVersion {
		log.Warn().Int("push_version", req.PushVersion).Msg("unsupported push version")
		return PushResult{Error: models.VersionNotSupported("push")}, nil
	}

	mutated := false
	for _, mutation := range req.Mutations {
		applied, err := p.processMutation(ctx, principal, req.ClientGroupID, mutation)
		if err != nil {
			if errors.Is(err, ErrClientStateNotFound) {
				log.Warn().Str("client_group_id", req.ClientGroupID).Msg("client state not found")
				return PushResult{Error: models.ClientStateNotFound()}, nil
			}
			log.Err(err).Str("client_group_id", req.ClientGroupID).Int64("mutation_id", mutation.ID).Msg("push failed")
			return PushResult{}, err
		}
		mutated = mutated || applied
	}

	if mutated && p.notifier != nil {
		p.notifier.Notify(principal.TenantID, req.ClientGroupID)
	}

	log.Debug().
		Str("client_group_id", req.ClientGroupID).
		Int("mutations", len(req.Mutations)).
		Dur("duration", time.Since(start)).
		Msg("push processed")

	return PushResult{}, nil
}

// mutationState carries the locked bookkeeping rows between preprocess and
// postprocess.
type mutationState struct {
	group  models.ClientGroup
	client models.Client
}

func (p *Pusher) processMutation(ctx context.Context, principal models.Principal, clientGroupID string, mutation models.Mutation) (bool, error) {
	log := logger.FromContext(ctx)

	err := p.db.WithTransaction(ctx, store.TxOptions{Retry: true}, func(ctx context.Context, tx store.Querier) error {
		state, err := p.preprocess(ctx, tx, principal, clientGroupID, mutation)
		if err != nil {
			return err
		}
		if err := p.dispatcher.Dispatch(ctx, tx, principal, mutation); err != nil {
			return err
		}
		return p.postprocess(ctx, tx, state, mutation)
	})
	if err == nil {
		return true, nil
	}
	if errors.Is(err, errPastMutation) {
		log.Debug().Int64("mutation_id", mutation.ID).Str("client_id", mutation.ClientID).Msg("mutation already processed - skipping")
		return false, nil
	}
	if errors.Is(err, ErrClientStateNotFound) || errors.Is(err, ErrOwnershipViolation) || errors.Is(err, ErrFutureMutation) {
		return false, err
	}

	// Error mode: the mutation itself cannot be applied, but its id must
	// still be consumed or the client would resend it forever. Replay the
	// bookkeeping alone.
	log.Error().Err(err).Int64("mutation_id", mutation.ID).Str("mutation", mutation.Name).Msg("mutation failed, replaying bookkeeping only")

	err = p.db.WithTransaction(ctx, store.TxOptions{Retry: true}, func(ctx context.Context, tx store.Querier) error {
		state, err := p.preprocess(ctx, tx, principal, clientGroupID, mutation)
		if err != nil {
			return err
		}
		return p.postprocess(ctx, tx, state, mutation)
	})
	if err == nil {
		return true, nil
	}
	if errors.Is(err, errPastMutation) {
		log.Debug().Int64("mutation_id", mutation.ID).Str("client_id", mutation.ClientID).Msg("mutation already processed - skipping")
		return false, nil
	}

	return false, err
}

// preprocess locks (or synthesizes) the client group and client, checks
// ownership, and orders the mutation against the client's sequence.
func (p *Pusher) preprocess(ctx context.Context, tx store.Querier, principal models.Principal, clientGroupID string, mutation models.Mutation) (mutationState, error) {
	group, err := p.groups.FindByIDForUpdate(ctx, tx, clientGroupID, principal.TenantID)
	if errors.Is(err, store.ErrNotFound) {
		group = models.NewClientGroup(clientGroupID, principal.TenantID, principal.UserID)
	} else if err != nil {
		return mutationState{}, err
	}

	if group.UserID != principal.UserID {
		return mutationState{}, ErrOwnershipViolation
	}

	client, err := p.clients.FindByIDForUpdate(ctx, tx, mutation.ClientID, principal.TenantID)
	if errors.Is(err, store.ErrNotFound) {
		client = models.NewClient(mutation.ClientID, principal.TenantID, clientGroupID)
	} else if err != nil {
		return mutationState{}, err
	}

	if client.ClientGroupID != group.ID {
		return mutationState{}, ErrOwnershipViolation
	}

	if client.LastMutationID == 0 && mutation.ID > 1 {
		// the client holds state this server never saw, likely removed by
		// retention
		return mutationState{}, ErrClientStateNotFound
	}

	next := client.LastMutationID + 1
	if mutation.ID < next {
		return mutationState{}, errPastMutation
	}
	if mutation.ID > next {
		return mutationState{}, fmt.Errorf("%w: expected %d, got %d", ErrFutureMutation, next, mutation.ID)
	}

	return mutationState{group: group, client: client}, nil
}

// postprocess advances the group client version and records the mutation
// as applied.
func (p *Pusher) postprocess(ctx context.Context, tx store.Querier, state mutationState, mutation models.Mutation) error {
	nextClientVersion := state.group.ClientVersion + 1

	group := state.group
	group.ClientVersion = nextClientVersion
	if _, err := p.groups.Upsert(ctx, tx, group); err != nil {
		return err
	}

	client := state.client
	client.LastMutationID = mutation.ID
	client.Version = nextClientVersion
	if _, err := p.clients.Upsert(ctx, tx, client); err != nil {
		return err
	}

	return nil
}
