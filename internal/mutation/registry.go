// Package mutation implements the server-side counterparts of the client's
// Replicache mutators. Each mutator runs inside the push transaction and
// bumps the version of every row it touches so the next pull picks the
// change up.
package mutation

import (
	"context"
	"errors"
	"fmt"

	"github.com/declanlscott/printdesk-sub002/internal/logger"
	"github.com/declanlscott/printdesk-sub002/internal/store"
	"github.com/declanlscott/printdesk-sub002/models"
)

// ErrUnknownMutation is returned when a push names a mutator this server
// does not implement. The pusher's error mode consumes the mutation id so
// the client does not retry it forever.
var ErrUnknownMutation = errors.New("unknown mutation")

// Func applies one mutation inside the push transaction.
type Func func(ctx context.Context, q store.Querier, principal models.Principal, args []byte) error

// Registry maps mutation names to their server-side implementations.
type Registry struct {
	funcs  map[string]Func
	logger *logger.Logger
}

// NewRegistry constructs an empty [Registry].
func NewRegistry(logger *logger.Logger) *Registry {
	logger.Debug().Msg("creating mutation registry")
	return &Registry{
		funcs:  make(map[string]Func),
		logger: logger,
	}
}

// Register adds a named mutator and returns the registry for chaining.
// Registering the same name twice replaces the earlier function.
func (r *Registry) Register(name string, fn Func) *Registry {
	r.funcs[name] = fn
	return r
}

// Dispatch implements the sync engine's Dispatcher interface.
func (r *Registry) Dispatch(ctx context.Context, q store.Querier, principal models.Principal, mutation models.Mutation) error {
	fn, ok := r.funcs[mutation.Name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownMutation, mutation.Name)
	}

	if err := fn(ctx, q, principal, mutation.Args); err != nil {
		return fmt.Errorf("mutation %s failed: %w", mutation.Name, err)
	}

	return nil
}
