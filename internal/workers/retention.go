package workers

import (
	"context"
	"time"

	"github.com/declanlscott/printdesk-sub002/internal/config"
	"github.com/declanlscott/printdesk-sub002/internal/logger"
	"github.com/declanlscott/printdesk-sub002/internal/store"
)

// RetentionStore is the slice of the store the retention worker needs.
type RetentionStore interface {
	WithTransaction(ctx context.Context, opts store.TxOptions, fn func(ctx context.Context, tx store.Querier) error) error
}

// RetentionRepository removes expired client groups with their dependent
// bookkeeping rows.
type RetentionRepository interface {
	DeleteExpiredClientGroups(ctx context.Context, q store.Querier, olderThan time.Time, limit int) (int, error)
}

// Retention periodically removes the bookkeeping state of client groups
// that have been idle longer than the configured lifetime. Clients whose
// group was removed receive ClientStateNotFound on their next sync and
// reset cleanly.
type Retention struct {
	db     RetentionStore
	repo   RetentionRepository
	cfg    config.Sync
	logger *logger.Logger
}

// NewRetention constructs a [Retention] worker.
func NewRetention(db RetentionStore, repo RetentionRepository, cfg config.Sync, logger *logger.Logger) *Retention {
	logger.Debug().
		Dur("lifetime", cfg.RetentionLifetime).
		Dur("interval", cfg.RetentionInterval).
		Msg("creating retention worker")

	return &Retention{
		db:     db,
		repo:   repo,
		cfg:    cfg,
		logger: logger,
	}
}

// Run implements [Worker]: it sweeps on every tick until ctx is cancelled.
func (r *Retention) Run(ctx context.Context) {
	ctx = r.logger.WithContext(ctx)

	ticker := time.NewTicker(r.cfg.RetentionInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info().Msg("retention worker stopped")
			return
		case <-ticker.C:
			r.sweep(ctx)
		}
	}
}

func (r *Retention) sweep(ctx context.Context) {
	olderThan := time.Now().Add(-r.cfg.RetentionLifetime)

	var removed int
	err := r.db.WithTransaction(ctx, store.TxOptions{Retry: true}, func(ctx context.Context, tx store.Querier) error {
		var err error
		removed, err = r.repo.DeleteExpiredClientGroups(ctx, tx, olderThan, r.cfg.RetentionBatchSize)
		return err
	})
	if err != nil {
		r.logger.Err(err).Msg("retention sweep failed")
		return
	}

	if removed > 0 {
		r.logger.Info().Int("client_groups", removed).Msg("removed expired client groups")
	}
}
