package store

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/declanlscott/printdesk-sub002/internal/logger"
	"github.com/sethvargo/go-retry"
)

// Retry policy for transactions opened with TxOptions.Retry. Attempts back
// off exponentially from the base delay with jitter added on top.
const (
	txMaxRetries  = 10
	txRetryBase   = 10 * time.Millisecond
	txRetryJitter = 5 * time.Millisecond
)

// Querier is the narrow query surface repositories run against. Both a
// transaction ([Tx]) and a bare connection pool implement it, so repository
// code does not care whether it runs inside WithTransaction.
//
// Query hands the result set to scan and closes it before returning, which
// keeps the underlying connection free for the next call.
type Querier interface {
	Query(ctx context.Context, scan func(rows *sql.Rows) error, query string, args ...any) error
	Exec(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Tx wraps *sql.Tx behind [Querier]. A transaction owns exactly one
// database connection, so the mutex serializes round-trips: goroutines
// fanned out inside one transaction (e.g. the per-entity difference
// queries of a pull) take turns on the wire instead of corrupting the
// connection state.
type Tx struct {
	mu sync.Mutex
	tx *sql.Tx
}

// Query runs a read query and passes the open result set to scan. The
// connection is held until scan returns, so scan must fully consume the
// rows it needs and must not issue further queries.
func (t *Tx) Query(ctx context.Context, scan func(rows *sql.Rows) error, query string, args ...any) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	rows, err := t.tx.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	if err := scan(rows); err != nil {
		return err
	}

	return rows.Err()
}

// Exec runs a DML statement inside the transaction.
func (t *Tx) Exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	res, err := t.tx.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return res, nil
}

// poolQuerier adapts *sql.DB (or a sqlmock handle in tests) to [Querier]
// for code paths that do not need transactional guarantees.
type poolQuerier struct {
	db *sql.DB
}

// NewQuerier wraps a bare connection pool in the [Querier] interface.
func NewQuerier(db *sql.DB) Querier {
	return &poolQuerier{db: db}
}

func (p *poolQuerier) Query(ctx context.Context, scan func(rows *sql.Rows) error, query string, args ...any) error {
	rows, err := p.db.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	if err := scan(rows); err != nil {
		return err
	}

	return rows.Err()
}

func (p *poolQuerier) Exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	res, err := p.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return res, nil
}

// TxOptions controls how [DB.WithTransaction] runs the callback.
type TxOptions struct {
	// Retry re-runs the whole transaction when it fails with an error the
	// classifier deems retryable (serialization failure, deadlock,
	// connection loss). The callback must therefore be safe to execute
	// more than once.
	Retry bool
}

// WithTransaction opens a transaction, runs fn with a [Querier] bound to
// it, and commits on success or rolls back on error.
//
// With opts.Retry set, retryable failures restart the transaction with
// exponential backoff (base 10ms, jittered, at most 10 retries). The
// retry decision is delegated to the configured [ErrorClassificator].
func (db *DB) WithTransaction(ctx context.Context, opts TxOptions, fn func(ctx context.Context, tx Querier) error) error {
	run := func(ctx context.Context) error {
		sqlTx, err := db.DB.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrBeginningTransaction, err)
		}

		if err := fn(ctx, &Tx{tx: sqlTx}); err != nil {
			_ = sqlTx.Rollback()
			return err
		}

		if err := sqlTx.Commit(); err != nil {
			return fmt.Errorf("%w: %w", ErrCommitingTransaction, err)
		}

		return nil
	}

	if !opts.Retry {
		return run(ctx)
	}

	backoff := retry.WithMaxRetries(txMaxRetries, retry.WithJitter(txRetryJitter, retry.NewExponential(txRetryBase)))

	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := run(ctx)
		if err != nil && db.errorClassificator.Classify(err) == Retryable {
			logger.FromContext(ctx).Warn().Err(err).Str("func", "*DB.WithTransaction").Msg("retrying transaction after transient failure")
			return retry.RetryableError(err)
		}

		return err
	})
}
