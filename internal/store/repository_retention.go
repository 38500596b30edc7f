package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/declanlscott/printdesk-sub002/internal/logger"
)

// RetentionRepository removes the bookkeeping rows of client groups that
// have been idle longer than the configured lifetime. A client that lost
// its group this way simply receives ClientStateNotFound on its next pull
// and resets.
type RetentionRepository struct {
	logger *logger.Logger
}

// NewRetentionRepository constructs a [RetentionRepository].
func NewRetentionRepository(logger *logger.Logger) *RetentionRepository {
	logger.Debug().Msg("creating retention repository")
	return &RetentionRepository{logger: logger}
}

type expiredGroup struct {
	id       string
	tenantID string
}

// DeleteExpiredClientGroups removes up to limit client groups last touched
// before olderThan, together with their clients, views, and entries.
// Returns the number of groups removed.
func (r *RetentionRepository) DeleteExpiredClientGroups(ctx context.Context, q Querier, olderThan time.Time, limit int) (int, error) {
	log := logger.FromContext(ctx)

	var expired []expiredGroup
	err := q.Query(ctx, func(rows *sql.Rows) error {
		for rows.Next() {
			var group expiredGroup
			if err := rows.Scan(&group.id, &group.tenantID); err != nil {
				return err
			}
			expired = append(expired, group)
		}
		return nil
	}, findExpiredClientGroups, olderThan, limit)
	if err != nil {
		log.Err(err).Str("func", "*RetentionRepository.DeleteExpiredClientGroups").Msg("error finding expired client groups")
		return 0, err
	}

	for _, group := range expired {
		for _, query := range []string{
			deleteClientViewEntriesByGroup,
			deleteClientViewsByGroup,
			deleteClientsByGroup,
			deleteClientGroup,
		} {
			if _, err := q.Exec(ctx, query, group.id, group.tenantID); err != nil {
				log.Err(err).Str("func", "*RetentionRepository.DeleteExpiredClientGroups").Str("client_group_id", group.id).Msg("error deleting expired client group")
				return 0, err
			}
		}
	}

	return len(expired), nil
}
