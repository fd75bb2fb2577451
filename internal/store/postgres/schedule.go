package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"postflow/internal/store"
)

// duePredicate selects actionable posts: newly due (scheduled with an
// elapsed scheduled_at and no pending retry timer) merged with
// retry-due (failed with retries remaining and an elapsed timer).
// A publishing post is excluded by construction.
const duePredicate = `
	((status = 'scheduled' AND scheduled_at <= NOW()
		AND (next_retry_at IS NULL OR next_retry_at <= NOW()))
	OR (status = 'failed' AND retry_count < 3
		AND (next_retry_at IS NULL OR next_retry_at <= NOW())))`

// DueBatch returns up to limit actionable posts, oldest due first for
// fairness. An empty tenantIDs slice means all tenants; scoping is
// always an explicit parameter, never ambient state.
func (s *Store) DueBatch(ctx context.Context, tenantIDs []uuid.UUID, limit int) ([]store.DueItem, error) {
	if limit <= 0 {
		limit = 1
	}

	args := []interface{}{limit}
	where := duePredicate
	if len(tenantIDs) > 0 {
		where += " AND tenant_id = ANY($2)"
		args = append(args, pq.Array(tenantIDs))
	}

	query := fmt.Sprintf(`
		SELECT id, tenant_id
		FROM scheduled_posts
		WHERE %s
		ORDER BY COALESCE(next_retry_at, scheduled_at) ASC
		LIMIT $1
	`, where)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("due batch query failed: %w", err)
	}
	defer rows.Close()

	var items []store.DueItem
	for rows.Next() {
		var item store.DueItem
		if err := rows.Scan(&item.PostID, &item.TenantID); err != nil {
			return nil, fmt.Errorf("due batch scan failed: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// ClaimDue is the sole concurrency-control point: a single conditional
// update that transitions one due post to publishing and returns the
// claimed row. Under N concurrent claims exactly one worker gets
// ok=true; the rest see the row already claimed and skip silently.
func (s *Store) ClaimDue(ctx context.Context, id uuid.UUID) (*store.ScheduledPost, bool, error) {
	query := fmt.Sprintf(`
		UPDATE scheduled_posts
		SET status = 'publishing', updated_at = NOW()
		WHERE id = $1 AND %s
		RETURNING %s
	`, duePredicate, postColumns)

	post, err := scanPost(s.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		// Claim contention or no longer due. Not an error.
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("claim failed: %w", err)
	}
	return post, true, nil
}

// MarkPublished stores the aggregate results on an all-success outcome.
func (s *Store) MarkPublished(ctx context.Context, id uuid.UUID, results map[string]store.PlatformResult) error {
	data, err := json.Marshal(results)
	if err != nil {
		return fmt.Errorf("failed to encode results: %w", err)
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE scheduled_posts
		SET status = $1, results = $2, published_at = NOW(),
		    next_retry_at = NULL, error_message = NULL, updated_at = NOW()
		WHERE id = $3 AND status = $4
	`, store.PostStatusPublished, data, id, store.PostStatusPublishing)
	if err != nil {
		return err
	}
	return oneRowOr(result, store.ErrIllegalTransition)
}

// MarkFailed stores the partial per-platform results and the aggregate
// failure message so the post is fully inspectable from the store alone.
func (s *Store) MarkFailed(ctx context.Context, id uuid.UUID, results map[string]store.PlatformResult, message string) error {
	data, err := json.Marshal(results)
	if err != nil {
		return fmt.Errorf("failed to encode results: %w", err)
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE scheduled_posts
		SET status = $1, results = $2, error_message = $3, updated_at = NOW()
		WHERE id = $4 AND status = $5
	`, store.PostStatusFailed, data, message, id, store.PostStatusPublishing)
	if err != nil {
		return err
	}
	return oneRowOr(result, store.ErrIllegalTransition)
}

// ScheduleRetry re-enters the schedule after a failure. The retry_count
// guard makes the ceiling atomic: once a post has used its three
// retries the update matches nothing and the post stays terminally
// failed.
func (s *Store) ScheduleRetry(ctx context.Context, id uuid.UUID, nextRetryAt time.Time) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE scheduled_posts
		SET status = $1, retry_count = retry_count + 1, next_retry_at = $2, updated_at = NOW()
		WHERE id = $3 AND status = $4 AND retry_count < $5
	`, store.PostStatusScheduled, nextRetryAt, id, store.PostStatusFailed, store.MaxRetries)
	if err != nil {
		return err
	}
	return oneRowOr(result, store.ErrRetryExhausted)
}

// CountDue reports the current due-queue depth for the metrics gauge.
func (s *Store) CountDue(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM scheduled_posts WHERE `+duePredicate).Scan(&count)
	return count, err
}

// PruneTerminal deletes terminal posts older than the retention window.
// Retry-exhausted failed posts are kept; operators still need them.
func (s *Store) PruneTerminal(ctx context.Context, olderThan time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM scheduled_posts
		WHERE status IN ($1, $2) AND updated_at < $3
	`, store.PostStatusPublished, store.PostStatusCancelled, olderThan)
	if err != nil {
		return 0, fmt.Errorf("prune failed: %w", err)
	}
	return result.RowsAffected()
}
