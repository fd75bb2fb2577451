package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"postflow/internal/store"
)

const postColumns = `id, tenant_id, content_id, created_by,
	platforms, platform_configs,
	scheduled_at, recurring, recurrence_pattern, recurrence_end_date, parent_id,
	status, retry_count, next_retry_at, results, error_message, published_at,
	preview_approved, approved_by, approved_at, approval_notes, preview_data,
	created_at, updated_at`

// CreateScheduledPost inserts one post. Callers creating a recurring
// anchor pass the same tx for the anchor and every expanded sibling so
// the occurrence set is all-or-nothing.
func (s *Store) CreateScheduledPost(ctx context.Context, tx store.DBTransaction, post *store.ScheduledPost) error {
	executor := s.getExecutor(tx)

	configs, err := json.Marshal(post.PlatformConfigs)
	if err != nil {
		return fmt.Errorf("failed to encode platform configs: %w", err)
	}

	query := `
		INSERT INTO scheduled_posts (
			id, tenant_id, content_id, created_by,
			platforms, platform_configs,
			scheduled_at, recurring, recurrence_pattern, recurrence_end_date, parent_id,
			status, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	_, err = executor.ExecContext(ctx, query,
		post.ID, post.TenantID, post.ContentID, post.CreatedBy,
		pq.Array(post.Platforms), configs,
		post.ScheduledAt, post.Recurring, post.RecurrencePattern, post.RecurrenceEndDate, post.ParentID,
		post.Status, post.CreatedAt, post.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create scheduled post: %w", err)
	}
	return nil
}

// GetScheduledPost returns a post by id scoped by tenant.
func (s *Store) GetScheduledPost(ctx context.Context, tenantID, id uuid.UUID) (*store.ScheduledPost, error) {
	query := `SELECT ` + postColumns + ` FROM scheduled_posts WHERE id = $1 AND tenant_id = $2`
	post, err := scanPost(s.db.QueryRowContext(ctx, query, id, tenantID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	return post, err
}

// ListScheduledPosts returns posts for a tenant matching the filter,
// newest scheduled first.
func (s *Store) ListScheduledPosts(ctx context.Context, tenantID uuid.UUID, filter store.ListFilter) ([]*store.ScheduledPost, error) {
	var (
		conds = []string{"tenant_id = $1"}
		args  = []interface{}{tenantID}
	)
	arg := func(v interface{}) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if filter.Status != "" {
		conds = append(conds, "status = "+arg(filter.Status))
	}
	if filter.Platform != "" {
		conds = append(conds, arg(filter.Platform)+" = ANY(platforms)")
	}
	if filter.CreatedBy != "" {
		conds = append(conds, "created_by = "+arg(filter.CreatedBy))
	}
	if filter.From != nil {
		conds = append(conds, "scheduled_at >= "+arg(*filter.From))
	}
	if filter.To != nil {
		conds = append(conds, "scheduled_at <= "+arg(*filter.To))
	}

	limit := filter.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	query := fmt.Sprintf(`SELECT %s FROM scheduled_posts WHERE %s ORDER BY scheduled_at DESC LIMIT %s OFFSET %s`,
		postColumns, strings.Join(conds, " AND "), arg(limit), arg(filter.Offset))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list scheduled posts: %w", err)
	}
	defer rows.Close()

	var posts []*store.ScheduledPost
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, rows.Err()
}

// SavePreview caches the generated preview on the post.
func (s *Store) SavePreview(ctx context.Context, tenantID, id uuid.UUID, preview map[string]store.PlatformPreview) error {
	data, err := json.Marshal(preview)
	if err != nil {
		return fmt.Errorf("failed to encode preview: %w", err)
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE scheduled_posts
		SET preview_data = $1, updated_at = NOW()
		WHERE id = $2 AND tenant_id = $3
	`, data, id, tenantID)
	if err != nil {
		return err
	}
	return oneRowOr(result, store.ErrNotFound)
}

// ApprovePreview records the approval gate fields.
func (s *Store) ApprovePreview(ctx context.Context, tenantID, id uuid.UUID, approvedBy, notes string) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE scheduled_posts
		SET preview_approved = TRUE, approved_by = $1, approved_at = NOW(),
		    approval_notes = NULLIF($2, ''), updated_at = NOW()
		WHERE id = $3 AND tenant_id = $4
	`, approvedBy, notes, id, tenantID)
	if err != nil {
		return err
	}
	return oneRowOr(result, store.ErrNotFound)
}

// CancelScheduledPost cancels a post. The status guard in the update
// makes an out-of-state cancel a rejected no-op, never a corruption.
func (s *Store) CancelScheduledPost(ctx context.Context, tenantID, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE scheduled_posts
		SET status = $1, updated_at = NOW()
		WHERE id = $2 AND tenant_id = $3 AND status = $4
	`, store.PostStatusCancelled, id, tenantID, store.PostStatusScheduled)
	if err != nil {
		return err
	}
	return oneRowOr(result, store.ErrIllegalTransition)
}

// ReschedulePost is the manual override of the retry scheduler: it
// moves a scheduled or failed post (retry-exhausted included) back to
// scheduled at newTime and resets the retry bookkeeping.
func (s *Store) ReschedulePost(ctx context.Context, tenantID, id uuid.UUID, newTime time.Time) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE scheduled_posts
		SET status = $1, scheduled_at = $2, retry_count = 0, next_retry_at = NULL, updated_at = NOW()
		WHERE id = $3 AND tenant_id = $4 AND status IN ($5, $6)
	`, store.PostStatusScheduled, newTime, id, tenantID, store.PostStatusScheduled, store.PostStatusFailed)
	if err != nil {
		return err
	}
	return oneRowOr(result, store.ErrIllegalTransition)
}

// ForceRetryNow clears a pending retry timer so the post becomes due
// on the next tick. Rejected once retries are exhausted; the operator
// must reschedule instead.
func (s *Store) ForceRetryNow(ctx context.Context, tenantID, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE scheduled_posts
		SET next_retry_at = NULL, updated_at = NOW()
		WHERE id = $1 AND tenant_id = $2
		  AND status IN ($3, $4) AND retry_count < $5
	`, id, tenantID, store.PostStatusScheduled, store.PostStatusFailed, store.MaxRetries)
	if err != nil {
		return err
	}
	return oneRowOr(result, store.ErrRetryExhausted)
}

func oneRowOr(result sql.Result, sentinel error) error {
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sentinel
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPost(row rowScanner) (*store.ScheduledPost, error) {
	var (
		p       store.ScheduledPost
		configs []byte
		results []byte
		preview []byte
		pattern sql.NullString
	)

	err := row.Scan(
		&p.ID, &p.TenantID, &p.ContentID, &p.CreatedBy,
		pq.Array(&p.Platforms), &configs,
		&p.ScheduledAt, &p.Recurring, &pattern, &p.RecurrenceEndDate, &p.ParentID,
		&p.Status, &p.RetryCount, &p.NextRetryAt, &results, &p.ErrorMessage, &p.PublishedAt,
		&p.PreviewApproved, &p.ApprovedBy, &p.ApprovedAt, &p.ApprovalNotes, &preview,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if pattern.Valid {
		rp := store.RecurrencePattern(pattern.String)
		p.RecurrencePattern = &rp
	}
	if len(configs) > 0 {
		if err := json.Unmarshal(configs, &p.PlatformConfigs); err != nil {
			return nil, fmt.Errorf("failed to decode platform configs: %w", err)
		}
	}
	if len(results) > 0 {
		if err := json.Unmarshal(results, &p.Results); err != nil {
			return nil, fmt.Errorf("failed to decode results: %w", err)
		}
	}
	if len(preview) > 0 {
		if err := json.Unmarshal(preview, &p.PreviewData); err != nil {
			return nil, fmt.Errorf("failed to decode preview data: %w", err)
		}
	}
	return &p, nil
}
