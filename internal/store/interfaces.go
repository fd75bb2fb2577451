package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// DBTransaction defines the methods shared by *sql.DB and *sql.Tx
// This allows us to pass either a connection pool or an active transaction to the repository methods.
type DBTransaction interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

type Tx interface {
	DBTransaction
	Commit() error
	Rollback() error
}

// TenantStore handles tenant records for authentication and scoping.
type TenantStore interface {
	// CreateTenant inserts a new tenant to the database
	CreateTenant(ctx context.Context, tenant *Tenant, hashedKey string) error

	// GetTenantByID returns a tenant by its ID.
	GetTenantByID(ctx context.Context, id uuid.UUID) (*Tenant, error)

	// GetTenantByAPIKeyHash returns a tenant by its API key hash.
	GetTenantByAPIKeyHash(ctx context.Context, hash string) (*Tenant, error)
}

// ContentStore handles the source content records posts publish from.
type ContentStore interface {
	// CreateContent inserts a new content record.
	CreateContent(ctx context.Context, tx DBTransaction, content *Content) error

	// GetContentByID returns a content record scoped by tenant.
	GetContentByID(ctx context.Context, tenantID, id uuid.UUID) (*Content, error)
}

// PostStore handles the persistence of scheduled posts and their
// state transitions.
type PostStore interface {
	// CreateScheduledPost inserts one post. Recurrence siblings are
	// inserted in the same transaction by the caller so a client never
	// observes a recurring post with a partial occurrence set.
	CreateScheduledPost(ctx context.Context, tx DBTransaction, post *ScheduledPost) error

	// GetScheduledPost returns a post by id scoped by tenant.
	GetScheduledPost(ctx context.Context, tenantID, id uuid.UUID) (*ScheduledPost, error)

	// ListScheduledPosts returns posts for a tenant matching the filter,
	// newest scheduled first.
	ListScheduledPosts(ctx context.Context, tenantID uuid.UUID, filter ListFilter) ([]*ScheduledPost, error)

	// SavePreview caches the generated preview on the post.
	SavePreview(ctx context.Context, tenantID, id uuid.UUID, preview map[string]PlatformPreview) error

	// ApprovePreview records the approval gate fields.
	ApprovePreview(ctx context.Context, tenantID, id uuid.UUID, approvedBy, notes string) error

	// CancelScheduledPost cancels a post; legal only while scheduled.
	CancelScheduledPost(ctx context.Context, tenantID, id uuid.UUID) error

	// ReschedulePost moves a non-terminal (or retry-exhausted failed)
	// post back to scheduled at newTime and resets retry bookkeeping.
	ReschedulePost(ctx context.Context, tenantID, id uuid.UUID, newTime time.Time) error

	// ForceRetryNow clears a pending retry timer so the post becomes
	// due on the next tick. Rejected once retries are exhausted.
	ForceRetryNow(ctx context.Context, tenantID, id uuid.UUID) error
}

// ScheduleQueue is the orchestrator-facing surface: due-work selection,
// the atomic claim, and the dispatch-outcome transitions.
// The claim is the sole concurrency-control point; implementations must
// make it a single atomic conditional update so two orchestrator
// workers never both dispatch the same post.
type ScheduleQueue interface {
	// DueBatch returns up to limit actionable posts, oldest due first:
	// newly due (scheduled, scheduled_at elapsed, no pending retry
	// timer) merged with retry-due (failed, retries remaining, timer
	// elapsed). An empty tenantIDs slice means all tenants.
	DueBatch(ctx context.Context, tenantIDs []uuid.UUID, limit int) ([]DueItem, error)

	// ClaimDue atomically transitions one due post to publishing and
	// returns the claimed row. ok=false means another worker won the
	// claim (or the post is no longer due); that is a normal skip.
	ClaimDue(ctx context.Context, id uuid.UUID) (post *ScheduledPost, ok bool, err error)

	// MarkPublished stores the aggregate results on an all-success
	// outcome. Legal only from publishing.
	MarkPublished(ctx context.Context, id uuid.UUID, results map[string]PlatformResult) error

	// MarkFailed stores partial results and the aggregate failure
	// message. Legal only from publishing.
	MarkFailed(ctx context.Context, id uuid.UUID, results map[string]PlatformResult, message string) error

	// ScheduleRetry increments retry_count, sets next_retry_at and
	// re-enters the schedule. Returns ErrRetryExhausted when no retries
	// remain; the post then stays terminally failed.
	ScheduleRetry(ctx context.Context, id uuid.UUID, nextRetryAt time.Time) error

	// CountDue reports the current due-queue depth (metrics).
	CountDue(ctx context.Context) (int64, error)

	// PruneTerminal deletes terminal posts older than the retention
	// window and returns the number removed.
	PruneTerminal(ctx context.Context, olderThan time.Time) (int64, error)
}
