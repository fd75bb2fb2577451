// Package store contains the database layer for postflow.
package store

import (
	"time"

	"github.com/google/uuid"
)

// Tenant represents a tenant in the multi-tenant system.
// All operations must be scoped by TenantID.
type Tenant struct {
	ID             uuid.UUID
	Name           string
	RateLimit      int
	RateLimitBurst int
	CreatedAt      time.Time
}

// Content is the source content record a scheduled post publishes.
// It is read-only from the engine's perspective; authoring happens upstream.
type Content struct {
	ID        uuid.UUID
	TenantID  uuid.UUID
	Body      string
	MediaURLs []string
	// Overrides maps platform id -> platform-specific content variant.
	Overrides map[string]string
	Hashtags  []string
	Mentions  []string
	CreatedBy string
	CreatedAt time.Time
}

// PostStatus represents the lifecycle state of a scheduled post.
type PostStatus string

const (
	PostStatusScheduled  PostStatus = "scheduled"
	PostStatusPublishing PostStatus = "publishing"
	PostStatusPublished  PostStatus = "published"
	PostStatusFailed     PostStatus = "failed"
	PostStatusCancelled  PostStatus = "cancelled"
)

// MaxRetries is the retry ceiling. After the third failed attempt the
// post is permanently failed and requires manual intervention.
const MaxRetries = 3

// PlatformResult is the outcome of one per-platform publish attempt.
type PlatformResult struct {
	Success        bool      `json:"success"`
	PlatformPostID string    `json:"platform_post_id,omitempty"`
	Error          string    `json:"error,omitempty"`
	Timestamp      time.Time `json:"timestamp"`
}

// PlatformPreview is the advisory per-platform rendering shown in the
// approval workflow. It has no bearing on dispatch correctness.
type PlatformPreview struct {
	Content        string   `json:"content"`
	CharCount      int      `json:"char_count"`
	CharLimit      int      `json:"char_limit"`
	WithinLimit    bool     `json:"within_limit"`
	EstimatedReach int      `json:"estimated_reach"`
	Hashtags       []string `json:"hashtags,omitempty"`
	Mentions       []string `json:"mentions,omitempty"`
}

// RecurrencePattern is the repeat unit of a recurring post.
type RecurrencePattern string

const (
	RecurrenceDaily   RecurrencePattern = "daily"
	RecurrenceWeekly  RecurrencePattern = "weekly"
	RecurrenceMonthly RecurrencePattern = "monthly"
)

// ScheduledPost is the unit of scheduled, multi-platform publish work.
type ScheduledPost struct {
	ID        uuid.UUID
	TenantID  uuid.UUID
	ContentID uuid.UUID
	CreatedBy string

	// Platforms is the ordered, non-empty set of target platform ids.
	Platforms []string
	// PlatformConfigs maps platform id -> opaque config consumed only by adapters.
	PlatformConfigs map[string]map[string]string

	ScheduledAt       time.Time
	Recurring         bool
	RecurrencePattern *RecurrencePattern
	RecurrenceEndDate *time.Time
	// ParentID back-references the anchor when this instance was
	// materialized from a recurrence rule.
	ParentID *uuid.UUID

	Status       PostStatus
	RetryCount   int
	NextRetryAt  *time.Time
	Results      map[string]PlatformResult
	ErrorMessage *string
	PublishedAt  *time.Time

	PreviewApproved bool
	ApprovedBy      *string
	ApprovedAt      *time.Time
	ApprovalNotes   *string
	PreviewData     map[string]PlatformPreview

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Terminal reports whether no further automatic transition can occur.
func (p *ScheduledPost) Terminal() bool {
	switch p.Status {
	case PostStatusPublished, PostStatusCancelled:
		return true
	case PostStatusFailed:
		return p.RetryCount >= MaxRetries
	}
	return false
}

// ListFilter narrows ListScheduledPosts. Zero values mean "no filter".
type ListFilter struct {
	Status    PostStatus
	Platform  string
	CreatedBy string
	From      *time.Time
	To        *time.Time
	Limit     int
	Offset    int
}

// DueItem identifies one actionable post in the dispatch queue.
type DueItem struct {
	PostID   uuid.UUID
	TenantID uuid.UUID
}
