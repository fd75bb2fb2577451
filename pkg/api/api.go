// Package api contains shared JSON request/response structs.
// This package is shared between the CLI and the server.
package api

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// SupportedPlatforms are the platform ids the engine ships adapters for.
var SupportedPlatforms = []string{"facebook", "instagram", "twitter", "linkedin", "tiktok", "youtube"}

// CreateTenantRequest is the request body for creating a new tenant.
type CreateTenantRequest struct {
	Name string `json:"name"`
}

// CreateTenantResponse is the response body after creating a tenant.
type CreateTenantResponse struct {
	ID     string `json:"tenant_id"`
	Name   string `json:"name"`
	ApiKey string `json:"api_key"`
}

// CreateContentRequest is the request body for registering a content record.
type CreateContentRequest struct {
	Body      string            `json:"body"`
	MediaURLs []string          `json:"media_urls,omitempty"`
	Overrides map[string]string `json:"overrides,omitempty"`
	Hashtags  []string          `json:"hashtags,omitempty"`
	Mentions  []string          `json:"mentions,omitempty"`
	CreatedBy string            `json:"created_by,omitempty"`
}

// Validate checks the content request.
func (r CreateContentRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Body, validation.Required, validation.Length(1, 10000)),
	)
}

// CreateContentResponse is the response body after registering content.
type CreateContentResponse struct {
	ContentID string `json:"content_id"`
}

// Recurrence describes an optional repeat rule on creation.
type Recurrence struct {
	Pattern string    `json:"pattern"`
	EndDate time.Time `json:"end_date"`
}

// CreatePostRequest is the request body for scheduling a post.
type CreatePostRequest struct {
	ContentID       string                       `json:"content_id"`
	Platforms       []string                     `json:"platforms"`
	PlatformConfigs map[string]map[string]string `json:"platform_configs,omitempty"`
	ScheduledAt     time.Time                    `json:"scheduled_at"`
	Recurrence      *Recurrence                  `json:"recurrence,omitempty"`
	CreatedBy       string                       `json:"created_by,omitempty"`
}

// Validate rejects malformed schedule requests synchronously so they
// never enter the schedule: platforms must be non-empty and known, and
// a recurrence requires a pattern from the fixed set plus an explicit
// end date.
func (r CreatePostRequest) Validate() error {
	err := validation.ValidateStruct(&r,
		validation.Field(&r.ContentID, validation.Required, validation.Length(36, 36)),
		validation.Field(&r.Platforms,
			validation.Required,
			validation.Each(validation.In(toInterfaces(SupportedPlatforms)...))),
		validation.Field(&r.ScheduledAt, validation.Required),
	)
	if err != nil {
		return err
	}

	if r.Recurrence != nil {
		return validation.ValidateStruct(r.Recurrence,
			validation.Field(&r.Recurrence.Pattern,
				validation.Required, validation.In("daily", "weekly", "monthly")),
			validation.Field(&r.Recurrence.EndDate, validation.Required),
		)
	}
	return nil
}

func toInterfaces(ss []string) []interface{} {
	out := make([]interface{}, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

// CreatePostResponse is the response after scheduling. OccurrenceIDs
// lists the materialized recurrence siblings, if any.
type CreatePostResponse struct {
	PostID        string   `json:"post_id"`
	OccurrenceIDs []string `json:"occurrence_ids,omitempty"`
}

// PlatformResult mirrors one per-platform publish outcome.
type PlatformResult struct {
	Success        bool       `json:"success"`
	PlatformPostID string     `json:"platform_post_id,omitempty"`
	Error          string     `json:"error,omitempty"`
	Timestamp      *time.Time `json:"timestamp,omitempty"`
}

// PlatformPreview mirrors one per-platform preview rendering.
type PlatformPreview struct {
	Content        string   `json:"content"`
	CharCount      int      `json:"char_count"`
	CharLimit      int      `json:"char_limit"`
	WithinLimit    bool     `json:"within_limit"`
	EstimatedReach int      `json:"estimated_reach"`
	Hashtags       []string `json:"hashtags,omitempty"`
	Mentions       []string `json:"mentions,omitempty"`
}

// PostResponse represents a scheduled post in API responses.
type PostResponse struct {
	ID              string                     `json:"id"`
	ContentID       string                     `json:"content_id"`
	CreatedBy       string                     `json:"created_by,omitempty"`
	Platforms       []string                   `json:"platforms"`
	ScheduledAt     time.Time                  `json:"scheduled_at"`
	Recurring       bool                       `json:"recurring"`
	ParentID        string                     `json:"parent_id,omitempty"`
	Status          string                     `json:"status"`
	RetryCount      int                        `json:"retry_count"`
	NextRetryAt     *time.Time                 `json:"next_retry_at,omitempty"`
	Results         map[string]PlatformResult  `json:"results,omitempty"`
	ErrorMessage    string                     `json:"error_message,omitempty"`
	PublishedAt     *time.Time                 `json:"published_at,omitempty"`
	PreviewApproved bool                       `json:"preview_approved"`
	ApprovedBy      string                     `json:"approved_by,omitempty"`
	Preview         map[string]PlatformPreview `json:"preview,omitempty"`
	// RetryState is the operator-facing signal: "will retry at T",
	// "retries exhausted, manual action required", or empty.
	RetryState string `json:"retry_state,omitempty"`
}

// ListPostsResponse is the response body for post listings.
type ListPostsResponse struct {
	Posts []PostResponse `json:"posts"`
}

// RescheduleRequest moves a post to a new time.
type RescheduleRequest struct {
	ScheduledAt time.Time `json:"scheduled_at"`
}

// ApproveRequest records the preview approval.
type ApproveRequest struct {
	ApprovedBy string `json:"approved_by"`
	Notes      string `json:"notes,omitempty"`
}

// PreviewResponse is the response body for preview generation.
type PreviewResponse struct {
	Preview map[string]PlatformPreview `json:"preview"`
}

// ErrorResponse is the standard error response format.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}
