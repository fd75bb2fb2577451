// Package handlers contains HTTP handlers for the API server.
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"postflow/internal/store"
	"postflow/pkg/api"
)

// StoreFactory combines the interfaces needed for the API server to function.
type StoreFactory interface {
	BeginTx(ctx context.Context) (store.Tx, error)
	Ping(ctx context.Context) error
	store.TenantStore
	store.ContentStore
	store.PostStore
}

// Handlers holds all HTTP handlers and their dependencies.
type Handlers struct {
	store StoreFactory
}

// New creates a new Handlers instance with the given store dependency.
func New(s StoreFactory) *Handlers {
	return &Handlers{store: s}
}

// A helper function to write standard JSON responses.
func (h *Handlers) respondJson(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		json.NewEncoder(w).Encode(payload)
	}
}

// A helper function to return consistent error messages.
func (h *Handlers) httpError(w http.ResponseWriter, message string, code int) {
	h.respondJson(w, code, api.ErrorResponse{
		Error: message,
		Code:  strconv.Itoa(code),
	})
}

// storeError maps store sentinel errors onto HTTP statuses.
func (h *Handlers) storeError(w http.ResponseWriter, err error) {
	switch err {
	case store.ErrNotFound:
		h.httpError(w, "Post not found", http.StatusNotFound)
	case store.ErrIllegalTransition:
		h.httpError(w, "Operation not allowed in the post's current state", http.StatusConflict)
	case store.ErrRetryExhausted:
		h.httpError(w, "Retries exhausted, manual action required", http.StatusConflict)
	default:
		h.httpError(w, "Internal database error", http.StatusInternalServerError)
	}
}

func toPostResponse(p *store.ScheduledPost) api.PostResponse {
	resp := api.PostResponse{
		ID:              p.ID.String(),
		ContentID:       p.ContentID.String(),
		CreatedBy:       p.CreatedBy,
		Platforms:       p.Platforms,
		ScheduledAt:     p.ScheduledAt,
		Recurring:       p.Recurring,
		Status:          string(p.Status),
		RetryCount:      p.RetryCount,
		NextRetryAt:     p.NextRetryAt,
		PublishedAt:     p.PublishedAt,
		PreviewApproved: p.PreviewApproved,
	}
	if p.ParentID != nil {
		resp.ParentID = p.ParentID.String()
	}
	if p.ErrorMessage != nil {
		resp.ErrorMessage = *p.ErrorMessage
	}
	if p.ApprovedBy != nil {
		resp.ApprovedBy = *p.ApprovedBy
	}
	if len(p.Results) > 0 {
		resp.Results = make(map[string]api.PlatformResult, len(p.Results))
		for platform, r := range p.Results {
			ts := r.Timestamp
			resp.Results[platform] = api.PlatformResult{
				Success:        r.Success,
				PlatformPostID: r.PlatformPostID,
				Error:          r.Error,
				Timestamp:      &ts,
			}
		}
	}
	if len(p.PreviewData) > 0 {
		resp.Preview = toAPIPreview(p.PreviewData)
	}
	resp.RetryState = retryState(p)
	return resp
}

// retryState is the operator-facing signal for failed posts.
func retryState(p *store.ScheduledPost) string {
	if p.Status == store.PostStatusFailed && p.RetryCount >= store.MaxRetries {
		return "retries exhausted, manual action required"
	}
	if p.NextRetryAt != nil {
		return "will retry at " + p.NextRetryAt.UTC().Format(time.RFC3339)
	}
	return ""
}

func toAPIPreview(preview map[string]store.PlatformPreview) map[string]api.PlatformPreview {
	out := make(map[string]api.PlatformPreview, len(preview))
	for platform, p := range preview {
		out[platform] = api.PlatformPreview{
			Content:        p.Content,
			CharCount:      p.CharCount,
			CharLimit:      p.CharLimit,
			WithinLimit:    p.WithinLimit,
			EstimatedReach: p.EstimatedReach,
			Hashtags:       p.Hashtags,
			Mentions:       p.Mentions,
		}
	}
	return out
}
