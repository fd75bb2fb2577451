package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"postflow/internal/publish"
	"postflow/internal/recurrence"
	"postflow/internal/server/middleware"
	"postflow/internal/store"
	"postflow/pkg/api"
)

// CreatePost handles POST /posts.
// It validates the schedule request, creates the post and, for recurring
// posts, materializes every occurrence in the same transaction so a
// client never observes a recurring post with a partial occurrence set.
func (h *Handlers) CreatePost(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.CreatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.httpError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := req.Validate(); err != nil {
		h.httpError(w, err.Error(), http.StatusBadRequest)
		return
	}

	tenant, ok := middleware.TenantFromContext(ctx)
	if !ok {
		h.httpError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	contentID, err := uuid.Parse(req.ContentID)
	if err != nil {
		h.httpError(w, "Invalid content id", http.StatusBadRequest)
		return
	}

	now := time.Now().UTC()
	if !req.ScheduledAt.After(now) {
		h.httpError(w, "scheduled_at must be in the future", http.StatusBadRequest)
		return
	}

	// The content must exist before anything is scheduled against it.
	if _, err := h.store.GetContentByID(ctx, tenant.ID, contentID); err != nil {
		if err == store.ErrNotFound {
			h.httpError(w, "Content not found", http.StatusNotFound)
			return
		}
		h.httpError(w, "Internal database error", http.StatusInternalServerError)
		return
	}

	post := &store.ScheduledPost{
		ID:              uuid.New(),
		TenantID:        tenant.ID,
		ContentID:       contentID,
		CreatedBy:       req.CreatedBy,
		Platforms:       req.Platforms,
		PlatformConfigs: req.PlatformConfigs,
		ScheduledAt:     req.ScheduledAt.UTC(),
		Status:          store.PostStatusScheduled,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if req.Recurrence != nil {
		pattern := store.RecurrencePattern(req.Recurrence.Pattern)
		endDate := req.Recurrence.EndDate.UTC()
		post.Recurring = true
		post.RecurrencePattern = &pattern
		post.RecurrenceEndDate = &endDate
	}

	siblings, err := recurrence.Expand(post, now)
	if err != nil {
		h.httpError(w, err.Error(), http.StatusBadRequest)
		return
	}

	tx, err := h.store.BeginTx(ctx)
	if err != nil {
		h.httpError(w, "Internal database error", http.StatusInternalServerError)
		return
	}
	defer tx.Rollback()

	if err := h.store.CreateScheduledPost(ctx, tx, post); err != nil {
		h.httpError(w, "Failed to create post", http.StatusInternalServerError)
		return
	}
	occurrenceIDs := make([]string, 0, len(siblings))
	for _, sibling := range siblings {
		if err := h.store.CreateScheduledPost(ctx, tx, sibling); err != nil {
			h.httpError(w, "Failed to create occurrence", http.StatusInternalServerError)
			return
		}
		occurrenceIDs = append(occurrenceIDs, sibling.ID.String())
	}

	if err := tx.Commit(); err != nil {
		h.httpError(w, "Failed to commit transaction", http.StatusInternalServerError)
		return
	}

	h.respondJson(w, http.StatusCreated, api.CreatePostResponse{
		PostID:        post.ID.String(),
		OccurrenceIDs: occurrenceIDs,
	})
}

// GetPost handles GET /posts/{id}.
func (h *Handlers) GetPost(w http.ResponseWriter, r *http.Request) {
	tenant, id, ok := h.tenantAndID(w, r)
	if !ok {
		return
	}

	post, err := h.store.GetScheduledPost(r.Context(), tenant.ID, id)
	if err != nil {
		h.storeError(w, err)
		return
	}

	h.respondJson(w, http.StatusOK, toPostResponse(post))
}

// ListPosts handles GET /posts with optional status, platform, created_by
// and time-range filters.
func (h *Handlers) ListPosts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	tenant, ok := middleware.TenantFromContext(ctx)
	if !ok {
		h.httpError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	filter, err := listFilterFromQuery(r)
	if err != nil {
		h.httpError(w, err.Error(), http.StatusBadRequest)
		return
	}

	posts, err := h.store.ListScheduledPosts(ctx, tenant.ID, filter)
	if err != nil {
		h.httpError(w, "Internal database error", http.StatusInternalServerError)
		return
	}

	resp := api.ListPostsResponse{Posts: make([]api.PostResponse, 0, len(posts))}
	for _, p := range posts {
		resp.Posts = append(resp.Posts, toPostResponse(p))
	}
	h.respondJson(w, http.StatusOK, resp)
}

// CancelPost handles POST /posts/{id}/cancel.
// Cancellation is legal only while the post is still scheduled.
func (h *Handlers) CancelPost(w http.ResponseWriter, r *http.Request) {
	tenant, id, ok := h.tenantAndID(w, r)
	if !ok {
		return
	}

	if err := h.store.CancelScheduledPost(r.Context(), tenant.ID, id); err != nil {
		h.storeError(w, err)
		return
	}
	h.respondJson(w, http.StatusOK, map[string]string{"status": string(store.PostStatusCancelled)})
}

// ReschedulePost handles POST /posts/{id}/reschedule.
// A failed post, including one with exhausted retries, can re-enter the
// schedule at a new time with its retry bookkeeping reset.
func (h *Handlers) ReschedulePost(w http.ResponseWriter, r *http.Request) {
	tenant, id, ok := h.tenantAndID(w, r)
	if !ok {
		return
	}

	var req api.RescheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.httpError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if !req.ScheduledAt.After(time.Now().UTC()) {
		h.httpError(w, "scheduled_at must be in the future", http.StatusBadRequest)
		return
	}

	if err := h.store.ReschedulePost(r.Context(), tenant.ID, id, req.ScheduledAt.UTC()); err != nil {
		h.storeError(w, err)
		return
	}
	h.respondJson(w, http.StatusOK, map[string]string{"status": string(store.PostStatusScheduled)})
}

// ApprovePost handles POST /posts/{id}/approve.
func (h *Handlers) ApprovePost(w http.ResponseWriter, r *http.Request) {
	tenant, id, ok := h.tenantAndID(w, r)
	if !ok {
		return
	}

	var req api.ApproveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.httpError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.ApprovedBy == "" {
		h.httpError(w, "approved_by is required", http.StatusBadRequest)
		return
	}

	if err := h.store.ApprovePreview(r.Context(), tenant.ID, id, req.ApprovedBy, req.Notes); err != nil {
		h.storeError(w, err)
		return
	}
	h.respondJson(w, http.StatusOK, map[string]string{"status": "approved"})
}

// PreviewPost handles POST /posts/{id}/preview.
// It renders the per-platform preview from the current content and
// caches it on the post. The preview is advisory only.
func (h *Handlers) PreviewPost(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tenant, id, ok := h.tenantAndID(w, r)
	if !ok {
		return
	}

	post, err := h.store.GetScheduledPost(ctx, tenant.ID, id)
	if err != nil {
		h.storeError(w, err)
		return
	}

	content, err := h.store.GetContentByID(ctx, tenant.ID, post.ContentID)
	if err != nil {
		h.storeError(w, err)
		return
	}

	preview := publish.GeneratePreview(post, content)
	if err := h.store.SavePreview(ctx, tenant.ID, id, preview); err != nil {
		h.storeError(w, err)
		return
	}

	h.respondJson(w, http.StatusOK, api.PreviewResponse{Preview: toAPIPreview(preview)})
}

// RetryPost handles POST /posts/{id}/retry.
// It clears the pending retry timer so the post becomes due on the next
// orchestrator tick.
func (h *Handlers) RetryPost(w http.ResponseWriter, r *http.Request) {
	tenant, id, ok := h.tenantAndID(w, r)
	if !ok {
		return
	}

	if err := h.store.ForceRetryNow(r.Context(), tenant.ID, id); err != nil {
		h.storeError(w, err)
		return
	}
	h.respondJson(w, http.StatusOK, map[string]string{"status": "retry scheduled"})
}

// tenantAndID pulls the authenticated tenant and the {id} path value.
func (h *Handlers) tenantAndID(w http.ResponseWriter, r *http.Request) (*store.Tenant, uuid.UUID, bool) {
	tenant, ok := middleware.TenantFromContext(r.Context())
	if !ok {
		h.httpError(w, "Unauthorized", http.StatusUnauthorized)
		return nil, uuid.Nil, false
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		h.httpError(w, "Invalid post id", http.StatusBadRequest)
		return nil, uuid.Nil, false
	}
	return tenant, id, true
}

func listFilterFromQuery(r *http.Request) (store.ListFilter, error) {
	q := r.URL.Query()
	filter := store.ListFilter{
		Status:    store.PostStatus(q.Get("status")),
		Platform:  q.Get("platform"),
		CreatedBy: q.Get("created_by"),
	}

	if v := q.Get("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return filter, err
		}
		filter.From = &t
	}
	if v := q.Get("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return filter, err
		}
		filter.To = &t
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return filter, err
		}
		filter.Limit = n
	}
	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return filter, err
		}
		filter.Offset = n
	}
	return filter, nil
}
