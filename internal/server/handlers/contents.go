package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"postflow/internal/server/middleware"
	"postflow/internal/store"
	"postflow/pkg/api"
)

// CreateContent handles POST /contents.
// It registers the source content a scheduled post publishes from.
func (h *Handlers) CreateContent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.CreateContentRequest
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

	content := &store.Content{
		ID:        uuid.New(),
		TenantID:  tenant.ID,
		Body:      req.Body,
		MediaURLs: req.MediaURLs,
		Overrides: req.Overrides,
		Hashtags:  req.Hashtags,
		Mentions:  req.Mentions,
		CreatedBy: req.CreatedBy,
		CreatedAt: time.Now().UTC(),
	}

	if err := h.store.CreateContent(ctx, nil, content); err != nil {
		h.httpError(w, "Failed to create content", http.StatusInternalServerError)
		return
	}

	h.respondJson(w, http.StatusCreated, api.CreateContentResponse{ContentID: content.ID.String()})
}

// GetContent handles GET /contents/{id}.
func (h *Handlers) GetContent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		h.httpError(w, "Invalid content id", http.StatusBadRequest)
		return
	}

	tenant, ok := middleware.TenantFromContext(ctx)
	if !ok {
		h.httpError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	content, err := h.store.GetContentByID(ctx, tenant.ID, id)
	if err != nil {
		if err == store.ErrNotFound {
			h.httpError(w, "Content not found", http.StatusNotFound)
			return
		}
		h.httpError(w, "Internal database error", http.StatusInternalServerError)
		return
	}

	h.respondJson(w, http.StatusOK, map[string]interface{}{
		"id":         content.ID.String(),
		"body":       content.Body,
		"media_urls": content.MediaURLs,
		"overrides":  content.Overrides,
		"hashtags":   content.Hashtags,
		"mentions":   content.Mentions,
		"created_by": content.CreatedBy,
		"created_at": content.CreatedAt,
	})
}
