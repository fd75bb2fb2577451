package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"postflow/internal/store"
	"postflow/pkg/api"
)

func TestCreateContent_Success(t *testing.T) {
	tenant := testTenant()
	mock := &mockStore{}
	h := New(mock)

	req := authedRequest(t, http.MethodPost, "/contents", api.CreateContentRequest{
		Body:     "big launch tomorrow",
		Hashtags: []string{"launch"},
	}, tenant)
	rr := httptest.NewRecorder()

	h.CreateContent(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("got status %d, want 201: %s", rr.Code, rr.Body.String())
	}

	var resp api.CreateContentResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.ContentID == "" {
		t.Error("content_id missing")
	}
}

func TestCreateContent_EmptyBody(t *testing.T) {
	tenant := testTenant()
	h := New(&mockStore{})

	req := authedRequest(t, http.MethodPost, "/contents", api.CreateContentRequest{}, tenant)
	rr := httptest.NewRecorder()

	h.CreateContent(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("got status %d, want 400", rr.Code)
	}
}

func TestCreateContent_InvalidJSON(t *testing.T) {
	tenant := testTenant()
	h := New(&mockStore{})

	req := httptest.NewRequest(http.MethodPost, "/contents", strings.NewReader(`{broken`))
	req = req.WithContext(authedRequest(t, http.MethodPost, "/contents", nil, tenant).Context())
	rr := httptest.NewRecorder()

	h.CreateContent(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("got status %d, want 400", rr.Code)
	}
}

func TestGetContent(t *testing.T) {
	tenant := testTenant()
	content := &store.Content{
		ID:       uuid.New(),
		TenantID: tenant.ID,
		Body:     "hello",
	}
	mock := &mockStore{getContentResp: content}
	h := New(mock)

	req := authedRequest(t, http.MethodGet, "/contents/"+content.ID.String(), nil, tenant)
	req.SetPathValue("id", content.ID.String())
	rr := httptest.NewRecorder()

	h.GetContent(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "hello") {
		t.Errorf("body missing content: %s", rr.Body.String())
	}
}

func TestGetContent_NotFound(t *testing.T) {
	tenant := testTenant()
	h := New(&mockStore{getContentErr: store.ErrNotFound})

	id := uuid.New().String()
	req := authedRequest(t, http.MethodGet, "/contents/"+id, nil, tenant)
	req.SetPathValue("id", id)
	rr := httptest.NewRecorder()

	h.GetContent(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Errorf("got status %d, want 404", rr.Code)
	}
}
