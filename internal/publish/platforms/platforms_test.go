package platforms

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"postflow/internal/store"
)

func TestFacebookPublish(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/page42/feed" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var body map[string]interface{}
		json.NewDecoder(r.Body).Decode(&body)
		if body["access_token"] != "tok" {
			t.Errorf("access_token = %v", body["access_token"])
		}
		json.NewEncoder(w).Encode(map[string]string{"id": "page42_777"})
	}))
	defer server.Close()

	fb := NewFacebook("tok")
	fb.BaseURL = server.URL

	id, err := fb.Publish(context.Background(), &store.Content{Body: "hi"}, map[string]string{"page_id": "page42"})
	if err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
	if id != "page42_777" {
		t.Errorf("got id %q, want page42_777", id)
	}
}

func TestFacebookMissingPageID(t *testing.T) {
	fb := NewFacebook("tok")
	_, err := fb.Publish(context.Background(), &store.Content{}, nil)

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("got %v, want *APIError", err)
	}
	if apiErr.Platform != "facebook" {
		t.Errorf("platform = %q", apiErr.Platform)
	}
}

func TestTwitterPublishSendsBearer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tw-token" {
			t.Errorf("Authorization = %q", got)
		}
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]interface{}{"data": map[string]string{"id": "1789"}})
	}))
	defer server.Close()

	tw := NewTwitter("tw-token")
	tw.BaseURL = server.URL

	id, err := tw.Publish(context.Background(), &store.Content{Body: "hello"}, nil)
	if err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
	if id != "1789" {
		t.Errorf("got id %q, want 1789", id)
	}
}

func TestPlatformErrorSurfacesReason(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error": map[string]string{"message": "content rejected by moderation"},
		})
	}))
	defer server.Close()

	tw := NewTwitter("tok")
	tw.BaseURL = server.URL

	_, err := tw.Publish(context.Background(), &store.Content{Body: "spam"}, nil)
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("got %v, want *APIError", err)
	}
	if apiErr.Reason != "content rejected by moderation" {
		t.Errorf("reason = %q", apiErr.Reason)
	}
	if apiErr.StatusCode != http.StatusForbidden {
		t.Errorf("status = %d", apiErr.StatusCode)
	}
}

func TestInstagramRequiresMedia(t *testing.T) {
	ig := NewInstagram("tok")
	_, err := ig.Publish(context.Background(), &store.Content{Body: "text only"}, map[string]string{"account_id": "9"})

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("got %v, want *APIError", err)
	}
}

func TestInstagramContainerFlow(t *testing.T) {
	var calls []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, r.URL.Path)
		switch r.URL.Path {
		case "/acct/media":
			json.NewEncoder(w).Encode(map[string]string{"id": "container-1"})
		case "/acct/media_publish":
			var body map[string]interface{}
			json.NewDecoder(r.Body).Decode(&body)
			if body["creation_id"] != "container-1" {
				t.Errorf("creation_id = %v", body["creation_id"])
			}
			json.NewEncoder(w).Encode(map[string]string{"id": "ig-55"})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer server.Close()

	ig := NewInstagram("tok")
	ig.BaseURL = server.URL

	id, err := ig.Publish(context.Background(),
		&store.Content{Body: "pic", MediaURLs: []string{"https://cdn/img.png"}},
		map[string]string{"account_id": "acct"})
	if err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
	if id != "ig-55" {
		t.Errorf("got id %q, want ig-55", id)
	}
	if len(calls) != 2 {
		t.Errorf("expected container + publish calls, got %v", calls)
	}
}

func TestRenderBodyUsesOverride(t *testing.T) {
	content := &store.Content{
		Body:      "generic",
		Overrides: map[string]string{"facebook": "fb variant"},
		Hashtags:  []string{"go"},
	}
	if got := renderBody(content, "facebook"); got != "fb variant #go" {
		t.Errorf("renderBody = %q", got)
	}
	if got := renderBody(content, "twitter"); got != "generic #go" {
		t.Errorf("renderBody fallback = %q", got)
	}
}
