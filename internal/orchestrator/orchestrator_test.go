package orchestrator

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"postflow/internal/publish"
	"postflow/internal/store"
)

// memStore is an in-memory ScheduleQueue + ContentStore with the same
// claim semantics as the postgres layer: a compare-and-swap on status.
type memStore struct {
	mu       sync.Mutex
	posts    map[uuid.UUID]*store.ScheduledPost
	contents map[uuid.UUID]*store.Content
}

func newMemStore() *memStore {
	return &memStore{
		posts:    make(map[uuid.UUID]*store.ScheduledPost),
		contents: make(map[uuid.UUID]*store.Content),
	}
}

func (m *memStore) due(p *store.ScheduledPost, now time.Time) bool {
	timerOK := p.NextRetryAt == nil || !p.NextRetryAt.After(now)
	switch p.Status {
	case store.PostStatusScheduled:
		return !p.ScheduledAt.After(now) && timerOK
	case store.PostStatusFailed:
		return p.RetryCount < store.MaxRetries && timerOK
	}
	return false
}

func (m *memStore) DueBatch(ctx context.Context, tenantIDs []uuid.UUID, limit int) ([]store.DueItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var items []store.DueItem
	for _, p := range m.posts {
		if m.due(p, time.Now()) && len(items) < limit {
			items = append(items, store.DueItem{PostID: p.ID, TenantID: p.TenantID})
		}
	}
	return items, nil
}

func (m *memStore) ClaimDue(ctx context.Context, id uuid.UUID) (*store.ScheduledPost, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.posts[id]
	if !ok || !m.due(p, time.Now()) {
		return nil, false, nil
	}
	p.Status = store.PostStatusPublishing
	clone := *p
	return &clone, true, nil
}

func (m *memStore) MarkPublished(ctx context.Context, id uuid.UUID, results map[string]store.PlatformResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := m.posts[id]
	if p.Status != store.PostStatusPublishing {
		return store.ErrIllegalTransition
	}
	now := time.Now()
	return p.MarkPublished(results, now)
}

func (m *memStore) MarkFailed(ctx context.Context, id uuid.UUID, results map[string]store.PlatformResult, message string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.posts[id].MarkFailed(results, message, time.Now())
}

func (m *memStore) ScheduleRetry(ctx context.Context, id uuid.UUID, nextRetryAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.posts[id].ScheduleRetry(nextRetryAt, time.Now())
}

func (m *memStore) CountDue(ctx context.Context) (int64, error) { return 0, nil }

func (m *memStore) PruneTerminal(ctx context.Context, olderThan time.Time) (int64, error) {
	return 0, nil
}

func (m *memStore) CreateContent(ctx context.Context, tx store.DBTransaction, content *store.Content) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.contents[content.ID] = content
	return nil
}

func (m *memStore) GetContentByID(ctx context.Context, tenantID, id uuid.UUID) (*store.Content, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.contents[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return c, nil
}

func (m *memStore) get(id uuid.UUID) store.ScheduledPost {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.posts[id]
}

type stubAdapter struct {
	platform string
	postID   string
	err      error
}

func (s stubAdapter) Platform() string { return s.platform }
func (s stubAdapter) Publish(ctx context.Context, content *store.Content, config map[string]string) (string, error) {
	return s.postID, s.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func seed(m *memStore, platforms ...string) *store.ScheduledPost {
	content := &store.Content{ID: uuid.New(), Body: "hello"}
	m.contents[content.ID] = content

	post := &store.ScheduledPost{
		ID:          uuid.New(),
		TenantID:    uuid.New(),
		ContentID:   content.ID,
		Platforms:   platforms,
		ScheduledAt: time.Now().Add(-time.Minute),
		Status:      store.PostStatusScheduled,
	}
	m.posts[post.ID] = post
	return post
}

func newTestOrchestrator(m *memStore, adapters ...publish.Adapter) *Orchestrator {
	reg := publish.NewRegistry(adapters...)
	d := publish.NewDispatcher(reg, time.Second, testLogger())
	return New(m, m, d, Config{ID: "test", Concurrency: 2, TickInterval: 5 * time.Millisecond}, testLogger())
}

func TestClaimAtomicity(t *testing.T) {
	m := newMemStore()
	post := seed(m, "facebook")

	const workers = 16
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, ok, err := m.ClaimDue(context.Background(), post.ID)
			if err != nil {
				t.Errorf("claim error: %v", err)
			}
			if ok {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if wins != 1 {
		t.Errorf("%d workers won the claim, want exactly 1", wins)
	}
}

func TestProcessOnePublishes(t *testing.T) {
	m := newMemStore()
	post := seed(m, "facebook", "twitter")
	o := newTestOrchestrator(m,
		stubAdapter{platform: "facebook", postID: "fb_123"},
		stubAdapter{platform: "twitter", postID: "tw_456"},
	)

	o.processOne(context.Background(), store.DueItem{PostID: post.ID, TenantID: post.TenantID})

	got := m.get(post.ID)
	if got.Status != store.PostStatusPublished {
		t.Fatalf("status = %s, want published", got.Status)
	}
	if got.PublishedAt == nil {
		t.Error("published_at not set")
	}
	if got.Results["facebook"].PlatformPostID != "fb_123" {
		t.Errorf("facebook result = %+v", got.Results["facebook"])
	}
}

func TestProcessOnePartialFailureSchedulesRetry(t *testing.T) {
	m := newMemStore()
	post := seed(m, "facebook", "twitter")
	o := newTestOrchestrator(m,
		stubAdapter{platform: "facebook", postID: "fb_123"},
		stubAdapter{platform: "twitter", err: errors.New("timeout")},
	)
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	o.now = func() time.Time { return now }

	o.processOne(context.Background(), store.DueItem{PostID: post.ID, TenantID: post.TenantID})

	got := m.get(post.ID)
	// Failure re-enters the schedule for the next tick.
	if got.Status != store.PostStatusScheduled {
		t.Fatalf("status = %s, want scheduled (retry re-entry)", got.Status)
	}
	if got.RetryCount != 1 {
		t.Errorf("retry_count = %d, want 1", got.RetryCount)
	}
	if got.NextRetryAt == nil || !got.NextRetryAt.Equal(now.Add(5*time.Minute)) {
		t.Errorf("next_retry_at = %v, want now+5m", got.NextRetryAt)
	}
	// Both per-platform outcomes recorded, including the success.
	if !got.Results["facebook"].Success {
		t.Errorf("facebook result lost: %+v", got.Results["facebook"])
	}
	if got.Results["twitter"].Success {
		t.Errorf("twitter result = %+v", got.Results["twitter"])
	}
	if got.ErrorMessage == nil || *got.ErrorMessage != store.AggregateFailureMessage {
		t.Errorf("error_message = %v", got.ErrorMessage)
	}
}

func TestProcessOneExhaustsRetries(t *testing.T) {
	m := newMemStore()
	post := seed(m, "twitter")
	// Third retry in flight: the fixed table is used up after this one.
	m.posts[post.ID].RetryCount = store.MaxRetries

	o := newTestOrchestrator(m, stubAdapter{platform: "twitter", err: errors.New("still down")})

	o.processOne(context.Background(), store.DueItem{PostID: post.ID, TenantID: post.TenantID})

	got := m.get(post.ID)
	if got.Status != store.PostStatusFailed {
		t.Fatalf("status = %s, want terminally failed", got.Status)
	}
	if got.RetryCount != store.MaxRetries {
		t.Errorf("retry_count = %d, want %d", got.RetryCount, store.MaxRetries)
	}
	if !got.Terminal() {
		t.Error("exhausted post should be terminal")
	}
}

func TestProcessOneContentMissing(t *testing.T) {
	m := newMemStore()
	post := seed(m, "twitter")
	delete(m.contents, post.ContentID)

	o := newTestOrchestrator(m, stubAdapter{platform: "twitter", postID: "x"})
	o.processOne(context.Background(), store.DueItem{PostID: post.ID, TenantID: post.TenantID})

	got := m.get(post.ID)
	// Missing content is an ordinary failure with retry, not a crash.
	if got.Status != store.PostStatusScheduled || got.RetryCount != 1 {
		t.Fatalf("status = %s retry_count = %d, want scheduled/1", got.Status, got.RetryCount)
	}
	if got.ErrorMessage == nil {
		t.Error("failure reason not persisted")
	}
}

func TestRunProcessesDueWork(t *testing.T) {
	m := newMemStore()
	post := seed(m, "facebook")
	o := newTestOrchestrator(m, stubAdapter{platform: "facebook", postID: "fb_1"})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		o.Run(ctx)
	}()

	deadline := time.After(2 * time.Second)
	for {
		if m.get(post.ID).Status == store.PostStatusPublished {
			break
		}
		select {
		case <-deadline:
			cancel()
			<-done
			t.Fatalf("post not published before deadline, status = %s", m.get(post.ID).Status)
		case <-time.After(10 * time.Millisecond):
		}
	}

	cancel()
	<-done
}
