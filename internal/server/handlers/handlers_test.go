package handlers

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"postflow/internal/store"
)

// Mock transaction
type mockTx struct {
	commitErr error
	committed bool
}

func (m *mockTx) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	return nil, nil
}
func (m *mockTx) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	return nil, nil
}
func (m *mockTx) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	return nil
}

func (m *mockTx) Commit() error {
	if m.commitErr != nil {
		return m.commitErr
	}
	m.committed = true
	return nil
}

func (m *mockTx) Rollback() error { return nil }

// Mock Store
type mockStore struct {
	beginTxErr error
	pingErr    error
	tx         *mockTx

	// Tenant Hooks
	createTenantErr error

	// Content Hooks
	createContentErr error
	getContentResp   *store.Content
	getContentErr    error

	// Post Hooks
	createPostErr  error
	getPostResp    *store.ScheduledPost
	getPostErr     error
	listPostsResp  []*store.ScheduledPost
	listPostsErr   error
	savePreviewErr error
	approveErr     error
	cancelErr      error
	rescheduleErr  error
	forceRetryErr  error

	// Spies (to verify arguments passed by handlers)
	createdPosts      []*store.ScheduledPost
	capturedNewTime   time.Time
	capturedApprover  string
	capturedNotes     string
	capturedFilter    store.ListFilter
	capturedPreview   map[string]store.PlatformPreview
	capturedHashedKey string
}

func (m *mockStore) BeginTx(ctx context.Context) (store.Tx, error) {
	if m.beginTxErr != nil {
		return nil, m.beginTxErr
	}
	if m.tx == nil {
		m.tx = &mockTx{}
	}
	return m.tx, nil
}

func (m *mockStore) Ping(ctx context.Context) error {
	return m.pingErr
}

func (m *mockStore) CreateTenant(ctx context.Context, tenant *store.Tenant, hashedKey string) error {
	m.capturedHashedKey = hashedKey
	return m.createTenantErr
}

func (m *mockStore) GetTenantByID(ctx context.Context, id uuid.UUID) (*store.Tenant, error) {
	return nil, nil // Not used in handlers
}

func (m *mockStore) GetTenantByAPIKeyHash(ctx context.Context, hash string) (*store.Tenant, error) {
	return nil, nil // Handled by Auth Middleware, not Handlers
}

func (m *mockStore) CreateContent(ctx context.Context, tx store.DBTransaction, content *store.Content) error {
	return m.createContentErr
}

func (m *mockStore) GetContentByID(ctx context.Context, tenantID, id uuid.UUID) (*store.Content, error) {
	return m.getContentResp, m.getContentErr
}

func (m *mockStore) CreateScheduledPost(ctx context.Context, tx store.DBTransaction, post *store.ScheduledPost) error {
	if m.createPostErr != nil {
		return m.createPostErr
	}
	m.createdPosts = append(m.createdPosts, post)
	return nil
}

func (m *mockStore) GetScheduledPost(ctx context.Context, tenantID, id uuid.UUID) (*store.ScheduledPost, error) {
	return m.getPostResp, m.getPostErr
}

func (m *mockStore) ListScheduledPosts(ctx context.Context, tenantID uuid.UUID, filter store.ListFilter) ([]*store.ScheduledPost, error) {
	m.capturedFilter = filter
	return m.listPostsResp, m.listPostsErr
}

func (m *mockStore) SavePreview(ctx context.Context, tenantID, id uuid.UUID, preview map[string]store.PlatformPreview) error {
	m.capturedPreview = preview
	return m.savePreviewErr
}

func (m *mockStore) ApprovePreview(ctx context.Context, tenantID, id uuid.UUID, approvedBy, notes string) error {
	m.capturedApprover = approvedBy
	m.capturedNotes = notes
	return m.approveErr
}

func (m *mockStore) CancelScheduledPost(ctx context.Context, tenantID, id uuid.UUID) error {
	return m.cancelErr
}

func (m *mockStore) ReschedulePost(ctx context.Context, tenantID, id uuid.UUID, newTime time.Time) error {
	m.capturedNewTime = newTime
	return m.rescheduleErr
}

func (m *mockStore) ForceRetryNow(ctx context.Context, tenantID, id uuid.UUID) error {
	return m.forceRetryErr
}
