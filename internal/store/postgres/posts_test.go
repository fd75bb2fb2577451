package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"

	"postflow/internal/store"
)

func TestCreateScheduledPost(t *testing.T) {
	s, mock := newMockStore(t)
	defer s.db.Close()

	post := &store.ScheduledPost{
		ID:          uuid.New(),
		TenantID:    uuid.New(),
		ContentID:   uuid.New(),
		Platforms:   []string{"facebook"},
		ScheduledAt: time.Now().Add(time.Hour),
		Status:      store.PostStatusScheduled,
	}

	mock.ExpectExec(`INSERT INTO scheduled_posts`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := s.CreateScheduledPost(context.Background(), nil, post); err != nil {
		t.Fatalf("CreateScheduledPost failed: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestCreateScheduledPostInTx(t *testing.T) {
	s, mock := newMockStore(t)
	defer s.db.Close()

	// Anchor plus siblings ride one transaction so the occurrence set
	// is all-or-nothing.
	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO scheduled_posts`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO scheduled_posts`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	tx, err := s.BeginTx(context.Background())
	if err != nil {
		t.Fatalf("BeginTx failed: %v", err)
	}

	anchor := &store.ScheduledPost{ID: uuid.New(), Platforms: []string{"twitter"}}
	sibling := &store.ScheduledPost{ID: uuid.New(), Platforms: []string{"twitter"}}

	if err := s.CreateScheduledPost(context.Background(), tx, anchor); err != nil {
		t.Fatalf("create anchor failed: %v", err)
	}
	if err := s.CreateScheduledPost(context.Background(), tx, sibling); err != nil {
		t.Fatalf("create sibling failed: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("commit failed: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestGetScheduledPostNotFound(t *testing.T) {
	s, mock := newMockStore(t)
	defer s.db.Close()

	id, tenant := uuid.New(), uuid.New()

	mock.ExpectQuery(`SELECT .* FROM scheduled_posts WHERE id = \$1 AND tenant_id = \$2`).
		WithArgs(id, tenant).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := s.GetScheduledPost(context.Background(), tenant, id)
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
}

func TestListScheduledPostsFilterSQL(t *testing.T) {
	s, mock := newMockStore(t)
	defer s.db.Close()

	tenant := uuid.New()
	from := time.Now().Add(-24 * time.Hour)

	// The generated SQL carries every requested filter.
	mock.ExpectQuery(`SELECT .* FROM scheduled_posts WHERE tenant_id = \$1 AND status = \$2 AND \$3 = ANY\(platforms\) AND scheduled_at >= \$4 ORDER BY scheduled_at DESC`).
		WithArgs(tenant, string(store.PostStatusFailed), "twitter", from, 20, 0).
		WillReturnRows(postRow(uuid.New(), tenant, store.PostStatusFailed, 1))

	posts, err := s.ListScheduledPosts(context.Background(), tenant, store.ListFilter{
		Status:   store.PostStatusFailed,
		Platform: "twitter",
		From:     &from,
		Limit:    20,
	})
	if err != nil {
		t.Fatalf("ListScheduledPosts failed: %v", err)
	}
	if len(posts) != 1 {
		t.Errorf("got %d posts, want 1", len(posts))
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestCancelScheduledPost(t *testing.T) {
	s, mock := newMockStore(t)
	defer s.db.Close()

	id, tenant := uuid.New(), uuid.New()

	mock.ExpectExec(`UPDATE scheduled_posts\s+SET status = \$1.*status = \$4`).
		WithArgs(string(store.PostStatusCancelled), id, tenant, string(store.PostStatusScheduled)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := s.CancelScheduledPost(context.Background(), tenant, id); err != nil {
		t.Fatalf("CancelScheduledPost failed: %v", err)
	}

	// Already publishing/terminal: guard matches nothing, caller gets a
	// rejection instead of silent corruption.
	mock.ExpectExec(`UPDATE scheduled_posts`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := s.CancelScheduledPost(context.Background(), tenant, id)
	if !errors.Is(err, store.ErrIllegalTransition) {
		t.Errorf("got %v, want ErrIllegalTransition", err)
	}
}

func TestReschedulePostResetsRetryState(t *testing.T) {
	s, mock := newMockStore(t)
	defer s.db.Close()

	id, tenant := uuid.New(), uuid.New()
	newTime := time.Now().Add(6 * time.Hour)

	mock.ExpectExec(`UPDATE scheduled_posts\s+SET status = \$1, scheduled_at = \$2, retry_count = 0, next_retry_at = NULL`).
		WithArgs(string(store.PostStatusScheduled), newTime, id, tenant,
			string(store.PostStatusScheduled), string(store.PostStatusFailed)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := s.ReschedulePost(context.Background(), tenant, id, newTime); err != nil {
		t.Fatalf("ReschedulePost failed: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestForceRetryNowExhausted(t *testing.T) {
	s, mock := newMockStore(t)
	defer s.db.Close()

	id, tenant := uuid.New(), uuid.New()

	mock.ExpectExec(`UPDATE scheduled_posts\s+SET next_retry_at = NULL`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := s.ForceRetryNow(context.Background(), tenant, id)
	if !errors.Is(err, store.ErrRetryExhausted) {
		t.Errorf("got %v, want ErrRetryExhausted", err)
	}
}

func TestApprovePreview(t *testing.T) {
	s, mock := newMockStore(t)
	defer s.db.Close()

	id, tenant := uuid.New(), uuid.New()

	mock.ExpectExec(`UPDATE scheduled_posts\s+SET preview_approved = TRUE`).
		WithArgs("reviewer@example.com", "looks good", id, tenant).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := s.ApprovePreview(context.Background(), tenant, id, "reviewer@example.com", "looks good")
	if err != nil {
		t.Fatalf("ApprovePreview failed: %v", err)
	}
}
