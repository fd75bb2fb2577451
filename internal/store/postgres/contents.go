package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"postflow/internal/store"
)

// CreateContent inserts a new content record.
func (s *Store) CreateContent(ctx context.Context, tx store.DBTransaction, content *store.Content) error {
	executor := s.getExecutor(tx)

	overrides, err := json.Marshal(content.Overrides)
	if err != nil {
		return fmt.Errorf("failed to encode overrides: %w", err)
	}

	query := `
		INSERT INTO contents (id, tenant_id, body, media_urls, overrides, hashtags, mentions, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err = executor.ExecContext(ctx, query,
		content.ID, content.TenantID, content.Body,
		pq.Array(content.MediaURLs), overrides,
		pq.Array(content.Hashtags), pq.Array(content.Mentions),
		content.CreatedBy, content.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create content: %w", err)
	}
	return nil
}

// GetContentByID returns a content record scoped by tenant.
func (s *Store) GetContentByID(ctx context.Context, tenantID, id uuid.UUID) (*store.Content, error) {
	query := `
		SELECT id, tenant_id, body, media_urls, overrides, hashtags, mentions, created_by, created_at
		FROM contents
		WHERE id = $1 AND tenant_id = $2
	`

	var (
		c         store.Content
		overrides []byte
	)
	err := s.db.QueryRowContext(ctx, query, id, tenantID).Scan(
		&c.ID, &c.TenantID, &c.Body,
		pq.Array(&c.MediaURLs), &overrides,
		pq.Array(&c.Hashtags), pq.Array(&c.Mentions),
		&c.CreatedBy, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if len(overrides) > 0 {
		if err := json.Unmarshal(overrides, &c.Overrides); err != nil {
			return nil, fmt.Errorf("failed to decode overrides: %w", err)
		}
	}
	return &c, nil
}
