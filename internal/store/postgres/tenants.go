package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"postflow/internal/store"
)

// CreateTenant inserts a new tenant with its hashed API key.
func (s *Store) CreateTenant(ctx context.Context, tenant *store.Tenant, hashedKey string) error {
	query := `
		INSERT INTO tenants (id, name, api_key_hash, rate_limit, rate_limit_burst, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := s.db.ExecContext(ctx, query,
		tenant.ID, tenant.Name, hashedKey, tenant.RateLimit, tenant.RateLimitBurst, tenant.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create tenant: %w", err)
	}
	return nil
}

// GetTenantByID returns a tenant by its ID.
func (s *Store) GetTenantByID(ctx context.Context, id uuid.UUID) (*store.Tenant, error) {
	query := `SELECT id, name, rate_limit, rate_limit_burst, created_at FROM tenants WHERE id = $1`
	return s.scanTenant(s.db.QueryRowContext(ctx, query, id))
}

// GetTenantByAPIKeyHash returns a tenant by its API key hash.
func (s *Store) GetTenantByAPIKeyHash(ctx context.Context, hash string) (*store.Tenant, error) {
	query := `SELECT id, name, rate_limit, rate_limit_burst, created_at FROM tenants WHERE api_key_hash = $1`
	return s.scanTenant(s.db.QueryRowContext(ctx, query, hash))
}

func (s *Store) scanTenant(row *sql.Row) (*store.Tenant, error) {
	var t store.Tenant
	err := row.Scan(&t.ID, &t.Name, &t.RateLimit, &t.RateLimitBurst, &t.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}
