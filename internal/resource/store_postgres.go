package resource

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"aegis/pkg/platform/sentinel"
)

// PostgresStore persists resources in PostgreSQL.
//
// Expected schema:
//
//	CREATE TABLE resources (
//	    id       TEXT PRIMARY KEY,
//	    owner_id TEXT NOT NULL,
//	    name     TEXT NOT NULL DEFAULT ''
//	);
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a store backed by the provided pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) FindByID(ctx context.Context, id string) (Resource, error) {
	var resource Resource
	err := s.pool.QueryRow(ctx,
		`SELECT id, owner_id, name FROM resources WHERE id = $1`, id,
	).Scan(&resource.ID, &resource.OwnerID, &resource.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Resource{}, sentinel.ErrNotFound
		}
		return Resource{}, fmt.Errorf("query resource: %w", err)
	}
	return resource, nil
}

func (s *PostgresStore) Save(ctx context.Context, resource Resource) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO resources (id, owner_id, name)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET
			owner_id = EXCLUDED.owner_id,
			name = EXCLUDED.name
	`, resource.ID, resource.OwnerID, resource.Name)
	if err != nil {
		return fmt.Errorf("save resource: %w", err)
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM resources WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete resource: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}
