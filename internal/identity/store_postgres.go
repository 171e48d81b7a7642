package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"aegis/internal/authz"
	"aegis/pkg/platform/sentinel"
)

// PostgresStore reads users from PostgreSQL.
//
// Expected schema:
//
//	CREATE TABLE users (
//	    id            TEXT PRIMARY KEY,
//	    username      TEXT NOT NULL UNIQUE,
//	    password_hash TEXT NOT NULL,
//	    role          TEXT NOT NULL,
//	    active        BOOLEAN NOT NULL DEFAULT TRUE
//	);
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a store backed by the provided pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const selectUserSQL = `
	SELECT id, username, password_hash, role, active
	FROM users
`

func (s *PostgresStore) FindByID(ctx context.Context, id string) (*User, error) {
	return s.findOne(ctx, selectUserSQL+" WHERE id = $1", id)
}

func (s *PostgresStore) FindByUsername(ctx context.Context, username string) (*User, error) {
	return s.findOne(ctx, selectUserSQL+" WHERE username = $1", username)
}

func (s *PostgresStore) findOne(ctx context.Context, query string, arg any) (*User, error) {
	var user User
	var role string
	err := s.pool.QueryRow(ctx, query, arg).Scan(
		&user.ID, &user.Username, &user.PasswordHash, &role, &user.Active,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("query user: %w", err)
	}
	user.Role = authz.Role(role)
	return &user, nil
}
