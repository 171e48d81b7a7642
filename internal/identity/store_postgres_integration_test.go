//go:build integration

package identity_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aegis/internal/authz"
	"aegis/internal/identity"
	"aegis/pkg/platform/sentinel"
	"aegis/pkg/testutil/containers"
)

func TestPostgresStore(t *testing.T) {
	pg := containers.NewPostgresContainer(t)
	defer pg.Close(t)
	pg.Exec(t, `
		CREATE TABLE IF NOT EXISTS users (
			id            TEXT PRIMARY KEY,
			username      TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			role          TEXT NOT NULL,
			active        BOOLEAN NOT NULL DEFAULT TRUE
		)
	`)
	pg.Exec(t, `
		INSERT INTO users (id, username, password_hash, role, active) VALUES
			('u-1', 'alice', '$2a$10$hash', 'viewer', TRUE),
			('u-2', 'bob',   '$2a$10$hash', 'admin',  FALSE)
	`)

	ctx := context.Background()
	store := identity.NewPostgresStore(pg.Pool)

	t.Run("finds users by id and username", func(t *testing.T) {
		byID, err := store.FindByID(ctx, "u-1")
		require.NoError(t, err)
		assert.Equal(t, "alice", byID.Username)
		assert.Equal(t, authz.RoleViewer, byID.Role)
		assert.True(t, byID.Active)

		byName, err := store.FindByUsername(ctx, "bob")
		require.NoError(t, err)
		assert.Equal(t, "u-2", byName.ID)
		assert.False(t, byName.Active)
	})

	t.Run("missing user yields the not-found sentinel", func(t *testing.T) {
		_, err := store.FindByID(ctx, "u-404")
		assert.True(t, errors.Is(err, sentinel.ErrNotFound))

		_, err = store.FindByUsername(ctx, "nobody")
		assert.True(t, errors.Is(err, sentinel.ErrNotFound))
	})
}
