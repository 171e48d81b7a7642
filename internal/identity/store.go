package identity

import "context"

//go:generate mockgen -source=store.go -destination=mocks/mocks.go -package=mocks

// Store is the external identity store contract. Implementations return
// sentinel.ErrNotFound (optionally wrapped) for unknown users.
type Store interface {
	FindByID(ctx context.Context, id string) (*User, error)
	FindByUsername(ctx context.Context, username string) (*User, error)
}
