// Package resource holds the ownable-entity contract consumed by the
// authorization guards. Persistence is external to the decision core; the
// engine only ever sees {id, owner} facts.
package resource

import (
	"context"

	"aegis/internal/authz"
)

// Resource is an ownable entity gated by the authorization core.
type Resource struct {
	ID      string
	OwnerID string
	Name    string
}

// Authz projects the resource into the shape the authorization engine
// evaluates.
func (r Resource) Authz() authz.Resource {
	return authz.Resource{
		ID:      r.ID,
		Type:    "project",
		OwnerID: r.OwnerID,
	}
}

// Store is the external resource store contract. Implementations return
// sentinel.ErrNotFound (optionally wrapped) for unknown resources.
type Store interface {
	FindByID(ctx context.Context, id string) (Resource, error)
	Save(ctx context.Context, resource Resource) error
	Delete(ctx context.Context, id string) error
}

// Lookup adapts a Store to the guard-facing lookup signature.
func Lookup(store Store) authz.ResourceLookup {
	return func(ctx context.Context, resourceID string) (authz.Resource, error) {
		resource, err := store.FindByID(ctx, resourceID)
		if err != nil {
			return authz.Resource{}, err
		}
		return resource.Authz(), nil
	}
}
