package authz

import (
	"context"
	"errors"

	dErrors "aegis/pkg/domain-errors"
	"aegis/pkg/platform/sentinel"
)

// ResourceLookup resolves a resource identifier against the external resource
// store. Implementations return sentinel.ErrNotFound (optionally wrapped)
// when the resource does not exist.
type ResourceLookup func(ctx context.Context, resourceID string) (Resource, error)

// Guard checks one permission for a resolved principal against a resource ID,
// returning the resource on success or a typed failure on denial.
type Guard func(ctx context.Context, principal Principal, resourceID string) (Resource, error)

// RequireAccess builds a view guard. Denial fails with a not-found error, the
// same failure a genuinely missing resource produces: a caller who cannot
// view a resource must not learn that it exists.
func (e *Engine) RequireAccess(lookup ResourceLookup) Guard {
	return func(ctx context.Context, principal Principal, resourceID string) (Resource, error) {
		resource, err := lookup(ctx, resourceID)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				e.audit.PermissionDenied(ctx, principal.ID, string(principal.Role), "resource", resourceID, "resource_not_found")
				return Resource{}, dErrors.New(dErrors.CodeNotFound, "resource not found")
			}
			return Resource{}, dErrors.Wrap(err, dErrors.CodeInternal, "could not resolve resource")
		}

		decision := e.Authorize(ctx, principal, resource, PermissionView)
		if !decision.Allowed {
			if decision.Reason == ReasonInactiveAccount {
				return Resource{}, dErrors.New(dErrors.CodeForbidden, "account cannot perform this action")
			}
			return Resource{}, dErrors.New(dErrors.CodeNotFound, "resource not found")
		}
		return resource, nil
	}
}

// RequireModification builds an edit guard. By the time a caller attempts a
// mutation the resource's existence is not a secret, so denial is explicit.
func (e *Engine) RequireModification(lookup ResourceLookup) Guard {
	return e.mutationGuard(lookup, PermissionEdit, "insufficient privileges to modify this resource")
}

// RequireDeletion builds a delete guard with the same explicit-denial policy
// as RequireModification.
func (e *Engine) RequireDeletion(lookup ResourceLookup) Guard {
	return e.mutationGuard(lookup, PermissionDelete, "insufficient privileges to delete this resource")
}

func (e *Engine) mutationGuard(lookup ResourceLookup, permission Permission, denialMessage string) Guard {
	return func(ctx context.Context, principal Principal, resourceID string) (Resource, error) {
		resource, err := lookup(ctx, resourceID)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return Resource{}, dErrors.New(dErrors.CodeNotFound, "resource not found")
			}
			return Resource{}, dErrors.Wrap(err, dErrors.CodeInternal, "could not resolve resource")
		}

		decision := e.Authorize(ctx, principal, resource, permission)
		if !decision.Allowed {
			if decision.Reason == ReasonInactiveAccount {
				return Resource{}, dErrors.New(dErrors.CodeForbidden, "account cannot perform this action")
			}
			return Resource{}, dErrors.New(dErrors.CodeForbidden, denialMessage)
		}
		return resource, nil
	}
}
