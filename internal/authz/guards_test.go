package authz_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aegis/internal/audit"
	"aegis/internal/authz"
	dErrors "aegis/pkg/domain-errors"
	"aegis/pkg/platform/sentinel"
)

func lookupFor(resources map[string]authz.Resource) authz.ResourceLookup {
	return func(_ context.Context, resourceID string) (authz.Resource, error) {
		if resource, ok := resources[resourceID]; ok {
			return resource, nil
		}
		return authz.Resource{}, sentinel.ErrNotFound
	}
}

func TestRequireAccess(t *testing.T) {
	engine, sink, auditLogger := newTestEngine(t)
	ctx := context.Background()
	guard := engine.RequireAccess(lookupFor(map[string]authz.Resource{
		"1": {ID: "1", Type: "project", OwnerID: "user1"},
	}))

	t.Run("owner passes and receives the resource", func(t *testing.T) {
		principal := authz.Principal{ID: "user1", Role: authz.RoleAnalyst, Active: true}
		resource, err := guard(ctx, principal, "1")
		require.NoError(t, err)
		assert.Equal(t, "1", resource.ID)
		assert.Equal(t, "user1", resource.OwnerID)
	})

	t.Run("non-owner denial is indistinguishable from missing resource", func(t *testing.T) {
		principal := authz.Principal{ID: "user2", Role: authz.RoleAnalyst, Active: true}

		_, deniedErr := guard(ctx, principal, "1")
		require.Error(t, deniedErr)
		assert.True(t, dErrors.HasCode(deniedErr, dErrors.CodeNotFound))

		_, missingErr := guard(ctx, principal, "does-not-exist")
		require.Error(t, missingErr)
		assert.True(t, dErrors.HasCode(missingErr, dErrors.CodeNotFound))

		// Denial and absence must share one outward shape.
		assert.Equal(t, dErrors.MessageOf(deniedErr), dErrors.MessageOf(missingErr))
	})

	t.Run("inactive account gets the generic refusal", func(t *testing.T) {
		principal := authz.Principal{ID: "user1", Role: authz.RoleAnalyst, Active: false}
		_, err := guard(ctx, principal, "1")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	t.Run("elevated roles pass without ownership", func(t *testing.T) {
		principal := authz.Principal{ID: "admin1", Role: authz.RoleAdmin, Active: true}
		_, err := guard(ctx, principal, "1")
		assert.NoError(t, err)
	})

	t.Run("probes against missing resources are audited", func(t *testing.T) {
		sink.Clear()
		principal := authz.Principal{ID: "user2", Role: authz.RoleAnalyst, Active: true}
		_, _ = guard(ctx, principal, "does-not-exist")

		auditLogger.Flush(ctx)
		events := sink.Events()
		require.Len(t, events, 1)
		assert.Equal(t, audit.EventPermissionDenied, events[0].Type)
		assert.Equal(t, "resource_not_found", events[0].Metadata["reason"])
	})
}

func TestRequireModificationAndDeletion(t *testing.T) {
	engine, sink, auditLogger := newTestEngine(t)
	ctx := context.Background()
	lookup := lookupFor(map[string]authz.Resource{
		"1": {ID: "1", Type: "project", OwnerID: "user1"},
	})

	modify := engine.RequireModification(lookup)
	remove := engine.RequireDeletion(lookup)

	t.Run("owner may modify and delete", func(t *testing.T) {
		principal := authz.Principal{ID: "user1", Role: authz.RoleAnalyst, Active: true}

		_, err := modify(ctx, principal, "1")
		assert.NoError(t, err)
		_, err = remove(ctx, principal, "1")
		assert.NoError(t, err)
	})

	t.Run("denial is explicit, not a 404", func(t *testing.T) {
		principal := authz.Principal{ID: "user2", Role: authz.RoleAnalyst, Active: true}

		_, err := modify(ctx, principal, "1")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeForbidden))
		assert.Contains(t, dErrors.MessageOf(err), "modify")

		_, err = remove(ctx, principal, "1")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeForbidden))
		assert.Contains(t, dErrors.MessageOf(err), "delete")
	})

	t.Run("viewer lacks edit and delete even on owned resources", func(t *testing.T) {
		lookup := lookupFor(map[string]authz.Resource{
			"2": {ID: "2", Type: "project", OwnerID: "viewer1"},
		})
		principal := authz.Principal{ID: "viewer1", Role: authz.RoleViewer, Active: true}

		_, err := engine.RequireModification(lookup)(ctx, principal, "2")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	t.Run("missing resource is a plain not-found", func(t *testing.T) {
		principal := authz.Principal{ID: "user1", Role: authz.RoleAnalyst, Active: true}
		_, err := modify(ctx, principal, "nope")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	t.Run("each denial leaves one modification-denied event", func(t *testing.T) {
		sink.Clear()
		principal := authz.Principal{ID: "user2", Role: authz.RoleAnalyst, Active: true}
		_, _ = modify(ctx, principal, "1")

		auditLogger.Flush(ctx)
		events := sink.Events()
		require.Len(t, events, 1)
		assert.Equal(t, audit.EventResourceModificationDenied, events[0].Type)
		assert.Equal(t, audit.OutcomeDenied, events[0].Outcome)
	})
}
