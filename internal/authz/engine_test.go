package authz_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aegis/internal/audit"
	"aegis/internal/authz"
)

func newTestEngine(t *testing.T) (*authz.Engine, *audit.MemorySink, *audit.Logger) {
	t.Helper()
	sink := audit.NewMemorySink()
	auditLogger := audit.New(sink)
	return authz.NewEngine(auditLogger), sink, auditLogger
}

func recordedEvents(ctx context.Context, sink *audit.MemorySink, logger *audit.Logger) []audit.SecurityEvent {
	logger.Flush(ctx)
	return sink.Events()
}

func TestEngine_ElevatedBypassesOwnership(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	ctx := context.Background()
	resource := authz.Resource{ID: "1", Type: "project", OwnerID: "someone-else"}

	for _, role := range []authz.Role{authz.RoleAdmin, authz.RoleSuperAdmin} {
		t.Run(string(role), func(t *testing.T) {
			principal := authz.Principal{ID: "admin1", Role: role, Active: true}
			assert.True(t, engine.CanAccess(ctx, principal, resource))
			assert.True(t, engine.CanModify(ctx, principal, resource))
			assert.True(t, engine.CanDelete(ctx, principal, resource))
		})
	}
}

func TestEngine_OwnershipGateForAnalyst(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	ctx := context.Background()
	principal := authz.Principal{ID: "user1", Role: authz.RoleAnalyst, Active: true}

	t.Run("owned resource", func(t *testing.T) {
		owned := authz.Resource{ID: "1", Type: "project", OwnerID: "user1"}
		assert.True(t, engine.CanAccess(ctx, principal, owned))
		assert.True(t, engine.CanModify(ctx, principal, owned))
		assert.True(t, engine.CanDelete(ctx, principal, owned))
	})

	t.Run("foreign resource", func(t *testing.T) {
		foreign := authz.Resource{ID: "2", Type: "project", OwnerID: "user2"}
		assert.False(t, engine.CanAccess(ctx, principal, foreign))
		assert.False(t, engine.CanModify(ctx, principal, foreign))
		assert.False(t, engine.CanDelete(ctx, principal, foreign))
	})
}

func TestEngine_InactiveAccountOverridesEverything(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	ctx := context.Background()
	resource := authz.Resource{ID: "1", Type: "project", OwnerID: "user1"}

	for _, role := range []authz.Role{authz.RoleViewer, authz.RoleAnalyst, authz.RoleAdmin, authz.RoleSuperAdmin} {
		t.Run(string(role), func(t *testing.T) {
			// Owner of the resource, but deactivated.
			principal := authz.Principal{ID: "user1", Role: role, Active: false}
			assert.False(t, engine.CanAccess(ctx, principal, resource))
			assert.False(t, engine.CanModify(ctx, principal, resource))
			assert.False(t, engine.CanDelete(ctx, principal, resource))

			decision := engine.Authorize(ctx, principal, resource, authz.PermissionView)
			assert.Equal(t, authz.ReasonInactiveAccount, decision.Reason)
		})
	}
}

func TestEngine_ViewerCeiling(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	ctx := context.Background()
	principal := authz.Principal{ID: "user1", Role: authz.RoleViewer, Active: true}
	owned := authz.Resource{ID: "1", Type: "project", OwnerID: "user1"}

	assert.True(t, engine.CanAccess(ctx, principal, owned))
	assert.False(t, engine.CanModify(ctx, principal, owned))
	assert.False(t, engine.CanDelete(ctx, principal, owned))
}

func TestEngine_DenialReasons(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	ctx := context.Background()
	resource := authz.Resource{ID: "1", Type: "project", OwnerID: "user1"}

	t.Run("inactive account", func(t *testing.T) {
		principal := authz.Principal{ID: "user1", Role: authz.RoleAdmin, Active: false}
		decision := engine.Authorize(ctx, principal, resource, authz.PermissionView)
		assert.False(t, decision.Allowed)
		assert.Equal(t, authz.ReasonInactiveAccount, decision.Reason)
	})

	t.Run("not owner", func(t *testing.T) {
		principal := authz.Principal{ID: "user2", Role: authz.RoleAnalyst, Active: true}
		decision := engine.Authorize(ctx, principal, resource, authz.PermissionEdit)
		assert.False(t, decision.Allowed)
		assert.Equal(t, authz.ReasonNotOwnerOrInsufficientRole, decision.Reason)
	})

	t.Run("granted decisions carry no reason", func(t *testing.T) {
		principal := authz.Principal{ID: "user1", Role: authz.RoleAnalyst, Active: true}
		decision := engine.Authorize(ctx, principal, resource, authz.PermissionEdit)
		assert.True(t, decision.Allowed)
		assert.Empty(t, decision.Reason)
	})
}

func TestEngine_EveryDecisionEmitsExactlyOneEvent(t *testing.T) {
	engine, sink, auditLogger := newTestEngine(t)
	ctx := context.Background()
	resource := authz.Resource{ID: "42", Type: "project", OwnerID: "user1"}

	owner := authz.Principal{ID: "user1", Role: authz.RoleAnalyst, Active: true}
	stranger := authz.Principal{ID: "user2", Role: authz.RoleAnalyst, Active: true}

	engine.Authorize(ctx, owner, resource, authz.PermissionView)
	engine.Authorize(ctx, stranger, resource, authz.PermissionView)
	engine.Authorize(ctx, stranger, resource, authz.PermissionDelete)

	events := recordedEvents(ctx, sink, auditLogger)
	require.Len(t, events, 3, "exactly one event per decision")

	assert.Equal(t, audit.EventResourceAccessGranted, events[0].Type)
	assert.Equal(t, audit.OutcomeGranted, events[0].Outcome)
	assert.Equal(t, "user1", events[0].ActorID)
	assert.Equal(t, "project", events[0].TargetType)
	assert.Equal(t, "42", events[0].TargetID)

	assert.Equal(t, audit.EventPermissionDenied, events[1].Type)
	assert.Equal(t, audit.OutcomeDenied, events[1].Outcome)
	assert.Equal(t, string(authz.ReasonNotOwnerOrInsufficientRole), events[1].Metadata["reason"])

	assert.Equal(t, audit.EventResourceModificationDenied, events[2].Type)
	assert.Equal(t, audit.OutcomeDenied, events[2].Outcome)
}

func TestEngine_AdminActionEventForElevatedGrant(t *testing.T) {
	engine, sink, auditLogger := newTestEngine(t)
	ctx := context.Background()
	principal := authz.Principal{ID: "root", Role: authz.RoleSuperAdmin, Active: true}
	resource := authz.Resource{ID: "1", Type: "project", OwnerID: "user1"}

	decision := engine.Authorize(ctx, principal, resource, authz.PermissionAdmin)
	require.True(t, decision.Allowed)

	events := recordedEvents(ctx, sink, auditLogger)
	require.Len(t, events, 1)
	assert.Equal(t, audit.EventAdminAction, events[0].Type)
	assert.Equal(t, "root", events[0].ActorID)
	assert.Equal(t, "super_admin", events[0].ActorRole)
}

func TestEngine_Scenario(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	ctx := context.Background()
	resource := authz.Resource{ID: "1", Type: "project", OwnerID: "user1"}

	owner := authz.Principal{ID: "user1", Role: authz.RoleAnalyst, Active: true}
	assert.True(t, engine.CanAccess(ctx, owner, resource))
	assert.True(t, engine.CanModify(ctx, owner, resource))
	assert.True(t, engine.CanDelete(ctx, owner, resource))

	stranger := authz.Principal{ID: "user2", Role: authz.RoleAnalyst, Active: true}
	assert.False(t, engine.CanAccess(ctx, stranger, resource))
	assert.False(t, engine.CanModify(ctx, stranger, resource))
	assert.False(t, engine.CanDelete(ctx, stranger, resource))
}
