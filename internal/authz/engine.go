package authz

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"aegis/internal/authz/metrics"
)

// Principal is the authenticated identity a decision is made for. It is
// resolved by the identity store and immutable within a single check.
type Principal struct {
	ID     string
	Role   Role
	Active bool
}

// Resource is any ownable entity. The engine receives it by reference for
// each check and never mutates it.
type Resource struct {
	ID      string
	Type    string
	OwnerID string
}

// DenialReason is the typed reason attached to a denying Decision.
type DenialReason string

const (
	ReasonInactiveAccount            DenialReason = "inactive_account"
	ReasonNotOwnerOrInsufficientRole DenialReason = "not_owner_or_insufficient_role"
)

// Decision is the outcome of one authorization check. Denials are values
// here, not errors; guards translate them into typed failures.
type Decision struct {
	Allowed bool
	Reason  DenialReason
}

// AuditLogger is the slice of the audit surface the engine needs. Using the
// canonical emitters keeps every decision's event well-formed.
type AuditLogger interface {
	ResourceAccessGranted(ctx context.Context, actorID, actorRole, targetType, targetID, permission string)
	PermissionDenied(ctx context.Context, actorID, actorRole, targetType, targetID, reason string)
	ResourceModificationDenied(ctx context.Context, actorID, actorRole, targetType, targetID, reason string)
	AdminAction(ctx context.Context, actorID, actorRole, action string)
}

// Engine combines the role catalog with ownership facts to produce
// allow/deny decisions. It holds no mutable state between calls.
type Engine struct {
	audit   AuditLogger
	logger  *slog.Logger
	metrics *metrics.Metrics
	tracer  trace.Tracer
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger for decision debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithMetrics attaches Prometheus counters for decisions.
func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}

// NewEngine constructs an Engine. The audit logger is mandatory: a decision
// that leaves no trail is a defect.
func NewEngine(audit AuditLogger, opts ...Option) *Engine {
	e := &Engine{
		audit:  audit,
		logger: slog.Default(),
		tracer: otel.Tracer("aegis/authz"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Authorize evaluates whether principal may exercise permission on resource.
// Exactly one security event is emitted per call, matching the decision.
//
// Order matters: the active check precedes everything so a deactivated
// account loses access immediately regardless of role, and the elevated-tier
// check precedes ownership so admins are never blocked by it.
func (e *Engine) Authorize(ctx context.Context, principal Principal, resource Resource, permission Permission) Decision {
	ctx, span := e.tracer.Start(ctx, "authz.Authorize",
		trace.WithAttributes(
			attribute.String("authz.permission", string(permission)),
			attribute.String("authz.role", string(principal.Role)),
		))
	defer span.End()

	decision := e.evaluate(principal, resource, permission)
	span.SetAttributes(attribute.Bool("authz.allowed", decision.Allowed))

	e.emit(ctx, principal, resource, permission, decision)
	e.count(decision)

	if !decision.Allowed {
		e.logger.Debug("authorization denied",
			"actor_id", principal.ID,
			"actor_role", principal.Role,
			"resource_id", resource.ID,
			"permission", permission,
			"reason", decision.Reason,
		)
	}
	return decision
}

// evaluate is the pure decision function: no I/O, no side effects.
func (e *Engine) evaluate(principal Principal, resource Resource, permission Permission) Decision {
	if !principal.Active {
		return Decision{Reason: ReasonInactiveAccount}
	}
	if IsElevated(principal.Role) {
		return Decision{Allowed: true}
	}
	if HasPermission(principal.Role, permission) && resource.OwnerID == principal.ID {
		return Decision{Allowed: true}
	}
	return Decision{Reason: ReasonNotOwnerOrInsufficientRole}
}

func (e *Engine) emit(ctx context.Context, principal Principal, resource Resource, permission Permission, decision Decision) {
	targetType := resource.Type
	if targetType == "" {
		targetType = "resource"
	}

	switch {
	case decision.Allowed && permission == PermissionAdmin:
		e.audit.AdminAction(ctx, principal.ID, string(principal.Role), string(permission))
	case decision.Allowed:
		e.audit.ResourceAccessGranted(ctx, principal.ID, string(principal.Role), targetType, resource.ID, string(permission))
	case permission == PermissionView:
		e.audit.PermissionDenied(ctx, principal.ID, string(principal.Role), targetType, resource.ID, string(decision.Reason))
	default:
		e.audit.ResourceModificationDenied(ctx, principal.ID, string(principal.Role), targetType, resource.ID, string(decision.Reason))
	}
}

func (e *Engine) count(decision Decision) {
	if e.metrics == nil {
		return
	}
	if decision.Allowed {
		e.metrics.IncGranted()
	} else {
		e.metrics.IncDenied(string(decision.Reason))
	}
}

// CanAccess reports whether principal may view resource.
func (e *Engine) CanAccess(ctx context.Context, principal Principal, resource Resource) bool {
	return e.Authorize(ctx, principal, resource, PermissionView).Allowed
}

// CanModify reports whether principal may edit resource.
func (e *Engine) CanModify(ctx context.Context, principal Principal, resource Resource) bool {
	return e.Authorize(ctx, principal, resource, PermissionEdit).Allowed
}

// CanDelete reports whether principal may delete resource.
func (e *Engine) CanDelete(ctx context.Context, principal Principal, resource Resource) bool {
	return e.Authorize(ctx, principal, resource, PermissionDelete).Allowed
}
