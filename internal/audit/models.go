// Package audit converts authorization decisions and identity events into
// structured, append-only security records and writes them through a
// pluggable sink.
package audit

import "time"

// EventType is the closed enumeration of canonical security events.
type EventType string

const (
	EventLoginSuccess               EventType = "login_success"
	EventLoginFailure               EventType = "login_failure"
	EventPermissionDenied           EventType = "permission_denied"
	EventResourceAccessGranted      EventType = "resource_access_granted"
	EventResourceModificationDenied EventType = "resource_modification_denied"
	EventAdminAction                EventType = "admin_action"
	EventProductionConfigError      EventType = "production_config_error"
	EventUnauthorizedAccessAttempt  EventType = "unauthorized_access_attempt"
)

// Outcome records how the event concluded.
type Outcome string

const (
	OutcomeGranted Outcome = "granted"
	OutcomeDenied  Outcome = "denied"
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"
)

// SecurityEvent is an immutable record of one decision or identity event.
// Created once, never mutated; sinks append it and never delete.
type SecurityEvent struct {
	Timestamp  time.Time         `json:"timestamp"`
	Type       EventType         `json:"event_type"`
	ActorID    string            `json:"actor_id"`
	ActorRole  string            `json:"actor_role,omitempty"`
	TargetType string            `json:"target_type,omitempty"`
	TargetID   string            `json:"target_id,omitempty"`
	Outcome    Outcome           `json:"outcome"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}
