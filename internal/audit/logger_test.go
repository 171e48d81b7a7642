package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aegis/internal/platform/middleware"
)

func TestLogger_RecordAndFlush(t *testing.T) {
	sink := NewMemorySink()
	logger := New(sink)

	logger.Record(SecurityEvent{
		Type:    EventLoginSuccess,
		ActorID: "user1",
		Outcome: OutcomeSuccess,
	})
	logger.Flush(context.Background())

	events := sink.Events()
	require.Len(t, events, 1)
	assert.Equal(t, EventLoginSuccess, events[0].Type)
	assert.Equal(t, "user1", events[0].ActorID)
	assert.False(t, events[0].Timestamp.IsZero(), "timestamp should default to now")
	assert.Equal(t, time.UTC, events[0].Timestamp.Location(), "timestamps are UTC")
}

func TestLogger_EmittersPopulateRequiredFields(t *testing.T) {
	sink := NewMemorySink()
	logger := New(sink)
	ctx := middleware.WithClientMetadata(context.Background(), "198.51.100.7", "curl/8.0")

	logger.LoginFailure(ctx, "user1", "invalid_password")
	logger.PermissionDenied(ctx, "user2", "analyst", "project", "42", "not_owner_or_insufficient_role")
	logger.ResourceAccessGranted(ctx, "user1", "analyst", "project", "42", "view_resource")
	logger.ResourceModificationDenied(ctx, "user2", "viewer", "project", "42", "not_owner_or_insufficient_role")
	logger.AdminAction(ctx, "root", "super_admin", "user_purge")
	logger.UnauthorizedAccessAttempt(ctx, "expired token")
	logger.ConfigurationError(ctx, "weak signing secret")
	logger.Flush(ctx)

	events := sink.Events()
	require.Len(t, events, 7)

	byType := map[EventType]SecurityEvent{}
	for _, event := range events {
		byType[event.Type] = event
		assert.NotZero(t, event.Timestamp)
		assert.NotEmpty(t, event.ActorID)
		assert.NotEmpty(t, event.Outcome)
	}

	assert.Equal(t, OutcomeFailure, byType[EventLoginFailure].Outcome)
	assert.Equal(t, "invalid_password", byType[EventLoginFailure].Metadata["reason"])
	assert.Equal(t, "198.51.100.7", byType[EventLoginFailure].Metadata["ip"])

	denied := byType[EventPermissionDenied]
	assert.Equal(t, OutcomeDenied, denied.Outcome)
	assert.Equal(t, "project", denied.TargetType)
	assert.Equal(t, "42", denied.TargetID)

	granted := byType[EventResourceAccessGranted]
	assert.Equal(t, OutcomeGranted, granted.Outcome)
	assert.Equal(t, "view_resource", granted.Metadata["permission"])

	assert.Equal(t, "anonymous", byType[EventUnauthorizedAccessAttempt].ActorID)
	assert.Equal(t, "system", byType[EventProductionConfigError].ActorID)
}

func TestLogger_LineSinkWritesOneJSONLinePerEvent(t *testing.T) {
	var out bytes.Buffer
	logger := New(NewLineSink(&out))

	logger.LoginSuccess(context.Background(), "user1", "analyst")
	logger.LoginFailure(context.Background(), "user2", "unknown_user")
	logger.Flush(context.Background())

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)

	var record map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &record))
	assert.Equal(t, "login_success", record["event_type"])
	assert.Equal(t, "user1", record["actor_id"])

	// Timestamps are ISO-8601 in UTC.
	ts, ok := record["timestamp"].(string)
	require.True(t, ok)
	_, err := time.Parse(time.RFC3339Nano, ts)
	assert.NoError(t, err)
}

type failingSink struct {
	calls int
}

func (s *failingSink) Write(context.Context, []SecurityEvent) error {
	s.calls++
	return errors.New("sink is down")
}

func TestLogger_SinkFailureDegradesSilently(t *testing.T) {
	sink := &failingSink{}
	logger := New(sink)

	// Record and flush must not panic or surface the sink error.
	logger.LoginSuccess(context.Background(), "user1", "viewer")
	logger.Flush(context.Background())

	assert.Equal(t, 1, sink.calls)
	assert.Equal(t, 0, logger.Pending(), "failed batch is counted, not re-queued")
}

func TestLogger_BufferPressureDropsOldest(t *testing.T) {
	sink := NewMemorySink()
	logger := New(sink, WithBufferSize(2))

	logger.LoginSuccess(context.Background(), "user1", "viewer")
	logger.LoginSuccess(context.Background(), "user2", "viewer")
	logger.LoginSuccess(context.Background(), "user3", "viewer")

	assert.Equal(t, int64(1), logger.Dropped())

	logger.Flush(context.Background())
	events := sink.Events()
	require.Len(t, events, 2)
	assert.Equal(t, "user2", events[0].ActorID)
	assert.Equal(t, "user3", events[1].ActorID)
}

func TestLogger_RunDrainsOnWake(t *testing.T) {
	sink := NewMemorySink()
	logger := New(sink, WithFlushInterval(time.Hour))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- logger.Run(ctx) }()

	logger.LoginSuccess(ctx, "user1", "viewer")

	require.Eventually(t, func() bool {
		return len(sink.Events()) == 1
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	err := <-done
	assert.ErrorIs(t, err, context.Canceled)
}
