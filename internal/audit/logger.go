package audit

import (
	"context"
	"log/slog"
	"time"

	"aegis/internal/audit/metrics"
	"aegis/internal/platform/middleware"
)

// Logger accepts security events and hands them to a background worker that
// writes through the configured sink. Record never blocks and never fails:
// when the buffer is full the oldest event is dropped and counted, and sink
// failures degrade silently. An authorization decision is never delayed or
// reverted because of the audit path.
type Logger struct {
	sink      Sink
	buf       *ringBuffer
	logger    *slog.Logger
	metrics   *metrics.Metrics
	batchSize int
	interval  time.Duration
	wake      chan struct{}
}

// Option configures a Logger.
type Option func(*Logger)

// WithLogger sets the slog logger used for internal pipeline failures.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Logger) {
		l.logger = logger
	}
}

// WithMetrics attaches Prometheus counters for emitted/dropped/failed events.
func WithMetrics(m *metrics.Metrics) Option {
	return func(l *Logger) {
		l.metrics = m
	}
}

// WithBufferSize bounds the in-flight event buffer.
func WithBufferSize(n int) Option {
	return func(l *Logger) {
		l.buf = newRingBuffer(n)
	}
}

// WithFlushInterval overrides how often the worker drains the buffer even
// without a wake signal.
func WithFlushInterval(d time.Duration) Option {
	return func(l *Logger) {
		l.interval = d
	}
}

// New constructs a Logger writing through sink.
func New(sink Sink, opts ...Option) *Logger {
	l := &Logger{
		sink:      sink,
		buf:       newRingBuffer(0),
		logger:    slog.Default(),
		batchSize: 256,
		interval:  time.Second,
		wake:      make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Record enqueues one event for the background worker. The timestamp is
// normalized to UTC and defaulted to now when unset.
func (l *Logger) Record(event SecurityEvent) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	event.Timestamp = event.Timestamp.UTC()

	if l.buf.enqueue(event) {
		if l.metrics != nil {
			l.metrics.IncDropped()
		}
	}
	if l.metrics != nil {
		l.metrics.IncEmitted()
	}

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Run drains the buffer until ctx is cancelled, then performs a final flush
// with a short deadline so shutdown does not hang on a dead sink.
func (l *Logger) Run(ctx context.Context) error {
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			flushCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			l.flush(flushCtx)
			cancel()
			return ctx.Err()
		case <-l.wake:
			l.flush(ctx)
		case <-ticker.C:
			l.flush(ctx)
		}
	}
}

// Flush synchronously drains buffered events to the sink. Shutdown and tests
// use it; request paths go through Record only.
func (l *Logger) Flush(ctx context.Context) {
	l.flush(ctx)
}

// Dropped returns the total number of events lost to buffer pressure.
func (l *Logger) Dropped() int64 {
	return l.buf.droppedTotal()
}

// Pending returns the number of buffered, unflushed events.
func (l *Logger) Pending() int {
	return l.buf.len()
}

func (l *Logger) flush(ctx context.Context) {
	for {
		batch := l.buf.dequeueBatch(l.batchSize)
		if len(batch) == 0 {
			return
		}
		if err := l.sink.Write(ctx, batch); err != nil {
			if l.metrics != nil {
				l.metrics.IncSinkFailures()
			}
			l.logger.Warn("audit sink write failed",
				"error", err,
				"batch_size", len(batch),
			)
			// The batch is lost. Re-queueing would stall the ring under a
			// persistently failing sink, so count it and move on.
			return
		}
	}
}

// -----------------------------------------------------------------------------
// Convenience emitters, one per canonical event type. Call sites never
// hand-construct SecurityEvents, so required fields cannot be omitted.
// -----------------------------------------------------------------------------

// LoginSuccess records a successful credential check.
func (l *Logger) LoginSuccess(ctx context.Context, actorID, actorRole string) {
	l.Record(SecurityEvent{
		Type:      EventLoginSuccess,
		ActorID:   actorID,
		ActorRole: actorRole,
		Outcome:   OutcomeSuccess,
		Metadata:  contextMetadata(ctx, nil),
	})
}

// LoginFailure records a failed credential check. The actor is whatever
// identifier the caller presented, which may not exist.
func (l *Logger) LoginFailure(ctx context.Context, actorID, reason string) {
	l.Record(SecurityEvent{
		Type:     EventLoginFailure,
		ActorID:  actorID,
		Outcome:  OutcomeFailure,
		Metadata: contextMetadata(ctx, map[string]string{"reason": reason}),
	})
}

// PermissionDenied records a denied view-permission check.
func (l *Logger) PermissionDenied(ctx context.Context, actorID, actorRole, targetType, targetID, reason string) {
	l.Record(SecurityEvent{
		Type:       EventPermissionDenied,
		ActorID:    actorID,
		ActorRole:  actorRole,
		TargetType: targetType,
		TargetID:   targetID,
		Outcome:    OutcomeDenied,
		Metadata:   contextMetadata(ctx, map[string]string{"reason": reason}),
	})
}

// ResourceAccessGranted records a granted permission check.
func (l *Logger) ResourceAccessGranted(ctx context.Context, actorID, actorRole, targetType, targetID, permission string) {
	l.Record(SecurityEvent{
		Type:       EventResourceAccessGranted,
		ActorID:    actorID,
		ActorRole:  actorRole,
		TargetType: targetType,
		TargetID:   targetID,
		Outcome:    OutcomeGranted,
		Metadata:   contextMetadata(ctx, map[string]string{"permission": permission}),
	})
}

// ResourceModificationDenied records a denied edit or delete check.
func (l *Logger) ResourceModificationDenied(ctx context.Context, actorID, actorRole, targetType, targetID, reason string) {
	l.Record(SecurityEvent{
		Type:       EventResourceModificationDenied,
		ActorID:    actorID,
		ActorRole:  actorRole,
		TargetType: targetType,
		TargetID:   targetID,
		Outcome:    OutcomeDenied,
		Metadata:   contextMetadata(ctx, map[string]string{"reason": reason}),
	})
}

// AdminAction records an elevated-tier action.
func (l *Logger) AdminAction(ctx context.Context, actorID, actorRole, action string) {
	l.Record(SecurityEvent{
		Type:      EventAdminAction,
		ActorID:   actorID,
		ActorRole: actorRole,
		Outcome:   OutcomeSuccess,
		Metadata:  contextMetadata(ctx, map[string]string{"action": action}),
	})
}

// ConfigurationError records a refused startup under insecure configuration.
func (l *Logger) ConfigurationError(ctx context.Context, detail string) {
	l.Record(SecurityEvent{
		Type:     EventProductionConfigError,
		ActorID:  "system",
		Outcome:  OutcomeFailure,
		Metadata: contextMetadata(ctx, map[string]string{"detail": detail}),
	})
}

// UnauthorizedAccessAttempt records a request rejected before authentication
// completed, e.g. a bad bearer token.
func (l *Logger) UnauthorizedAccessAttempt(ctx context.Context, reason string) {
	l.Record(SecurityEvent{
		Type:     EventUnauthorizedAccessAttempt,
		ActorID:  "anonymous",
		Outcome:  OutcomeFailure,
		Metadata: contextMetadata(ctx, map[string]string{"reason": reason}),
	})
}

// contextMetadata merges request-scoped metadata (correlation ID, client IP,
// user agent) with event-specific entries.
func contextMetadata(ctx context.Context, extra map[string]string) map[string]string {
	md := make(map[string]string, len(extra)+3)
	if requestID := middleware.GetRequestID(ctx); requestID != "" {
		md["request_id"] = requestID
	}
	if ip := middleware.GetClientIP(ctx); ip != "" {
		md["ip"] = ip
	}
	if client := middleware.GetClientName(ctx); client != "" {
		md["user_agent"] = client
	}
	for k, v := range extra {
		md[k] = v
	}
	if len(md) == 0 {
		return nil
	}
	return md
}
