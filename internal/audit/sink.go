package audit

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"sync"
)

// Sink persists batches of security events. Implementations must treat events
// as append-only and must never report partial success: either the batch
// landed or an error comes back and the pipeline counts the failure.
type Sink interface {
	Write(ctx context.Context, events []SecurityEvent) error
}

// LineSink serializes each event as one JSON line to a writer. It is the
// default sink, pointed at standard error.
type LineSink struct {
	mu  sync.Mutex
	out io.Writer
}

// NewLineSink creates a line-oriented sink writing to out.
func NewLineSink(out io.Writer) *LineSink {
	return &LineSink{out: out}
}

// NewStderrSink creates a line-oriented sink writing to standard error.
func NewStderrSink() *LineSink {
	return NewLineSink(os.Stderr)
}

func (s *LineSink) Write(_ context.Context, events []SecurityEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	enc := json.NewEncoder(s.out)
	for _, event := range events {
		if err := enc.Encode(event); err != nil {
			return err
		}
	}
	return nil
}
