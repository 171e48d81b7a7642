package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisSink appends security events to a Redis stream so an external
// collector can consume them with consumer groups.
type RedisSink struct {
	client redis.Cmdable
	stream string
}

// NewRedisSink creates a sink appending to the given stream.
func NewRedisSink(client redis.Cmdable, stream string) *RedisSink {
	return &RedisSink{client: client, stream: stream}
}

func (s *RedisSink) Write(ctx context.Context, events []SecurityEvent) error {
	pipe := s.client.Pipeline()
	for _, event := range events {
		payload, err := json.Marshal(event)
		if err != nil {
			return fmt.Errorf("marshal security event: %w", err)
		}
		pipe.XAdd(ctx, &redis.XAddArgs{
			Stream: s.stream,
			Values: map[string]any{
				"event_type": string(event.Type),
				"payload":    payload,
			},
		})
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("append to stream %s: %w", s.stream, err)
	}
	return nil
}
