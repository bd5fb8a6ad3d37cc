// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
)

// publishTimeout bounds a single PUBLISH so a slow broker never stalls an action.
const publishTimeout = 500 * time.Millisecond

// RedisSink publishes events as JSON on a Redis Pub/Sub channel.
type RedisSink struct {
	client  *redis.Client
	channel string
	logger  *slog.Logger

	published atomic.Int64
	failed    atomic.Int64
}

// Stats counts publish outcomes since the sink was created.
type Stats struct {
	Published int64
	Failed    int64
}

// NewRedisSink creates a sink publishing on channel.
func NewRedisSink(client *redis.Client, channel string, logger *slog.Logger) *RedisSink {
	return &RedisSink{client: client, channel: channel, logger: logger}
}

// Emit implements [Sink]. Failures are counted and logged, never returned.
func (sink *RedisSink) Emit(ctx context.Context, event Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		sink.failed.Add(1)
		sink.logger.WarnContext(ctx, "event_encode_failed",
			slog.String("type", string(event.Type)),
			slog.Any("error", err),
		)
		return
	}

	// Detach from request cancellation; the event outlives a finished response.
	publishCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	if err := sink.client.Publish(publishCtx, sink.channel, payload).Err(); err != nil {
		sink.failed.Add(1)
		sink.logger.WarnContext(ctx, "event_publish_failed",
			slog.String("type", string(event.Type)),
			slog.Int64("entity_id", event.EntityID),
			slog.Any("error", err),
		)
		return
	}

	sink.published.Add(1)
	sink.logger.DebugContext(ctx, "event_published",
		slog.String("id", event.ID),
		slog.String("type", string(event.Type)),
		slog.Int64("entity_id", event.EntityID),
	)
}

// Stats returns a snapshot of the publish counters.
func (sink *RedisSink) Stats() Stats {
	return Stats{
		Published: sink.published.Load(),
		Failed:    sink.failed.Load(),
	}
}
