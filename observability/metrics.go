package observability

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// FeedMetrics holds the metric instruments recorded by the feed client.
type FeedMetrics struct {
	framesTotal     metric.Int64Counter
	reconnectsTotal metric.Int64Counter
	droppedTotal    metric.Int64Counter
	sendsTotal      metric.Int64Counter
	connectionState metric.Int64UpDownCounter
}

// NewFeedMetrics creates the feed instruments on the given meter.
func NewFeedMetrics(meter metric.Meter) (*FeedMetrics, error) {
	framesTotal, err := meter.Int64Counter("feed.frames.total",
		metric.WithDescription("Total event frames received, by event name"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating feed.frames.total: %w", err)
	}

	reconnectsTotal, err := meter.Int64Counter("feed.reconnects.total",
		metric.WithDescription("Total reconnect attempts"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating feed.reconnects.total: %w", err)
	}

	droppedTotal, err := meter.Int64Counter("feed.records.dropped.total",
		metric.WithDescription("Records evicted from the bounded buffer"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating feed.records.dropped.total: %w", err)
	}

	sendsTotal, err := meter.Int64Counter("feed.sends.total",
		metric.WithDescription("Side-channel sends, by outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating feed.sends.total: %w", err)
	}

	connectionState, err := meter.Int64UpDownCounter("feed.connections.open",
		metric.WithDescription("Number of open stream connections (0 or 1)"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating feed.connections.open: %w", err)
	}

	return &FeedMetrics{
		framesTotal:     framesTotal,
		reconnectsTotal: reconnectsTotal,
		droppedTotal:    droppedTotal,
		sendsTotal:      sendsTotal,
		connectionState: connectionState,
	}, nil
}

// RecordFrame counts a received frame by event name.
func (m *FeedMetrics) RecordFrame(ctx context.Context, event string) {
	if m == nil {
		return
	}
	m.framesTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("event", event)))
}

// RecordReconnect counts a reconnect attempt.
func (m *FeedMetrics) RecordReconnect(ctx context.Context) {
	if m == nil {
		return
	}
	m.reconnectsTotal.Add(ctx, 1)
}

// RecordDropped counts records evicted from the buffer.
func (m *FeedMetrics) RecordDropped(ctx context.Context, n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.droppedTotal.Add(ctx, n)
}

// RecordSend counts a side-channel send by outcome ("ok", "parse_error",
// "request_error").
func (m *FeedMetrics) RecordSend(ctx context.Context, outcome string) {
	if m == nil {
		return
	}
	m.sendsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

// RecordStreamOpen marks the stream as open (+1) or closed (-1).
func (m *FeedMetrics) RecordStreamOpen(ctx context.Context, delta int64) {
	if m == nil {
		return
	}
	m.connectionState.Add(ctx, delta)
}
