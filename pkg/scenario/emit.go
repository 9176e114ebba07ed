// Emits a scenario through an OpenTelemetry tracer with synthetic timestamps
package scenario

import (
	"context"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/andrewh/aispan/pkg/semconv"
)

// Emitter replays scenario trees as spans. Timestamps are synthetic: the
// whole trace is backdated so it appears to have just completed, without
// sleeping for the configured durations.
type Emitter struct {
	Tracer trace.Tracer

	counter atomic.Int64
}

// NewEmitter returns an Emitter using the given tracer.
func NewEmitter(tracer trace.Tracer) *Emitter {
	return &Emitter{Tracer: tracer}
}

// Emit replays every root in the scenario. Roots run sequentially, each
// subtree backdated to end at the moment Emit was called.
func (e *Emitter) Emit(ctx context.Context, cfg *Config) error {
	now := time.Now()
	for i := range cfg.Trace {
		total := subtreeDuration(&cfg.Trace[i])
		e.emitSpan(ctx, &cfg.Trace[i], now.Add(-total))
	}
	return ctx.Err()
}

// emitSpan starts the span at start, replays its children back to back, and
// ends it after its own duration. Returns the span's end time.
func (e *Emitter) emitSpan(ctx context.Context, cfg *SpanConfig, start time.Time) time.Time {
	ctx, span := e.Tracer.Start(ctx, cfg.label(),
		trace.WithTimestamp(start),
		trace.WithAttributes(e.spanAttributes(cfg)...))

	cursor := start
	for i := range cfg.Children {
		cursor = e.emitSpan(ctx, &cfg.Children[i], cursor)
	}

	end := cursor.Add(cfg.duration())
	span.End(trace.WithTimestamp(end))
	return end
}

// spanAttributes builds the span's attribute set, expanding {uuid} and {n}
// placeholders in configured values.
func (e *Emitter) spanAttributes(cfg *SpanConfig) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, len(cfg.Attributes)+2)
	if cfg.AI {
		attrs = append(attrs, attribute.String(semconv.SpanType, semconv.SpanTypeAI))
	}
	if cfg.Operation != "" {
		attrs = append(attrs, attribute.String(semconv.GenAIOperationName, cfg.Operation))
	}
	for k, v := range cfg.Attributes {
		attrs = append(attrs, attribute.String(k, e.expand(v)))
	}
	return attrs
}

// expand substitutes {uuid} with a fresh UUID and {n} with a monotonically
// increasing counter, both per occurrence.
func (e *Emitter) expand(value string) string {
	for strings.Contains(value, "{uuid}") {
		value = strings.Replace(value, "{uuid}", uuid.NewString(), 1)
	}
	for strings.Contains(value, "{n}") {
		n := e.counter.Add(1)
		value = strings.Replace(value, "{n}", strconv.FormatInt(n, 10), 1)
	}
	return value
}

// subtreeDuration is the total wall-clock span of a subtree: children run
// back to back, then the span's own duration elapses before it ends.
func subtreeDuration(cfg *SpanConfig) time.Duration {
	total := cfg.duration()
	for i := range cfg.Children {
		total += subtreeDuration(&cfg.Children[i])
	}
	return total
}
