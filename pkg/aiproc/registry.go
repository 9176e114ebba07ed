// In-flight span registry keyed by span ID
// Entries live exactly from OnStart until end-of-life processing completes
package aiproc

import (
	"sync"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// registry is a concurrent spanID → live span index. Lookups on missing or
// already-removed IDs return absent; callers treat absence as "no information".
type registry struct {
	mu    sync.RWMutex
	spans map[trace.SpanID]sdktrace.ReadOnlySpan
}

func newRegistry() *registry {
	return &registry{spans: make(map[trace.SpanID]sdktrace.ReadOnlySpan)}
}

func (r *registry) put(id trace.SpanID, span sdktrace.ReadOnlySpan) {
	r.mu.Lock()
	r.spans[id] = span
	r.mu.Unlock()
}

func (r *registry) get(id trace.SpanID) (sdktrace.ReadOnlySpan, bool) {
	r.mu.RLock()
	span, ok := r.spans[id]
	r.mu.RUnlock()
	return span, ok
}

func (r *registry) remove(id trace.SpanID) {
	r.mu.Lock()
	delete(r.spans, id)
	r.mu.Unlock()
}

func (r *registry) len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.spans)
}
