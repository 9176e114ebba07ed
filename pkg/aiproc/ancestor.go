// AI span classification and nearest-AI-ancestor resolution
package aiproc

import (
	"github.com/andrewh/aispan/pkg/semconv"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// maxAncestorDepth bounds the parent-chain walk. Real traces are acyclic, but a
// corrupted parent graph must degrade to "no ancestor" rather than spin.
const maxAncestorDepth = 128

// isAISpan reports whether the span carries the AI marker attribute. No other
// heuristic is applied.
func isAISpan(span sdktrace.ReadOnlySpan) bool {
	for _, kv := range span.Attributes() {
		if string(kv.Key) == semconv.SpanType {
			return kv.Value.AsString() == semconv.SpanTypeAI
		}
	}
	return false
}

// nearestAIAncestor walks the parent chain through the registry starting at id
// and returns the first AI span found. Any gap — invalid ID, span no longer
// tracked, or an untracked parent link — terminates the walk with no result.
func nearestAIAncestor(reg *registry, id trace.SpanID) (sdktrace.ReadOnlySpan, bool) {
	for depth := 0; depth < maxAncestorDepth; depth++ {
		if !id.IsValid() {
			return nil, false
		}
		span, ok := reg.get(id)
		if !ok {
			return nil, false
		}
		if isAISpan(span) {
			return span, true
		}
		parent := span.Parent()
		if !parent.HasSpanID() {
			return nil, false
		}
		id = parent.SpanID()
	}
	return nil, false
}
