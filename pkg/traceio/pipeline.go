// Offline application of the AI span pipeline to already-exported spans
// The whole input file stands in for the live registry during ancestry walks
package traceio

import (
	"fmt"
	"io"

	"github.com/andrewh/aispan/pkg/aiproc"
	"github.com/andrewh/aispan/pkg/semconv"
)

// maxAncestorDepth mirrors the live processor's walk bound.
const maxAncestorDepth = 128

// Process classifies, transforms, and reparents parsed spans the same way the
// live processor does, using the full input as the ancestry index. Non-AI
// spans, spans without an operation name, and spans with malformed token
// counts are dropped; only the last of these is worth a warning on w (may be
// nil).
func Process(spans []Span, w io.Writer) []Span {
	index := make(map[string]Span, len(spans))
	for _, s := range spans {
		index[s.SpanID] = s
	}

	out := make([]Span, 0, len(spans))
	for _, s := range spans {
		if !isAI(s) {
			continue
		}

		result, ok, err := aiproc.Transform(s.Attributes)
		if err != nil {
			if w != nil {
				_, _ = fmt.Fprintf(w, "warning: dropping span %s: %v\n", s.SpanID, err)
			}
			continue
		}
		if !ok {
			continue
		}

		transformed := s
		transformed.Name = result.Name
		transformed.Attributes = make(map[string]string, len(result.Attrs))
		for _, kv := range result.Attrs {
			transformed.Attributes[string(kv.Key)] = kv.Value.Emit()
		}
		transformed.ParentID = resolveParent(index, s.ParentID)

		out = append(out, transformed)
	}
	return out
}

// resolveParent keeps an AI parent as-is, otherwise substitutes the nearest AI
// ancestor, degrading to root when the chain has none.
func resolveParent(index map[string]Span, parentID string) string {
	if parentID == "" {
		return ""
	}
	if parent, ok := index[parentID]; ok && isAI(parent) {
		return parentID
	}

	id := parentID
	for depth := 0; depth < maxAncestorDepth; depth++ {
		if id == "" {
			return ""
		}
		span, ok := index[id]
		if !ok {
			return ""
		}
		if isAI(span) {
			return id
		}
		id = span.ParentID
	}
	return ""
}

func isAI(s Span) bool {
	return s.Attributes[semconv.SpanType] == semconv.SpanTypeAI
}
