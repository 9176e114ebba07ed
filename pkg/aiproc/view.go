// Read-only span overlay substituting name, attributes, or parent on export
package aiproc

import (
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// spanView overlays a finished span with substituted name, attributes, and/or
// parent. Every other field resolves through the embedded original; embedding
// also carries the SDK's unexported interface method, so a view is accepted
// anywhere a ReadOnlySpan is. The original is never mutated.
type spanView struct {
	sdktrace.ReadOnlySpan

	name       string
	attrs      []attribute.KeyValue
	parent     trace.SpanContext
	renamed    bool
	reattr     bool
	reparented bool
}

var _ sdktrace.ReadOnlySpan = (*spanView)(nil)

// newSpanView wraps original with the given name and attribute overrides.
func newSpanView(original sdktrace.ReadOnlySpan, name string, attrs []attribute.KeyValue) *spanView {
	return &spanView{
		ReadOnlySpan: original,
		name:         name,
		attrs:        attrs,
		renamed:      true,
		reattr:       true,
	}
}

// withParent returns a copy of the view with the parent substituted. The copy
// stays a single flat overlay over the original span, so applying overrides in
// stages composes the same as applying them at once.
func (v *spanView) withParent(parent trace.SpanContext) *spanView {
	next := *v
	next.parent = parent
	next.reparented = true
	return &next
}

func (v *spanView) Name() string {
	if v.renamed {
		return v.name
	}
	return v.ReadOnlySpan.Name()
}

func (v *spanView) Attributes() []attribute.KeyValue {
	if v.reattr {
		return v.attrs
	}
	return v.ReadOnlySpan.Attributes()
}

func (v *spanView) Parent() trace.SpanContext {
	if v.reparented {
		return v.parent
	}
	return v.ReadOnlySpan.Parent()
}

// DroppedAttributes reports zero when the attribute set was substituted: the
// projection is complete by construction.
func (v *spanView) DroppedAttributes() int {
	if v.reattr {
		return 0
	}
	return v.ReadOnlySpan.DroppedAttributes()
}
