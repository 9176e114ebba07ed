// Package aiproc rewrites AI-tagged spans from gen_ai.* semantic conventions to
// the OpenInference schema and re-derives their parentage so exported AI spans
// form a contiguous subtree. Non-AI spans are tracked only for ancestry and are
// not exported by this stage.
package aiproc

import (
	"context"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// Processor is a sdktrace.SpanProcessor that transforms AI spans on end and
// hands the rewritten view to the delegate exporter. Each surviving span is
// exported at most once, synchronously within its own end callback.
type Processor struct {
	exporter sdktrace.SpanExporter
	reg      *registry
}

var _ sdktrace.SpanProcessor = (*Processor)(nil)

// New creates a Processor exporting rewritten spans through exporter.
func New(exporter sdktrace.SpanExporter) *Processor {
	return &Processor{
		exporter: exporter,
		reg:      newRegistry(),
	}
}

// OnStart registers the live span so concurrent ancestor walks can reach it.
func (p *Processor) OnStart(_ context.Context, span sdktrace.ReadWriteSpan) {
	p.reg.put(span.SpanContext().SpanID(), span)
}

// OnEnd classifies the finished span, transforms and reparents it if it is an
// AI span, exports the resulting view, and evicts the registry entry. Every
// failure is scoped to the single span: it is dropped, never propagated.
func (p *Processor) OnEnd(span sdktrace.ReadOnlySpan) {
	defer p.reg.remove(span.SpanContext().SpanID())

	if !isAISpan(span) {
		return
	}

	result, ok, err := Transform(spanAttrSet(span.Attributes()))
	if err != nil || !ok {
		// No operation name, or malformed token counts: the span cannot
		// be expressed in the target schema and is not exported.
		return
	}

	view := newSpanView(span, result.Name, result.Attrs)
	p.export(p.reparent(view, span.Parent()))
}

// reparent decides the exported view's parent. An AI parent passes through
// unchanged; otherwise the nearest AI ancestor is substituted, and with no AI
// ancestor the span is demoted to a root.
func (p *Processor) reparent(view *spanView, parent trace.SpanContext) *spanView {
	if !parent.HasSpanID() || !parent.SpanID().IsValid() {
		return view
	}
	if parentSpan, ok := p.reg.get(parent.SpanID()); ok && isAISpan(parentSpan) {
		return view
	}
	if ancestor, ok := nearestAIAncestor(p.reg, parent.SpanID()); ok {
		return view.withParent(ancestor.SpanContext())
	}
	return view.withParent(trace.SpanContext{})
}

func (p *Processor) export(view *spanView) {
	_ = p.exporter.ExportSpans(context.Background(), []sdktrace.ReadOnlySpan{view})
}

// Shutdown shuts down the delegate exporter.
func (p *Processor) Shutdown(ctx context.Context) error {
	return p.exporter.Shutdown(ctx)
}

// ForceFlush is a no-op: spans are exported synchronously on end.
func (p *Processor) ForceFlush(context.Context) error {
	return nil
}
