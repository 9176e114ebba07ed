// Tests for the offline span pipeline
package traceio

import (
	"bytes"
	"testing"

	"github.com/andrewh/aispan/pkg/semconv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func aiSpan(spanID, parentID, operation string, extra map[string]string) Span {
	s := span("t1", spanID, parentID, operation)
	s.Attributes = map[string]string{
		semconv.SpanType:           semconv.SpanTypeAI,
		semconv.GenAIOperationName: operation,
	}
	for k, v := range extra {
		s.Attributes[k] = v
	}
	return s
}

func TestProcess_DropsNonAISpans(t *testing.T) {
	t.Parallel()

	spans := []Span{
		span("t1", "a", "", "http.request"),
		aiSpan("b", "a", "chat", map[string]string{semconv.GenAIRequestModel: "gpt-4"}),
	}

	out := Process(spans, nil)
	require.Len(t, out, 1)
	assert.Equal(t, "llm gpt-4", out[0].Name)
	assert.Empty(t, out[0].ParentID, "non-AI parent with no AI ancestor demotes to root")
}

func TestProcess_DropsSpansWithoutOperation(t *testing.T) {
	t.Parallel()

	s := span("t1", "a", "", "mystery")
	s.Attributes = map[string]string{semconv.SpanType: semconv.SpanTypeAI}

	assert.Empty(t, Process([]Span{s}, nil))
}

func TestProcess_KeepsAIParent(t *testing.T) {
	t.Parallel()

	spans := []Span{
		aiSpan("a", "", "invoke_agent", map[string]string{semconv.GenAIAgentName: "planner"}),
		aiSpan("b", "a", "chat", nil),
	}

	out := Process(spans, nil)
	require.Len(t, out, 2)
	assert.Equal(t, "planner", out[0].Name)
	assert.Equal(t, "a", out[1].ParentID)
}

func TestProcess_ReparentsAcrossNonAIRun(t *testing.T) {
	t.Parallel()

	spans := []Span{
		aiSpan("a", "", "invoke_agent", nil),
		span("t1", "m1", "a", "plumbing"),
		span("t1", "m2", "m1", "plumbing"),
		aiSpan("b", "m2", "chat", nil),
	}

	out := Process(spans, nil)
	require.Len(t, out, 2)
	assert.Equal(t, "a", out[1].ParentID, "reparented onto the nearest AI ancestor")
}

func TestProcess_ParentOutsideDatasetDemotesToRoot(t *testing.T) {
	t.Parallel()

	out := Process([]Span{aiSpan("b", "gone", "chat", nil)}, nil)
	require.Len(t, out, 1)
	assert.Empty(t, out[0].ParentID)
}

func TestProcess_MalformedTokenCountWarnsAndDrops(t *testing.T) {
	t.Parallel()

	var warnings bytes.Buffer
	spans := []Span{
		aiSpan("a", "", "chat", map[string]string{semconv.GenAIInputTokens: "ten"}),
		aiSpan("b", "", "chat", map[string]string{semconv.GenAIInputTokens: "10", semconv.GenAIOutputTokens: "5"}),
	}

	out := Process(spans, &warnings)
	require.Len(t, out, 1)
	assert.Equal(t, "b", out[0].SpanID)
	assert.Contains(t, warnings.String(), "dropping span a")
	assert.Equal(t, "15", out[0].Attributes[semconv.OILLMTokenCountTotal])
}

func TestProcess_AttributesAreProjected(t *testing.T) {
	t.Parallel()

	out := Process([]Span{aiSpan("a", "", "execute_tool", map[string]string{
		semconv.GenAIToolName: "search",
	})}, nil)
	require.Len(t, out, 1)

	assert.Equal(t, "search", out[0].Name)
	assert.Equal(t, "TOOL", out[0].Attributes[semconv.OISpanKind])
	assert.Equal(t, "search", out[0].Attributes[semconv.OIToolName])
	assert.NotContains(t, out[0].Attributes, semconv.SpanType,
		"source attributes are replaced by the projection")
}
