// gen_ai → OpenInference span rewriting: name rules and attribute projections
// Dispatches over a closed table of operation names with a chain fallback
package aiproc

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/andrewh/aispan/pkg/semconv"
	"go.opentelemetry.io/otel/attribute"
)

// attrSet is a flat view of a span's string attributes.
type attrSet map[string]string

func (a attrSet) get(key string) (string, bool) {
	v, ok := a[key]
	return v, ok
}

// first returns the first non-empty value among the given keys.
func (a attrSet) first(keys ...string) string {
	for _, key := range keys {
		if v := a[key]; v != "" {
			return v
		}
	}
	return ""
}

// Result is the outcome of transforming one AI span: the new display name and
// the OpenInference attribute projection replacing the original attribute set.
type Result struct {
	Name  string
	Attrs []attribute.KeyValue
}

// operationRule pairs the name rule and attribute projection for one
// operation-name variant.
type operationRule struct {
	name  func(attrs attrSet, op string) string
	attrs func(attrs attrSet) ([]attribute.KeyValue, error)
}

// operationRules is the closed dispatch table. Unknown operation names fall
// through to chainRule with the raw operation name as the span name.
var operationRules = map[string]operationRule{
	semconv.OpChat:            {llmName, llmAttributes},
	semconv.OpGenerateContent: {llmName, llmAttributes},
	semconv.OpEmbeddings:      {embeddingName, embeddingAttributes},
	semconv.OpKBRetrieve:      {retrieverName, retrieverAttributes},
	semconv.OpExecuteTool:     {toolName, toolAttributes},
	semconv.OpInvokeAgent:     {agentName, agentAttributes},
	semconv.OpCreateAgent:     {agentName, agentAttributes},
	semconv.OpCreateKB:        {chainName, chainAttributes},
	semconv.OpKBIngest:        {chainName, chainAttributes},
}

// Transform maps a span's source attributes to its OpenInference form.
// ok is false when the span has no operation name and cannot be expressed in
// the target schema at all. A non-nil error means the span carried malformed
// numeric token counts; the caller drops the span (see DESIGN.md).
func Transform(source map[string]string) (Result, bool, error) {
	attrs := attrSet(source)
	op, ok := attrs.get(semconv.GenAIOperationName)
	if !ok {
		return Result{}, false, nil
	}

	rule, known := operationRules[op]
	if !known {
		rule = operationRule{
			name:  func(_ attrSet, op string) string { return op },
			attrs: chainAttributes,
		}
	}

	out, err := rule.attrs(attrs)
	if err != nil {
		return Result{}, false, fmt.Errorf("operation %q: %w", op, err)
	}
	return Result{Name: rule.name(attrs, op), Attrs: out}, true, nil
}

// modelName resolves the model, preferring the request model over the response model.
func modelName(attrs attrSet) string {
	return attrs.first(semconv.GenAIRequestModel, semconv.GenAIResponseModel)
}

func llmName(attrs attrSet, _ string) string {
	if model := modelName(attrs); model != "" {
		return "llm " + model
	}
	return "llm"
}

func embeddingName(attrs attrSet, _ string) string {
	if model := modelName(attrs); model != "" {
		return "Embedding " + model
	}
	return "Embedding"
}

func retrieverName(_ attrSet, _ string) string {
	return "Retriever"
}

func toolName(attrs attrSet, _ string) string {
	if name, ok := attrs.get(semconv.GenAIToolName); ok {
		return name
	}
	return "tool"
}

func agentName(attrs attrSet, _ string) string {
	if name, ok := attrs.get(semconv.GenAIAgentName); ok {
		return name
	}
	return "Agent"
}

// chainName prefers the knowledge-base name, falling back to the operation
// name with underscores spaced out.
func chainName(attrs attrSet, op string) string {
	if name, ok := attrs.get(semconv.GenAIKBName); ok {
		return name
	}
	return strings.ReplaceAll(op, "_", " ")
}

func llmAttributes(attrs attrSet) ([]attribute.KeyValue, error) {
	out := []attribute.KeyValue{attribute.String(semconv.OISpanKind, semconv.KindLLM)}

	if model := modelName(attrs); model != "" {
		out = append(out, attribute.String(semconv.OILLMModelName, model))
	}
	if provider, ok := attrs.get(semconv.GenAIProviderName); ok {
		out = append(out, attribute.String(semconv.OILLMProvider, provider))
	}
	if messages, ok := attrs.get(semconv.GenAIInputMessages); ok {
		out = append(out, flattenMessages(semconv.OILLMInputMessages, messages)...)
	}
	if messages, ok := attrs.get(semconv.GenAIOutputMessages); ok {
		out = append(out, flattenMessages(semconv.OILLMOutputMessages, messages)...)
	}
	if system, ok := attrs.get(semconv.GenAISystemInstructions); ok {
		out = append(out, attribute.String(semconv.OILLMSystem, system))
	}
	if params, ok := invocationParameters(attrs); ok {
		out = append(out, attribute.String(semconv.OILLMInvocationParameters, params))
	}

	tokens, err := tokenCounts(attrs)
	if err != nil {
		return nil, err
	}
	out = append(out, tokens...)

	if conversation, ok := attrs.get(semconv.GenAIConversationID); ok {
		out = append(out, attribute.String(semconv.OISessionID, conversation))
	}
	if tools, ok := attrs.get(semconv.GenAIInputTools); ok {
		out = append(out, flattenTools(tools)...)
	}
	return out, nil
}

// tokenCounts emits prompt and completion counts, plus their total when both
// are present. Malformed numeric text fails the span rather than defaulting.
func tokenCounts(attrs attrSet) ([]attribute.KeyValue, error) {
	var out []attribute.KeyValue
	var input, output int64
	var haveInput, haveOutput bool

	if v, ok := attrs.get(semconv.GenAIInputTokens); ok {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parsing input token count %q: %w", v, err)
		}
		input, haveInput = n, true
		out = append(out, attribute.Int64(semconv.OILLMTokenCountPrompt, n))
	}
	if v, ok := attrs.get(semconv.GenAIOutputTokens); ok {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parsing output token count %q: %w", v, err)
		}
		output, haveOutput = n, true
		out = append(out, attribute.Int64(semconv.OILLMTokenCountCompletion, n))
	}
	if haveInput && haveOutput {
		out = append(out, attribute.Int64(semconv.OILLMTokenCountTotal, input+output))
	}
	return out, nil
}

func embeddingAttributes(attrs attrSet) ([]attribute.KeyValue, error) {
	out := []attribute.KeyValue{attribute.String(semconv.OISpanKind, semconv.KindEmbedding)}

	if model := modelName(attrs); model != "" {
		out = append(out, attribute.String(semconv.OIEmbeddingModelName, model))
	}
	if text := attrs.first(semconv.GenAIInputContent, semconv.GenAIInputMessages); text != "" {
		out = append(out, attribute.String(semconv.OIEmbeddingText, text))
	}
	return out, nil
}

func retrieverAttributes(attrs attrSet) ([]attribute.KeyValue, error) {
	out := []attribute.KeyValue{attribute.String(semconv.OISpanKind, semconv.KindRetriever)}

	if query, ok := attrs.get(semconv.GenAIKBRetrieveQuery); ok {
		out = append(out, attribute.String(semconv.OIRetrievalQuery, query))
	}
	return out, nil
}

func toolAttributes(attrs attrSet) ([]attribute.KeyValue, error) {
	out := []attribute.KeyValue{attribute.String(semconv.OISpanKind, semconv.KindTool)}

	if name, ok := attrs.get(semconv.GenAIToolName); ok {
		out = append(out, attribute.String(semconv.OIToolName, name))
	}
	if desc, ok := attrs.get(semconv.GenAIToolDescription); ok {
		out = append(out, attribute.String(semconv.OIToolDescription, desc))
	}
	if args, ok := attrs.get(semconv.GenAIToolArguments); ok {
		out = append(out, attribute.String(semconv.OIToolParameters, args))
	}
	return out, nil
}

func agentAttributes(attrs attrSet) ([]attribute.KeyValue, error) {
	out := []attribute.KeyValue{attribute.String(semconv.OISpanKind, semconv.KindAgent)}

	if name, ok := attrs.get(semconv.GenAIAgentName); ok {
		out = append(out, attribute.String(semconv.OIChainName, name))
	}
	return out, nil
}

func chainAttributes(attrs attrSet) ([]attribute.KeyValue, error) {
	out := []attribute.KeyValue{attribute.String(semconv.OISpanKind, semconv.KindChain)}

	if name, ok := attrs.get(semconv.GenAIKBName); ok {
		out = append(out, attribute.String(semconv.OIChainName, name))
	}
	return out, nil
}

// spanAttrSet projects a span's string attributes into an attrSet. Non-string
// values are ignored; the source schema records everything as strings.
func spanAttrSet(attrs []attribute.KeyValue) attrSet {
	set := make(attrSet, len(attrs))
	for _, kv := range attrs {
		if kv.Value.Type() == attribute.STRING {
			set[string(kv.Key)] = kv.Value.AsString()
		}
	}
	return set
}
