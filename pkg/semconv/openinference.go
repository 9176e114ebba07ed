package semconv

// Target schema: OpenInference attributes produced by the transformer.
const (
	OISpanKind = "openinference.span.kind"

	OILLMModelName            = "llm.model_name"
	OILLMProvider             = "llm.provider"
	OILLMSystem               = "llm.system"
	OILLMInvocationParameters = "llm.invocation_parameters"
	OILLMTokenCountPrompt     = "llm.token_count.prompt"
	OILLMTokenCountCompletion = "llm.token_count.completion"
	OILLMTokenCountTotal      = "llm.token_count.total"
	OILLMInputMessages        = "llm.input_messages"
	OILLMOutputMessages       = "llm.output_messages"
	OILLMTools                = "llm.tools"

	OIEmbeddingModelName = "embedding.model_name"
	OIEmbeddingText      = "embedding.text"

	OIRetrievalQuery = "retrieval.query"

	OIToolName        = "tool.name"
	OIToolDescription = "tool.description"
	OIToolParameters  = "tool.parameters"

	OIChainName = "chain.name"

	OISessionID = "session.id"
)

// OpenInference span-kind values.
const (
	KindLLM       = "LLM"
	KindEmbedding = "EMBEDDING"
	KindRetriever = "RETRIEVER"
	KindTool      = "TOOL"
	KindAgent     = "AGENT"
	KindChain     = "CHAIN"
)
