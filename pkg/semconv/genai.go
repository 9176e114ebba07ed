// Package semconv holds the attribute-key constants for both span schemas:
// the provider-neutral gen_ai.* source schema and the OpenInference target schema.
package semconv

// Marker attribute identifying spans that belong to the AI subsystem.
const (
	SpanType   = "span.type"
	SpanTypeAI = "ai"
)

// Source schema: gen_ai.* attributes consumed by the transformer.
const (
	GenAIOperationName      = "gen_ai.operation.name"
	GenAIProviderName       = "gen_ai.provider.name"
	GenAIConversationID     = "gen_ai.conversation.id"
	GenAIRequestModel       = "gen_ai.request.model"
	GenAIResponseModel      = "gen_ai.response.model"
	GenAITemperature        = "gen_ai.request.temperature"
	GenAIStopSequences      = "gen_ai.request.stop_sequences"
	GenAIFinishReasons      = "gen_ai.response.finish_reasons"
	GenAIInputTokens        = "gen_ai.usage.input_tokens"
	GenAIOutputTokens       = "gen_ai.usage.output_tokens"
	GenAIInputMessages      = "gen_ai.input.messages"
	GenAIOutputMessages     = "gen_ai.output.messages"
	GenAISystemInstructions = "gen_ai.system_instructions"
	GenAIInputContent       = "gen_ai.input.content"
	GenAIInputTools         = "gen_ai.input.tools"
	GenAIAgentName          = "gen_ai.agent.name"
	GenAIToolName           = "gen_ai.tool.name"
	GenAIToolDescription    = "gen_ai.tool.description"
	GenAIToolArguments      = "gen_ai.tool.arguments"
	GenAIKBRetrieveQuery    = "gen_ai.knowledge_base.retrieve.input.query"
	GenAIKBName             = "gen_ai.knowledge_base.name"
)

// Operation names dispatched by the transformer. The set is closed; anything
// else falls through to the chain rule.
const (
	OpChat            = "chat"
	OpGenerateContent = "generate_content"
	OpEmbeddings      = "embeddings"
	OpKBRetrieve      = "knowledge_base_retrieve"
	OpExecuteTool     = "execute_tool"
	OpInvokeAgent     = "invoke_agent"
	OpCreateAgent     = "create_agent"
	OpCreateKB        = "create_knowledge_base"
	OpKBIngest        = "knowledge_base_ingest"
)
