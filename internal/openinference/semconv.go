// Package openinference holds the OpenInference and GenAI semantic convention
// keys consumed by the exporter, and classifies spans that carry them.
package openinference

import (
	"go.opentelemetry.io/otel/attribute"
)

// Attribute keys.
const (
	// SpanKind marks a span as an OpenInference (AI) span.
	SpanKind = attribute.Key("openinference.span.kind")

	// ProjectName is the resource attribute naming the Arize/Phoenix project
	// spans are filed under.
	ProjectName = attribute.Key("openinference.project.name")

	// GenAIPrompt holds the input messages of an AI span.
	GenAIPrompt = attribute.Key("gen_ai.prompt")

	// GenAICompletion holds the output messages of an AI span.
	GenAICompletion = attribute.Key("gen_ai.completion")
)

// Values of the SpanKind attribute.
const (
	SpanKindLLM       = "LLM"
	SpanKindChain     = "CHAIN"
	SpanKindTool      = "TOOL"
	SpanKindAgent     = "AGENT"
	SpanKindRetriever = "RETRIEVER"
	SpanKindEmbedding = "EMBEDDING"
	SpanKindReranker  = "RERANKER"
	SpanKindGuardrail = "GUARDRAIL"
	SpanKindEvaluator = "EVALUATOR"
)
