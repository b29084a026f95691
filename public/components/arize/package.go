// Package arize registers the arize tracer, which exports spans to Arize with
// AI message payloads converted to the GenAI message format.
package arize

import (
	// Bring in the internal plugin definitions.
	_ "github.com/tracing-exp/genai-export/internal/impl/arize"
)
