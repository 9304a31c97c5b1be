package embedding

import "context"

// Task types passed through to providers that distinguish query and
// document embeddings (Gemini does, Ollama ignores them).
const (
	TaskRetrievalDocument = "RETRIEVAL_DOCUMENT"
	TaskRetrievalQuery    = "RETRIEVAL_QUERY"
)

// Provider defines the interface for generating text embeddings.
type Provider interface {
	Embed(ctx context.Context, text string, taskType string) ([]float32, error)
}
