package llm

import "context"

// Image is an inline binary attachment passed to providers that accept
// multimodal input. Providers without image support ignore them.
type Image struct {
	MimeType string
	Data     []byte
}

// TokenFunc receives incremental text as the provider streams it.
type TokenFunc func(token string)

// Provider is the contract for any streaming text-generation backend.
// StreamGenerate invokes onToken for each increment and returns the
// accumulated full text.
type Provider interface {
	StreamGenerate(ctx context.Context, prompt string, images []Image, onToken TokenFunc) (string, error)
}
