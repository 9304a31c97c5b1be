package factory

import (
	"live-assist-be/pkg/llm"
	"live-assist-be/pkg/llm/gemini"
	"live-assist-be/pkg/llm/ollama"
	"live-assist-be/pkg/llm/openai"
)

// Config carries everything a provider constructor may need.
type Config struct {
	Provider      string // "gemini", "ollama", "openai"
	GeminiApiKey  string
	GeminiModel   string
	OllamaBaseURL string
	OllamaModel   string
	OpenAIApiKey  string
	OpenAIBaseURL string
	OpenAIModel   string
}

// NewProvider builds the generation chain for the configured provider.
// Unknown provider values fall back to the primary hosted-model path
// (Gemini). Every chain ends with the local Ollama path so a hosted
// outage degrades instead of failing.
func NewProvider(cfg Config) llm.Provider {
	local := ollama.NewOllamaProvider(cfg.OllamaBaseURL, cfg.OllamaModel)

	switch cfg.Provider {
	case "ollama":
		return llm.NewFallbackChain(local)
	case "openai":
		return llm.NewFallbackChain(
			openai.NewOpenAIProvider(cfg.OpenAIApiKey, cfg.OpenAIBaseURL, cfg.OpenAIModel),
			local,
		)
	default:
		return llm.NewFallbackChain(
			gemini.NewGeminiProvider(cfg.GeminiApiKey, cfg.GeminiModel),
			local,
		)
	}
}
