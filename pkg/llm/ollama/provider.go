package ollama

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"live-assist-be/pkg/llm"
)

// OllamaProvider is the local/offline generation path. The response is
// newline-delimited JSON objects, one token per line, until a done flag.
type OllamaProvider struct {
	BaseURL   string
	ModelName string
	Client    *http.Client
}

var _ llm.Provider = &OllamaProvider{}

func NewOllamaProvider(baseURL, modelName string) *OllamaProvider {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	if modelName == "" {
		modelName = "llama3"
	}
	return &OllamaProvider{
		BaseURL:   baseURL,
		ModelName: modelName,
		Client: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

type ollamaChatRequest struct {
	Model    string          `json:"model"`
	Messages []ollamaMessage `json:"messages"`
	Stream   bool            `json:"stream"`
}

type ollamaMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ollamaChatResponse struct {
	Message ollamaMessage `json:"message"`
	Done    bool          `json:"done"`
}

func (p *OllamaProvider) StreamGenerate(ctx context.Context, prompt string, images []llm.Image, onToken llm.TokenFunc) (string, error) {
	// Ollama text models take no image parts; attachments are ignored.
	reqPayload := ollamaChatRequest{
		Model:    p.ModelName,
		Messages: []ollamaMessage{{Role: "user", Content: prompt}},
		Stream:   true,
	}
	payloadBytes, err := json.Marshal(reqPayload)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	url := p.BaseURL + "/api/chat"
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(payloadBytes))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("ollama request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("ollama error: status %d, body: %s", resp.StatusCode, string(bodyBytes))
	}

	var fullText strings.Builder
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var event ollamaChatResponse
		if err := json.Unmarshal([]byte(line), &event); err != nil {
			log.Printf("[WARN] Ollama stream: skipping malformed line: %v", err)
			continue
		}

		if event.Message.Content != "" {
			fullText.WriteString(event.Message.Content)
			onToken(event.Message.Content)
		}
		if event.Done {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return fullText.String(), fmt.Errorf("ollama stream read: %w", err)
	}

	return fullText.String(), nil
}
