package gemini

import (
	"bufio"
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"live-assist-be/pkg/llm"
)

// GeminiProvider streams generation over the Gemini SSE endpoint and
// falls back to the non-streaming endpoint when stream setup fails
// before any token was delivered.
type GeminiProvider struct {
	ApiKey    string
	ModelName string
	BaseURL   string
	Client    *http.Client
}

var _ llm.Provider = &GeminiProvider{}

func NewGeminiProvider(apiKey, modelName string) *GeminiProvider {
	if modelName == "" {
		modelName = "gemini-1.5-flash"
	}
	return &GeminiProvider{
		ApiKey:    apiKey,
		ModelName: modelName,
		BaseURL:   "https://generativelanguage.googleapis.com",
		Client: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inlineData,omitempty"`
}

type geminiInlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
	Role  string       `json:"role,omitempty"`
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

func (p *GeminiProvider) buildRequest(prompt string, images []llm.Image) geminiRequest {
	parts := []geminiPart{{Text: prompt}}
	// Absence of attachments must not change the prompt shape.
	for _, img := range images {
		mime := img.MimeType
		if mime == "" {
			mime = "image/png"
		}
		parts = append(parts, geminiPart{
			InlineData: &geminiInlineData{
				MimeType: mime,
				Data:     base64.StdEncoding.EncodeToString(img.Data),
			},
		})
	}
	return geminiRequest{
		Contents: []geminiContent{{Parts: parts, Role: "user"}},
	}
}

func (p *GeminiProvider) StreamGenerate(ctx context.Context, prompt string, images []llm.Image, onToken llm.TokenFunc) (string, error) {
	if p.ApiKey == "" {
		return "", fmt.Errorf("gemini: missing API key")
	}

	fullText, err := p.stream(ctx, prompt, images, onToken)
	if err == nil {
		return fullText, nil
	}
	if fullText != "" {
		// Tokens already reached the caller; a retry would duplicate them.
		return fullText, err
	}

	log.Printf("[WARN] Gemini stream setup failed, falling back to single-shot: %v", err)
	text, genErr := p.generate(ctx, prompt, images)
	if genErr != nil {
		return "", fmt.Errorf("gemini stream failed (%v) and fallback failed: %w", err, genErr)
	}
	onToken(text)
	return text, nil
}

func (p *GeminiProvider) stream(ctx context.Context, prompt string, images []llm.Image, onToken llm.TokenFunc) (string, error) {
	payload, err := json.Marshal(p.buildRequest(prompt, images))
	if err != nil {
		return "", err
	}

	endpoint := fmt.Sprintf(
		"%s/v1beta/models/%s:streamGenerateContent?alt=sse",
		p.BaseURL, p.ModelName,
	)
	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewBuffer(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("x-goog-api-key", p.ApiKey)
	req.Header.Set("Content-Type", "application/json")

	res, err := p.Client.Do(req)
	if err != nil {
		return "", err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(res.Body)
		return "", fmt.Errorf("gemini stream error: status %d, body %s", res.StatusCode, string(body))
	}

	// The body is a server-push event stream: "data: {json}\n" lines.
	// The scanner buffers partial lines across network reads for us.
	var fullText strings.Builder
	scanner := bufio.NewScanner(res.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if data == "" {
			continue
		}

		var event geminiResponse
		if err := json.Unmarshal([]byte(data), &event); err != nil {
			// A malformed event must not abort the stream.
			log.Printf("[WARN] Gemini stream: skipping malformed event: %v", err)
			continue
		}

		for _, cand := range event.Candidates {
			for _, part := range cand.Content.Parts {
				if part.Text == "" {
					continue
				}
				fullText.WriteString(part.Text)
				onToken(part.Text)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return fullText.String(), fmt.Errorf("gemini stream read: %w", err)
	}

	return fullText.String(), nil
}

func (p *GeminiProvider) generate(ctx context.Context, prompt string, images []llm.Image) (string, error) {
	payload, err := json.Marshal(p.buildRequest(prompt, images))
	if err != nil {
		return "", err
	}

	endpoint := fmt.Sprintf(
		"%s/v1beta/models/%s:generateContent",
		p.BaseURL, p.ModelName,
	)
	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewBuffer(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("x-goog-api-key", p.ApiKey)
	req.Header.Set("Content-Type", "application/json")

	res, err := p.Client.Do(req)
	if err != nil {
		return "", err
	}
	defer res.Body.Close()

	resBody, err := io.ReadAll(res.Body)
	if err != nil {
		return "", err
	}
	if res.StatusCode != http.StatusOK {
		return "", fmt.Errorf("gemini error: status %d, body %s", res.StatusCode, string(resBody))
	}

	var geminiRes geminiResponse
	if err := json.Unmarshal(resBody, &geminiRes); err != nil {
		return "", err
	}
	if len(geminiRes.Candidates) == 0 || len(geminiRes.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini returned no candidates")
	}

	var text strings.Builder
	for _, part := range geminiRes.Candidates[0].Content.Parts {
		text.WriteString(part.Text)
	}
	return text.String(), nil
}
