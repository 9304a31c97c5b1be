package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"live-assist-be/pkg/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStreamGenerateSSE(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		assert.Equal(t, "/chat/completions", req.URL.Path)
		assert.Equal(t, "Bearer test-key", req.Header.Get("Authorization"))

		fmt.Fprintln(w, `data: {"choices":[{"delta":{"content":"Hel"}}]}`)
		fmt.Fprintln(w, ``)
		fmt.Fprintln(w, `data: {"choices":[{"delta":{"content":"lo"}}]}`)
		fmt.Fprintln(w, `data: {broken`)
		fmt.Fprintln(w, `data: [DONE]`)
	}))
	defer srv.Close()

	p := NewOpenAIProvider("test-key", srv.URL, "gpt-4o-mini")

	var tokens []string
	full, err := p.StreamGenerate(context.Background(), "hi", nil, func(token string) {
		tokens = append(tokens, token)
	})
	require.NoError(t, err)
	assert.Equal(t, "Hello", full)
	assert.Equal(t, []string{"Hel", "lo"}, tokens)
}

func TestBuildMessagesWithoutImagesIsPlainString(t *testing.T) {
	p := NewOpenAIProvider("", "", "")
	messages := p.buildMessages("hello", nil)

	require.Len(t, messages, 1)
	_, isString := messages[0].Content.(string)
	assert.True(t, isString)
}

func TestBuildMessagesWithImagesUsesParts(t *testing.T) {
	p := NewOpenAIProvider("", "", "")
	messages := p.buildMessages("what is on screen", []llm.Image{
		{MimeType: "image/png", Data: []byte{1, 2, 3}},
	})

	require.Len(t, messages, 1)
	parts, isParts := messages[0].Content.([]contentPart)
	require.True(t, isParts)
	require.Len(t, parts, 2)
	assert.Equal(t, "text", parts[0].Type)
	assert.Equal(t, "image_url", parts[1].Type)
	assert.Contains(t, parts[1].ImageURL.URL, "data:image/png;base64,")
}

func TestStreamGenerateSendsModelAndStream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		body, _ := io.ReadAll(req.Body)
		var payload chatCompletionRequest
		require.NoError(t, json.Unmarshal(body, &payload))
		assert.Equal(t, "my-model", payload.Model)
		assert.True(t, payload.Stream)
		fmt.Fprintln(w, `data: [DONE]`)
	}))
	defer srv.Close()

	p := NewOpenAIProvider("", srv.URL, "my-model")
	_, err := p.StreamGenerate(context.Background(), "hi", nil, func(string) {})
	require.NoError(t, err)
}
