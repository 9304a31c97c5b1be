package ollama

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStreamGenerateNDJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		assert.Equal(t, "/api/chat", req.URL.Path)

		var payload ollamaChatRequest
		require.NoError(t, json.NewDecoder(req.Body).Decode(&payload))
		assert.True(t, payload.Stream)
		require.Len(t, payload.Messages, 1)
		assert.Equal(t, "user", payload.Messages[0].Role)
		assert.Equal(t, "hi", payload.Messages[0].Content)

		fmt.Fprintln(w, `{"message":{"role":"assistant","content":"Hello"},"done":false}`)
		fmt.Fprintln(w, `{"message":{"role":"assistant","content":" world"},"done":false}`)
		fmt.Fprintln(w, `not valid json`)
		fmt.Fprintln(w, `{"message":{"role":"assistant","content":"!"},"done":true}`)
		fmt.Fprintln(w, `{"message":{"role":"assistant","content":"ignored after done"},"done":false}`)
	}))
	defer srv.Close()

	p := NewOllamaProvider(srv.URL, "llama3")

	var tokens []string
	full, err := p.StreamGenerate(context.Background(), "hi", nil, func(token string) {
		tokens = append(tokens, token)
	})
	require.NoError(t, err)
	assert.Equal(t, "Hello world!", full)
	assert.Equal(t, []string{"Hello", " world", "!"}, tokens)
}

func TestStreamGenerateNon200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	p := NewOllamaProvider(srv.URL, "llama3")
	_, err := p.StreamGenerate(context.Background(), "hi", nil, func(string) {})
	assert.Error(t, err)
}

func TestNewOllamaProviderDefaults(t *testing.T) {
	p := NewOllamaProvider("", "")
	assert.Equal(t, "http://localhost:11434", p.BaseURL)
	assert.Equal(t, "llama3", p.ModelName)
}
