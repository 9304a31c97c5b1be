package gemini

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStreamGenerateSSE(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		assert.Contains(t, req.URL.Path, ":streamGenerateContent")
		assert.Equal(t, "key", req.Header.Get("x-goog-api-key"))

		fmt.Fprintln(w, `data: {"candidates":[{"content":{"parts":[{"text":"Hel"}]}}]}`)
		fmt.Fprintln(w, `data: {malformed`)
		fmt.Fprintln(w, `data: {"candidates":[{"content":{"parts":[{"text":"lo"}]}}]}`)
	}))
	defer srv.Close()

	p := NewGeminiProvider("key", "gemini-1.5-flash")
	p.BaseURL = srv.URL

	var tokens []string
	full, err := p.StreamGenerate(context.Background(), "hi", nil, func(token string) {
		tokens = append(tokens, token)
	})
	require.NoError(t, err)
	assert.Equal(t, "Hello", full)
	assert.Equal(t, []string{"Hel", "lo"}, tokens)
}

func TestStreamGenerateFallsBackToSingleShot(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if strings.Contains(req.URL.Path, ":streamGenerateContent") {
			http.Error(w, "stream unavailable", http.StatusServiceUnavailable)
			return
		}
		fmt.Fprintln(w, `{"candidates":[{"content":{"parts":[{"text":"full answer"}]}}]}`)
	}))
	defer srv.Close()

	p := NewGeminiProvider("key", "")
	p.BaseURL = srv.URL

	var tokens []string
	full, err := p.StreamGenerate(context.Background(), "hi", nil, func(token string) {
		tokens = append(tokens, token)
	})
	require.NoError(t, err)
	assert.Equal(t, "full answer", full)
	// The whole text arrives as a single token on the fallback path.
	assert.Equal(t, []string{"full answer"}, tokens)
}

func TestStreamGenerateMissingApiKey(t *testing.T) {
	p := NewGeminiProvider("", "")
	_, err := p.StreamGenerate(context.Background(), "hi", nil, func(string) {})
	assert.Error(t, err)
}
