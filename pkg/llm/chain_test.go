package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedProvider struct {
	tokens []string
	err    error
}

func (s *scriptedProvider) StreamGenerate(ctx context.Context, prompt string, images []Image, onToken TokenFunc) (string, error) {
	full := ""
	for _, token := range s.tokens {
		full += token
		onToken(token)
	}
	return full, s.err
}

func TestChainFirstProviderSucceeds(t *testing.T) {
	chain := NewFallbackChain(
		&scriptedProvider{tokens: []string{"a", "b"}},
		&scriptedProvider{tokens: []string{"never"}},
	)

	var tokens []string
	full, err := chain.StreamGenerate(context.Background(), "q", nil, func(token string) {
		tokens = append(tokens, token)
	})
	require.NoError(t, err)
	assert.Equal(t, "ab", full)
	assert.Equal(t, []string{"a", "b"}, tokens)
}

func TestChainFallsThroughWhenNothingEmitted(t *testing.T) {
	chain := NewFallbackChain(
		&scriptedProvider{err: errors.New("down")},
		&scriptedProvider{tokens: []string{"backup"}},
	)

	var tokens []string
	full, err := chain.StreamGenerate(context.Background(), "q", nil, func(token string) {
		tokens = append(tokens, token)
	})
	require.NoError(t, err)
	assert.Equal(t, "backup", full)
	assert.Equal(t, []string{"backup"}, tokens)
}

func TestChainStopsAfterPartialOutput(t *testing.T) {
	chain := NewFallbackChain(
		&scriptedProvider{tokens: []string{"par", "tial"}, err: errors.New("cut off")},
		&scriptedProvider{tokens: []string{"never"}},
	)

	var tokens []string
	_, err := chain.StreamGenerate(context.Background(), "q", nil, func(token string) {
		tokens = append(tokens, token)
	})
	// A retry after partial output would duplicate it.
	assert.Error(t, err)
	assert.Equal(t, []string{"par", "tial"}, tokens)
}

func TestChainAllFailEmitsSingleErrorToken(t *testing.T) {
	chain := NewFallbackChain(
		&scriptedProvider{err: errors.New("one")},
		&scriptedProvider{err: errors.New("two")},
	)

	var tokens []string
	full, err := chain.StreamGenerate(context.Background(), "q", nil, func(token string) {
		tokens = append(tokens, token)
	})
	require.NoError(t, err)
	require.Len(t, tokens, 1)
	assert.Contains(t, tokens[0], "Sorry, I could not generate an answer")
	assert.Equal(t, tokens[0], full)
}

func TestChainContextCancelledShortCircuits(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	second := &scriptedProvider{tokens: []string{"never"}}
	chain := NewFallbackChain(
		&scriptedProvider{err: errors.New("down")},
		second,
	)

	var tokens []string
	_, err := chain.StreamGenerate(ctx, "q", nil, func(token string) {
		tokens = append(tokens, token)
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, tokens)
}
