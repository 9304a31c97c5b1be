package llm

import (
	"context"
	"fmt"
	"log"
)

// FallbackChain tries each provider in order. A later provider is only
// attempted when the earlier one failed before emitting any token; once
// tokens reached the caller a retry would duplicate output. When every
// path fails, onToken is invoked exactly once with a human-readable
// error string so the caller's token stream terminates deterministically
// instead of hanging.
type FallbackChain struct {
	Providers []Provider
}

var _ Provider = &FallbackChain{}

func NewFallbackChain(providers ...Provider) *FallbackChain {
	return &FallbackChain{Providers: providers}
}

func (c *FallbackChain) StreamGenerate(ctx context.Context, prompt string, images []Image, onToken TokenFunc) (string, error) {
	var lastErr error

	for _, provider := range c.Providers {
		emitted := false
		counting := func(token string) {
			emitted = true
			onToken(token)
		}

		fullText, err := provider.StreamGenerate(ctx, prompt, images, counting)
		if err == nil {
			return fullText, nil
		}
		lastErr = err
		log.Printf("[WARN] Generation provider failed: %v", err)

		if emitted {
			// Partial output already streamed; stop here.
			return fullText, err
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
	}

	errText := "Sorry, I could not generate an answer right now."
	if lastErr != nil {
		errText = fmt.Sprintf("Sorry, I could not generate an answer right now (%v).", lastErr)
	}
	onToken(errText)
	return errText, nil
}
