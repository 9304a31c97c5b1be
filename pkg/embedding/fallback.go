package embedding

import "context"

// FallbackProvider wraps a primary provider and drops to a deterministic
// local provider when the primary fails. Provider failures must never
// fail an ingest or a search; they just degrade its quality.
type FallbackProvider struct {
	Primary  Provider
	Fallback Provider
	OnError  func(err error)
}

func NewFallbackProvider(primary, fallback Provider, onError func(err error)) *FallbackProvider {
	return &FallbackProvider{
		Primary:  primary,
		Fallback: fallback,
		OnError:  onError,
	}
}

func (p *FallbackProvider) Embed(ctx context.Context, text string, taskType string) ([]float32, error) {
	values, err := p.Primary.Embed(ctx, text, taskType)
	if err == nil {
		return values, nil
	}
	if p.OnError != nil {
		p.OnError(err)
	}
	return p.Fallback.Embed(ctx, text, taskType)
}
