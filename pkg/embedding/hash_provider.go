package embedding

import (
	"context"
	"hash/fnv"
	"strings"
	"unicode"
)

// HashProvider is a deterministic, offline embedding provider. Tokens
// are hashed into a fixed number of buckets and the resulting count
// vector is unit-normalized. It has no semantic understanding, but it
// is always available and stable across runs, which makes it the
// terminal fallback for every other provider.
type HashProvider struct {
	Dim int
}

func NewHashProvider(dim int) *HashProvider {
	if dim <= 0 {
		dim = 256
	}
	return &HashProvider{Dim: dim}
}

func (p *HashProvider) Embed(ctx context.Context, text string, taskType string) ([]float32, error) {
	vec := make([]float32, p.Dim)

	for _, token := range tokenize(text) {
		h := fnv.New32a()
		h.Write([]byte(token))
		vec[h.Sum32()%uint32(p.Dim)] += 1

		// Character bigrams smooth out exact-token mismatches a little.
		for i := 0; i+2 <= len(token); i++ {
			h := fnv.New32a()
			h.Write([]byte("2g:" + token[i:i+2]))
			vec[h.Sum32()%uint32(p.Dim)] += 0.25
		}
	}

	return normalizeVector(vec), nil
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
