package ai

import (
	"context"
	"errors"
	"fmt"

	"github.com/brandbeacon/brandbeacon/pkg/models"
)

// FallbackGenerator tries each wrapped generator in order and returns the
// first successful completion. Context cancellation stops the chain.
type FallbackGenerator struct {
	generators []models.TextGenerator
}

func NewFallbackGenerator(generators ...models.TextGenerator) *FallbackGenerator {
	return &FallbackGenerator{generators: generators}
}

func (g *FallbackGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	var errs []error
	for _, gen := range g.generators {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		text, err := gen.Generate(ctx, prompt)
		if err == nil {
			return text, nil
		}
		errs = append(errs, err)
	}
	return "", fmt.Errorf("all generators failed: %w", errors.Join(errs...))
}

var _ models.TextGenerator = (*FallbackGenerator)(nil)
