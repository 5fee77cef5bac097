package factory

import (
	"errors"

	"github.com/brandbeacon/brandbeacon/internal/ai"
	"github.com/brandbeacon/brandbeacon/internal/ai/anthropic"
	"github.com/brandbeacon/brandbeacon/internal/ai/gemini"
	"github.com/brandbeacon/brandbeacon/internal/ai/openai"
	"github.com/brandbeacon/brandbeacon/internal/ai/perplexity"
	"github.com/brandbeacon/brandbeacon/internal/config"
	"github.com/brandbeacon/brandbeacon/pkg/models"
)

// NewProviders constructs one provider per configured API key, in stable
// order. Called once at server startup.
func NewProviders(cfg config.ProvidersConfig) ([]models.Provider, error) {
	var providers []models.Provider

	if cfg.OpenAI.APIKey != "" {
		providers = append(providers, openai.NewProvider(cfg.OpenAI))
	}
	if cfg.Anthropic.APIKey != "" {
		providers = append(providers, anthropic.NewProvider(cfg.Anthropic))
	}
	if cfg.Gemini.APIKey != "" {
		providers = append(providers, gemini.NewProvider(cfg.Gemini))
	}
	if cfg.Perplexity.APIKey != "" {
		providers = append(providers, perplexity.NewProvider(cfg.Perplexity))
	}

	if len(providers) == 0 {
		return nil, errors.New("no ai providers configured: set at least one provider API key")
	}
	return providers, nil
}

// NewTextGenerator builds the generator used for industry classification and
// query paraphrasing, preferring OpenAI and falling back to Anthropic.
func NewTextGenerator(cfg config.ProvidersConfig) (models.TextGenerator, error) {
	var generators []models.TextGenerator

	if cfg.OpenAI.APIKey != "" {
		generators = append(generators, openai.NewProvider(cfg.OpenAI))
	}
	if cfg.Anthropic.APIKey != "" {
		generators = append(generators, anthropic.NewProvider(cfg.Anthropic))
	}

	if len(generators) == 0 {
		return nil, errors.New("no text generator available: set OPENAI_API_KEY or ANTHROPIC_API_KEY")
	}
	return ai.NewFallbackGenerator(generators...), nil
}
