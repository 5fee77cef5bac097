package perplexity

import (
	"context"
	"fmt"
	"time"

	"github.com/brandbeacon/brandbeacon/internal/ai"
	"github.com/brandbeacon/brandbeacon/internal/config"
	"github.com/brandbeacon/brandbeacon/pkg/models"
	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"
)

// Provider implements models.Provider using the Perplexity chat completions API.
type Provider struct {
	cfg    config.PerplexityConfig
	client *resty.Client
}

func NewProvider(cfg config.PerplexityConfig) *Provider {
	return &Provider{
		cfg: cfg,
		client: resty.New().
			SetBaseURL(cfg.BaseURL).
			SetTimeout(cfg.Timeout).
			SetAuthToken(cfg.APIKey),
	}
}

func (p *Provider) Name() string { return "perplexity" }

func (p *Provider) Timeout() time.Duration { return p.cfg.Timeout }

func (p *Provider) Ask(ctx context.Context, question string) (models.Answer, error) {
	resp, err := p.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]any{
			"model": p.cfg.Model,
			"messages": []map[string]string{
				{"role": "user", "content": question},
			},
		}).
		Post("/chat/completions")
	if err != nil {
		return models.Answer{}, ai.ClassifyTransportError(err)
	}
	if resp.StatusCode() != 200 {
		return models.Answer{}, ai.ClassifyStatus(resp.StatusCode())
	}

	text := gjson.Get(resp.String(), "choices.0.message.content").String()
	if text == "" {
		return models.Answer{}, fmt.Errorf("%w: no message content", ai.ErrInvalidResponse)
	}

	return models.Answer{
		Text:       text,
		TokensUsed: int(gjson.Get(resp.String(), "usage.total_tokens").Int()),
	}, nil
}

var _ models.Provider = (*Provider)(nil)
