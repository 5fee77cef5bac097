package gemini

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

// Provider implements models.Provider using the Gemini generateContent API.
type Provider struct {
	cfg    config.GeminiConfig
	client *resty.Client
}

func NewProvider(cfg config.GeminiConfig) *Provider {
	return &Provider{
		cfg: cfg,
		client: resty.New().
			SetBaseURL(cfg.BaseURL).
			SetTimeout(cfg.Timeout),
	}
}

func (p *Provider) Name() string { return "gemini" }

func (p *Provider) Timeout() time.Duration { return p.cfg.Timeout }

func (p *Provider) Ask(ctx context.Context, question string) (models.Answer, error) {
	resp, err := p.client.R().
		SetContext(ctx).
		SetQueryParam("key", p.cfg.APIKey).
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]any{
			"contents": []map[string]any{
				{"parts": []map[string]string{{"text": question}}},
			},
		}).
		Post(fmt.Sprintf("/models/%s:generateContent", p.cfg.Model))
	if err != nil {
		return models.Answer{}, ai.ClassifyTransportError(err)
	}
	if resp.StatusCode() != 200 {
		return models.Answer{}, ai.ClassifyStatus(resp.StatusCode())
	}

	text := gjson.Get(resp.String(), "candidates.0.content.parts.0.text").String()
	if text == "" {
		return models.Answer{}, fmt.Errorf("%w: no candidate text", ai.ErrInvalidResponse)
	}

	return models.Answer{
		Text:       text,
		TokensUsed: int(gjson.Get(resp.String(), "usageMetadata.totalTokenCount").Int()),
	}, nil
}

var _ models.Provider = (*Provider)(nil)
