package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/brandbeacon/brandbeacon/internal/ai"
	"github.com/brandbeacon/brandbeacon/internal/config"
	"github.com/brandbeacon/brandbeacon/pkg/models"
)

const (
	apiVersion = "2023-06-01"
	maxTokens  = 1024
)

// Provider implements models.Provider using the Anthropic messages API.
type Provider struct {
	cfg    config.AnthropicConfig
	client *http.Client
}

func NewProvider(cfg config.AnthropicConfig) *Provider {
	return &Provider{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

func (p *Provider) Name() string { return "claude" }

func (p *Provider) Timeout() time.Duration { return p.cfg.Timeout }

func (p *Provider) Ask(ctx context.Context, question string) (models.Answer, error) {
	return p.complete(ctx, question)
}

func (p *Provider) Generate(ctx context.Context, prompt string) (string, error) {
	answer, err := p.complete(ctx, prompt)
	if err != nil {
		return "", err
	}
	return answer.Text, nil
}

func (p *Provider) complete(ctx context.Context, prompt string) (models.Answer, error) {
	payload := messagesRequest{
		Model:     p.cfg.Model,
		MaxTokens: maxTokens,
		Messages: []message{
			{Role: "user", Content: prompt},
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return models.Answer{}, fmt.Errorf("encoding request: %w", err)
	}

	u := p.cfg.BaseURL + "/messages"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return models.Answer{}, fmt.Errorf("building request: %w", err)
	}
	httpReq.Header.Set("x-api-key", p.cfg.APIKey)
	httpReq.Header.Set("anthropic-version", apiVersion)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return models.Answer{}, ai.ClassifyTransportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.Answer{}, ai.ClassifyStatus(resp.StatusCode)
	}

	var msgResp messagesResponse
	if err := json.NewDecoder(resp.Body).Decode(&msgResp); err != nil {
		return models.Answer{}, fmt.Errorf("%w: %v", ai.ErrInvalidResponse, err)
	}

	var text string
	for _, block := range msgResp.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}
	if text == "" {
		return models.Answer{}, fmt.Errorf("%w: no text content", ai.ErrInvalidResponse)
	}

	return models.Answer{
		Text:       text,
		TokensUsed: msgResp.Usage.InputTokens + msgResp.Usage.OutputTokens,
	}, nil
}

// --- Anthropic request/response types ---

type messagesRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	Messages  []message `json:"messages"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Usage struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

var _ models.Provider = (*Provider)(nil)
var _ models.TextGenerator = (*Provider)(nil)
