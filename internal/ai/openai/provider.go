package openai

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

// Provider implements models.Provider using the OpenAI chat completions API.
type Provider struct {
	cfg    config.OpenAIConfig
	client *http.Client
}

func NewProvider(cfg config.OpenAIConfig) *Provider {
	return &Provider{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

func (p *Provider) Name() string { return "chatgpt" }

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
	payload := chatRequest{
		Model: p.cfg.Model,
		Messages: []chatMessage{
			{Role: "user", Content: prompt},
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return models.Answer{}, fmt.Errorf("encoding request: %w", err)
	}

	u := p.cfg.BaseURL + "/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return models.Answer{}, fmt.Errorf("building request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+p.cfg.APIKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return models.Answer{}, ai.ClassifyTransportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.Answer{}, ai.ClassifyStatus(resp.StatusCode)
	}

	var chatResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return models.Answer{}, fmt.Errorf("%w: %v", ai.ErrInvalidResponse, err)
	}
	if len(chatResp.Choices) == 0 {
		return models.Answer{}, fmt.Errorf("%w: empty choices", ai.ErrInvalidResponse)
	}

	return models.Answer{
		Text:       chatResp.Choices[0].Message.Content,
		TokensUsed: chatResp.Usage.TotalTokens,
	}, nil
}

// --- OpenAI request/response types ---

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Usage struct {
		TotalTokens int `json:"total_tokens"`
	} `json:"usage"`
}

var _ models.Provider = (*Provider)(nil)
var _ models.TextGenerator = (*Provider)(nil)
