package mock

import (
	"context"
	"time"

	"github.com/brandbeacon/brandbeacon/internal/ai"
	"github.com/brandbeacon/brandbeacon/pkg/models"
)

// MockProvider satisfies models.Provider for testing.
type MockProvider struct {
	Name_        string
	Timeout_     time.Duration
	AskFunc      func(ctx context.Context, question string) (models.Answer, error)
	GenerateFunc func(ctx context.Context, prompt string) (string, error)
}

func (m *MockProvider) Name() string { return m.Name_ }

func (m *MockProvider) Timeout() time.Duration {
	if m.Timeout_ == 0 {
		return 5 * time.Second
	}
	return m.Timeout_
}

func (m *MockProvider) Ask(ctx context.Context, question string) (models.Answer, error) {
	if m.AskFunc != nil {
		return m.AskFunc(ctx, question)
	}
	return models.Answer{Text: "mock answer", TokensUsed: 10}, nil
}

func (m *MockProvider) Generate(ctx context.Context, prompt string) (string, error) {
	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, prompt)
	}
	return "mock completion", nil
}

// NewMockProvider returns a MockProvider that answers every question with
// the given fixed text.
func NewMockProvider(name, answer string) *MockProvider {
	return &MockProvider{
		Name_: name,
		AskFunc: func(_ context.Context, _ string) (models.Answer, error) {
			return models.Answer{Text: answer, TokensUsed: len(answer) / 4}, nil
		},
	}
}

// NewFailingProvider returns a MockProvider that always returns the given error.
func NewFailingProvider(name string, err error) *MockProvider {
	return &MockProvider{
		Name_: name,
		AskFunc: func(_ context.Context, _ string) (models.Answer, error) {
			return models.Answer{}, err
		},
		GenerateFunc: func(_ context.Context, _ string) (string, error) {
			return "", err
		},
	}
}

// NewTimeoutProvider returns a MockProvider that blocks until context is cancelled.
func NewTimeoutProvider(name string) *MockProvider {
	return &MockProvider{
		Name_: name,
		AskFunc: func(ctx context.Context, _ string) (models.Answer, error) {
			<-ctx.Done()
			return models.Answer{}, ai.ErrInferenceTimeout
		},
		GenerateFunc: func(ctx context.Context, _ string) (string, error) {
			<-ctx.Done()
			return "", ai.ErrInferenceTimeout
		},
	}
}

// NewDelayedProvider returns a MockProvider that answers after the given delay,
// or fails with ErrInferenceTimeout if the context expires first.
func NewDelayedProvider(name string, delay time.Duration, answer string) *MockProvider {
	return &MockProvider{
		Name_: name,
		AskFunc: func(ctx context.Context, _ string) (models.Answer, error) {
			select {
			case <-time.After(delay):
				return models.Answer{Text: answer, TokensUsed: len(answer) / 4}, nil
			case <-ctx.Done():
				return models.Answer{}, ai.ErrInferenceTimeout
			}
		},
	}
}

// Compile-time checks.
var (
	_ models.Provider      = (*MockProvider)(nil)
	_ models.TextGenerator = (*MockProvider)(nil)
)
