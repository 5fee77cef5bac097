package openai_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/brandbeacon/brandbeacon/internal/ai"
	"github.com/brandbeacon/brandbeacon/internal/ai/openai"
	"github.com/brandbeacon/brandbeacon/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(baseURL string) config.OpenAIConfig {
	return config.OpenAIConfig{
		APIKey:  "sk-test",
		BaseURL: baseURL,
		Model:   "gpt-4-turbo-preview",
		Timeout: 5 * time.Second,
	}
}

func chatCompletion(text string, tokens int) map[string]any {
	return map[string]any{
		"choices": []map[string]any{
			{"message": map[string]string{"role": "assistant", "content": text}},
		},
		"usage": map[string]int{"total_tokens": tokens},
	}
}

func TestAsk_Success(t *testing.T) {
	var gotAuth, gotPath string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		json.NewEncoder(w).Encode(chatCompletion("1. Acme\n2. FreshCo", 84))
	}))
	defer srv.Close()

	p := openai.NewProvider(testConfig(srv.URL))

	answer, err := p.Ask(context.Background(), "best meal kits?")
	require.NoError(t, err)
	assert.Equal(t, "1. Acme\n2. FreshCo", answer.Text)
	assert.Equal(t, 84, answer.TokensUsed)

	assert.Equal(t, "Bearer sk-test", gotAuth)
	assert.Equal(t, "/chat/completions", gotPath)
	assert.Equal(t, "gpt-4-turbo-preview", gotBody["model"])
	messages := gotBody["messages"].([]any)
	require.Len(t, messages, 1)
	assert.Equal(t, "best meal kits?", messages[0].(map[string]any)["content"])
}

func TestGenerate_ReturnsText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(chatCompletion("meal_kit_delivery", 12))
	}))
	defer srv.Close()

	p := openai.NewProvider(testConfig(srv.URL))

	text, err := p.Generate(context.Background(), "classify this industry")
	require.NoError(t, err)
	assert.Equal(t, "meal_kit_delivery", text)
}

func TestAsk_QuotaExceeded(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	p := openai.NewProvider(testConfig(srv.URL))

	_, err := p.Ask(context.Background(), "question")
	assert.ErrorIs(t, err, ai.ErrQuotaExceeded)
}

func TestAsk_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	p := openai.NewProvider(testConfig(srv.URL))

	_, err := p.Ask(context.Background(), "question")
	assert.ErrorIs(t, err, ai.ErrProviderUnavailable)
}

func TestAsk_EmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
	}))
	defer srv.Close()

	p := openai.NewProvider(testConfig(srv.URL))

	_, err := p.Ask(context.Background(), "question")
	assert.ErrorIs(t, err, ai.ErrInvalidResponse)
}

func TestAsk_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Drain the body so the server detects the client disconnect and
		// cancels r.Context(); otherwise srv.Close() blocks forever.
		io.Copy(io.Discard, r.Body)
		<-r.Context().Done()
	}))
	defer srv.Close()

	p := openai.NewProvider(testConfig(srv.URL))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := p.Ask(ctx, "question")
	assert.ErrorIs(t, err, ai.ErrInferenceTimeout)
}

func TestProviderIdentity(t *testing.T) {
	p := openai.NewProvider(testConfig("http://unused"))
	assert.Equal(t, "chatgpt", p.Name())
	assert.Equal(t, 5*time.Second, p.Timeout())
}
