package job

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"testing"
	"time"

	"github.com/brandbeacon/brandbeacon/internal/ai"
	"github.com/brandbeacon/brandbeacon/internal/ai/mock"
	"github.com/brandbeacon/brandbeacon/internal/cache"
	"github.com/brandbeacon/brandbeacon/pkg/models"
	"github.com/google/uuid"
)

func newAnswerProvider(name, answer string) models.Provider {
	return mock.NewMockProvider(name, answer)
}

func newFailingProvider(name string) models.Provider {
	return mock.NewFailingProvider(name, ai.ErrProviderUnavailable)
}

func newSlowProvider(name string, delay time.Duration, answer string) models.Provider {
	return mock.NewDelayedProvider(name, delay, answer)
}

func testQueries(jobID uuid.UUID, n int) []*models.Query {
	qs := make([]*models.Query, n)
	for i := range qs {
		qs[i] = &models.Query{
			ID:       uuid.New(),
			JobID:    jobID,
			Position: i,
			Text:     "test query " + uuid.NewString()[:8],
			Category: models.CategoryGeneral,
		}
	}
	return qs
}

func neverCancelled() bool { return false }

// --- Run tests ---

func TestExecutorRun_FanoutAcrossProviders(t *testing.T) {
	st := newMockStore()
	c := newMemCache()
	providers := []models.Provider{
		newAnswerProvider("chatgpt", "Acme is the best option."),
		newAnswerProvider("claude", "Try BrandX instead."),
	}
	e := NewExecutor(st, c, providers, testConfig())
	jobID := uuid.New()

	succeeded, err := e.Run(context.Background(), jobID, "Acme", testQueries(jobID, 5), neverCancelled, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if succeeded != 10 {
		t.Errorf("expected 10 successes, got %d", succeeded)
	}

	st.mu.Lock()
	results := st.results[jobID]
	st.mu.Unlock()
	if len(results) != 10 {
		t.Fatalf("expected 10 results persisted, got %d", len(results))
	}

	perProvider := map[string]int{}
	for _, r := range results {
		perProvider[r.Provider]++
		if !r.Success {
			t.Errorf("unexpected failure: %+v", r)
		}
	}
	if perProvider["chatgpt"] != 5 || perProvider["claude"] != 5 {
		t.Errorf("uneven fanout: %v", perProvider)
	}
}

func TestExecutorRun_DetectionFieldsFilled(t *testing.T) {
	st := newMockStore()
	e := NewExecutor(st, newMemCache(), []models.Provider{
		newAnswerProvider("chatgpt", "1. Acme — best pick.\n2. BrandX — runner up."),
	}, testConfig())
	jobID := uuid.New()

	_, err := e.Run(context.Background(), jobID, "Acme", testQueries(jobID, 1), neverCancelled, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	st.mu.Lock()
	r := st.results[jobID][0]
	st.mu.Unlock()

	if !r.Mentioned {
		t.Error("expected brand mention detected")
	}
	if r.BrandRank == nil || *r.BrandRank != 1 {
		t.Errorf("expected rank 1, got %v", r.BrandRank)
	}
	if len(r.Competitors) == 0 {
		t.Error("expected competitors extracted")
	}
	if r.Sentiment == nil {
		t.Error("expected sentiment set for a mention")
	}
}

func TestExecutorRun_ProviderErrorsRecorded(t *testing.T) {
	st := newMockStore()
	e := NewExecutor(st, newMemCache(), []models.Provider{
		newFailingProvider("chatgpt"),
	}, testConfig())
	jobID := uuid.New()

	succeeded, err := e.Run(context.Background(), jobID, "Acme", testQueries(jobID, 3), neverCancelled, nil)
	if err != nil {
		t.Fatalf("provider failures must not fail the run: %v", err)
	}
	if succeeded != 0 {
		t.Errorf("expected 0 successes, got %d", succeeded)
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	for _, r := range st.results[jobID] {
		if r.Success {
			t.Errorf("expected failure result: %+v", r)
		}
		if r.ErrorMessage == nil || *r.ErrorMessage == "" {
			t.Errorf("expected error message: %+v", r)
		}
	}
}

func TestExecutorRun_QuotaDisablesProvider(t *testing.T) {
	st := newMockStore()
	var calls int32
	quotaProvider := &mock.MockProvider{
		Name_: "chatgpt",
		AskFunc: func(_ context.Context, _ string) (models.Answer, error) {
			atomic.AddInt32(&calls, 1)
			return models.Answer{}, ai.ErrQuotaExceeded
		},
	}
	cfg := testConfig()
	cfg.BatchSize = 2
	e := NewExecutor(st, newMemCache(), []models.Provider{quotaProvider}, cfg)
	jobID := uuid.New()

	// 6 queries in 3 batches. The first batch burns quota; later batches
	// must skip the provider without calling it.
	_, err := e.Run(context.Background(), jobID, "Acme", testQueries(jobID, 6), neverCancelled, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := atomic.LoadInt32(&calls); got > 2 {
		t.Errorf("expected at most one batch of calls before disable, got %d", got)
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	if len(st.results[jobID]) != 6 {
		t.Errorf("disabled cells still need error results, got %d", len(st.results[jobID]))
	}
}

func TestExecutorRun_AuthFailureDisablesProvider(t *testing.T) {
	st := newMockStore()
	var calls int32
	authProvider := &mock.MockProvider{
		Name_: "claude",
		AskFunc: func(_ context.Context, _ string) (models.Answer, error) {
			atomic.AddInt32(&calls, 1)
			return models.Answer{}, ai.ErrAuthFailed
		},
	}
	cfg := testConfig()
	cfg.BatchSize = 2
	e := NewExecutor(st, newMemCache(), []models.Provider{authProvider}, cfg)
	jobID := uuid.New()

	// A bad key never recovers mid-job; later batches must not retry it.
	_, err := e.Run(context.Background(), jobID, "Acme", testQueries(jobID, 6), neverCancelled, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := atomic.LoadInt32(&calls); got > 2 {
		t.Errorf("expected at most one batch of calls before disable, got %d", got)
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	if len(st.results[jobID]) != 6 {
		t.Errorf("disabled cells still need error results, got %d", len(st.results[jobID]))
	}
	for _, r := range st.results[jobID] {
		if r.Success {
			t.Errorf("expected failure result: %+v", r)
		}
	}
}

func TestExecutorRun_BatchTimeoutSynthesizesResults(t *testing.T) {
	st := newMockStore()
	cfg := testConfig()
	cfg.BatchTimeout = 50 * time.Millisecond
	e := NewExecutor(st, newMemCache(), []models.Provider{
		newSlowProvider("chatgpt", 2*time.Second, "late answer"),
	}, cfg)
	jobID := uuid.New()

	start := time.Now()
	succeeded, err := e.Run(context.Background(), jobID, "Acme", testQueries(jobID, 2), neverCancelled, nil)
	elapsed := time.Since(start)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if succeeded != 0 {
		t.Errorf("expected 0 successes, got %d", succeeded)
	}
	if elapsed > time.Second {
		t.Errorf("run should abandon stragglers at the batch deadline, took %v", elapsed)
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	if len(st.results[jobID]) != 2 {
		t.Fatalf("expected 2 synthesized results, got %d", len(st.results[jobID]))
	}
	for _, r := range st.results[jobID] {
		if r.ErrorMessage == nil || *r.ErrorMessage != "batch timeout" {
			t.Errorf("expected batch timeout error, got %+v", r.ErrorMessage)
		}
	}
}

func TestExecutorRun_CacheHitSkipsProvider(t *testing.T) {
	st := newMockStore()
	c := newMemCache()
	var calls int32
	provider := &mock.MockProvider{
		Name_: "chatgpt",
		AskFunc: func(_ context.Context, _ string) (models.Answer, error) {
			atomic.AddInt32(&calls, 1)
			return models.Answer{Text: "fresh answer about Acme", TokensUsed: 5}, nil
		},
	}
	e := NewExecutor(st, c, []models.Provider{provider}, testConfig())
	jobID := uuid.New()
	qs := testQueries(jobID, 1)

	// Seed the answer cache for this exact (provider, query) pair.
	seeded, _ := json.Marshal(map[string]any{"text": "cached answer naming Acme", "tokens_used": 3})
	c.Set(context.Background(), cache.AnswerKey("chatgpt", qs[0].Text), seeded, time.Hour)

	succeeded, err := e.Run(context.Background(), jobID, "Acme", qs, neverCancelled, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if succeeded != 1 {
		t.Errorf("expected 1 success, got %d", succeeded)
	}
	if atomic.LoadInt32(&calls) != 0 {
		t.Errorf("provider must not be called on cache hit, got %d calls", calls)
	}

	st.mu.Lock()
	r := st.results[jobID][0]
	st.mu.Unlock()
	if !r.FromCache {
		t.Error("expected FromCache result")
	}
	if r.Answer != "cached answer naming Acme" {
		t.Errorf("unexpected answer: %q", r.Answer)
	}
	if !r.Mentioned {
		t.Error("detection must run on cached answers too")
	}
}

func TestExecutorRun_SuccessPopulatesCache(t *testing.T) {
	st := newMockStore()
	c := newMemCache()
	e := NewExecutor(st, c, []models.Provider{
		newAnswerProvider("chatgpt", "Acme works well."),
	}, testConfig())
	jobID := uuid.New()
	qs := testQueries(jobID, 1)

	if _, err := e.Run(context.Background(), jobID, "Acme", qs, neverCancelled, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, ok, _ := c.Get(context.Background(), cache.AnswerKey("chatgpt", qs[0].Text))
	if !ok {
		t.Error("expected answer cached after success")
	}
}

func TestExecutorRun_Cancellation(t *testing.T) {
	st := newMockStore()
	e := NewExecutor(st, newMemCache(), []models.Provider{
		newAnswerProvider("chatgpt", "Acme."),
	}, testConfig())
	jobID := uuid.New()

	_, err := e.Run(context.Background(), jobID, "Acme", testQueries(jobID, 4), func() bool { return true }, nil)
	if err != ErrCancelled {
		t.Errorf("expected ErrCancelled, got %v", err)
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	if len(st.results[jobID]) != 0 {
		t.Errorf("no batch should run after cancellation, got %d results", len(st.results[jobID]))
	}
}

func TestExecutorRun_PersistFailureIsFatal(t *testing.T) {
	st := newMockStore()
	st.createResultErr = context.DeadlineExceeded
	e := NewExecutor(st, newMemCache(), []models.Provider{
		newAnswerProvider("chatgpt", "Acme."),
	}, testConfig())
	jobID := uuid.New()

	_, err := e.Run(context.Background(), jobID, "Acme", testQueries(jobID, 2), neverCancelled, nil)
	if err == nil {
		t.Fatal("expected persistence error to propagate")
	}
}

func TestExecutorRun_BatchProgressReported(t *testing.T) {
	st := newMockStore()
	cfg := testConfig()
	cfg.BatchSize = 2
	e := NewExecutor(st, newMemCache(), []models.Provider{
		newAnswerProvider("chatgpt", "Acme."),
	}, cfg)
	jobID := uuid.New()

	var reports [][2]int
	_, err := e.Run(context.Background(), jobID, "Acme", testQueries(jobID, 5), neverCancelled,
		func(completed, total int) {
			reports = append(reports, [2]int{completed, total})
		})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := [][2]int{{1, 3}, {2, 3}, {3, 3}}
	if len(reports) != len(want) {
		t.Fatalf("expected %v, got %v", want, reports)
	}
	for i := range want {
		if reports[i] != want[i] {
			t.Errorf("batch report %d: expected %v, got %v", i, want[i], reports[i])
		}
	}
}
