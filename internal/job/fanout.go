package job

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/brandbeacon/brandbeacon/internal/ai"
	"github.com/brandbeacon/brandbeacon/internal/cache"
	"github.com/brandbeacon/brandbeacon/internal/config"
	"github.com/brandbeacon/brandbeacon/internal/mention"
	"github.com/brandbeacon/brandbeacon/internal/store"
	"github.com/brandbeacon/brandbeacon/pkg/models"
	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"
)

// Executor fans one job's query set out across every provider in fixed-size
// batches, cache-first, with per-provider and per-batch deadlines.
type Executor struct {
	store     store.Store
	cache     cache.Cache
	providers []models.Provider
	cfg       config.AnalysisConfig
	sem       *semaphore.Weighted
}

func NewExecutor(st store.Store, c cache.Cache, providers []models.Provider, cfg config.AnalysisConfig) *Executor {
	return &Executor{
		store:     st,
		cache:     c,
		providers: providers,
		cfg:       cfg,
		sem:       semaphore.NewWeighted(int64(cfg.MaxConcurrent)),
	}
}

// cell is one (query, provider) unit of work within a batch.
type cell struct {
	index    int
	query    *models.Query
	provider models.Provider
}

// cellResult pairs a finished cell with its result.
type cellResult struct {
	index  int
	result *models.ProviderResult
}

// cachedAnswer is the cache representation of one successful provider answer.
type cachedAnswer struct {
	Text       string `json:"text"`
	TokensUsed int    `json:"tokens_used"`
}

// Run executes all batches in submission order, persisting each batch as one
// bulk write and reporting per-batch progress. Returns the number of
// successful results. A persistence failure is fatal for the job; provider
// failures only degrade the result set.
func (e *Executor) Run(ctx context.Context, jobID uuid.UUID, brandName string, queries []*models.Query, cancelled func() bool, onBatch func(completed, total int)) (int, error) {
	detector := mention.NewDetector(brandName)

	// Providers disabled mid-job after quota or auth failures.
	var mu sync.Mutex
	disabled := make(map[string]bool)

	totalBatches := (len(queries) + e.cfg.BatchSize - 1) / e.cfg.BatchSize
	succeeded := 0

	for b := 0; b < totalBatches; b++ {
		if cancelled() {
			return succeeded, ErrCancelled
		}

		start := b * e.cfg.BatchSize
		end := start + e.cfg.BatchSize
		if end > len(queries) {
			end = len(queries)
		}

		results := e.runBatch(ctx, jobID, queries[start:end], detector, disabled, &mu)

		if err := e.store.CreateProviderResults(ctx, results); err != nil {
			return succeeded, err
		}
		for _, r := range results {
			if r.Success {
				succeeded++
			}
		}
		if onBatch != nil {
			onBatch(b+1, totalBatches)
		}
	}

	return succeeded, nil
}

// runBatch executes one batch of cells. Cache hits synthesize results
// immediately; misses run concurrently under the semaphore and the adapter's
// own timeout. The collect loop abandons waiting when the batch timeout
// fires; unfinished cells are recorded as timeout errors, their goroutines
// left to finish against their own deadlines.
func (e *Executor) runBatch(ctx context.Context, jobID uuid.UUID, batch []*models.Query, detector *mention.Detector, disabled map[string]bool, mu *sync.Mutex) []*models.ProviderResult {
	var cells []cell
	results := make(map[int]*models.ProviderResult)
	idx := 0

	for _, q := range batch {
		for _, p := range e.providers {
			mu.Lock()
			isDisabled := disabled[p.Name()]
			mu.Unlock()

			if isDisabled {
				results[idx] = e.errorResult(jobID, q, p.Name(), "provider disabled for this job")
				idx++
				continue
			}

			if cached := e.lookupCached(ctx, jobID, q, p.Name(), detector); cached != nil {
				results[idx] = cached
				idx++
				continue
			}

			cells = append(cells, cell{index: idx, query: q, provider: p})
			idx++
		}
	}

	done := make(chan cellResult, len(cells))
	for _, c := range cells {
		go e.runCell(ctx, jobID, c, detector, disabled, mu, done)
	}

	timer := time.NewTimer(e.cfg.BatchTimeout)
	defer timer.Stop()

	pending := len(cells)
collect:
	for pending > 0 {
		select {
		case cr := <-done:
			results[cr.index] = cr.result
			pending--
		case <-timer.C:
			break collect
		}
	}

	// Cells still running when the batch deadline fired become timeout
	// results. Their goroutines run out under their own adapter timeouts.
	for _, c := range cells {
		if _, ok := results[c.index]; !ok {
			results[c.index] = e.errorResult(jobID, c.query, c.provider.Name(), "batch timeout")
		}
	}

	ordered := make([]*models.ProviderResult, 0, idx)
	for i := 0; i < idx; i++ {
		ordered = append(ordered, results[i])
	}
	return ordered
}

// runCell calls one provider for one query, caches the answer on success,
// and reports through done.
func (e *Executor) runCell(ctx context.Context, jobID uuid.UUID, c cell, detector *mention.Detector, disabled map[string]bool, mu *sync.Mutex, done chan<- cellResult) {
	if err := e.sem.Acquire(ctx, 1); err != nil {
		done <- cellResult{c.index, e.errorResult(jobID, c.query, c.provider.Name(), err.Error())}
		return
	}
	defer e.sem.Release(1)

	callCtx, cancel := context.WithTimeout(ctx, c.provider.Timeout())
	defer cancel()

	started := time.Now()
	answer, err := c.provider.Ask(callCtx, c.query.Text)
	elapsed := time.Since(started).Milliseconds()

	if err != nil {
		if errors.Is(err, ai.ErrQuotaExceeded) || errors.Is(err, ai.ErrAuthFailed) {
			mu.Lock()
			disabled[c.provider.Name()] = true
			mu.Unlock()
			slog.Warn("provider disabled for rest of job",
				"job_id", jobID, "provider", c.provider.Name(), "error", err)
		}
		r := e.errorResult(jobID, c.query, c.provider.Name(), err.Error())
		r.ElapsedMS = elapsed
		done <- cellResult{c.index, r}
		return
	}

	if data, merr := json.Marshal(cachedAnswer{Text: answer.Text, TokensUsed: answer.TokensUsed}); merr == nil {
		key := cache.AnswerKey(c.provider.Name(), c.query.Text)
		if cerr := e.cache.Set(ctx, key, data, e.cfg.ResultCacheTTL); cerr != nil {
			slog.Warn("answer cache write failed", "provider", c.provider.Name(), "error", cerr)
		}
	}

	r := e.successResult(jobID, c.query, c.provider.Name(), answer, detector, false)
	r.ElapsedMS = elapsed
	done <- cellResult{c.index, r}
}

// lookupCached synthesizes a served-from-cache result for a cell, or nil on
// miss. Cache errors are treated as misses.
func (e *Executor) lookupCached(ctx context.Context, jobID uuid.UUID, q *models.Query, provider string, detector *mention.Detector) *models.ProviderResult {
	data, ok, err := e.cache.Get(ctx, cache.AnswerKey(provider, q.Text))
	if err != nil || !ok {
		return nil
	}
	var answer cachedAnswer
	if err := json.Unmarshal(data, &answer); err != nil {
		return nil
	}
	return e.successResult(jobID, q, provider,
		models.Answer{Text: answer.Text, TokensUsed: answer.TokensUsed}, detector, true)
}

func (e *Executor) successResult(jobID uuid.UUID, q *models.Query, provider string, answer models.Answer, detector *mention.Detector, fromCache bool) *models.ProviderResult {
	det := detector.Analyze(answer.Text)
	return &models.ProviderResult{
		ID:                uuid.New(),
		JobID:             jobID,
		QueryID:           q.ID,
		QueryText:         q.Text,
		Category:          q.Category,
		Provider:          provider,
		Answer:            answer.Text,
		TokensUsed:        answer.TokensUsed,
		Success:           true,
		FromCache:         fromCache,
		Mentioned:         det.Mentioned,
		MentionConfidence: det.Confidence,
		MatchType:         det.MatchType,
		BrandRank:         det.Rank,
		Sentiment:         det.Sentiment,
		SentimentScore:    det.SentimentScore,
		Competitors:       det.Competitors,
		CreatedAt:         time.Now().UTC(),
	}
}

func (e *Executor) errorResult(jobID uuid.UUID, q *models.Query, provider string, errMsg string) *models.ProviderResult {
	return &models.ProviderResult{
		ID:           uuid.New(),
		JobID:        jobID,
		QueryID:      q.ID,
		QueryText:    q.Text,
		Category:     q.Category,
		Provider:     provider,
		Success:      false,
		ErrorMessage: &errMsg,
		MatchType:    models.MatchNone,
		Competitors:  []string{},
		CreatedAt:    time.Now().UTC(),
	}
}
