package job

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/brandbeacon/brandbeacon/internal/analytics"
	"github.com/brandbeacon/brandbeacon/internal/cache"
	"github.com/brandbeacon/brandbeacon/internal/config"
	"github.com/brandbeacon/brandbeacon/internal/industry"
	"github.com/brandbeacon/brandbeacon/internal/queries"
	"github.com/brandbeacon/brandbeacon/internal/score"
	"github.com/brandbeacon/brandbeacon/internal/store"
	"github.com/brandbeacon/brandbeacon/pkg/models"
	"github.com/google/uuid"
)

// Sentinel errors for job operations.
var (
	ErrCancelled       = errors.New("job cancelled")
	ErrNoUsableResults = errors.New("no provider returned any usable result")
	ErrNotCompleted    = errors.New("job is not completed")
)

const statusMirrorTTL = 30 * time.Minute

// Progress checkpoints. Querying advances proportionally between generation
// and the scoring cap.
const (
	progressStarted   = 5
	progressDetected  = 15
	progressGenerated = 25
	progressQueryCap  = 90
	progressCompleted = 100
)

// Report is the full result view of a completed job.
type Report struct {
	Job               *models.Job                      `json:"job"`
	Score             models.ScoreBreakdown            `json:"score"`
	CategoryBreakdown map[string]models.ScoreBreakdown `json:"category_breakdown"`
	ProviderCoverage  []models.ProviderCoverage        `json:"provider_coverage"`
	TopCompetitors    []models.CompetitorCount         `json:"top_competitors"`
	Queries           []*models.Query                  `json:"queries"`
	Analytics         *models.AnalyticsBundle          `json:"analytics"`
}

// Service is the job orchestrator: the sole writer of job state. It owns the
// forward-only lifecycle and dispatches the analysis pipeline in a
// background goroutine per job.
type Service struct {
	store     store.Store
	cache     cache.Cache
	detector  *industry.Detector
	generator *queries.Generator
	executor  *Executor
	analytics *analytics.Engine
	cfg       config.AnalysisConfig

	// cancellation flags per in-flight job, observed between batches
	cancels sync.Map // uuid.UUID -> chan struct{}
}

func NewService(st store.Store, c cache.Cache, detector *industry.Detector, generator *queries.Generator, executor *Executor, engine *analytics.Engine, cfg config.AnalysisConfig) *Service {
	return &Service{
		store:     st,
		cache:     c,
		detector:  detector,
		generator: generator,
		executor:  executor,
		analytics: engine,
		cfg:       cfg,
	}
}

// Submit creates a pending job and dispatches analysis in a background
// goroutine. Returns the job immediately.
func (s *Service) Submit(ctx context.Context, brandName, websiteURL string, queryCount int) (*models.Job, error) {
	if brandName == "" {
		return nil, fmt.Errorf("brand name is required")
	}
	if websiteURL == "" {
		return nil, fmt.Errorf("website url is required")
	}
	if queryCount <= 0 {
		queryCount = s.cfg.DefaultQueryCount
	}

	now := time.Now().UTC()
	job := &models.Job{
		ID:         uuid.New(),
		BrandName:  brandName,
		WebsiteURL: websiteURL,
		Status:     models.JobStatusPending,
		QueryCount: queryCount,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.store.CreateJob(ctx, job); err != nil {
		return nil, fmt.Errorf("creating job: %w", err)
	}

	_ = s.cache.SetJobStatus(ctx, job.ID, models.JobStatusPending, statusMirrorTTL)

	cancelCh := make(chan struct{})
	s.cancels.Store(job.ID, cancelCh)

	go s.runAnalysis(job, cancelCh)

	return job, nil
}

// Cancel requests cooperative cancellation. The in-flight batch finishes
// under its own timeouts; no new batches start after the flag is observed.
func (s *Service) Cancel(jobID uuid.UUID) error {
	v, ok := s.cancels.Load(jobID)
	if !ok {
		return store.ErrNotFound
	}
	ch := v.(chan struct{})
	select {
	case <-ch:
		// already cancelled
	default:
		close(ch)
	}
	return nil
}

// Status returns the job row, preferring the cached status mirror for the
// status field when present.
func (s *Service) Status(ctx context.Context, jobID uuid.UUID) (*models.Job, error) {
	job, err := s.store.GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if status, ok, err := s.cache.GetJobStatus(ctx, jobID); err == nil && ok {
		job.Status = status
	}
	return job, nil
}

// FullReport assembles the complete result view for a completed job:
// the score breakdowns recomputed from the persisted result set, plus the
// analytics bundle (from cache, or recomputed).
func (s *Service) FullReport(ctx context.Context, jobID uuid.UUID) (*Report, error) {
	job, err := s.store.GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.Status != models.JobStatusCompleted {
		return nil, ErrNotCompleted
	}

	results, err := s.store.ListProviderResults(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("loading results: %w", err)
	}
	queryRows, err := s.store.ListQueries(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("loading queries: %w", err)
	}

	scorer := score.NewScorer(job.BrandName)
	breakdown := scorer.Calculate(results)

	bundle, ok := s.analytics.Load(ctx, jobID)
	if !ok {
		ind := industry.IndustryOther
		if job.Industry != nil {
			ind = *job.Industry
		}
		bundle = s.analytics.Run(ctx, jobID, job.BrandName, ind, breakdown.OverallScore, results)
	}

	return &Report{
		Job:               job,
		Score:             breakdown,
		CategoryBreakdown: scorer.CategoryBreakdown(results),
		ProviderCoverage:  scorer.ProviderBreakdown(results),
		TopCompetitors:    score.TopCompetitors(results, 10),
		Queries:           queryRows,
		Analytics:         bundle,
	}, nil
}

// SimulateImprovement projects the score impact of a hypothetical change-set
// against a completed job's result set.
func (s *Service) SimulateImprovement(ctx context.Context, jobID uuid.UUID, changes models.ChangeSet) (*models.TimelineProjection, error) {
	job, err := s.store.GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.Status != models.JobStatusCompleted || job.OverallScore == nil {
		return nil, ErrNotCompleted
	}

	results, err := s.store.ListProviderResults(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("loading results: %w", err)
	}

	sim := analytics.NewImprovementSimulator(job.BrandName, *job.OverallScore)
	return sim.Simulate(changes, results), nil
}

// runAnalysis drives one job through the full pipeline in a goroutine. It
// recovers from panics and settles the job row and the cached status mirror
// on every exit path.
func (s *Service) runAnalysis(job *models.Job, cancelCh chan struct{}) {
	ctx := context.Background()
	jobID := job.ID

	defer s.cancels.Delete(jobID)
	defer func() {
		if r := recover(); r != nil {
			slog.Error("panic in runAnalysis", "error", r, "job_id", jobID)
			s.fail(ctx, jobID, fmt.Sprintf("panic: %v", r))
		}
	}()

	cancelled := func() bool {
		select {
		case <-cancelCh:
			return true
		default:
			return false
		}
	}

	// Detecting
	s.transition(ctx, jobID, models.JobStatusDetecting, progressStarted)

	detected, err := s.detector.Detect(ctx, job.BrandName, job.WebsiteURL)
	if err != nil {
		s.fail(ctx, jobID, fmt.Sprintf("industry detection: %v", err))
		return
	}
	_ = s.store.UpdateJobStatus(ctx, jobID, models.JobStatusDetecting,
		store.WithIndustry(detected), store.WithProgress(progressDetected))
	slog.Info("industry detected", "job_id", jobID, "industry", detected)

	if cancelled() {
		s.fail(ctx, jobID, ErrCancelled.Error())
		return
	}

	// Generating
	s.transition(ctx, jobID, models.JobStatusGenerating, progressDetected)

	generated, err := s.generator.Generate(ctx, detected, job.BrandName, job.QueryCount)
	if err != nil {
		s.fail(ctx, jobID, fmt.Sprintf("query generation: %v", err))
		return
	}

	now := time.Now().UTC()
	queryRows := make([]*models.Query, len(generated))
	for i, gq := range generated {
		queryRows[i] = &models.Query{
			ID:        uuid.New(),
			JobID:     jobID,
			Position:  i,
			Text:      gq.Text,
			Category:  gq.Category,
			CreatedAt: now,
		}
	}
	if err := s.store.CreateQueries(ctx, queryRows); err != nil {
		s.fail(ctx, jobID, fmt.Sprintf("persisting queries: %v", err))
		return
	}

	if cancelled() {
		s.fail(ctx, jobID, ErrCancelled.Error())
		return
	}

	// Querying
	s.transition(ctx, jobID, models.JobStatusQuerying, progressGenerated)

	_, err = s.executor.Run(ctx, jobID, job.BrandName, queryRows, cancelled,
		func(completed, total int) {
			progress := progressGenerated + (progressQueryCap-progressGenerated)*completed/total
			if progress > progressQueryCap {
				progress = progressQueryCap
			}
			_ = s.store.UpdateJobProgress(ctx, jobID, progress)
		})
	if err != nil {
		if errors.Is(err, ErrCancelled) {
			s.fail(ctx, jobID, ErrCancelled.Error())
		} else {
			s.fail(ctx, jobID, fmt.Sprintf("persisting batch: %v", err))
		}
		return
	}

	// The persisted rows, not the in-flight tally, decide whether scoring
	// can proceed.
	total, succeeded, err := s.store.CountProviderResults(ctx, jobID)
	if err != nil {
		s.fail(ctx, jobID, fmt.Sprintf("counting results: %v", err))
		return
	}
	if succeeded == 0 {
		s.fail(ctx, jobID, ErrNoUsableResults.Error())
		return
	}
	slog.Info("fanout finished", "job_id", jobID, "results", total, "succeeded", succeeded)

	// Scoring
	s.transition(ctx, jobID, models.JobStatusScoring, progressQueryCap)

	results, err := s.store.ListProviderResults(ctx, jobID)
	if err != nil {
		s.fail(ctx, jobID, fmt.Sprintf("loading results: %v", err))
		return
	}

	breakdown := score.NewScorer(job.BrandName).Calculate(results)

	mentionPct := 0.0
	if breakdown.TotalResults > 0 {
		mentionPct = float64(breakdown.Mentions) / float64(breakdown.TotalResults) * 100
	}

	// Analytics artifacts are best-effort: narrative degradation or cache
	// trouble never fails a scored job.
	s.analytics.Run(ctx, jobID, job.BrandName, detected, breakdown.OverallScore, results)

	if err := s.store.UpdateJobStatus(ctx, jobID, models.JobStatusCompleted,
		store.WithProgress(progressCompleted),
		store.WithScores(breakdown.OverallScore, mentionPct, breakdown.TotalResults, breakdown.Mentions)); err != nil {
		slog.Error("settling completed job failed", "job_id", jobID, "error", err)
		return
	}
	_ = s.cache.SetJobStatus(ctx, jobID, models.JobStatusCompleted, statusMirrorTTL)

	slog.Info("analysis completed", "job_id", jobID,
		"score", breakdown.OverallScore, "mentions", breakdown.Mentions, "results", breakdown.TotalResults)
}

func (s *Service) transition(ctx context.Context, jobID uuid.UUID, status string, progress int) {
	_ = s.store.UpdateJobStatus(ctx, jobID, status, store.WithProgress(progress))
	_ = s.cache.SetJobStatus(ctx, jobID, status, statusMirrorTTL)
}

func (s *Service) fail(ctx context.Context, jobID uuid.UUID, reason string) {
	_ = s.store.UpdateJobStatus(ctx, jobID, models.JobStatusFailed, store.WithErrorMessage(reason))
	_ = s.cache.SetJobStatus(ctx, jobID, models.JobStatusFailed, statusMirrorTTL)
	slog.Warn("analysis failed", "job_id", jobID, "reason", reason)
}
