package analytics

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/brandbeacon/brandbeacon/internal/cache"
	"github.com/brandbeacon/brandbeacon/pkg/models"
	"github.com/google/uuid"
)

// Engine runs every analyzer over a job's result set and caches the
// artifacts per (job, kind). Artifacts are derived data; a cache miss just
// means recompute.
type Engine struct {
	cache       cache.Cache
	generator   models.TextGenerator
	artifactTTL time.Duration
}

// NewEngine creates an analytics engine. generator may be nil; narratives
// then degrade to templates.
func NewEngine(c cache.Cache, generator models.TextGenerator, artifactTTL time.Duration) *Engine {
	return &Engine{cache: c, generator: generator, artifactTTL: artifactTTL}
}

// Run executes all analyzers for one job and caches each artifact.
func (e *Engine) Run(ctx context.Context, jobID uuid.UUID, brandName, industry string, currentScore float64, results []*models.ProviderResult) *models.AnalyticsBundle {
	gap := NewGapAnalyzer(brandName, e.generator).Analyze(ctx, results)
	competitors := NewCompetitorAnalyzer(brandName, industry, e.generator).Analyze(ctx, results)
	difficulty := NewDifficultyAnalyzer(brandName).Analyze(results)
	opportunities := NewOpportunityDetector(brandName).Detect(results)
	clusters := NewClusterAnalyzer(brandName).Analyze(results)
	recommendations := NewRecommendationEngine(brandName, industry).Generate(gap, competitors, difficulty, results)

	plannedCount := len(recommendations)
	if plannedCount > 5 {
		plannedCount = 5
	}
	timeline := NewTimelineSimulator(currentScore).Simulate(recommendations[:plannedCount], DefaultHorizonMonths)

	bundle := &models.AnalyticsBundle{
		Gap:             gap,
		Competitors:     competitors,
		Difficulty:      difficulty,
		Opportunities:   opportunities,
		Clusters:        clusters,
		Recommendations: recommendations,
		Timeline:        timeline,
	}

	e.store(ctx, jobID, models.AnalyzerGap, gap)
	e.store(ctx, jobID, models.AnalyzerCompetitor, competitors)
	e.store(ctx, jobID, models.AnalyzerDifficulty, difficulty)
	e.store(ctx, jobID, models.AnalyzerOpportunity, opportunities)
	e.store(ctx, jobID, models.AnalyzerCluster, clusters)
	e.store(ctx, jobID, models.AnalyzerRecommend, recommendations)
	e.store(ctx, jobID, models.AnalyzerTimeline, timeline)

	return bundle
}

// Load fetches the cached bundle for a job. The second return is false when
// any artifact is missing or unreadable and the caller should recompute.
func (e *Engine) Load(ctx context.Context, jobID uuid.UUID) (*models.AnalyticsBundle, bool) {
	bundle := &models.AnalyticsBundle{}
	ok := e.load(ctx, jobID, models.AnalyzerGap, &bundle.Gap) &&
		e.load(ctx, jobID, models.AnalyzerCompetitor, &bundle.Competitors) &&
		e.load(ctx, jobID, models.AnalyzerDifficulty, &bundle.Difficulty) &&
		e.load(ctx, jobID, models.AnalyzerOpportunity, &bundle.Opportunities) &&
		e.load(ctx, jobID, models.AnalyzerCluster, &bundle.Clusters) &&
		e.load(ctx, jobID, models.AnalyzerRecommend, &bundle.Recommendations) &&
		e.load(ctx, jobID, models.AnalyzerTimeline, &bundle.Timeline)
	if !ok {
		return nil, false
	}
	return bundle, true
}

func (e *Engine) store(ctx context.Context, jobID uuid.UUID, kind string, artifact any) {
	data, err := json.Marshal(artifact)
	if err != nil {
		slog.Warn("artifact marshal failed", "job_id", jobID, "kind", kind, "error", err)
		return
	}
	if err := e.cache.Set(ctx, cache.ArtifactKey(jobID, kind), data, e.artifactTTL); err != nil {
		slog.Warn("artifact cache write failed", "job_id", jobID, "kind", kind, "error", err)
	}
}

func (e *Engine) load(ctx context.Context, jobID uuid.UUID, kind string, dst any) bool {
	data, ok, err := e.cache.Get(ctx, cache.ArtifactKey(jobID, kind))
	if err != nil || !ok {
		return false
	}
	return json.Unmarshal(data, dst) == nil
}
