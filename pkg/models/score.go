package models

// ScoreBreakdown is the composite visibility score with its weighted
// sub-scores. Derived and recomputable at any time from a job's full
// ProviderResult set; never the source of truth.
type ScoreBreakdown struct {
	OverallScore        float64 `json:"overall_score"`
	MentionRate         float64 `json:"mention_rate"`
	RankScore           float64 `json:"rank_score"`
	CompetitorDominance float64 `json:"competitor_dominance"`
	ModelConsistency    float64 `json:"model_consistency"`
	Mentions            int     `json:"mentions"`
	TotalResults        int     `json:"total_results"`
	AverageRank         float64 `json:"average_rank,omitempty"`
	Interpretation      string  `json:"interpretation"`
	InterpretationNote  string  `json:"interpretation_note"`
}

// CompetitorCount pairs a competitor name with how often it was mentioned.
type CompetitorCount struct {
	Name     string `json:"name"`
	Mentions int    `json:"mentions"`
}

// ProviderCoverage reports per-provider result quality for a job. Degraded
// coverage is a data-quality signal, not a lifecycle outcome.
type ProviderCoverage struct {
	Provider   string  `json:"provider"`
	Total      int     `json:"total"`
	Succeeded  int     `json:"succeeded"`
	Mentions   int     `json:"mentions"`
	MentionPct float64 `json:"mention_pct"`
}
