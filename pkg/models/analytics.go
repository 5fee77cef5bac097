package models

// Analyzer kinds, used as artifact cache keys.
const (
	AnalyzerGap         = "gap"
	AnalyzerCompetitor  = "competitor"
	AnalyzerDifficulty  = "difficulty"
	AnalyzerOpportunity = "opportunity"
	AnalyzerCluster     = "cluster"
	AnalyzerRecommend   = "recommend"
	AnalyzerTimeline    = "timeline"
)

// Priority / effort labels shared across analyzers.
const (
	PriorityHigh   = "High"
	PriorityMedium = "Medium"
	PriorityLow    = "Low"
)

// GapReason explains one query group where the brand was absent.
type GapReason struct {
	QueryCategory string `json:"query_category"`
	QueryCount    int    `json:"query_count"`
	Reason        string `json:"reason"`
	SampleQuery   string `json:"sample_query"`
}

// ThemeGap is one recurring competitor theme in answers the brand missed.
type ThemeGap struct {
	Theme     string `json:"theme"`
	Frequency int    `json:"frequency"`
	Impact    string `json:"impact"`
}

// GapReport is the output of gap analysis.
type GapReport struct {
	TotalNonMentions int         `json:"total_non_mentions"`
	TotalResults     int         `json:"total_results"`
	NonMentionRate   float64     `json:"non_mention_rate"`
	Reasons          []GapReason `json:"reasons"`
	TopMissingThemes []ThemeGap  `json:"top_missing_themes"`
	Summary          string      `json:"summary"`
}

// CompetitorInsight is the synthesized view of one competitor.
type CompetitorInsight struct {
	Name             string         `json:"name"`
	MentionCount     int            `json:"mention_count"`
	AverageRank      float64        `json:"average_rank"`
	DominanceAreas   []string       `json:"dominance_areas"`
	CategorySpread   map[string]int `json:"category_spread"`
	StrategicInsight string         `json:"strategic_insight"`
	KeyStrength      string         `json:"key_strength"`
}

// CompetitiveArea counts how many competitors contest one area.
type CompetitiveArea struct {
	Area            string `json:"area"`
	CompetitorCount int    `json:"competitor_count"`
}

// CompetitorReport is the output of competitor insight analysis.
type CompetitorReport struct {
	TotalCompetitors     int                 `json:"total_competitors"`
	Insights             []CompetitorInsight `json:"insights"`
	MostCompetitiveAreas []CompetitiveArea   `json:"most_competitive_areas"`
	StrategicSummary     string              `json:"strategic_summary"`
}

// Difficulty levels.
const (
	DifficultyEasy   = "Easy"
	DifficultyMedium = "Medium"
	DifficultyHard   = "Hard"
)

// ScoredQuery is one query with its competition difficulty.
type ScoredQuery struct {
	Query           string `json:"query"`
	Difficulty      string `json:"difficulty"`
	Score           int    `json:"score"`
	Reasoning       string `json:"reasoning"`
	Mentioned       bool   `json:"mentioned"`
	CompetitorCount int    `json:"competitor_count"`
}

// DifficultyReport is the output of query difficulty analysis.
type DifficultyReport struct {
	ScoredQueries []ScoredQuery  `json:"scored_queries"`
	Distribution  map[string]int `json:"distribution"`
	EasyWins      []ScoredQuery  `json:"easy_wins"`
	EasyWinCount  int            `json:"easy_win_count"`
	AverageScore  float64        `json:"average_score"`
}

// Opportunity is one query where the brand should appear but does not.
type Opportunity struct {
	Query              string   `json:"query"`
	Reason             string   `json:"reason"`
	CompetitorsPresent []string `json:"competitors_present"`
	Priority           string   `json:"priority"`
	Provider           string   `json:"provider"`
}

// OpportunityReport is the output of missed-opportunity detection.
type OpportunityReport struct {
	Total         int           `json:"total"`
	HighPriority  int           `json:"high_priority"`
	Opportunities []Opportunity `json:"opportunities"`
	Summary       string        `json:"summary"`
}

// IntentCluster is one consumer intent theme with its dominant competitor.
type IntentCluster struct {
	Name               string         `json:"name"`
	DominantCompetitor string         `json:"dominant_competitor"`
	DominantMentions   int            `json:"dominant_mentions"`
	TopCompetitors     map[string]int `json:"top_competitors"`
	TotalMentions      int            `json:"total_mentions"`
	BrandMentions      int            `json:"brand_mentions"`
}

// ClusterReport is the output of intent clustering.
type ClusterReport struct {
	Clusters         []IntentCluster `json:"clusters"`
	BrandDominates   []string        `json:"brand_dominates"`
	BrandAbsentFrom  []string        `json:"brand_absent_from"`
	Insights         []string        `json:"insights"`
}

// Recommendation is one prioritized action merged from the other analyzers.
type Recommendation struct {
	Priority       string `json:"priority"`
	Category       string `json:"category"`
	Action         string `json:"action"`
	Details        string `json:"details"`
	ExpectedImpact string `json:"expected_impact"`
	ImpactPoints   float64 `json:"impact_points"`
	Effort         string `json:"effort"`
	Timeframe      string `json:"timeframe"`
}

// TimelineEntry is one month in a projected improvement timeline.
type TimelineEntry struct {
	Month   int     `json:"month"`
	Score   float64 `json:"score"`
	Changes string  `json:"changes"`
}

// TimelineProjection is the output of the timeline and improvement simulators.
type TimelineProjection struct {
	Timeline         []TimelineEntry `json:"timeline"`
	FinalScore       float64         `json:"final_score"`
	TotalImprovement float64         `json:"total_improvement"`
	HorizonMonths    int             `json:"horizon_months"`
	EffortLevel      string          `json:"effort_level"`
	Confidence       string          `json:"confidence,omitempty"`
}

// ChangeSet is a hypothetical set of brand changes fed to the improvement
// simulator.
type ChangeSet struct {
	NewTagline      string   `json:"new_tagline,omitempty"`
	NewFeatures     []string `json:"new_features,omitempty"`
	NewKeywords     []string `json:"new_keywords,omitempty"`
	PageUpdates     []string `json:"page_updates,omitempty"`
	PricingStrategy string   `json:"pricing_strategy,omitempty"`
}

// AnalyticsBundle groups every analyzer artifact for a job.
type AnalyticsBundle struct {
	Gap             *GapReport          `json:"gap,omitempty"`
	Competitors     *CompetitorReport   `json:"competitors,omitempty"`
	Difficulty      *DifficultyReport   `json:"difficulty,omitempty"`
	Opportunities   *OpportunityReport  `json:"opportunities,omitempty"`
	Clusters        *ClusterReport      `json:"clusters,omitempty"`
	Recommendations []Recommendation    `json:"recommendations,omitempty"`
	Timeline        *TimelineProjection `json:"timeline,omitempty"`
}
