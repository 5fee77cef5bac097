package models

import (
	"time"

	"github.com/google/uuid"
)

// Brand match types.
const (
	MatchExact = "exact"
	MatchFuzzy = "fuzzy"
	MatchNone  = "none"
)

// Sentiment labels for a brand mention. Absent (nil) when the brand is not
// mentioned so aggregation can distinguish "no opinion" from "neutral opinion".
const (
	SentimentPositive = "positive"
	SentimentNeutral  = "neutral"
	SentimentNegative = "negative"
	SentimentHesitant = "hesitant"
)

// ProviderResult is one (job, query, provider) cell: the raw answer plus the
// structured facts extracted from it. Created once, never mutated after the
// detection fields are filled; (job_id, query_id, provider) is unique.
type ProviderResult struct {
	ID           uuid.UUID `db:"id"            json:"id"`
	JobID        uuid.UUID `db:"job_id"        json:"job_id"`
	QueryID      uuid.UUID `db:"query_id"      json:"query_id"`
	QueryText    string    `db:"query_text"    json:"query_text"`
	Category     string    `db:"category"      json:"category"`
	Provider     string    `db:"provider"      json:"provider"`
	Answer       string    `db:"answer"        json:"answer"`
	TokensUsed   int       `db:"tokens_used"   json:"tokens_used"`
	ElapsedMS    int64     `db:"elapsed_ms"    json:"elapsed_ms"`
	Success      bool      `db:"success"       json:"success"`
	FromCache    bool      `db:"from_cache"    json:"from_cache"`
	ErrorMessage *string   `db:"error_message" json:"error_message,omitempty"`

	// Detection fields, filled before persistence.
	Mentioned         bool     `db:"mentioned"          json:"mentioned"`
	MentionConfidence float64  `db:"mention_confidence" json:"mention_confidence"`
	MatchType         string   `db:"match_type"         json:"match_type"`
	BrandRank         *int     `db:"brand_rank"         json:"brand_rank,omitempty"`
	Sentiment         *string  `db:"sentiment"          json:"sentiment,omitempty"`
	SentimentScore    *float64 `db:"sentiment_score"    json:"sentiment_score,omitempty"`
	Competitors       []string `db:"competitors"        json:"competitors"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
