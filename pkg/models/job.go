package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	JobStatusPending    = "pending"
	JobStatusDetecting  = "detecting"
	JobStatusGenerating = "generating"
	JobStatusQuerying   = "querying"
	JobStatusScoring    = "scoring"
	JobStatusCompleted  = "completed"
	JobStatusFailed     = "failed"
)

// Job tracks one brand visibility analysis run. The API returns a job id on
// POST /api/v1/analyses; the client polls until status is completed or failed.
// The orchestrator is the sole writer of Job state.
type Job struct {
	ID            uuid.UUID  `db:"id"             json:"id"`
	BrandName     string     `db:"brand_name"     json:"brand_name"`
	WebsiteURL    string     `db:"website_url"    json:"website_url"`
	Industry      *string    `db:"industry"       json:"industry,omitempty"`
	Status        string     `db:"status"         json:"status"`
	Progress      int        `db:"progress"       json:"progress"`
	QueryCount    int        `db:"query_count"    json:"query_count"`
	OverallScore  *float64   `db:"overall_score"  json:"overall_score,omitempty"`
	MentionRate   *float64   `db:"mention_rate"   json:"mention_rate,omitempty"`
	TotalQueries  *int       `db:"total_queries"  json:"total_queries,omitempty"`
	TotalMentions *int       `db:"total_mentions" json:"total_mentions,omitempty"`
	ErrorMessage  *string    `db:"error_message"  json:"error_message,omitempty"`
	CompletedAt   *time.Time `db:"completed_at"   json:"completed_at,omitempty"`
	CreatedAt     time.Time  `db:"created_at"     json:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at"     json:"updated_at"`
}

// Terminal reports whether the job can no longer change state.
func (j *Job) Terminal() bool {
	return j.Status == JobStatusCompleted || j.Status == JobStatusFailed
}

// IsValidJobStatus reports whether s is one of the known job statuses.
func IsValidJobStatus(s string) bool {
	switch s {
	case JobStatusPending, JobStatusDetecting, JobStatusGenerating,
		JobStatusQuerying, JobStatusScoring, JobStatusCompleted, JobStatusFailed:
		return true
	}
	return false
}
