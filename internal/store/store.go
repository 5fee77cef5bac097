package store

import (
	"context"
	"errors"
	"time"

	"github.com/brandbeacon/brandbeacon/pkg/models"
	"github.com/google/uuid"
)

var ErrNotFound = errors.New("resource not found")
var ErrDuplicateKey = errors.New("duplicate key violation")

// Store is the data access interface. All database operations go through here.
type Store interface {
	Ping(ctx context.Context) error

	CreateJob(ctx context.Context, job *models.Job) error
	GetJob(ctx context.Context, id uuid.UUID) (*models.Job, error)
	ListJobs(ctx context.Context, filter JobFilter) ([]*models.Job, int, error)
	UpdateJobStatus(ctx context.Context, id uuid.UUID, status string, opts ...JobUpdateOption) error
	UpdateJobProgress(ctx context.Context, id uuid.UUID, progress int) error

	CreateQueries(ctx context.Context, queries []*models.Query) error
	ListQueries(ctx context.Context, jobID uuid.UUID) ([]*models.Query, error)

	CreateProviderResults(ctx context.Context, results []*models.ProviderResult) error
	ListProviderResults(ctx context.Context, jobID uuid.UUID) ([]*models.ProviderResult, error)
	CountProviderResults(ctx context.Context, jobID uuid.UUID) (total int, succeeded int, err error)
}

type JobFilter struct {
	Status string
	Since  time.Time
	Page   int
	Limit  int
}

type jobUpdateParams struct {
	ErrorMessage  *string
	Industry      *string
	Progress      *int
	OverallScore  *float64
	MentionRate   *float64
	TotalQueries  *int
	TotalMentions *int
}

type JobUpdateOption func(*jobUpdateParams)

func WithErrorMessage(msg string) JobUpdateOption {
	return func(p *jobUpdateParams) {
		p.ErrorMessage = &msg
	}
}

func WithIndustry(industry string) JobUpdateOption {
	return func(p *jobUpdateParams) {
		p.Industry = &industry
	}
}

func WithProgress(progress int) JobUpdateOption {
	return func(p *jobUpdateParams) {
		p.Progress = &progress
	}
}

func WithScores(overall, mentionRate float64, totalQueries, totalMentions int) JobUpdateOption {
	return func(p *jobUpdateParams) {
		p.OverallScore = &overall
		p.MentionRate = &mentionRate
		p.TotalQueries = &totalQueries
		p.TotalMentions = &totalMentions
	}
}
