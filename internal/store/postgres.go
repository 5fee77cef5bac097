package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/brandbeacon/brandbeacon/pkg/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore implements the Store interface using pgx/v5.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgresStore.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Ping checks database connectivity.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// --- Jobs ---

const jobColumns = `id, brand_name, website_url, industry, status, progress, query_count,
	overall_score, mention_rate, total_queries, total_mentions, error_message,
	completed_at, created_at, updated_at`

func scanJob(row pgx.Row) (*models.Job, error) {
	var j models.Job
	err := row.Scan(&j.ID, &j.BrandName, &j.WebsiteURL, &j.Industry, &j.Status, &j.Progress,
		&j.QueryCount, &j.OverallScore, &j.MentionRate, &j.TotalQueries, &j.TotalMentions,
		&j.ErrorMessage, &j.CompletedAt, &j.CreatedAt, &j.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &j, nil
}

func (s *PostgresStore) CreateJob(ctx context.Context, job *models.Job) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO jobs (id, brand_name, website_url, status, progress, query_count, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		job.ID, job.BrandName, job.WebsiteURL, job.Status, job.Progress, job.QueryCount,
		job.CreatedAt, job.UpdatedAt)
	if err != nil {
		if isDuplicateKeyError(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("create job: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetJob(ctx context.Context, id uuid.UUID) (*models.Job, error) {
	j, err := scanJob(s.pool.QueryRow(ctx,
		`SELECT `+jobColumns+` FROM jobs WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get job: %w", err)
	}
	return j, nil
}

func (s *PostgresStore) ListJobs(ctx context.Context, filter JobFilter) ([]*models.Job, int, error) {
	conditions := []string{"TRUE"}
	args := []any{}
	argIdx := 1

	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argIdx))
		args = append(args, filter.Status)
		argIdx++
	}
	if !filter.Since.IsZero() {
		conditions = append(conditions, fmt.Sprintf("created_at >= $%d", argIdx))
		args = append(args, filter.Since)
		argIdx++
	}

	where := strings.Join(conditions, " AND ")

	var total int
	if err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM jobs WHERE "+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count jobs: %w", err)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	page := filter.Page
	if page <= 0 {
		page = 1
	}
	offset := (page - 1) * limit

	query := fmt.Sprintf(
		`SELECT %s FROM jobs WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		jobColumns, where, argIdx, argIdx+1)
	args = append(args, limit, offset)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*models.Job
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan job: %w", err)
		}
		jobs = append(jobs, j)
	}
	return jobs, total, rows.Err()
}

// validTransitions defines the forward-only job state machine. failed is
// reachable from every non-terminal state.
var validTransitions = map[string][]string{
	models.JobStatusPending:    {models.JobStatusDetecting, models.JobStatusFailed},
	models.JobStatusDetecting:  {models.JobStatusGenerating, models.JobStatusFailed},
	models.JobStatusGenerating: {models.JobStatusQuerying, models.JobStatusFailed},
	models.JobStatusQuerying:   {models.JobStatusScoring, models.JobStatusFailed},
	models.JobStatusScoring:    {models.JobStatusCompleted, models.JobStatusFailed},
}

func (s *PostgresStore) UpdateJobStatus(ctx context.Context, id uuid.UUID, status string, opts ...JobUpdateOption) error {
	params := &jobUpdateParams{}
	for _, opt := range opts {
		opt(params)
	}

	var currentStatus string
	err := s.pool.QueryRow(ctx, `SELECT status FROM jobs WHERE id = $1`, id).Scan(&currentStatus)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("get job status: %w", err)
	}

	if status != currentStatus {
		allowed := validTransitions[currentStatus]
		valid := false
		for _, a := range allowed {
			if a == status {
				valid = true
				break
			}
		}
		if !valid {
			return fmt.Errorf("invalid job status transition: %s -> %s", currentStatus, status)
		}
	}

	now := time.Now().UTC()
	query := `UPDATE jobs SET status = $2, updated_at = $3`
	args := []any{id, status, now}
	argIdx := 4

	if status == models.JobStatusCompleted || status == models.JobStatusFailed {
		query += fmt.Sprintf(", completed_at = $%d", argIdx)
		args = append(args, now)
		argIdx++
	}
	if params.Progress != nil {
		// GREATEST keeps progress monotonic even under racing writers.
		query += fmt.Sprintf(", progress = GREATEST(progress, $%d)", argIdx)
		args = append(args, *params.Progress)
		argIdx++
	}
	if params.ErrorMessage != nil {
		query += fmt.Sprintf(", error_message = $%d", argIdx)
		args = append(args, *params.ErrorMessage)
		argIdx++
	}
	if params.Industry != nil {
		query += fmt.Sprintf(", industry = $%d", argIdx)
		args = append(args, *params.Industry)
		argIdx++
	}
	if params.OverallScore != nil {
		query += fmt.Sprintf(", overall_score = $%d, mention_rate = $%d, total_queries = $%d, total_mentions = $%d",
			argIdx, argIdx+1, argIdx+2, argIdx+3)
		args = append(args, *params.OverallScore, *params.MentionRate, *params.TotalQueries, *params.TotalMentions)
		argIdx += 4
	}

	query += " WHERE id = $1"

	_, err = s.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update job status: %w", err)
	}
	return nil
}

func (s *PostgresStore) UpdateJobProgress(ctx context.Context, id uuid.UUID, progress int) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE jobs SET progress = GREATEST(progress, $2), updated_at = NOW() WHERE id = $1`,
		id, progress)
	if err != nil {
		return fmt.Errorf("update job progress: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// --- Queries ---

func (s *PostgresStore) CreateQueries(ctx context.Context, queries []*models.Query) error {
	if len(queries) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, q := range queries {
		batch.Queue(
			`INSERT INTO queries (id, job_id, position, query_text, category, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			q.ID, q.JobID, q.Position, q.Text, q.Category, q.CreatedAt)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range queries {
		if _, err := br.Exec(); err != nil {
			if isDuplicateKeyError(err) {
				return ErrDuplicateKey
			}
			return fmt.Errorf("create queries: %w", err)
		}
	}
	return nil
}

func (s *PostgresStore) ListQueries(ctx context.Context, jobID uuid.UUID) ([]*models.Query, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, job_id, position, query_text, category, created_at
		 FROM queries WHERE job_id = $1 ORDER BY position`, jobID)
	if err != nil {
		return nil, fmt.Errorf("list queries: %w", err)
	}
	defer rows.Close()

	var queries []*models.Query
	for rows.Next() {
		var q models.Query
		if err := rows.Scan(&q.ID, &q.JobID, &q.Position, &q.Text, &q.Category, &q.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan query: %w", err)
		}
		queries = append(queries, &q)
	}
	return queries, rows.Err()
}

// --- Provider results ---

// CreateProviderResults persists one completed batch as a single atomic bulk
// write. Duplicate (job_id, query_id, provider) cells are ignored so retried
// batches never produce duplicate rows.
func (s *PostgresStore) CreateProviderResults(ctx context.Context, results []*models.ProviderResult) error {
	if len(results) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin batch write: %w", err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for _, r := range results {
		competitors, err := json.Marshal(r.Competitors)
		if err != nil {
			return fmt.Errorf("marshal competitors: %w", err)
		}
		batch.Queue(
			`INSERT INTO provider_results
			   (id, job_id, query_id, query_text, category, provider, answer, tokens_used,
			    elapsed_ms, success, from_cache, error_message, mentioned, mention_confidence,
			    match_type, brand_rank, sentiment, sentiment_score, competitors, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
			 ON CONFLICT (job_id, query_id, provider) DO NOTHING`,
			r.ID, r.JobID, r.QueryID, r.QueryText, r.Category, r.Provider, r.Answer, r.TokensUsed,
			r.ElapsedMS, r.Success, r.FromCache, r.ErrorMessage, r.Mentioned, r.MentionConfidence,
			r.MatchType, r.BrandRank, r.Sentiment, r.SentimentScore, competitors, r.CreatedAt)
	}

	br := tx.SendBatch(ctx, batch)
	for range results {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return fmt.Errorf("create provider results: %w", err)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("close batch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit batch write: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListProviderResults(ctx context.Context, jobID uuid.UUID) ([]*models.ProviderResult, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, job_id, query_id, query_text, category, provider, answer, tokens_used,
		        elapsed_ms, success, from_cache, error_message, mentioned, mention_confidence,
		        match_type, brand_rank, sentiment, sentiment_score, competitors, created_at
		 FROM provider_results WHERE job_id = $1 ORDER BY created_at, provider`, jobID)
	if err != nil {
		return nil, fmt.Errorf("list provider results: %w", err)
	}
	defer rows.Close()

	var results []*models.ProviderResult
	for rows.Next() {
		var r models.ProviderResult
		var competitors []byte
		if err := rows.Scan(&r.ID, &r.JobID, &r.QueryID, &r.QueryText, &r.Category, &r.Provider,
			&r.Answer, &r.TokensUsed, &r.ElapsedMS, &r.Success, &r.FromCache, &r.ErrorMessage,
			&r.Mentioned, &r.MentionConfidence, &r.MatchType, &r.BrandRank, &r.Sentiment,
			&r.SentimentScore, &competitors, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan provider result: %w", err)
		}
		if err := json.Unmarshal(competitors, &r.Competitors); err != nil {
			return nil, fmt.Errorf("unmarshal competitors: %w", err)
		}
		results = append(results, &r)
	}
	return results, rows.Err()
}

func (s *PostgresStore) CountProviderResults(ctx context.Context, jobID uuid.UUID) (int, int, error) {
	var total, succeeded int
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*), COUNT(*) FILTER (WHERE success) FROM provider_results WHERE job_id = $1`,
		jobID).Scan(&total, &succeeded)
	if err != nil {
		return 0, 0, fmt.Errorf("count provider results: %w", err)
	}
	return total, succeeded, nil
}

// isDuplicateKeyError checks if a pgx error is a unique constraint violation.
func isDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return false
}

var _ Store = (*PostgresStore)(nil)
