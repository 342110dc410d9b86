// Package data implements the persistence layer over Postgres and Redis.
package data

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/campaignforge/research-api/internal/core"
	apperrors "github.com/campaignforge/research-api/internal/errors"
	"github.com/campaignforge/research-api/internal/data/pgxutil"
	"github.com/campaignforge/research-api/internal/domain/model"
)

// RepoConfig holds configuration options for the repositories.
type RepoConfig struct {
	Logger       *slog.Logger
	TimeProvider core.TimeProvider
}

// JobRepo provides database operations for research job records.
type JobRepo struct {
	DB           *sql.DB
	timeProvider core.TimeProvider
	logger       *slog.Logger
}

// NewJobRepo creates a new JobRepo with the given database connection and configuration.
func NewJobRepo(db *sql.DB, cfg RepoConfig) *JobRepo {
	tp := cfg.TimeProvider
	if tp == nil {
		tp = &RealTimeProvider{}
	}
	return &JobRepo{
		DB:           db,
		timeProvider: tp,
		logger:       cfg.Logger,
	}
}

// jobNotifyChannel is the pg_notify channel Create signals on insert and
// WaitForNewJob listens on.
const jobNotifyChannel = "research_job_added"

const jobColumns = `
  id,
  session_id,
  external_task_ref,
  status,
  template_kind,
  prompt_snapshot,
  raw_result,
  structured_result,
  last_error,
  created_at,
  updated_at,
  completed_at
`

// Create inserts a new research job record and returns it.
func (r *JobRepo) Create(ctx context.Context, rec model.CreateJobRecord) (*model.ResearchJob, error) {
	if rec.SessionID == "" {
		return nil, errors.New("session id is required")
	}
	if rec.ExternalTaskRef == "" {
		return nil, errors.New("external task ref is required")
	}
	if !rec.Status.Valid() {
		return nil, fmt.Errorf("invalid job status: %q", rec.Status)
	}
	if !rec.TemplateKind.Valid() {
		return nil, fmt.Errorf("invalid template kind: %q", rec.TemplateKind)
	}

	now := r.timeProvider.Now().UTC()

	var job *model.ResearchJob
	txErr := pgxutil.WithPgxTx(ctx, r.DB, pgxutil.TxConfig{
		Fn: func(tx pgx.Tx) error {
			rows, err := tx.Query(ctx, `
              INSERT INTO research_jobs(session_id, external_task_ref, status, template_kind, prompt_snapshot, created_at, updated_at)
              VALUES ($1, $2, $3, $4, $5, $6, $6)
              RETURNING `+jobColumns,
				rec.SessionID, rec.ExternalTaskRef, rec.Status, rec.TemplateKind, rec.PromptSnapshot, now,
			)
			if err != nil {
				return fmt.Errorf("insert research job: %w", apperrors.MapDBError(err))
			}
			job, err = collectJobFromRows(rows)
			rows.Close()
			if err != nil {
				return fmt.Errorf("collect research job: %w", err)
			}

			// Wake any listening poller so fresh jobs reconcile promptly.
			if _, err := tx.Exec(ctx, `SELECT pg_notify($1::text, $2::text)`, jobNotifyChannel, job.ID); err != nil {
				return fmt.Errorf("send job notification: %w", err)
			}
			return nil
		},
	})
	if txErr != nil {
		return nil, txErr
	}
	return job, nil
}

// collectJobFromRows collects a single job from pgx rows.
func collectJobFromRows(rows pgx.Rows) (*model.ResearchJob, error) {
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, pgx.ErrNoRows
	}
	job, err := scanJobFromRow(rows)
	if err != nil {
		return nil, err
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, rowsErr
	}
	return job, nil
}

// GetByID fetches one research job. Returns model.ErrJobNotFound when the row
// does not exist.
func (r *JobRepo) GetByID(ctx context.Context, id string) (*model.ResearchJob, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+jobColumns+` FROM research_jobs WHERE id = $1`, id)
	job, err := scanJobFromRow(row)
	if errors.Is(err, sql.ErrNoRows) || errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrJobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get research job: %w", err)
	}
	return job, nil
}

// AdvanceStatus moves a non-terminal job forward to the given status. The
// conditional WHERE keeps the transition monotonic under racing callers.
func (r *JobRepo) AdvanceStatus(ctx context.Context, id string, status model.JobStatus) (bool, error) {
	if !status.Valid() || status.Terminal() {
		return false, fmt.Errorf("invalid advance target: %q", status)
	}

	now := r.timeProvider.Now().UTC()
	res, err := r.DB.ExecContext(ctx, `
      UPDATE research_jobs
      SET status = $2, updated_at = $3
      WHERE id = $1
        AND status NOT IN ('completed', 'failed')
        AND CASE status
              WHEN 'pending' THEN 0
              WHEN 'queued' THEN 1
              WHEN 'in_progress' THEN 2
            END < CASE $2::text
              WHEN 'pending' THEN 0
              WHEN 'queued' THEN 1
              WHEN 'in_progress' THEN 2
            END
    `, id, status, now)
	if err != nil {
		return false, fmt.Errorf("advance job status: %w", apperrors.MapDBError(err))
	}
	return rowsApplied(res)
}

// Complete writes the raw result and terminal completed status. The terminal
// guard makes racing reconcilers converge: the first write wins, later
// identical writes are no-ops.
func (r *JobRepo) Complete(ctx context.Context, params core.CompleteJobParams) (bool, error) {
	raw, err := json.Marshal(params.Result)
	if err != nil {
		return false, fmt.Errorf("marshal raw result: %w", err)
	}

	now := r.timeProvider.Now().UTC()
	res, err := r.DB.ExecContext(ctx, `
      UPDATE research_jobs
      SET status = 'completed',
          raw_result = $2,
          last_error = NULL,
          completed_at = $3,
          updated_at = $3
      WHERE id = $1 AND status NOT IN ('completed', 'failed')
    `, params.ID, raw, now)
	if err != nil {
		return false, fmt.Errorf("complete research job: %w", apperrors.MapDBError(err))
	}
	return rowsApplied(res)
}

// Fail writes the diagnostic error and terminal failed status, with the same
// terminal guard as Complete.
func (r *JobRepo) Fail(ctx context.Context, id string, reason string) (bool, error) {
	if reason == "" {
		reason = "research task failed"
	}

	now := r.timeProvider.Now().UTC()
	res, err := r.DB.ExecContext(ctx, `
      UPDATE research_jobs
      SET status = 'failed',
          last_error = $2,
          raw_result = NULL,
          completed_at = $3,
          updated_at = $3
      WHERE id = $1 AND status NOT IN ('completed', 'failed')
    `, id, reason, now)
	if err != nil {
		return false, fmt.Errorf("fail research job: %w", apperrors.MapDBError(err))
	}
	return rowsApplied(res)
}

// SetStructuredResult writes the structuring-phase document. The guard keeps
// the write ordered strictly after the completed transition and away from
// status and raw_result.
func (r *JobRepo) SetStructuredResult(ctx context.Context, id string, doc []byte) (bool, error) {
	if len(doc) == 0 {
		return false, errors.New("structured result document is required")
	}

	now := r.timeProvider.Now().UTC()
	res, err := r.DB.ExecContext(ctx, `
      UPDATE research_jobs
      SET structured_result = $2, updated_at = $3
      WHERE id = $1 AND status = 'completed'
    `, id, doc, now)
	if err != nil {
		return false, fmt.Errorf("set structured result: %w", apperrors.MapDBError(err))
	}
	return rowsApplied(res)
}

// WaitForNewJob blocks until a job insert fires the notify channel or the
// context ends. The dedicated connection is released on return.
func (r *JobRepo) WaitForNewJob(ctx context.Context) error {
	conn, err := r.DB.Conn(ctx)
	if err != nil {
		return fmt.Errorf("get conn from pool: %w", err)
	}
	defer func() {
		if cerr := conn.Close(); cerr != nil {
			_ = cerr
		}
	}()

	quoted := pgx.Identifier{jobNotifyChannel}.Sanitize()
	if _, execErr := conn.ExecContext(ctx, "LISTEN "+quoted); execErr != nil {
		return fmt.Errorf("listen %s: %w", jobNotifyChannel, execErr)
	}
	defer func() {
		if _, execErr := conn.ExecContext(context.Background(), "UNLISTEN "+quoted); execErr != nil {
			_ = execErr
		}
	}()

	return conn.Raw(func(dc any) error {
		sc, ok := dc.(*stdlib.Conn)
		if !ok {
			return errors.New("unexpected driver connection type; expected *stdlib.Conn")
		}
		_, notifyErr := sc.Conn().WaitForNotification(ctx)
		return notifyErr
	})
}

// ListBySession returns all jobs for a session, newest first.
func (r *JobRepo) ListBySession(ctx context.Context, sessionID string) ([]*model.ResearchJob, error) {
	rows, err := r.DB.QueryContext(ctx, `
      SELECT `+jobColumns+`
      FROM research_jobs
      WHERE session_id = $1
      ORDER BY created_at DESC
    `, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list session jobs: %w", apperrors.MapDBError(err))
	}
	defer rows.Close()
	return collectJobs(rows)
}

// ListActive returns non-terminal jobs, oldest first, for the poller.
func (r *JobRepo) ListActive(ctx context.Context, limit int) ([]*model.ResearchJob, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.DB.QueryContext(ctx, `
      SELECT `+jobColumns+`
      FROM research_jobs
      WHERE status NOT IN ('completed', 'failed')
      ORDER BY created_at ASC
      LIMIT $1
    `, limit)
	if err != nil {
		return nil, fmt.Errorf("list active jobs: %w", apperrors.MapDBError(err))
	}
	defer rows.Close()
	return collectJobs(rows)
}

// FailStale fails jobs stuck non-terminal for longer than maxAge, up to
// batchSize per call to prevent long locks and I/O spikes.
func (r *JobRepo) FailStale(ctx context.Context, maxAge time.Duration, batchSize int) (int64, error) {
	if maxAge <= 0 {
		return 0, errors.New("max age must be greater than zero")
	}
	if batchSize <= 0 {
		return 0, errors.New("batch size must be greater than zero")
	}

	now := r.timeProvider.Now()
	cutoff := now.Add(-maxAge)

	res, err := r.DB.ExecContext(ctx, `
      UPDATE research_jobs
      SET status = 'failed',
          last_error = 'research job exceeded the maximum allowed age without finishing',
          raw_result = NULL,
          completed_at = $1,
          updated_at = $1
      WHERE id IN (
        SELECT id FROM research_jobs
        WHERE status NOT IN ('completed', 'failed')
          AND created_at < $2
        ORDER BY created_at
        LIMIT $3
      )
    `, now.UTC(), cutoff.UTC(), batchSize)
	if err != nil {
		return 0, fmt.Errorf("fail stale jobs: %w", apperrors.MapDBError(err))
	}

	ra, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	if ra > 0 && r.logger != nil {
		r.logger.InfoContext(ctx, "failed stale research jobs", "count", ra, "max_age", maxAge)
	}
	return ra, nil
}

func rowsApplied(res sql.Result) (bool, error) {
	ra, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return ra > 0, nil
}

type jobRowScanner interface {
	Scan(dest ...any) error
}

type jobRowData struct {
	rawResult, structuredResult []byte
	lastError                   sql.NullString
	completedAt                 sql.NullTime
}

func (d *jobRowData) scanInto(scanner jobRowScanner, job *model.ResearchJob) error {
	return scanner.Scan(
		&job.ID,
		&job.SessionID,
		&job.ExternalTaskRef,
		&job.Status,
		&job.TemplateKind,
		&job.PromptSnapshot,
		&d.rawResult,
		&d.structuredResult,
		&d.lastError,
		&job.CreatedAt,
		&job.UpdatedAt,
		&d.completedAt,
	)
}

func (d *jobRowData) apply(job *model.ResearchJob) error {
	if len(d.rawResult) > 0 {
		var raw model.RawResult
		if err := json.Unmarshal(d.rawResult, &raw); err != nil {
			return fmt.Errorf("decode raw_result: %w", err)
		}
		job.RawResult = &raw
	}
	if len(d.structuredResult) > 0 {
		job.StructuredResult = append(json.RawMessage(nil), d.structuredResult...)
	}
	job.Error = cloneNullableString(d.lastError)
	job.CompletedAt = cloneNullableTime(d.completedAt)
	return nil
}

func scanJobFromRow(scanner jobRowScanner) (*model.ResearchJob, error) {
	job := &model.ResearchJob{}
	var data jobRowData
	if err := data.scanInto(scanner, job); err != nil {
		return nil, err
	}
	if err := data.apply(job); err != nil {
		return nil, err
	}
	return job, nil
}

func collectJobs(rows *sql.Rows) ([]*model.ResearchJob, error) {
	var jobs []*model.ResearchJob
	for rows.Next() {
		job, err := scanJobFromRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan research job: %w", err)
		}
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return jobs, nil
}

func cloneNullableString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func cloneNullableTime(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time.UTC()
	return &t
}
