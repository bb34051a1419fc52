package pipeline

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// Repository persists run and file-job bookkeeping. It takes a bare
// *sql.DB so the ingest CLI and the servers can share it without the
// sqlx layer.
type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const runColumns = `id, pipeline, snapshot_date, status, total_files,
	processed_files, total_rows, started_at, completed_at, last_error`

func scanRun(row *sql.Row) (*Run, error) {
	run := &Run{}
	err := row.Scan(
		&run.ID, &run.Pipeline, &run.SnapshotDate, &run.Status,
		&run.TotalFiles, &run.ProcessedFiles, &run.TotalRows,
		&run.StartedAt, &run.CompletedAt, &run.LastError,
	)
	if err != nil {
		return nil, err
	}
	return run, nil
}

func (r *Repository) CreateRun(ctx context.Context, run *Run) error {
	const query = `
		INSERT INTO pipeline_runs
			(pipeline, snapshot_date, status, total_files, processed_files, total_rows, started_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`

	return r.db.QueryRowContext(ctx, query,
		run.Pipeline, run.SnapshotDate, run.Status, run.TotalFiles,
		run.ProcessedFiles, run.TotalRows, run.StartedAt,
	).Scan(&run.ID)
}

func (r *Repository) UpdateRun(ctx context.Context, run *Run) error {
	const query = `
		UPDATE pipeline_runs
		SET status = $1, processed_files = $2, total_rows = $3, completed_at = $4, last_error = $5
		WHERE id = $6`

	_, err := r.db.ExecContext(ctx, query,
		run.Status, run.ProcessedFiles, run.TotalRows,
		run.CompletedAt, run.LastError, run.ID,
	)
	return err
}

func (r *Repository) RunByID(ctx context.Context, id int64) (*Run, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+runColumns+` FROM pipeline_runs WHERE id = $1`, id)
	return scanRun(row)
}

// RunByDate fetches the run for one pipeline and snapshot date, or nil
// when the date has never been ingested.
func (r *Repository) RunByDate(ctx context.Context, pipeline string, date time.Time) (*Run, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+runColumns+` FROM pipeline_runs WHERE pipeline = $1 AND snapshot_date = $2`,
		pipeline, date)

	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return run, err
}

func (r *Repository) CreateJob(ctx context.Context, job *FileJob) error {
	const query = `
		INSERT INTO pipeline_file_jobs (run_id, file_path, file_kind, status, last_error)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	return r.db.QueryRowContext(ctx, query,
		job.RunID, job.FilePath, job.Kind, job.Status, job.LastError,
	).Scan(&job.ID)
}

func (r *Repository) UpdateJob(ctx context.Context, job *FileJob) error {
	const query = `
		UPDATE pipeline_file_jobs
		SET status = $1, last_error = $2, finished_at = $3, attempts = $4
		WHERE id = $5`

	_, err := r.db.ExecContext(ctx, query,
		job.Status, job.LastError, job.FinishedAt, job.Attempts, job.ID,
	)
	return err
}

// FailedJobs lists this pipeline's failed jobs that still have retries
// left.
func (r *Repository) FailedJobs(ctx context.Context, pipeline string, maxAttempts int) ([]*FileJob, error) {
	const query = `
		SELECT j.id, j.run_id, j.file_path, j.file_kind, j.status, j.last_error, j.finished_at, j.attempts
		FROM pipeline_file_jobs j
		JOIN pipeline_runs r ON j.run_id = r.id
		WHERE r.pipeline = $1 AND j.status = $2 AND j.attempts < $3
		ORDER BY j.id`

	rows, err := r.db.QueryContext(ctx, query, pipeline, JobFailed, maxAttempts)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []*FileJob
	for rows.Next() {
		job := &FileJob{}
		if err := rows.Scan(
			&job.ID, &job.RunID, &job.FilePath, &job.Kind,
			&job.Status, &job.LastError, &job.FinishedAt, &job.Attempts,
		); err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

// Stats rolls finished runs since the cutoff into one Metrics row.
func (r *Repository) Stats(ctx context.Context, pipeline string, since time.Time) (*Metrics, error) {
	const query = `
		SELECT
			COUNT(*),
			COALESCE(SUM(total_rows), 0),
			COUNT(*) FILTER (WHERE status = $2),
			MAX(completed_at)
		FROM pipeline_runs
		WHERE pipeline = $1 AND started_at >= $3 AND status IN ($4, $2)`

	metrics := &Metrics{}
	var lastProcessed sql.NullTime
	err := r.db.QueryRowContext(ctx, query, pipeline, RunFailed, since, RunCompleted).Scan(
		&metrics.FilesProcessed,
		&metrics.RowsProcessed,
		&metrics.ErrorCount,
		&lastProcessed,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return &Metrics{}, nil
	}
	if err != nil {
		return nil, err
	}

	if lastProcessed.Valid {
		metrics.LastProcessedAt = lastProcessed.Time
	}
	return metrics, nil
}

// IncrementProcessed bumps a run's processed-file counter. Separate
// from UpdateRun so concurrent workers do not race on the full row.
func (r *Repository) IncrementProcessed(ctx context.Context, runID int64) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE pipeline_runs SET processed_files = processed_files + 1 WHERE id = $1", runID)
	return err
}

// AddRows adds a file's row count to the run total.
func (r *Repository) AddRows(ctx context.Context, runID int64, count int) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE pipeline_runs SET total_rows = total_rows + $1 WHERE id = $2", count, runID)
	return err
}
