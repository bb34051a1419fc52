package pipeline

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Sohamiota/Target-JIT-org/internal/ingest"
)

// Worker drives one pipeline over one batch of files: job records in,
// parallel transforms, aggregated CSV out, rows seeded into the target
// table.
type Worker struct {
	pipeline   Pipeline
	cfg        Config
	repo       *Repository
	db         *sql.DB
	aggregator *Aggregator
	processor  *ingest.Processor
}

func NewWorker(p Pipeline, cfg Config, db *sql.DB) *Worker {
	return &Worker{
		pipeline:  p,
		cfg:       cfg,
		repo:      NewRepository(db),
		db:        db,
		processor: ingest.NewProcessor(db),
	}
}

// ProcessBatch ingests one snapshot date's files. The run is resumed if
// the date was ingested before, so partially failed batches can be
// re-driven without duplicating rows.
func (w *Worker) ProcessBatch(ctx context.Context, date time.Time, files []string) error {
	log.Info().
		Str("pipeline", w.pipeline.Name()).
		Str("date", date.Format("2006-01-02")).
		Int("files", len(files)).
		Msg("starting batch")

	run, err := w.resumeOrCreateRun(ctx, date, len(files))
	if err != nil {
		return fmt.Errorf("failed to create pipeline run: %w", err)
	}

	// Each flushed batch is seeded straight into the database.
	w.aggregator = NewAggregator(w.pipeline, w.cfg, date,
		func(ctx context.Context, csvPath string) error {
			return w.processor.ProcessFile(ctx, csvPath)
		})

	jobs := make([]*FileJob, len(files))
	for i, file := range files {
		job := &FileJob{
			RunID:    run.ID,
			FilePath: file,
			Kind:     w.pipeline.Name(),
			Status:   JobQueued,
		}
		if err := w.repo.CreateJob(ctx, job); err != nil {
			return fmt.Errorf("failed to create file job: %w", err)
		}
		jobs[i] = job
	}

	run.Status = RunProcessing
	if err := w.repo.UpdateRun(ctx, run); err != nil {
		return fmt.Errorf("failed to update pipeline run: %w", err)
	}

	if err := w.runJobs(ctx, run, jobs); err != nil {
		w.failRun(ctx, run, err.Error())
		return err
	}

	if err := w.aggregator.Finalize(ctx); err != nil {
		w.failRun(ctx, run, fmt.Sprintf("aggregation failed: %v", err))
		return fmt.Errorf("failed to finalize aggregation: %w", err)
	}

	run.Status = RunCompleted
	now := time.Now()
	run.CompletedAt = &now
	if err := w.repo.UpdateRun(ctx, run); err != nil {
		return fmt.Errorf("failed to complete pipeline run: %w", err)
	}

	log.Info().
		Str("pipeline", w.pipeline.Name()).
		Int("processed_files", run.ProcessedFiles).
		Int("rows", run.TotalRows).
		Msg("batch completed")

	return nil
}

func (w *Worker) failRun(ctx context.Context, run *Run, reason string) {
	run.Status = RunFailed
	run.LastError = reason
	now := time.Now()
	run.CompletedAt = &now
	if err := w.repo.UpdateRun(ctx, run); err != nil {
		log.Error().Err(err).
			Str("pipeline", w.pipeline.Name()).
			Int64("run_id", run.ID).
			Msg("failed to mark run failed")
	}
}

// runJobs fans the jobs out over the configured worker count. The
// first job error fails the batch; remaining in-flight jobs finish
// their own bookkeeping first.
func (w *Worker) runJobs(ctx context.Context, run *Run, jobs []*FileJob) error {
	workers := w.cfg.WorkerCount
	if workers < 1 {
		workers = 1
	}

	jobCh := make(chan *FileJob, len(jobs))
	errCh := make(chan error, workers)
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for job := range jobCh {
				if err := w.runJob(ctx, run, job); err != nil {
					log.Error().Err(err).
						Str("pipeline", w.pipeline.Name()).
						Int("worker", id).
						Str("file", job.FilePath).
						Msg("file processing failed")
					select {
					case errCh <- err:
					default:
					}
				}
			}
		}(i)
	}

	for _, job := range jobs {
		select {
		case <-ctx.Done():
			close(jobCh)
			return ctx.Err()
		case jobCh <- job:
		}
	}
	close(jobCh)

	wg.Wait()
	close(errCh)

	if err := <-errCh; err != nil {
		return err
	}
	return nil
}

func (w *Worker) runJob(ctx context.Context, run *Run, job *FileJob) error {
	start := time.Now()

	job.Status = JobProcessing
	if err := w.repo.UpdateJob(ctx, job); err != nil {
		return err
	}

	if err := w.pipeline.Validate(job.FilePath); err != nil {
		return w.failJob(ctx, job, fmt.Errorf("validation failed: %w", err))
	}

	rows, err := w.pipeline.Transform(ctx, job.FilePath)
	if err != nil {
		return w.failJob(ctx, job, fmt.Errorf("transformation failed: %w", err))
	}

	if err := w.aggregator.Add(ctx, rows); err != nil {
		return w.failJob(ctx, job, fmt.Errorf("aggregation failed: %w", err))
	}

	job.Status = JobCompleted
	now := time.Now()
	job.FinishedAt = &now
	if err := w.repo.UpdateJob(ctx, job); err != nil {
		return err
	}

	if err := w.repo.IncrementProcessed(ctx, run.ID); err != nil {
		log.Warn().Err(err).
			Str("pipeline", w.pipeline.Name()).
			Msg("failed to increment processed files")
	}
	if err := w.repo.AddRows(ctx, run.ID, len(rows)); err != nil {
		log.Warn().Err(err).
			Str("pipeline", w.pipeline.Name()).
			Msg("failed to add row count")
	}

	log.Debug().
		Str("pipeline", w.pipeline.Name()).
		Str("file", job.FilePath).
		Dur("duration", time.Since(start)).
		Int("rows", len(rows)).
		Msg("file processed")

	return nil
}

// failJob records the failure and counts the attempt. The original
// error passes through so the batch decision stays with the caller.
func (w *Worker) failJob(ctx context.Context, job *FileJob, err error) error {
	job.Status = JobFailed
	job.LastError = err.Error()
	job.Attempts++

	if updateErr := w.repo.UpdateJob(ctx, job); updateErr != nil {
		log.Error().Err(updateErr).
			Str("pipeline", w.pipeline.Name()).
			Msg("failed to update job status")
	}

	if job.Attempts < w.cfg.RetryAttempts {
		log.Info().
			Str("pipeline", w.pipeline.Name()).
			Str("file", job.FilePath).
			Int("attempt", job.Attempts).
			Int("max_attempts", w.cfg.RetryAttempts).
			Msg("job eligible for retry")
	}

	return err
}

func (w *Worker) resumeOrCreateRun(ctx context.Context, date time.Time, totalFiles int) (*Run, error) {
	run, err := w.repo.RunByDate(ctx, w.pipeline.Name(), date)
	if err != nil {
		return nil, err
	}

	if run != nil {
		if run.TotalFiles != totalFiles {
			run.TotalFiles = totalFiles
			if err := w.repo.UpdateRun(ctx, run); err != nil {
				return nil, err
			}
		}
		return run, nil
	}

	run = &Run{
		Pipeline:     w.pipeline.Name(),
		SnapshotDate: date,
		Status:       RunPending,
		TotalFiles:   totalFiles,
		StartedAt:    time.Now(),
	}
	if err := w.repo.CreateRun(ctx, run); err != nil {
		return nil, err
	}
	return run, nil
}

// RetryFailed re-drives every failed job that has retries left,
// grouped back into their original runs.
func (w *Worker) RetryFailed(ctx context.Context) error {
	jobs, err := w.repo.FailedJobs(ctx, w.pipeline.Name(), w.cfg.RetryAttempts)
	if err != nil {
		return fmt.Errorf("failed to get failed jobs: %w", err)
	}

	if len(jobs) == 0 {
		log.Info().Str("pipeline", w.pipeline.Name()).Msg("no failed jobs to retry")
		return nil
	}

	log.Info().
		Str("pipeline", w.pipeline.Name()).
		Int("jobs", len(jobs)).
		Msg("retrying failed jobs")

	byRun := make(map[int64][]*FileJob)
	for _, job := range jobs {
		byRun[job.RunID] = append(byRun[job.RunID], job)
	}

	for runID, runJobs := range byRun {
		run, err := w.repo.RunByID(ctx, runID)
		if err != nil {
			log.Error().Err(err).
				Str("pipeline", w.pipeline.Name()).
				Int64("run_id", runID).
				Msg("failed to get run")
			continue
		}

		w.aggregator = NewAggregator(w.pipeline, w.cfg, run.SnapshotDate,
			func(ctx context.Context, csvPath string) error {
				return w.processor.ProcessFile(ctx, csvPath)
			})

		if err := w.runJobs(ctx, run, runJobs); err != nil {
			log.Error().Err(err).
				Str("pipeline", w.pipeline.Name()).
				Int64("run_id", runID).
				Msg("failed to retry jobs")
			continue
		}

		if run.ProcessedFiles == run.TotalFiles {
			if err := w.aggregator.Finalize(ctx); err != nil {
				log.Error().Err(err).
					Str("pipeline", w.pipeline.Name()).
					Int64("run_id", runID).
					Msg("failed to finalize run")
			}
		}
	}

	return nil
}
