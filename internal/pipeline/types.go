// Package pipeline runs dataset files through a transform-validate-seed
// cycle with per-file job tracking in Postgres. Concrete pipelines live
// in the dataset subpackage; this package owns the generic machinery:
// worker pool, batching aggregator and run bookkeeping.
package pipeline

import (
	"context"
	"time"
)

// Pipeline is one dataset shape's transform logic. Implementations are
// stateless; the Worker drives them file by file.
type Pipeline interface {
	// Name identifies the pipeline and doubles as the dataset kind.
	Name() string

	// Transform parses one input file into canonical rows.
	Transform(ctx context.Context, inputFile string) ([]Row, error)

	// OutputTable is the table the seeded rows land in.
	OutputTable() string

	// SnapshotDate extracts the snapshot date from a filename.
	SnapshotDate(filename string) (time.Time, error)

	// Validate rejects files the pipeline cannot process before any
	// parsing work happens.
	Validate(inputFile string) error
}

// Row is one canonicalized record. Keys are column names in the
// aggregated CSV; the set of keys must be identical for every row a
// Transform call returns.
type Row struct {
	Data map[string]interface{}
}

// Config tunes one pipeline instance.
type Config struct {
	Name          string
	BatchFiles    int           // files buffered before a flush
	BatchBytes    int64         // approximate buffered bytes before a flush
	FlushInterval time.Duration // max age of the buffer before a flush
	WorkerCount   int
	StagingDir    string // where aggregated CSVs are written before seeding
	RetryAttempts int
}

// DefaultConfig returns the standing defaults for a dataset kind. The
// staging directory ends in the kind name; the seeding processor routes
// files by that parent directory.
func DefaultConfig(name string) Config {
	return Config{
		Name:          name,
		BatchFiles:    5,
		BatchBytes:    10 << 20,
		FlushInterval: 5 * time.Minute,
		WorkerCount:   4,
		StagingDir:    "data/staging/" + name,
		RetryAttempts: 3,
	}
}

type RunStatus string

const (
	RunPending    RunStatus = "pending"
	RunProcessing RunStatus = "processing"
	RunCompleted  RunStatus = "completed"
	RunFailed     RunStatus = "failed"
)

type JobStatus string

const (
	JobQueued     JobStatus = "queued"
	JobProcessing JobStatus = "processing"
	JobCompleted  JobStatus = "completed"
	JobFailed     JobStatus = "failed"
)

// Run is one execution of a pipeline over one snapshot date's files.
// Re-ingesting the same date resumes the existing run.
type Run struct {
	ID             int64
	Pipeline       string
	SnapshotDate   time.Time
	Status         RunStatus
	TotalFiles     int
	ProcessedFiles int
	TotalRows      int
	StartedAt      time.Time
	CompletedAt    *time.Time
	LastError      string
}

// FileJob tracks one file through a run. Kind is the dataset the file
// belongs to (catalog or sales).
type FileJob struct {
	ID         int64
	RunID      int64
	FilePath   string
	Kind       string
	Status     JobStatus
	LastError  string
	FinishedAt *time.Time
	Attempts   int
}

// Metrics aggregates run outcomes for the stats endpoint.
type Metrics struct {
	FilesProcessed  int64     `json:"files_processed"`
	RowsProcessed   int64     `json:"rows_processed"`
	ErrorCount      int64     `json:"error_count"`
	LastProcessedAt time.Time `json:"last_processed_at"`
}
