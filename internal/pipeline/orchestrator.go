package pipeline

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"sort"
	"time"
)

// Orchestrator fans a file set out into per-snapshot-date batches and
// runs a Worker over each batch in date order.
type Orchestrator struct {
	db  *sql.DB
	cfg Config
}

func NewOrchestrator(db *sql.DB, cfg Config) *Orchestrator {
	return &Orchestrator{db: db, cfg: cfg}
}

// Run ingests files through p. Files from the same snapshot date share
// a run; dates are processed oldest first so later snapshots win any
// upsert conflicts.
func (o *Orchestrator) Run(ctx context.Context, p Pipeline, files []string) error {
	if len(files) == 0 {
		return nil
	}

	batches := make(map[time.Time][]string)
	for _, f := range files {
		date, err := p.SnapshotDate(filepath.Base(f))
		if err != nil {
			return fmt.Errorf("snapshot date for %s: %w", f, err)
		}
		date = date.Truncate(24 * time.Hour)
		batches[date] = append(batches[date], f)
	}

	dates := make([]time.Time, 0, len(batches))
	for date := range batches {
		dates = append(dates, date)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	worker := NewWorker(p, o.cfg, o.db)
	for _, date := range dates {
		if err := worker.ProcessBatch(ctx, date, batches[date]); err != nil {
			return fmt.Errorf("batch %s: %w", date.Format("2006-01-02"), err)
		}
	}

	return nil
}
