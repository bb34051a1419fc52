package pipeline

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Aggregator collects transformed rows from many input files and
// flushes them as one staged CSV per batch, handing each staged file to
// the seed callback. Flushes trigger on file count, approximate byte
// size or buffer age, whichever comes first.
type Aggregator struct {
	pipeline Pipeline
	cfg      Config
	date     time.Time
	seed     func(ctx context.Context, csvPath string) error

	mu        sync.Mutex
	buffer    [][]Row
	bytes     int64
	lastFlush time.Time
}

func NewAggregator(p Pipeline, cfg Config, date time.Time, seed func(ctx context.Context, csvPath string) error) *Aggregator {
	return &Aggregator{
		pipeline:  p,
		cfg:       cfg,
		date:      date,
		seed:      seed,
		buffer:    make([][]Row, 0, cfg.BatchFiles),
		lastFlush: time.Now(),
	}
}

// Add buffers one file's rows and flushes if a batch threshold is hit.
func (a *Aggregator) Add(ctx context.Context, rows []Row) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.buffer = append(a.buffer, rows)

	// Size is estimated, not measured: 100 bytes per field is close
	// enough to bound memory.
	for _, row := range rows {
		a.bytes += int64(len(row.Data) * 100)
	}

	log.Debug().
		Str("pipeline", a.pipeline.Name()).
		Int("buffered_files", len(a.buffer)).
		Int64("buffered_bytes", a.bytes).
		Msg("aggregator buffer updated")

	if len(a.buffer) >= a.cfg.BatchFiles ||
		a.bytes >= a.cfg.BatchBytes ||
		time.Since(a.lastFlush) >= a.cfg.FlushInterval {
		return a.flushLocked(ctx)
	}

	return nil
}

// Finalize flushes whatever remains buffered at the end of a batch.
func (a *Aggregator) Finalize(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if len(a.buffer) == 0 {
		return nil
	}
	return a.flushLocked(ctx)
}

// flushLocked writes the buffer to one staged CSV and runs the seed
// callback. Callers hold a.mu.
func (a *Aggregator) flushLocked(ctx context.Context) error {
	if len(a.buffer) == 0 {
		return nil
	}

	var rows []Row
	for _, fileRows := range a.buffer {
		rows = append(rows, fileRows...)
	}

	if err := os.MkdirAll(a.cfg.StagingDir, 0o755); err != nil {
		return fmt.Errorf("failed to create staging directory: %w", err)
	}

	csvPath := filepath.Join(a.cfg.StagingDir, a.date.Format("20060102")+".csv")
	if err := writeRowsCSV(csvPath, rows); err != nil {
		return fmt.Errorf("failed to write staged CSV: %w", err)
	}

	log.Info().
		Str("pipeline", a.pipeline.Name()).
		Int("rows", len(rows)).
		Str("path", csvPath).
		Msg("staged CSV written")

	if a.seed != nil {
		if err := a.seed(ctx, csvPath); err != nil {
			return fmt.Errorf("seed callback failed: %w", err)
		}
	}

	a.buffer = a.buffer[:0]
	a.bytes = 0
	a.lastFlush = time.Now()

	return nil
}

// writeRowsCSV writes rows with a sorted header so output is stable
// across runs regardless of map iteration order.
func writeRowsCSV(path string, rows []Row) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	w := csv.NewWriter(file)
	defer w.Flush()

	if len(rows) == 0 {
		return nil
	}

	header := make([]string, 0, len(rows[0].Data))
	for key := range rows[0].Data {
		header = append(header, key)
	}
	sort.Strings(header)

	if err := w.Write(header); err != nil {
		return err
	}

	record := make([]string, len(header))
	for _, row := range rows {
		for i, col := range header {
			record[i] = ""
			if val, ok := row.Data[col]; ok {
				record[i] = fmt.Sprintf("%v", val)
			}
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}

	return nil
}
