package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Sohamiota/Target-JIT-org/internal/datagen"
	"github.com/Sohamiota/Target-JIT-org/internal/domain"
	"github.com/Sohamiota/Target-JIT-org/internal/pipeline"
	"github.com/Sohamiota/Target-JIT-org/internal/pipeline/dataset"
	"github.com/Sohamiota/Target-JIT-org/internal/storage"
)

// Dataset kinds double as the subdirectory names the ingest layout
// uses: <root>/catalog/*.csv and <root>/sales/*.csv.
const (
	DatasetCatalog = "catalog"
	DatasetSales   = "sales"
)

// DatasetResult counts the files picked up for one dataset kind.
type DatasetResult struct {
	Kind  string `json:"kind"`
	Files int    `json:"files"`
}

// IngestReport summarizes one ingest pass over a dataset directory.
type IngestReport struct {
	Root     string          `json:"root"`
	Datasets []DatasetResult `json:"datasets"`
}

// DatasetService feeds CSV drops through the dataset pipelines into
// the items and daily_sales tables, and generates synthetic datasets
// in the same layout.
type DatasetService struct {
	db           *sql.DB
	mirror       storage.ObjectStore
	mirrorPrefix string
}

func NewDatasetService(db *sql.DB) *DatasetService {
	return &DatasetService{db: db}
}

// WithMirror copies successfully ingested uploads into the dataset
// bucket so other environments can seed from it. Mirroring is
// best-effort and never fails an ingest.
func (s *DatasetService) WithMirror(store storage.ObjectStore, prefix string) *DatasetService {
	s.mirror = store
	s.mirrorPrefix = strings.Trim(prefix, "/")
	return s
}

func (s *DatasetService) pipelineFor(kind string) (pipeline.Pipeline, error) {
	cfg := dataset.Config{}
	switch kind {
	case DatasetCatalog:
		return dataset.NewCatalogPipeline(cfg), nil
	case DatasetSales:
		return dataset.NewSalesPipeline(cfg), nil
	default:
		return nil, &domain.DomainError{Op: "ingest", Reason: fmt.Sprintf("unknown dataset kind %q", kind)}
	}
}

// IngestDirectory discovers catalog and sales CSVs under root and runs
// each kind through its pipeline. The kinds run concurrently; neither
// table references the other.
func (s *DatasetService) IngestDirectory(ctx context.Context, root string) (*IngestReport, error) {
	kinds := []string{DatasetCatalog, DatasetSales}

	batches := make(map[string][]string, len(kinds))
	total := 0
	for _, kind := range kinds {
		files, err := filepath.Glob(filepath.Join(root, kind, "*.csv"))
		if err != nil {
			return nil, fmt.Errorf("failed to list %s files: %w", kind, err)
		}
		sort.Strings(files)
		batches[kind] = files
		total += len(files)
	}
	if total == 0 {
		return nil, &domain.DomainError{Op: "ingest", Reason: fmt.Sprintf("no dataset files under %s", root)}
	}

	var wg sync.WaitGroup
	errCh := make(chan error, len(kinds))
	for _, kind := range kinds {
		files := batches[kind]
		if len(files) == 0 {
			continue
		}
		wg.Add(1)
		go func(kind string, files []string) {
			defer wg.Done()
			if err := s.ingestKind(ctx, kind, files); err != nil {
				errCh <- fmt.Errorf("%s ingest failed: %w", kind, err)
			}
		}(kind, files)
	}
	wg.Wait()
	close(errCh)

	var errs []error
	for err := range errCh {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	report := &IngestReport{Root: root}
	for _, kind := range kinds {
		report.Datasets = append(report.Datasets, DatasetResult{Kind: kind, Files: len(batches[kind])})
	}

	log.Info().
		Str("root", root).
		Int("files", total).
		Msg("dataset ingest completed")

	return report, nil
}

func (s *DatasetService) ingestKind(ctx context.Context, kind string, files []string) error {
	p, err := s.pipelineFor(kind)
	if err != nil {
		return err
	}
	orch := pipeline.NewOrchestrator(s.db, pipeline.DefaultConfig(kind))
	return orch.Run(ctx, p, files)
}

// IngestFiles runs one dataset kind's pipeline over an explicit file
// list, for callers that stage uploads themselves. Workbook files are
// converted to CSV in place before the pipeline sees them.
func (s *DatasetService) IngestFiles(ctx context.Context, kind string, files []string) error {
	if len(files) == 0 {
		return nil
	}

	files, err := normalizeUploads(files)
	if err != nil {
		return err
	}

	if err := s.ingestKind(ctx, kind, files); err != nil {
		return err
	}
	s.mirrorFiles(ctx, kind, files)
	return nil
}

// normalizeUploads swaps each .xlsx upload for its CSV conversion and
// returns the paths to ingest.
func normalizeUploads(files []string) ([]string, error) {
	out := make([]string, 0, len(files))
	for _, path := range files {
		if strings.ToLower(filepath.Ext(path)) != ".xlsx" {
			out = append(out, path)
			continue
		}

		csvPath := strings.TrimSuffix(path, filepath.Ext(path)) + ".csv"
		if err := dataset.ConvertXLSXToCSV(path, csvPath); err != nil {
			return nil, fmt.Errorf("failed to convert %s: %w", filepath.Base(path), err)
		}
		if err := os.Remove(path); err != nil {
			log.Warn().Err(err).Str("path", path).Msg("failed to remove converted workbook")
		}
		out = append(out, csvPath)
	}
	return out, nil
}

// mirrorFiles pushes ingested files into the bucket under the dataset
// prefix, matching the layout the seed command downloads from.
func (s *DatasetService) mirrorFiles(ctx context.Context, kind string, files []string) {
	if s.mirror == nil {
		return
	}

	mirrored := 0
	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			log.Warn().Err(err).Str("path", path).Msg("failed to read file for mirroring")
			continue
		}

		key := kind + "/" + filepath.Base(path)
		if s.mirrorPrefix != "" {
			key = s.mirrorPrefix + "/" + key
		}
		if err := s.mirror.UploadObject(ctx, key, data); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("failed to mirror file to object storage")
			continue
		}
		mirrored++
	}

	if mirrored > 0 {
		log.Info().Int("files", mirrored).Str("kind", kind).Msg("uploads mirrored to object storage")
	}
}

// RetryFailed re-runs failed file jobs for one dataset kind.
func (s *DatasetService) RetryFailed(ctx context.Context, kind string) error {
	p, err := s.pipelineFor(kind)
	if err != nil {
		return err
	}
	worker := pipeline.NewWorker(p, pipeline.DefaultConfig(kind), s.db)
	return worker.RetryFailed(ctx)
}

// Stats reports pipeline throughput for one dataset kind since the
// given time.
func (s *DatasetService) Stats(ctx context.Context, kind string, since time.Time) (*pipeline.Metrics, error) {
	if _, err := s.pipelineFor(kind); err != nil {
		return nil, err
	}
	return pipeline.NewRepository(s.db).Stats(ctx, kind, since)
}

// GenerateReport lists what a synthetic dataset run produced.
type GenerateReport struct {
	CatalogFile string `json:"catalog_file"`
	SalesFile   string `json:"sales_file"`
	Items       int    `json:"items"`
	SalesRows   int    `json:"sales_rows"`
}

// GenerateDataset writes a synthetic catalog and sales history under
// root in the ingest layout, with the snapshot date encoded in the
// filenames.
func GenerateDataset(root string, cfg datagen.Config) (*GenerateReport, error) {
	gen := datagen.New(cfg)
	items := gen.Catalog()
	sales := gen.DailySales(items)

	end := cfg.End
	if end.IsZero() {
		end = time.Now().UTC()
	}
	stamp := end.Format("20060102")

	catalogPath := filepath.Join(root, DatasetCatalog, stamp+"_catalog.csv")
	salesPath := filepath.Join(root, DatasetSales, stamp+"_sales.csv")

	if err := writeDatasetFile(catalogPath, func(w io.Writer) error {
		return datagen.WriteCatalogCSV(w, items)
	}); err != nil {
		return nil, fmt.Errorf("failed to write catalog: %w", err)
	}
	if err := writeDatasetFile(salesPath, func(w io.Writer) error {
		return datagen.WriteSalesCSV(w, sales)
	}); err != nil {
		return nil, fmt.Errorf("failed to write sales: %w", err)
	}

	log.Info().
		Str("catalog", catalogPath).
		Str("sales", salesPath).
		Int("items", len(items)).
		Int("sales_rows", len(sales)).
		Msg("synthetic dataset written")

	return &GenerateReport{
		CatalogFile: catalogPath,
		SalesFile:   salesPath,
		Items:       len(items),
		SalesRows:   len(sales),
	}, nil
}

func writeDatasetFile(path string, write func(io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
