package drive

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/Sohamiota/Target-JIT-org/internal/pipeline/dataset"
)

// DownloadOptions controls how files are pulled from a Drive folder.
type DownloadOptions struct {
	FolderID    string
	DownloadDir string
}

// Downloader pulls dataset files out of Drive into the local ingest
// layout: <DownloadDir>/catalog/ and <DownloadDir>/sales/, matching
// the dataset pipeline names.
type Downloader struct {
	service *Service
}

func NewDownloader(s *Service) *Downloader {
	return &Downloader{service: s}
}

// classifyDatasetKind routes a Drive filename to its dataset by
// substring. Files that name neither dataset are skipped.
func classifyDatasetKind(name string) string {
	lower := strings.ToLower(name)
	switch {
	case strings.Contains(lower, "catalog"):
		return "catalog"
	case strings.Contains(lower, "sales"):
		return "sales"
	default:
		return ""
	}
}

// DownloadFolderCSV downloads every CSV and XLSX dataset file from the
// folder into the local layout and returns the local CSV paths. XLSX
// files are converted to CSV (first sheet) and the temporary workbook
// removed.
func (d *Downloader) DownloadFolderCSV(ctx context.Context, opts DownloadOptions) ([]string, error) {
	if opts.DownloadDir == "" {
		return nil, fmt.Errorf("download dir is required")
	}

	files, err := d.service.ListFiles(ctx, opts.FolderID)
	if err != nil {
		return nil, err
	}

	var localPaths []string
	for _, f := range files {
		path, err := d.DownloadDatasetFile(ctx, f, opts.DownloadDir)
		if err != nil {
			return nil, err
		}
		if path != "" {
			localPaths = append(localPaths, path)
		}
	}

	return localPaths, nil
}

// DownloadDatasetFile fetches one Drive file into its dataset
// subdirectory under root and returns the local CSV path. Files that
// are not CSV or XLSX, or that name no dataset, return "".
func (d *Downloader) DownloadDatasetFile(ctx context.Context, f *File, root string) (string, error) {
	ext := strings.ToLower(filepath.Ext(f.Name))
	if ext != ".csv" && ext != ".xlsx" {
		return "", nil
	}

	kind := classifyDatasetKind(f.Name)
	if kind == "" {
		log.Warn().Str("file", f.Name).Msg("drive: filename names no dataset, skipping")
		return "", nil
	}

	destDir := filepath.Join(root, kind)
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create download dir: %w", err)
	}

	localPath := filepath.Join(destDir, f.Name)
	out, err := os.Create(localPath)
	if err != nil {
		return "", fmt.Errorf("failed to create local file %s: %w", localPath, err)
	}
	if err := d.service.DownloadFile(ctx, f.ID, out); err != nil {
		out.Close()
		return "", fmt.Errorf("failed to download %s: %w", f.Name, err)
	}
	if err := out.Close(); err != nil {
		return "", err
	}

	if ext == ".csv" {
		return localPath, nil
	}

	csvPath := strings.TrimSuffix(localPath, filepath.Ext(localPath)) + ".csv"
	if err := dataset.ConvertXLSXToCSV(localPath, csvPath); err != nil {
		return "", fmt.Errorf("failed to convert %s to csv: %w", f.Name, err)
	}
	if err := os.Remove(localPath); err != nil {
		log.Warn().Err(err).Str("file", localPath).Msg("drive: failed to remove temporary workbook")
	}

	return csvPath, nil
}
