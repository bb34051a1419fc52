package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/Sohamiota/Target-JIT-org/internal/service"
	"github.com/Sohamiota/Target-JIT-org/internal/storage"
)

func newStorageFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "storage-endpoint",
			Usage:   "Object storage endpoint",
			EnvVars: []string{"STORAGE_ENDPOINT"},
		},
		&cli.StringFlag{
			Name:    "storage-access-key",
			Usage:   "Object storage access key",
			EnvVars: []string{"STORAGE_ACCESS_KEY"},
		},
		&cli.StringFlag{
			Name:    "storage-secret-key",
			Usage:   "Object storage secret key",
			EnvVars: []string{"STORAGE_SECRET_KEY"},
		},
		&cli.StringFlag{
			Name:    "storage-bucket",
			Usage:   "Object storage bucket",
			EnvVars: []string{"STORAGE_BUCKET"},
		},
		&cli.StringFlag{
			Name:    "storage-region",
			Usage:   "Object storage region",
			EnvVars: []string{"STORAGE_REGION"},
		},
		&cli.BoolFlag{
			Name:    "storage-use-ssl",
			Usage:   "Use TLS when talking to object storage",
			Value:   true,
			EnvVars: []string{"STORAGE_USE_SSL"},
		},
		&cli.StringFlag{
			Name:    "storage-prefix",
			Usage:   "Key prefix for dataset objects",
			Value:   "datasets",
			EnvVars: []string{"STORAGE_DATASET_PREFIX"},
		},
	}
}

func newStorageClient(c *cli.Context) (*storage.MinioClient, error) {
	return storage.NewMinioClient(storage.Config{
		Endpoint:  c.String("storage-endpoint"),
		AccessKey: c.String("storage-access-key"),
		SecretKey: c.String("storage-secret-key"),
		Bucket:    c.String("storage-bucket"),
		Region:    c.String("storage-region"),
		UseSSL:    c.Bool("storage-use-ssl"),
	})
}

type datasetDownloader struct {
	client  storage.ObjectStore
	baseDir string
	prefix  string
}

func newDatasetDownloader(c *cli.Context) (*datasetDownloader, error) {
	client, err := newStorageClient(c)
	if err != nil {
		return nil, err
	}

	baseDir := c.String("download-dir")
	if baseDir == "" {
		baseDir = "./data/tmp/datasets"
	}
	for _, kind := range []string{service.DatasetCatalog, service.DatasetSales} {
		if err := os.MkdirAll(filepath.Join(baseDir, kind), 0o755); err != nil {
			return nil, fmt.Errorf("failed to ensure download dir: %w", err)
		}
	}

	return &datasetDownloader{
		client:  client,
		baseDir: baseDir,
		prefix:  strings.Trim(c.String("storage-prefix"), "/"),
	}, nil
}

func downloadFromStorage(c *cli.Context) (string, error) {
	dl, err := newDatasetDownloader(c)
	if err != nil {
		return "", err
	}
	return dl.downloadAll(c.Context)
}

// downloadAll mirrors <prefix>/catalog/ and <prefix>/sales/ into the
// local dataset layout and returns the local root.
func (d *datasetDownloader) downloadAll(ctx context.Context) (string, error) {
	total := 0
	for _, kind := range []string{service.DatasetCatalog, service.DatasetSales} {
		paths, err := d.downloadKind(ctx, kind)
		if err != nil {
			return "", err
		}
		total += len(paths)
	}
	if total == 0 {
		return "", fmt.Errorf("no CSV files found under prefix %s", d.prefix)
	}

	log.Info().Int("files", total).Str("root", d.baseDir).Msg("storage download completed")
	return d.baseDir, nil
}

func (d *datasetDownloader) downloadKind(ctx context.Context, kind string) ([]string, error) {
	listPrefix := kind
	if d.prefix != "" {
		listPrefix = d.prefix + "/" + kind
	}

	objects, err := d.client.ListObjects(ctx, listPrefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list objects for prefix %s: %w", listPrefix, err)
	}

	localPaths := make([]string, 0, len(objects))
	for _, obj := range objects {
		if !strings.HasSuffix(strings.ToLower(obj.Key), ".csv") {
			continue
		}
		localPath := filepath.Join(d.baseDir, kind, filepath.Base(obj.Key))
		if err := d.client.DownloadObject(ctx, obj.Key, localPath); err != nil {
			return nil, err
		}
		localPaths = append(localPaths, localPath)
	}

	sort.Strings(localPaths)
	return localPaths, nil
}

// uploadDataset publishes freshly generated files under the dataset
// prefix so other environments can seed from the shared bucket.
func uploadDataset(c *cli.Context, report *service.GenerateReport) error {
	client, err := newStorageClient(c)
	if err != nil {
		return err
	}
	prefix := strings.Trim(c.String("storage-prefix"), "/")

	uploads := []struct {
		kind string
		path string
	}{
		{service.DatasetCatalog, report.CatalogFile},
		{service.DatasetSales, report.SalesFile},
	}

	for _, u := range uploads {
		data, err := os.ReadFile(u.path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", u.path, err)
		}

		key := u.kind + "/" + filepath.Base(u.path)
		if prefix != "" {
			key = prefix + "/" + key
		}
		if err := client.UploadObject(c.Context, key, data); err != nil {
			return err
		}
		log.Info().Str("key", key).Int("bytes", len(data)).Msg("dataset file uploaded")
	}
	return nil
}
