package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/Sohamiota/Target-JIT-org/internal/datagen"
	"github.com/Sohamiota/Target-JIT-org/internal/drive"
	"github.com/Sohamiota/Target-JIT-org/internal/service"
)

func newGenerateCommand() *cli.Command {
	return &cli.Command{
		Name:  "generate",
		Usage: "Generate a synthetic catalog and sales dataset",
		Flags: append([]cli.Flag{
			&cli.Int64Flag{
				Name:  "seed",
				Usage: "Random seed for reproducible datasets",
				Value: datagen.DefaultSeed,
			},
			&cli.IntFlag{
				Name:  "items",
				Usage: "Number of catalog items",
				Value: datagen.DefaultItems,
			},
			&cli.IntFlag{
				Name:  "days",
				Usage: "Days of sales history",
				Value: datagen.DefaultDays,
			},
			&cli.StringFlag{
				Name:    "out-dir",
				Usage:   "Output directory for the dataset layout",
				Value:   "./data/datasets",
				EnvVars: []string{"DATASET_DIR"},
			},
			&cli.BoolFlag{
				Name:  "upload",
				Usage: "Upload the generated files to object storage",
			},
		}, newStorageFlags()...),
		Action: runGenerate,
	}
}

func runGenerate(c *cli.Context) error {
	report, err := service.GenerateDataset(c.String("out-dir"), datagen.Config{
		Seed:  c.Int64("seed"),
		Items: c.Int("items"),
		Days:  c.Int("days"),
	})
	if err != nil {
		return err
	}

	if !c.Bool("upload") {
		return nil
	}
	return uploadDataset(c, report)
}

func newSeedCommand() *cli.Command {
	return &cli.Command{
		Name:  "seed",
		Usage: "Load dataset CSV files into the database",
		Flags: append([]cli.Flag{
			newDBURLFlag(),
			&cli.StringFlag{
				Name:    "data-dir",
				Usage:   "Directory containing catalog/ and sales/ CSV files",
				Value:   "./data/datasets",
				EnvVars: []string{"DATASET_DIR"},
			},
			&cli.BoolFlag{
				Name:  "from-storage",
				Usage: "Download the dataset from object storage first",
			},
			&cli.BoolFlag{
				Name:  "from-drive",
				Usage: "Download the dataset from a Google Drive folder first",
			},
			&cli.StringFlag{
				Name:    "drive-folder-id",
				Usage:   "Google Drive folder ID containing dataset files",
				EnvVars: []string{"GOOGLE_DRIVE_FOLDER_ID"},
			},
			&cli.StringFlag{
				Name:    "download-dir",
				Usage:   "Local directory for downloaded dataset files",
				Value:   "./data/tmp/datasets",
				EnvVars: []string{"DATASET_DOWNLOAD_DIR"},
			},
			&cli.BoolFlag{
				Name:    "reset",
				Usage:   "Drop the schema and re-run migrations before seeding (development only)",
				EnvVars: []string{"RESET_DB"},
			},
			&cli.StringFlag{
				Name:    "migrations-dir",
				Usage:   "Directory containing SQL migrations, used with --reset",
				Value:   "./scripts/migrations",
				EnvVars: []string{"MIGRATIONS_DIR"},
			},
		}, newStorageFlags()...),
		Before: initDB,
		After:  closeDB,
		Action: runSeed,
	}
}

func runSeed(c *cli.Context) error {
	sqlDB, err := dbFromContext(c)
	if err != nil {
		return err
	}

	if c.Bool("reset") {
		if err := maybeResetDatabase(c.Context, sqlDB, true); err != nil {
			return err
		}
		if err := runMigrations(c.Context, sqlDB, c.String("migrations-dir")); err != nil {
			return err
		}
	}

	root := c.String("data-dir")
	switch {
	case c.Bool("from-storage"):
		root, err = downloadFromStorage(c)
	case c.Bool("from-drive"):
		root, err = downloadFromDrive(c)
	}
	if err != nil {
		return err
	}

	report, err := service.NewDatasetService(sqlDB).IngestDirectory(c.Context, root)
	if err != nil {
		return err
	}

	for _, ds := range report.Datasets {
		log.Info().Str("kind", ds.Kind).Int("files", ds.Files).Msg("dataset seeded")
	}
	return nil
}

// downloadFromDrive pulls every routable CSV/XLSX from the configured
// Drive folder into the dataset layout and returns the local root.
func downloadFromDrive(c *cli.Context) (string, error) {
	folderID := c.String("drive-folder-id")
	if folderID == "" {
		return "", fmt.Errorf("drive-folder-id is required with --from-drive")
	}

	credsJSON := os.Getenv("GOOGLE_DRIVE_CREDENTIALS_JSON")
	if strings.TrimSpace(credsJSON) == "" {
		return "", fmt.Errorf("GOOGLE_DRIVE_CREDENTIALS_JSON env is required with --from-drive")
	}

	driveSvc, err := drive.NewService(c.Context, credsJSON)
	if err != nil {
		return "", fmt.Errorf("failed to create drive service: %w", err)
	}

	root := c.String("download-dir")
	files, err := drive.NewDownloader(driveSvc).DownloadFolderCSV(c.Context, drive.DownloadOptions{
		FolderID:    folderID,
		DownloadDir: root,
	})
	if err != nil {
		return "", fmt.Errorf("failed to download from drive: %w", err)
	}
	if len(files) == 0 {
		return "", fmt.Errorf("no dataset files found in drive folder %s", folderID)
	}

	log.Info().Int("files", len(files)).Str("root", root).Msg("drive download completed")
	return root, nil
}
