// cmd/optimize/main.go
package main

import (
	"context"
	"database/sql"
	"flag"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/Sohamiota/Target-JIT-org/internal/domain"
	"github.com/Sohamiota/Target-JIT-org/internal/optimizer"
	"github.com/Sohamiota/Target-JIT-org/internal/repository/postgres"
	"github.com/Sohamiota/Target-JIT-org/internal/service"
	"github.com/Sohamiota/Target-JIT-org/pkg/logger"
)

// One-shot optimization pass for cron jobs and operators who want a
// run without going through the API. Reads items from the database by
// default, or from a CSV file with -input; -output writes the results
// as CSV next to (or instead of) persisting them.
func main() {
	dbURL := flag.String("db-url", os.Getenv("DATABASE_URL"), "Database connection string")
	workers := flag.Int("workers", 0, "Concurrent optimization workers (0 = all CPUs)")
	policyPath := flag.String("policy-path", "./data/policy.json", "Path to the cost policy file")
	timeout := flag.Duration("timeout", 10*time.Minute, "Maximum run duration")
	input := flag.String("input", "", "Read items from a CSV file instead of the database")
	output := flag.String("output", "", "Write optimized results to a CSV file")
	verbose := flag.Bool("v", false, "Verbose logging")
	flag.Parse()

	level := "info"
	if *verbose {
		level = "debug"
	}
	logger.SetLevel(level)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	start := time.Now()

	if *input != "" {
		if err := optimizeFile(ctx, *input, *output, *policyPath, *workers); err != nil {
			log.Fatal().Err(err).Msg("optimization failed")
		}
		return
	}

	if *dbURL == "" {
		log.Fatal().Msg("database URL is required (use -db-url flag or DATABASE_URL)")
	}

	sqlDB, err := sql.Open("pgx", *dbURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer sqlDB.Close()

	db := postgres.Wrap(sqlx.NewDb(sqlDB, "pgx"))

	svc := service.NewOptimizeService(
		postgres.NewItemRepository(db),
		postgres.NewRunRepository(db),
		postgres.NewPolicyRepository(db),
		postgres.NewSummaryRepository(db),
		nil,
		service.NewPolicyStore(*policyPath),
		*workers,
	)

	run, _, err := svc.RunOptimization(ctx, nil)
	if err != nil {
		log.Fatal().Err(err).Msg("optimization run failed")
	}

	if *output != "" {
		if err := exportRunResults(ctx, svc, run.ID, *output); err != nil {
			log.Fatal().Err(err).Msg("failed to export results")
		}
	}

	log.Info().
		Str("run_id", run.ID.String()).
		Int("optimized", run.ItemCount).
		Int("failed", run.FailureCount).
		Float64("total_annual_cost", run.TotalAnnualCost).
		Dur("took", time.Since(start)).
		Msg("optimization run completed")
}

// optimizeFile runs the optimizer over a CSV file without touching the
// database. The policy comes from the policy file, or defaults when no
// file exists.
func optimizeFile(ctx context.Context, inputPath, outputPath, policyPath string, workers int) error {
	start := time.Now()

	items, err := readItemsCSV(inputPath)
	if err != nil {
		return err
	}

	policy, fromFile, err := service.NewPolicyStore(policyPath).Load()
	if err != nil {
		return err
	}
	if !fromFile {
		log.Debug().Msg("no policy file found, using default policy")
	}

	opt, err := optimizer.New(policy)
	if err != nil {
		return err
	}

	result, err := opt.OptimizeInventoryLevelsParallel(ctx, items, workers)
	if err != nil {
		return err
	}

	for _, f := range result.Failures {
		log.Warn().Str("sku_id", f.SKUID).Str("reason", f.Error).Msg("item rejected")
	}

	if outputPath != "" {
		if err := writeResultsCSV(outputPath, result.Items); err != nil {
			return err
		}
		log.Info().Str("file", outputPath).Msg("results written")
	}

	log.Info().
		Int("optimized", len(result.Items)).
		Int("failed", len(result.Failures)).
		Dur("took", time.Since(start)).
		Msg("optimization completed")
	return nil
}

// exportRunResults pages through a persisted run's results and writes
// them out as one CSV file.
func exportRunResults(ctx context.Context, svc *service.OptimizeService, runID uuid.UUID, path string) error {
	var all []domain.OptimizedItem
	for page := 1; ; page++ {
		p, err := svc.GetResults(ctx, runID, &domain.ItemFilter{Page: page, PageSize: 100})
		if err != nil {
			return err
		}
		all = append(all, p.Results...)
		if page >= p.TotalPages || len(p.Results) == 0 {
			break
		}
	}
	return writeResultsCSV(path, all)
}
