package main

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/Sohamiota/Target-JIT-org/internal/domain"
	"github.com/Sohamiota/Target-JIT-org/internal/repository/postgres"
	"github.com/Sohamiota/Target-JIT-org/internal/service"
)

func newPolicyPathFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "policy-path",
		Usage:   "Path to the cost policy file",
		Value:   "./data/policy.json",
		EnvVars: []string{"OPTIMIZER_POLICY_PATH"},
	}
}

func newOptimizeService(db *postgres.DB, policyPath string, workers int) *service.OptimizeService {
	return service.NewOptimizeService(
		postgres.NewItemRepository(db),
		postgres.NewRunRepository(db),
		postgres.NewPolicyRepository(db),
		postgres.NewSummaryRepository(db),
		nil,
		service.NewPolicyStore(policyPath),
		workers,
	)
}

func newOptimizeCommand() *cli.Command {
	return &cli.Command{
		Name:  "optimize",
		Usage: "Run a full optimization pass over the stored catalog",
		Flags: []cli.Flag{
			newDBURLFlag(),
			newPolicyPathFlag(),
			&cli.IntFlag{
				Name:  "workers",
				Usage: "Concurrent optimization workers (0 = all CPUs)",
			},
		},
		Before: initDB,
		After:  closeDB,
		Action: runOptimize,
	}
}

func runOptimize(c *cli.Context) error {
	db, err := repoDB(c)
	if err != nil {
		return err
	}

	svc := newOptimizeService(db, c.String("policy-path"), c.Int("workers"))

	start := time.Now()
	run, _, err := svc.RunOptimization(c.Context, nil)
	if err != nil {
		return err
	}

	log.Info().
		Str("run_id", run.ID.String()).
		Int("optimized", run.ItemCount).
		Int("failed", run.FailureCount).
		Float64("total_annual_cost", run.TotalAnnualCost).
		Dur("took", time.Since(start)).
		Msg("optimization run completed")
	return nil
}

func newPolicyCommand() *cli.Command {
	return &cli.Command{
		Name:  "policy",
		Usage: "Inspect or update the cost policy",
		Subcommands: []*cli.Command{
			{
				Name:   "show",
				Usage:  "Print the active cost policy",
				Flags:  []cli.Flag{newDBURLFlag(), newPolicyPathFlag()},
				Before: initDB,
				After:  closeDB,
				Action: showPolicy,
			},
			{
				Name:  "set",
				Usage: "Save a new cost policy version",
				Flags: []cli.Flag{
					newDBURLFlag(),
					newPolicyPathFlag(),
					&cli.Float64Flag{
						Name:     "holding-cost-rate",
						Usage:    "Annual holding cost as a fraction of unit cost",
						Required: true,
					},
					&cli.Float64Flag{
						Name:     "stockout-cost-rate",
						Usage:    "Stockout penalty as a fraction of unit cost",
						Required: true,
					},
					&cli.Float64Flag{
						Name:     "service-level",
						Usage:    "Target cycle service level in (0, 1)",
						Required: true,
					},
				},
				Before: initDB,
				After:  closeDB,
				Action: setPolicy,
			},
			{
				Name:  "export",
				Usage: "Write the active cost policy to a JSON file",
				Flags: []cli.Flag{
					newDBURLFlag(),
					newPolicyPathFlag(),
					&cli.StringFlag{
						Name:     "out",
						Usage:    "Destination file for the exported policy",
						Required: true,
					},
				},
				Before: initDB,
				After:  closeDB,
				Action: exportPolicy,
			},
			{
				Name:  "import",
				Usage: "Save the cost policy from a JSON file as a new version",
				Flags: []cli.Flag{
					newDBURLFlag(),
					newPolicyPathFlag(),
					&cli.StringFlag{
						Name:     "file",
						Usage:    "Policy JSON file to import",
						Required: true,
					},
				},
				Before: initDB,
				After:  closeDB,
				Action: importPolicy,
			},
		},
	}
}

func showPolicy(c *cli.Context) error {
	db, err := repoDB(c)
	if err != nil {
		return err
	}

	policy, version, err := newOptimizeService(db, c.String("policy-path"), 0).CurrentPolicy(c.Context)
	if err != nil {
		return err
	}

	fmt.Printf("version:            %d\n", version)
	fmt.Printf("holding_cost_rate:  %.4f\n", policy.HoldingCostRate)
	fmt.Printf("stockout_cost_rate: %.4f\n", policy.StockoutCostRate)
	fmt.Printf("service_level:      %.4f\n", policy.ServiceLevel)
	return nil
}

func setPolicy(c *cli.Context) error {
	db, err := repoDB(c)
	if err != nil {
		return err
	}

	pv, err := newOptimizeService(db, c.String("policy-path"), 0).UpdatePolicy(c.Context, domain.Policy{
		HoldingCostRate:  c.Float64("holding-cost-rate"),
		StockoutCostRate: c.Float64("stockout-cost-rate"),
		ServiceLevel:     c.Float64("service-level"),
	})
	if err != nil {
		return err
	}

	log.Info().Int("version", pv.Version).Msg("policy saved")
	return nil
}

func exportPolicy(c *cli.Context) error {
	db, err := repoDB(c)
	if err != nil {
		return err
	}

	policy, version, err := newOptimizeService(db, c.String("policy-path"), 0).CurrentPolicy(c.Context)
	if err != nil {
		return err
	}

	out := c.String("out")
	if err := service.NewPolicyStore(out).Save(policy); err != nil {
		return err
	}

	log.Info().Int("version", version).Str("file", out).Msg("policy exported")
	return nil
}

func importPolicy(c *cli.Context) error {
	db, err := repoDB(c)
	if err != nil {
		return err
	}

	file := c.String("file")
	policy, found, err := service.NewPolicyStore(file).Load()
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("no policy file at %s", file)
	}

	pv, err := newOptimizeService(db, c.String("policy-path"), 0).UpdatePolicy(c.Context, policy)
	if err != nil {
		return err
	}

	log.Info().Int("version", pv.Version).Str("file", file).Msg("policy imported")
	return nil
}
