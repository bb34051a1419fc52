// internal/ingest/processor.go
package ingest

import (
	"context"
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

const daysPerYear = 365

// Processor seeds aggregated dataset CSVs into the database. It is the
// sink of the ingestion pipeline: the aggregator hands it one
// canonicalized CSV per flush.
type Processor struct {
	db *sql.DB
}

func NewProcessor(db *sql.DB) *Processor {
	return &Processor{db: db}
}

// ProcessFile seeds a catalog or sales CSV based on the directory the
// pipeline aggregated it into.
func (p *Processor) ProcessFile(ctx context.Context, filePath string) error {
	dir := filepath.Base(filepath.Dir(filePath))

	log.Info().Str("path", filePath).Str("kind", dir).Msg("ingest: processing file")

	switch dir {
	case "catalog":
		return p.processCatalogFile(ctx, filePath)
	case "sales":
		return p.processSalesFile(ctx, filePath)
	default:
		return fmt.Errorf("unknown dataset kind in directory: %s", dir)
	}
}

// processCatalogFile upserts catalog rows into items. Missing demand
// columns are derived from sales velocity the same way the generator
// derives them.
func (p *Processor) processCatalogFile(ctx context.Context, filePath string) error {
	file, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return fmt.Errorf("failed to read CSV header: %w", err)
	}

	colMap := make(map[string]int)
	for i, col := range header {
		colMap[strings.ToLower(strings.TrimSpace(col))] = i
	}
	if _, ok := colMap["sku_id"]; !ok {
		return fmt.Errorf("catalog file %s has no sku_id column", filePath)
	}

	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO items (
			sku_id, demand_mean, demand_std, lead_time_mean, lead_time_std,
			unit_cost, ordering_cost, category, sales_velocity, turnover_rate,
			current_stock, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW(), NOW())
		ON CONFLICT (sku_id)
		DO UPDATE SET
			demand_mean = EXCLUDED.demand_mean,
			demand_std = EXCLUDED.demand_std,
			lead_time_mean = EXCLUDED.lead_time_mean,
			lead_time_std = EXCLUDED.lead_time_std,
			unit_cost = EXCLUDED.unit_cost,
			ordering_cost = EXCLUDED.ordering_cost,
			category = EXCLUDED.category,
			sales_velocity = EXCLUDED.sales_velocity,
			turnover_rate = EXCLUDED.turnover_rate,
			current_stock = EXCLUDED.current_stock,
			updated_at = NOW()
	`

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	processedCount := 0
	skippedCount := 0

	for {
		record, err := reader.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return fmt.Errorf("error reading record: %w", err)
		}

		get := func(name string) string {
			idx, ok := colMap[name]
			if !ok || idx >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[idx])
		}
		parseFloat := func(name string) float64 {
			v := strings.ReplaceAll(get(name), ",", "")
			if v == "" {
				return 0
			}
			f, _ := strconv.ParseFloat(v, 64)
			return f
		}

		skuID := get("sku_id")
		if skuID == "" {
			skippedCount++
			continue
		}

		salesVelocity := parseFloat("sales_velocity")
		demandMean := parseFloat("demand_mean")
		demandStd := parseFloat("demand_std")
		if demandMean == 0 && salesVelocity > 0 {
			demandMean = salesVelocity * daysPerYear
			demandStd = 0.2 * demandMean
		}

		currentStock, _ := strconv.Atoi(get("current_stock"))

		_, err = stmt.ExecContext(
			ctx,
			skuID,
			demandMean,
			demandStd,
			parseFloat("lead_time_mean"),
			parseFloat("lead_time_std"),
			parseFloat("unit_cost"),
			parseFloat("ordering_cost"),
			get("category"),
			salesVelocity,
			parseFloat("turnover_rate"),
			currentStock,
		)
		if err != nil {
			return fmt.Errorf("failed to upsert item %s: %w", skuID, err)
		}

		processedCount++
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.Info().
		Str("path", filePath).
		Int("items", processedCount).
		Int("skipped", skippedCount).
		Msg("ingest: catalog file seeded")

	return nil
}

// processSalesFile upserts daily sales rows.
func (p *Processor) processSalesFile(ctx context.Context, filePath string) error {
	file, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return fmt.Errorf("failed to read CSV header: %w", err)
	}

	colMap := make(map[string]int)
	for i, col := range header {
		colMap[strings.ToLower(strings.TrimSpace(col))] = i
	}
	for _, required := range []string{"date", "sku_id", "quantity"} {
		if _, ok := colMap[required]; !ok {
			return fmt.Errorf("sales file %s has no %s column", filePath, required)
		}
	}

	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO daily_sales (date, sku_id, category, quantity)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (date, sku_id)
		DO UPDATE SET
			category = EXCLUDED.category,
			quantity = EXCLUDED.quantity
	`

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	processedCount := 0
	skippedCount := 0

	for {
		record, err := reader.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return fmt.Errorf("error reading record: %w", err)
		}

		get := func(name string) string {
			idx, ok := colMap[name]
			if !ok || idx >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[idx])
		}

		skuID := get("sku_id")
		date, dateErr := time.Parse("2006-01-02", get("date"))
		if skuID == "" || dateErr != nil {
			skippedCount++
			continue
		}

		quantity, _ := strconv.Atoi(get("quantity"))

		if _, err := stmt.ExecContext(ctx, date, skuID, get("category"), quantity); err != nil {
			return fmt.Errorf("failed to upsert sale %s/%s: %w", skuID, get("date"), err)
		}

		processedCount++
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.Info().
		Str("path", filePath).
		Int("rows", processedCount).
		Int("skipped", skippedCount).
		Msg("ingest: sales file seeded")

	return nil
}
