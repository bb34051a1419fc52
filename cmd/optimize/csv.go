// cmd/optimize/csv.go
package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/Sohamiota/Target-JIT-org/internal/domain"
)

// itemColumns are the columns -input files must carry. Extra columns
// (category, sales velocity and friends from the dataset catalog
// format) are ignored, so generated catalog files work unmodified.
var itemColumns = []string{
	"sku_id", "demand_mean", "demand_std", "lead_time_mean",
	"lead_time_std", "unit_cost", "ordering_cost",
}

var resultsHeader = []string{
	"sku_id", "demand_mean", "demand_std", "lead_time_mean", "lead_time_std",
	"unit_cost", "ordering_cost", "lead_time_demand", "lead_time_demand_std",
	"eoq", "reorder_point", "safety_stock", "optimal_inventory",
	"annual_holding_cost", "annual_ordering_cost", "total_annual_cost",
}

func readItemsCSV(path string) ([]domain.Item, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	colMap := make(map[string]int)
	for i, col := range header {
		colMap[strings.ToLower(strings.TrimSpace(col))] = i
	}
	for _, name := range itemColumns {
		if _, ok := colMap[name]; !ok {
			return nil, fmt.Errorf("input file %s has no %s column", path, name)
		}
	}

	var items []domain.Item
	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading record: %w", err)
		}
		line++

		get := func(name string) string {
			idx := colMap[name]
			if idx >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[idx])
		}

		skuID := get("sku_id")
		if skuID == "" {
			continue
		}

		item := domain.Item{SKUID: skuID}
		for name, dst := range map[string]*float64{
			"demand_mean":    &item.DemandMean,
			"demand_std":     &item.DemandStd,
			"lead_time_mean": &item.LeadTimeMean,
			"lead_time_std":  &item.LeadTimeStd,
			"unit_cost":      &item.UnitCost,
			"ordering_cost":  &item.OrderingCost,
		} {
			raw := strings.ReplaceAll(get(name), ",", "")
			if raw == "" {
				continue
			}
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: bad %s value %q", line, name, raw)
			}
			*dst = v
		}

		items = append(items, item)
	}

	if len(items) == 0 {
		return nil, fmt.Errorf("input file %s has no item rows", path)
	}
	return items, nil
}

func writeResultsCSV(path string, items []domain.OptimizedItem) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	cw := csv.NewWriter(file)
	if err := cw.Write(resultsHeader); err != nil {
		return err
	}
	for _, it := range items {
		record := []string{
			it.SKUID,
			formatFloat(it.DemandMean),
			formatFloat(it.DemandStd),
			formatFloat(it.LeadTimeMean),
			formatFloat(it.LeadTimeStd),
			formatFloat(it.UnitCost),
			formatFloat(it.OrderingCost),
			formatFloat(it.LeadTimeDemand),
			formatFloat(it.LeadTimeDemandStd),
			formatFloat(it.EOQ),
			formatFloat(it.ReorderPoint),
			formatFloat(it.SafetyStock),
			formatFloat(it.OptimalInventory),
			formatFloat(it.AnnualHoldingCost),
			formatFloat(it.AnnualOrderingCost),
			formatFloat(it.TotalAnnualCost),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
