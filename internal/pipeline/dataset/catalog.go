package dataset

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Sohamiota/Target-JIT-org/internal/pipeline"
)

// CatalogPipeline implements pipeline.Pipeline for catalog exports: one
// row per SKU with cost and demand characteristics.
type CatalogPipeline struct {
	config Config
}

func NewCatalogPipeline(cfg Config) *CatalogPipeline {
	return &CatalogPipeline{config: cfg}
}

func (p *CatalogPipeline) Name() string {
	return "catalog"
}

func (p *CatalogPipeline) OutputTable() string {
	return "items"
}

func (p *CatalogPipeline) SnapshotDate(filename string) (time.Time, error) {
	return snapshotDateFromFilename(p.config.dateLayout(), filename)
}

func (p *CatalogPipeline) Validate(inputFile string) error {
	return validateCSVFile(inputFile)
}

// Transform reads one catalog CSV and emits canonical rows.
func (p *CatalogPipeline) Transform(ctx context.Context, inputFile string) ([]pipeline.Row, error) {
	snapshotDate, err := p.SnapshotDate(inputFile)
	if err != nil {
		return nil, fmt.Errorf("failed to parse snapshot date: %w", err)
	}

	file, err := os.Open(inputFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", inputFile, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header of %s: %w", inputFile, err)
	}

	colIndex := columnIndexer(header)

	idxSKU := colIndex("sku_id", "sku")
	idxCategory := colIndex("category", "product category")
	idxVelocity := colIndex("sales_velocity", "velocity")
	idxTurnover := colIndex("turnover_rate", "turnover")
	idxUnitCost := colIndex("unit_cost", "cost")
	idxLeadMean := colIndex("lead_time_mean", "lead_time", "lead time")
	idxLeadStd := colIndex("lead_time_std", "lead time std")
	idxOrderingCost := colIndex("ordering_cost", "order cost")
	idxDemandMean := colIndex("demand_mean", "annual demand")
	idxDemandStd := colIndex("demand_std")
	idxStock := colIndex("current_stock", "stock", "stok")

	if idxSKU < 0 {
		return nil, fmt.Errorf("catalog file %s has no SKU column", inputFile)
	}

	rows := make([]pipeline.Row, 0)
	skipped := 0

	for {
		record, err := reader.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("error reading %s: %w", inputFile, err)
		}

		skuID := getField(record, idxSKU)
		if skuID == "" {
			skipped++
			continue
		}

		data := map[string]interface{}{
			"date":           snapshotDate.Format("2006-01-02"),
			"sku_id":         skuID,
			"category":       getField(record, idxCategory),
			"sales_velocity": parseFloatField(record, idxVelocity),
			"turnover_rate":  parseFloatField(record, idxTurnover),
			"unit_cost":      parseFloatField(record, idxUnitCost),
			"lead_time_mean": parseFloatField(record, idxLeadMean),
			"lead_time_std":  parseFloatField(record, idxLeadStd),
			"ordering_cost":  parseFloatField(record, idxOrderingCost),
			"demand_mean":    parseFloatField(record, idxDemandMean),
			"demand_std":     parseFloatField(record, idxDemandStd),
			"current_stock":  parseIntField(record, idxStock),
		}
		rows = append(rows, pipeline.Row{Data: data})
	}

	if skipped > 0 {
		log.Debug().
			Str("file", inputFile).
			Int("skipped", skipped).
			Msg("catalog rows without SKU skipped")
	}

	return rows, nil
}
