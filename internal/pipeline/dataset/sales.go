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

// SalesPipeline implements pipeline.Pipeline for daily sales exports:
// one row per SKU per day.
type SalesPipeline struct {
	config Config
}

func NewSalesPipeline(cfg Config) *SalesPipeline {
	return &SalesPipeline{config: cfg}
}

func (p *SalesPipeline) Name() string {
	return "sales"
}

func (p *SalesPipeline) OutputTable() string {
	return "daily_sales"
}

func (p *SalesPipeline) SnapshotDate(filename string) (time.Time, error) {
	return snapshotDateFromFilename(p.config.dateLayout(), filename)
}

func (p *SalesPipeline) Validate(inputFile string) error {
	return validateCSVFile(inputFile)
}

// Transform reads one sales CSV and emits canonical rows. Rows without
// a parseable date or SKU are skipped rather than failing the file.
func (p *SalesPipeline) Transform(ctx context.Context, inputFile string) ([]pipeline.Row, error) {
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

	idxDate := colIndex("date")
	idxSKU := colIndex("sku_id", "sku")
	idxCategory := colIndex("category")
	idxQuantity := colIndex("quantity", "qty", "quantity_sold")

	if idxDate < 0 || idxSKU < 0 || idxQuantity < 0 {
		return nil, fmt.Errorf("sales file %s is missing date, SKU or quantity columns", inputFile)
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
		date, ok := parseRowDate(getField(record, idxDate))
		if skuID == "" || !ok {
			skipped++
			continue
		}

		data := map[string]interface{}{
			"date":     date.Format("2006-01-02"),
			"sku_id":   skuID,
			"category": getField(record, idxCategory),
			"quantity": parseIntField(record, idxQuantity),
		}
		rows = append(rows, pipeline.Row{Data: data})
	}

	if skipped > 0 {
		log.Debug().
			Str("file", inputFile).
			Int("skipped", skipped).
			Msg("sales rows without date or SKU skipped")
	}

	return rows, nil
}
