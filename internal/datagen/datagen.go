// Package datagen produces a synthetic but statistically realistic
// catalog and two years of daily sales history, for demos and for
// exercising the optimization pipeline end to end without a customer
// dataset. Generation is deterministic for a given seed.
package datagen

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"math/rand"
	"strconv"
	"time"

	"github.com/Sohamiota/Target-JIT-org/internal/domain"
)

const (
	// DefaultSeed keeps repeated demo runs identical.
	DefaultSeed = 42

	DefaultItems = 2000
	DefaultDays  = 730

	// DaysPerYear converts daily sales velocity into annual demand.
	DaysPerYear = 365
)

// categoryProfile fixes the velocity and turnover distributions for one
// product category. Velocity is a daily rate in units; turnover is a
// Beta-distributed share in (0, 1).
type categoryProfile struct {
	name          string
	velocityMean  float64
	velocityStd   float64
	turnoverAlpha float64
	turnoverBeta  float64
}

var categoryProfiles = []categoryProfile{
	{"Electronics", 50, 20, 5, 2},
	{"Clothing", 80, 30, 4, 3},
	{"Food", 120, 40, 8, 2},
	{"Home Goods", 30, 15, 3, 4},
	{"Office Supplies", 40, 10, 4, 4},
}

// Config holds generation parameters. Zero values fall back to the
// demo defaults.
type Config struct {
	Seed  int64
	Items int
	Days  int
	// End is the last sales date; defaults to today.
	End time.Time
}

// Generator produces catalogs and sales histories from one seeded
// random stream.
type Generator struct {
	cfg  Config
	rand *rand.Rand
}

// New creates a generator, applying defaults for unset config fields.
func New(cfg Config) *Generator {
	if cfg.Seed == 0 {
		cfg.Seed = DefaultSeed
	}
	if cfg.Items <= 0 {
		cfg.Items = DefaultItems
	}
	if cfg.Days <= 0 {
		cfg.Days = DefaultDays
	}
	if cfg.End.IsZero() {
		now := time.Now().UTC()
		cfg.End = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	}

	return &Generator{
		cfg:  cfg,
		rand: rand.New(rand.NewSource(cfg.Seed)),
	}
}

// Catalog generates the item catalog. Each SKU gets a category-driven
// sales velocity and turnover rate, and the optimizer input fields are
// derived from those so the catalog feeds straight into an
// optimization run.
func (g *Generator) Catalog() []domain.CatalogItem {
	now := time.Now().UTC()
	items := make([]domain.CatalogItem, 0, g.cfg.Items)

	for i := 1; i <= g.cfg.Items; i++ {
		profile := categoryProfiles[g.rand.Intn(len(categoryProfiles))]

		velocity := normalSample(g.rand, profile.velocityMean, profile.velocityStd)
		if velocity < 1 {
			velocity = 1
		}
		turnover := betaSample(g.rand, profile.turnoverAlpha, profile.turnoverBeta)
		turnover = clamp(turnover, 0.01, 0.99)

		stock := normalSample(g.rand, 500, 200)
		if stock < 0 {
			stock = 0
		}

		demandMean := velocity * DaysPerYear

		items = append(items, domain.CatalogItem{
			Item: domain.Item{
				SKUID:        fmt.Sprintf("SKU-%04d", i),
				DemandMean:   demandMean,
				DemandStd:    0.2 * demandMean,
				LeadTimeMean: uniformRange(g.rand, 1, 14),
				LeadTimeStd:  uniformRange(g.rand, 0.2, 3),
				UnitCost:     uniformRange(g.rand, 10, 100),
				OrderingCost: uniformRange(g.rand, 50, 200),
			},
			Category:      profile.name,
			SalesVelocity: velocity,
			TurnoverRate:  turnover,
			CurrentStock:  int(stock),
			CreatedAt:     now,
			UpdatedAt:     now,
		})
	}

	return items
}

// DailySales generates per-day Poisson sales for each catalog item. The
// expected demand layers a weekday lift, a sinusoidal monthly cycle and
// a slow upward trend on top of the item's base velocity.
func (g *Generator) DailySales(items []domain.CatalogItem) []domain.DailySale {
	start := g.cfg.End.AddDate(0, 0, -(g.cfg.Days - 1))
	sales := make([]domain.DailySale, 0, len(items)*g.cfg.Days)

	for _, item := range items {
		for d := 0; d < g.cfg.Days; d++ {
			date := start.AddDate(0, 0, d)

			weekdayFactor := 1.0
			if wd := date.Weekday(); wd >= time.Monday && wd <= time.Friday {
				weekdayFactor = 1.2
			}
			monthlyFactor := 1.0 + 0.1*math.Sin(2*math.Pi*float64(date.Month())/12)
			trendFactor := 1.0 + 0.0005*float64(d)

			expected := item.SalesVelocity * weekdayFactor * monthlyFactor * trendFactor

			sales = append(sales, domain.DailySale{
				Date:     date,
				SKUID:    item.SKUID,
				Category: item.Category,
				Quantity: poissonSample(g.rand, expected),
			})
		}
	}

	return sales
}

// catalogHeader is the dataset CSV contract shared with the ingestion
// pipeline.
var catalogHeader = []string{
	"sku_id", "category", "unit_cost", "lead_time_mean", "lead_time_std",
	"ordering_cost", "demand_mean", "demand_std", "sales_velocity",
	"turnover_rate", "current_stock",
}

var salesHeader = []string{"date", "sku_id", "category", "quantity"}

// WriteCatalogCSV writes the catalog in the dataset CSV format.
func WriteCatalogCSV(w io.Writer, items []domain.CatalogItem) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(catalogHeader); err != nil {
		return err
	}
	for _, it := range items {
		record := []string{
			it.SKUID,
			it.Category,
			formatFloat(it.UnitCost),
			formatFloat(it.LeadTimeMean),
			formatFloat(it.LeadTimeStd),
			formatFloat(it.OrderingCost),
			formatFloat(it.DemandMean),
			formatFloat(it.DemandStd),
			formatFloat(it.SalesVelocity),
			formatFloat(it.TurnoverRate),
			strconv.Itoa(it.CurrentStock),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteSalesCSV writes the sales history in the dataset CSV format.
func WriteSalesCSV(w io.Writer, sales []domain.DailySale) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(salesHeader); err != nil {
		return err
	}
	for _, s := range sales {
		record := []string{
			s.Date.Format("2006-01-02"),
			s.SKUID,
			s.Category,
			strconv.Itoa(s.Quantity),
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

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
