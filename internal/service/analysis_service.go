package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Sohamiota/Target-JIT-org/internal/anomaly"
	"github.com/Sohamiota/Target-JIT-org/internal/categorize"
	"github.com/Sohamiota/Target-JIT-org/internal/domain"
	"github.com/Sohamiota/Target-JIT-org/internal/forecast"
	"github.com/Sohamiota/Target-JIT-org/internal/repository"
)

// minScoredSeries is the shortest demand series we bother scoring on a
// holdout. Below it the forecast is still produced, just unscored.
const minScoredSeries = 10

// holdoutFraction of the series is reserved for accuracy scoring.
const holdoutFraction = 0.2

// MovementAnalysis is the clustered view of the catalog: per-SKU
// movement bands plus the band sizes.
type MovementAnalysis struct {
	Assignments []categorize.Assignment `json:"assignments"`
	Counts      map[string]int          `json:"counts"`
}

// DemandForecast is a projected demand series for one SKU (or the
// whole catalog when SKUID is empty), with holdout accuracy when the
// history was long enough to score.
type DemandForecast struct {
	SKUID        string                   `json:"sku_id,omitempty"`
	Method       string                   `json:"method"`
	ObservedDays int                      `json:"observed_days"`
	Metrics      *forecast.Metrics        `json:"metrics,omitempty"`
	Points       []forecast.ForecastPoint `json:"forecast"`
}

// AnomalyScan is one z-score pass over the catalog.
type AnomalyScan struct {
	Threshold float64          `json:"threshold"`
	Scanned   int              `json:"scanned"`
	Flagged   int              `json:"flagged"`
	Reports   []anomaly.Report `json:"reports"`
}

// AnalysisService runs the read-only analytics over the stored catalog
// and sales history: movement clustering, demand forecasting and
// anomaly scanning.
type AnalysisService struct {
	items repository.ItemRepository
	sales repository.SalesRepository
}

func NewAnalysisService(items repository.ItemRepository, sales repository.SalesRepository) *AnalysisService {
	return &AnalysisService{items: items, sales: sales}
}

// CategorizeMovement clusters the catalog into fast, medium and slow
// movers.
func (s *AnalysisService) CategorizeMovement(ctx context.Context) (*MovementAnalysis, error) {
	items, err := s.items.GetAllItems(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	assignments, err := categorize.New().Categorize(items)
	if err != nil {
		return nil, err
	}

	log.Debug().Int("items", len(items)).Msg("analysis: movement clustering complete")

	return &MovementAnalysis{
		Assignments: assignments,
		Counts:      categorize.Counts(assignments),
	}, nil
}

// ForecastDemand projects daily demand for one SKU, or catalog-wide
// when skuID is empty. Method defaults to single exponential
// smoothing, horizon to 30 days. Accuracy is scored on a trailing
// holdout when the history allows it.
func (s *AnalysisService) ForecastDemand(ctx context.Context, skuID, method string, horizon int) (*DemandForecast, error) {
	if method == "" {
		method = "ses"
	}
	if horizon <= 0 {
		horizon = forecast.DefaultHorizon
	}

	sales, err := s.sales.GetDailySales(ctx, skuID, time.Time{})
	if err != nil {
		return nil, fmt.Errorf("failed to load sales history: %w", err)
	}

	series := forecast.Aggregate(sales, skuID)
	if len(series) == 0 {
		return nil, &domain.DomainError{Op: "forecast", Reason: "no sales history for the requested scope"}
	}
	values := forecast.Values(series)

	var metrics *forecast.Metrics
	if len(values) >= minScoredSeries {
		split := len(values) - int(float64(len(values))*holdoutFraction)
		scorer, err := forecast.NewForecaster(method)
		if err != nil {
			return nil, err
		}
		m, err := forecast.Evaluate(scorer, values[:split], values[split:])
		if err != nil {
			log.Debug().Err(err).Str("method", method).Msg("analysis: holdout scoring skipped")
		} else {
			metrics = &m
		}
	}

	model, err := forecast.NewForecaster(method)
	if err != nil {
		return nil, err
	}
	if err := model.Fit(values); err != nil {
		return nil, err
	}

	last := series[len(series)-1].Date
	points := forecast.Horizon(last, model.Forecast(horizon))

	return &DemandForecast{
		SKUID:        skuID,
		Method:       model.Name(),
		ObservedDays: len(series),
		Metrics:      metrics,
		Points:       points,
	}, nil
}

// DetectAnomalies z-scores the catalog. A non-positive threshold uses
// the default; flaggedOnly drops clean items from the report.
func (s *AnalysisService) DetectAnomalies(ctx context.Context, threshold float64, flaggedOnly bool) (*AnomalyScan, error) {
	items, err := s.items.GetAllItems(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	detector := anomaly.New()
	if threshold > 0 {
		detector.Threshold = threshold
	}

	reports := detector.Detect(items)
	flagged := anomaly.Anomalies(reports)

	scan := &AnomalyScan{
		Threshold: detector.Threshold,
		Scanned:   len(reports),
		Flagged:   len(flagged),
		Reports:   reports,
	}
	if flaggedOnly {
		scan.Reports = flagged
	}
	if scan.Reports == nil {
		scan.Reports = []anomaly.Report{}
	}
	return scan, nil
}
