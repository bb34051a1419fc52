// Package forecast projects daily demand forward from sales history.
// Three smoothers are available: a moving average, single exponential
// smoothing, and Holt's double exponential smoothing for series with a
// trend. Accuracy is reported as MAPE over a holdout window.
package forecast

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/Sohamiota/Target-JIT-org/internal/domain"
)

// Default forecast horizon in days.
const DefaultHorizon = 30

// Smoothing defaults, tuned for daily demand series.
const (
	defaultWindow = 7
	defaultAlpha  = 0.3
	defaultBeta   = 0.1
)

// Forecaster is a univariate demand model. Fit consumes the history in
// chronological order; Forecast projects the requested number of steps
// past the end of it.
type Forecaster interface {
	Name() string
	Fit(series []float64) error
	Forecast(steps int) []float64
}

// NewForecaster selects a model by name: "ma" (moving average), "ses"
// (single exponential smoothing) or "holt" (double exponential
// smoothing).
func NewForecaster(method string) (Forecaster, error) {
	switch method {
	case "ma", "moving_average":
		return &MovingAverage{Window: defaultWindow}, nil
	case "ses", "exponential":
		return &SES{Alpha: defaultAlpha}, nil
	case "holt":
		return &Holt{Alpha: defaultAlpha, Beta: defaultBeta}, nil
	default:
		return nil, &domain.DomainError{Op: "forecast", Reason: fmt.Sprintf("unknown method %q", method)}
	}
}

// MovingAverage forecasts the mean of the last Window observations,
// held flat over the horizon.
type MovingAverage struct {
	Window int

	level float64
}

func (m *MovingAverage) Name() string { return "moving_average" }

func (m *MovingAverage) Fit(series []float64) error {
	if len(series) == 0 {
		return &domain.DomainError{Op: "forecast", Reason: "series is empty"}
	}
	window := m.Window
	if window <= 0 {
		window = defaultWindow
	}
	if window > len(series) {
		window = len(series)
	}

	var sum float64
	for _, v := range series[len(series)-window:] {
		sum += v
	}
	m.level = sum / float64(window)
	return nil
}

func (m *MovingAverage) Forecast(steps int) []float64 {
	out := make([]float64, steps)
	for i := range out {
		out[i] = m.level
	}
	return out
}

// SES is single exponential smoothing; the forecast is the final
// smoothed level, held flat.
type SES struct {
	Alpha float64

	level float64
}

func (s *SES) Name() string { return "ses" }

func (s *SES) Fit(series []float64) error {
	if len(series) == 0 {
		return &domain.DomainError{Op: "forecast", Reason: "series is empty"}
	}
	if s.Alpha <= 0 || s.Alpha > 1 {
		return &domain.DomainError{Op: "forecast", Reason: "alpha must be in (0, 1]"}
	}

	s.level = series[0]
	for _, v := range series[1:] {
		s.level = s.Alpha*v + (1-s.Alpha)*s.level
	}
	return nil
}

func (s *SES) Forecast(steps int) []float64 {
	out := make([]float64, steps)
	for i := range out {
		out[i] = s.level
	}
	return out
}

// Holt is double exponential smoothing: a smoothed level plus a
// smoothed linear trend, projected forward.
type Holt struct {
	Alpha float64
	Beta  float64

	level float64
	trend float64
}

func (h *Holt) Name() string { return "holt" }

func (h *Holt) Fit(series []float64) error {
	if len(series) < 2 {
		return &domain.DomainError{Op: "forecast", Reason: "holt needs at least 2 observations"}
	}
	if h.Alpha <= 0 || h.Alpha > 1 {
		return &domain.DomainError{Op: "forecast", Reason: "alpha must be in (0, 1]"}
	}
	if h.Beta <= 0 || h.Beta > 1 {
		return &domain.DomainError{Op: "forecast", Reason: "beta must be in (0, 1]"}
	}

	h.level = series[0]
	h.trend = series[1] - series[0]
	for _, v := range series[1:] {
		prevLevel := h.level
		h.level = h.Alpha*v + (1-h.Alpha)*(h.level+h.trend)
		h.trend = h.Beta*(h.level-prevLevel) + (1-h.Beta)*h.trend
	}
	return nil
}

func (h *Holt) Forecast(steps int) []float64 {
	out := make([]float64, steps)
	for i := range out {
		out[i] = h.level + float64(i+1)*h.trend
	}
	return out
}

// SeriesPoint is one aggregated day of demand.
type SeriesPoint struct {
	Date     time.Time `json:"date"`
	Quantity float64   `json:"quantity"`
}

// Aggregate collapses sales rows into a daily demand series, summing
// quantities per date. A non-empty skuID restricts the series to that
// SKU; empty aggregates the whole catalog.
func Aggregate(sales []domain.DailySale, skuID string) []SeriesPoint {
	byDate := make(map[time.Time]float64)
	for _, s := range sales {
		if skuID != "" && s.SKUID != skuID {
			continue
		}
		day := s.Date.Truncate(24 * time.Hour)
		byDate[day] += float64(s.Quantity)
	}

	out := make([]SeriesPoint, 0, len(byDate))
	for date, qty := range byDate {
		out = append(out, SeriesPoint{Date: date, Quantity: qty})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// Values strips an aggregated series down to its quantities.
func Values(series []SeriesPoint) []float64 {
	out := make([]float64, len(series))
	for i, p := range series {
		out[i] = p.Quantity
	}
	return out
}

// ForecastPoint is one projected day of demand.
type ForecastPoint struct {
	Date     time.Time `json:"date"`
	Forecast float64   `json:"forecast"`
}

// Horizon attaches consecutive dates to forecast values, starting the
// day after the last observed date.
func Horizon(last time.Time, values []float64) []ForecastPoint {
	out := make([]ForecastPoint, len(values))
	for i, v := range values {
		out[i] = ForecastPoint{Date: last.AddDate(0, 0, i+1), Forecast: v}
	}
	return out
}

// Metrics reports holdout accuracy. Accuracy is 1-MAPE, clamped at
// zero for forecasts worse than a 100% average miss.
type Metrics struct {
	MAPE     float64 `json:"mape"`
	Accuracy float64 `json:"accuracy"`
}

// MAPE is the mean absolute percentage error. Zero actuals contribute
// nothing; an all-zero actual slice yields an error.
func MAPE(actual, predicted []float64) (float64, error) {
	if len(actual) != len(predicted) {
		return 0, &domain.DomainError{Op: "forecast", Reason: "actual and predicted lengths differ"}
	}
	var sum float64
	n := 0
	for i := range actual {
		if actual[i] == 0 {
			continue
		}
		sum += math.Abs(actual[i]-predicted[i]) / math.Abs(actual[i])
		n++
	}
	if n == 0 {
		return 0, &domain.DomainError{Op: "forecast", Reason: "no non-zero actuals to score against"}
	}
	return sum / float64(n), nil
}

// Evaluate fits the model on the training split and scores it against
// the holdout.
func Evaluate(f Forecaster, train, holdout []float64) (Metrics, error) {
	if err := f.Fit(train); err != nil {
		return Metrics{}, err
	}
	mape, err := MAPE(holdout, f.Forecast(len(holdout)))
	if err != nil {
		return Metrics{}, err
	}
	accuracy := 1 - mape
	if accuracy < 0 {
		accuracy = 0
	}
	return Metrics{MAPE: mape, Accuracy: accuracy}, nil
}
