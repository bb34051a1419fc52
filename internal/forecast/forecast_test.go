package forecast

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/Sohamiota/Target-JIT-org/internal/domain"
)

func TestNewForecaster(t *testing.T) {
	for _, method := range []string{"ma", "moving_average", "ses", "exponential", "holt"} {
		if _, err := NewForecaster(method); err != nil {
			t.Errorf("NewForecaster(%q): %v", method, err)
		}
	}

	_, err := NewForecaster("arima")
	if err == nil {
		t.Fatal("expected error for unknown method")
	}
	var de *domain.DomainError
	if !errors.As(err, &de) {
		t.Errorf("error = %T, want *domain.DomainError", err)
	}
}

func TestMovingAverage(t *testing.T) {
	m := &MovingAverage{Window: 2}
	if err := m.Fit([]float64{10, 20, 30, 40}); err != nil {
		t.Fatalf("Fit: %v", err)
	}
	got := m.Forecast(3)
	for i, v := range got {
		if v != 35 {
			t.Errorf("step %d = %v, want 35", i, v)
		}
	}

	// Window longer than the series shrinks to fit.
	wide := &MovingAverage{Window: 10}
	if err := wide.Fit([]float64{10, 20}); err != nil {
		t.Fatalf("Fit: %v", err)
	}
	if got := wide.Forecast(1)[0]; got != 15 {
		t.Errorf("shrunk window forecast = %v, want 15", got)
	}

	if err := (&MovingAverage{}).Fit(nil); err == nil {
		t.Error("expected error for empty series")
	}
}

func TestSES(t *testing.T) {
	// Alpha 1 tracks the last observation exactly.
	s := &SES{Alpha: 1}
	if err := s.Fit([]float64{5, 9, 42}); err != nil {
		t.Fatalf("Fit: %v", err)
	}
	if got := s.Forecast(2); got[0] != 42 || got[1] != 42 {
		t.Errorf("alpha=1 forecast = %v, want flat 42", got)
	}

	// Hand-computed smoothing: level = 0.5*20 + 0.5*10 = 15, then
	// 0.5*30 + 0.5*15 = 22.5.
	s = &SES{Alpha: 0.5}
	if err := s.Fit([]float64{10, 20, 30}); err != nil {
		t.Fatalf("Fit: %v", err)
	}
	if got := s.Forecast(1)[0]; got != 22.5 {
		t.Errorf("forecast = %v, want 22.5", got)
	}

	if err := (&SES{Alpha: 1.5}).Fit([]float64{1, 2}); err == nil {
		t.Error("expected error for alpha out of range")
	}
}

func TestHolt_LinearSeries(t *testing.T) {
	// On a perfectly linear series the level locks onto the data and
	// the trend onto the slope, for any valid alpha and beta.
	h := &Holt{Alpha: 0.3, Beta: 0.1}
	if err := h.Fit([]float64{10, 20, 30, 40, 50}); err != nil {
		t.Fatalf("Fit: %v", err)
	}
	got := h.Forecast(3)
	for i, want := range []float64{60, 70, 80} {
		if math.Abs(got[i]-want) > 1e-9 {
			t.Errorf("step %d = %v, want %v", i, got[i], want)
		}
	}

	if err := (&Holt{Alpha: 0.3, Beta: 0.1}).Fit([]float64{1}); err == nil {
		t.Error("expected error for single observation")
	}
}

func TestMAPE(t *testing.T) {
	got, err := MAPE([]float64{100, 200}, []float64{110, 180})
	if err != nil {
		t.Fatalf("MAPE: %v", err)
	}
	if math.Abs(got-0.1) > 1e-12 {
		t.Errorf("MAPE = %v, want 0.1", got)
	}

	// Zero actuals are skipped, not divided by.
	got, err = MAPE([]float64{0, 100}, []float64{50, 90})
	if err != nil {
		t.Fatalf("MAPE with zero actual: %v", err)
	}
	if math.Abs(got-0.1) > 1e-12 {
		t.Errorf("MAPE = %v, want 0.1", got)
	}

	if _, err := MAPE([]float64{0, 0}, []float64{1, 2}); err == nil {
		t.Error("expected error for all-zero actuals")
	}
	if _, err := MAPE([]float64{1}, []float64{1, 2}); err == nil {
		t.Error("expected error for length mismatch")
	}
}

func TestEvaluate(t *testing.T) {
	train := []float64{10, 20, 30, 40, 50}
	holdout := []float64{60, 70}

	m, err := Evaluate(&Holt{Alpha: 0.3, Beta: 0.1}, train, holdout)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if m.MAPE > 1e-9 {
		t.Errorf("MAPE on linear series = %v, want ~0", m.MAPE)
	}
	if math.Abs(m.Accuracy-1) > 1e-9 {
		t.Errorf("Accuracy = %v, want ~1", m.Accuracy)
	}
}

func TestAggregate(t *testing.T) {
	d1 := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	d2 := time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC)
	sales := []domain.DailySale{
		{Date: d2, SKUID: "A", Quantity: 5},
		{Date: d1, SKUID: "A", Quantity: 3},
		{Date: d1, SKUID: "B", Quantity: 7},
		{Date: d2, SKUID: "B", Quantity: 1},
	}

	all := Aggregate(sales, "")
	if len(all) != 2 {
		t.Fatalf("got %d points, want 2", len(all))
	}
	if !all[0].Date.Equal(d1) || all[0].Quantity != 10 {
		t.Errorf("day 1 = %v/%v, want %v/10", all[0].Date, all[0].Quantity, d1)
	}
	if !all[1].Date.Equal(d2) || all[1].Quantity != 6 {
		t.Errorf("day 2 = %v/%v, want %v/6", all[1].Date, all[1].Quantity, d2)
	}

	onlyA := Aggregate(sales, "A")
	if len(onlyA) != 2 || onlyA[0].Quantity != 3 || onlyA[1].Quantity != 5 {
		t.Errorf("SKU filter gave %+v", onlyA)
	}

	if vals := Values(all); len(vals) != 2 || vals[0] != 10 {
		t.Errorf("Values = %v", vals)
	}
}

func TestHorizon(t *testing.T) {
	last := time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)
	points := Horizon(last, []float64{1, 2, 3})
	if len(points) != 3 {
		t.Fatalf("got %d points, want 3", len(points))
	}
	if want := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC); !points[0].Date.Equal(want) {
		t.Errorf("first date = %v, want %v", points[0].Date, want)
	}
	if want := time.Date(2025, 4, 3, 0, 0, 0, 0, time.UTC); !points[2].Date.Equal(want) {
		t.Errorf("last date = %v, want %v", points[2].Date, want)
	}
}
