package optimizer

import (
	"errors"
	"math"
	"testing"

	"github.com/Sohamiota/Target-JIT-org/internal/domain"
)

func TestNormQuantile_KnownValues(t *testing.T) {
	tests := []struct {
		name string
		p    float64
		want float64
		tol  float64
	}{
		{"median", 0.5, 0, 1e-12},
		{"service level 95", 0.95, 1.6448536269514722, 1e-9},
		{"service level 99", 0.99, 2.3263478740408408, 1e-9},
		{"service level 90", 0.90, 1.2815515655446004, 1e-9},
		{"service level 97.5", 0.975, 1.959963984540054, 1e-9},
		{"lower tail", 0.01, -2.3263478740408408, 1e-9},
		{"deep lower tail", 1e-6, -4.753424308822899, 1e-8},
		{"deep upper tail", 1 - 1e-6, 4.753424308822899, 1e-8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormQuantile(tt.p)
			if err != nil {
				t.Fatalf("NormQuantile(%v) returned error: %v", tt.p, err)
			}
			if math.Abs(got-tt.want) > tt.tol {
				t.Errorf("NormQuantile(%v) = %v, want %v (tol %v)", tt.p, got, tt.want, tt.tol)
			}
		})
	}
}

func TestNormQuantile_Symmetry(t *testing.T) {
	for _, p := range []float64{0.01, 0.05, 0.1, 0.25, 0.4, 0.45} {
		lo, err := NormQuantile(p)
		if err != nil {
			t.Fatalf("NormQuantile(%v): %v", p, err)
		}
		hi, err := NormQuantile(1 - p)
		if err != nil {
			t.Fatalf("NormQuantile(%v): %v", 1-p, err)
		}
		if math.Abs(lo+hi) > 1e-9 {
			t.Errorf("quantile not symmetric at p=%v: %v vs %v", p, lo, hi)
		}
	}
}

func TestNormQuantile_RoundTrip(t *testing.T) {
	// Phi(NormQuantile(p)) must recover p.
	for p := 0.001; p < 1; p += 0.0107 {
		z, err := NormQuantile(p)
		if err != nil {
			t.Fatalf("NormQuantile(%v): %v", p, err)
		}
		back := 0.5 * math.Erfc(-z/math.Sqrt2)
		if math.Abs(back-p) > 1e-12 {
			t.Errorf("round trip at p=%v: got %v (z=%v)", p, back, z)
		}
	}
}

func TestNormQuantile_Boundaries(t *testing.T) {
	for _, p := range []float64{0, 1, -0.5, 1.5, math.NaN()} {
		_, err := NormQuantile(p)
		if err == nil {
			t.Fatalf("NormQuantile(%v) expected error, got none", p)
		}
		var de *domain.DomainError
		if !errors.As(err, &de) {
			t.Errorf("NormQuantile(%v) error = %T, want *domain.DomainError", p, err)
		}
	}
}
