package datagen

import (
	"math"
	"math/rand"
	"testing"
)

func TestGammaSample_Moments(t *testing.T) {
	tests := []struct {
		shape float64
	}{
		{0.5},
		{1},
		{2},
		{8},
	}

	for _, tt := range tests {
		r := rand.New(rand.NewSource(1))
		const n = 20000
		var sum, sumSq float64
		for i := 0; i < n; i++ {
			v := gammaSample(r, tt.shape)
			if v <= 0 {
				t.Fatalf("shape %v: non-positive draw %v", tt.shape, v)
			}
			sum += v
			sumSq += v * v
		}
		mean := sum / n
		variance := sumSq/n - mean*mean

		// Gamma(k, 1) has mean k and variance k.
		if math.Abs(mean-tt.shape) > 0.1*math.Sqrt(tt.shape)+0.05 {
			t.Errorf("shape %v: mean = %v, want ~%v", tt.shape, mean, tt.shape)
		}
		if math.Abs(variance-tt.shape) > 0.25*tt.shape+0.1 {
			t.Errorf("shape %v: variance = %v, want ~%v", tt.shape, variance, tt.shape)
		}
	}
}

func TestBetaSample_Moments(t *testing.T) {
	tests := []struct {
		a, b float64
	}{
		{5, 2},
		{4, 3},
		{8, 2},
		{3, 4},
	}

	for _, tt := range tests {
		r := rand.New(rand.NewSource(7))
		const n = 20000
		var sum float64
		for i := 0; i < n; i++ {
			v := betaSample(r, tt.a, tt.b)
			if v <= 0 || v >= 1 {
				t.Fatalf("Beta(%v,%v): draw %v outside (0,1)", tt.a, tt.b, v)
			}
			sum += v
		}
		mean := sum / n
		want := tt.a / (tt.a + tt.b)
		if math.Abs(mean-want) > 0.02 {
			t.Errorf("Beta(%v,%v): mean = %v, want ~%v", tt.a, tt.b, mean, want)
		}
	}
}

func TestPoissonSample_Moments(t *testing.T) {
	for _, mean := range []float64{0.5, 5, 50, 600} {
		r := rand.New(rand.NewSource(11))
		const n = 20000
		var sum float64
		for i := 0; i < n; i++ {
			v := poissonSample(r, mean)
			if v < 0 {
				t.Fatalf("mean %v: negative draw %d", mean, v)
			}
			sum += float64(v)
		}
		got := sum / n
		tol := 6 * math.Sqrt(mean/n)
		if math.Abs(got-mean) > tol {
			t.Errorf("Poisson(%v): sample mean = %v, want within %v", mean, got, tol)
		}
	}
}

func TestPoissonSample_ZeroMean(t *testing.T) {
	r := rand.New(rand.NewSource(3))
	for i := 0; i < 100; i++ {
		if v := poissonSample(r, 0); v != 0 {
			t.Fatalf("Poisson(0) = %d, want 0", v)
		}
	}
}
