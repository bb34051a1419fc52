package datagen

import (
	"math"
	"math/rand"
)

// uniformRange draws from U(lo, hi).
func uniformRange(r *rand.Rand, lo, hi float64) float64 {
	return lo + r.Float64()*(hi-lo)
}

// normalSample draws from N(mean, std).
func normalSample(r *rand.Rand, mean, std float64) float64 {
	return r.NormFloat64()*std + mean
}

// gammaSample draws from Gamma(shape, 1) using Marsaglia-Tsang
// squeeze rejection. Shapes below one are boosted through the
// Gamma(shape+1) identity.
func gammaSample(r *rand.Rand, shape float64) float64 {
	if shape < 1 {
		u := r.Float64()
		return gammaSample(r, shape+1) * math.Pow(u, 1/shape)
	}

	d := shape - 1.0/3.0
	c := 1 / math.Sqrt(9*d)
	for {
		x := r.NormFloat64()
		v := 1 + c*x
		if v <= 0 {
			continue
		}
		v = v * v * v
		u := r.Float64()
		if u < 1-0.0331*x*x*x*x {
			return d * v
		}
		if math.Log(u) < 0.5*x*x+d*(1-v+math.Log(v)) {
			return d * v
		}
	}
}

// betaSample draws from Beta(a, b) as a ratio of gamma variates.
func betaSample(r *rand.Rand, a, b float64) float64 {
	x := gammaSample(r, a)
	y := gammaSample(r, b)
	return x / (x + y)
}

// poissonSample draws from Poisson(mean) by Knuth's product of
// uniforms. Large means are split in half so exp(-mean) stays clear of
// the float underflow range.
func poissonSample(r *rand.Rand, mean float64) int {
	if mean <= 0 {
		return 0
	}
	if mean > 500 {
		half := mean / 2
		return poissonSample(r, half) + poissonSample(r, mean-half)
	}

	limit := math.Exp(-mean)
	k := 0
	p := 1.0
	for {
		k++
		p *= r.Float64()
		if p <= limit {
			return k - 1
		}
	}
}
