package optimizer

import (
	"math"

	"github.com/Sohamiota/Target-JIT-org/internal/domain"
)

// Acklam's rational approximation coefficients for the inverse standard
// normal CDF, three regions split at 0.02425 / 0.97575.
var (
	qa = [6]float64{
		-3.969683028665376e+01, 2.209460984245205e+02, -2.759285104469687e+02,
		1.383577518672690e+02, -3.066479806614716e+01, 2.506628277459239e+00,
	}
	qb = [5]float64{
		-5.447609879822406e+01, 1.615858368580409e+02, -1.556989798598866e+02,
		6.680131188771972e+01, -1.328068155288572e+01,
	}
	qc = [6]float64{
		-7.784894002430293e-03, -3.223964580411365e-01, -2.400758277161838e+00,
		-2.549732539343734e+00, 4.374664141464968e+00, 2.938163982698783e+00,
	}
	qd = [4]float64{
		7.784695709041462e-03, 3.224671290700398e-01, 2.445134137142996e+00,
		3.754408661907416e+00,
	}
)

const quantileSplit = 0.02425

// NormQuantile returns z such that P(Z <= z) = p for a standard normal
// Z: the safety factor used in classical safety-stock sizing. The
// rational approximation is refined with one Halley step against
// math.Erfc, which brings it to within ~1 ulp across (0,1).
//
// The quantile is undefined at the boundaries, so p outside the open
// interval (0,1) yields a DomainError rather than +-Inf.
func NormQuantile(p float64) (float64, error) {
	if math.IsNaN(p) || p <= 0 || p >= 1 {
		return 0, &domain.DomainError{
			Op:     "norm_quantile",
			Reason: "probability must lie strictly between 0 and 1",
		}
	}

	var x float64
	switch {
	case p < quantileSplit:
		q := math.Sqrt(-2 * math.Log(p))
		x = (((((qc[0]*q+qc[1])*q+qc[2])*q+qc[3])*q+qc[4])*q + qc[5]) /
			((((qd[0]*q+qd[1])*q+qd[2])*q+qd[3])*q + 1)
	case p > 1-quantileSplit:
		q := math.Sqrt(-2 * math.Log(1-p))
		x = -(((((qc[0]*q+qc[1])*q+qc[2])*q+qc[3])*q+qc[4])*q + qc[5]) /
			((((qd[0]*q+qd[1])*q+qd[2])*q+qd[3])*q + 1)
	default:
		q := p - 0.5
		r := q * q
		x = (((((qa[0]*r+qa[1])*r+qa[2])*r+qa[3])*r+qa[4])*r + qa[5]) * q /
			(((((qb[0]*r+qb[1])*r+qb[2])*r+qb[3])*r+qb[4])*r + 1)
	}

	// Halley refinement: e is the CDF error of the approximation.
	e := 0.5*math.Erfc(-x/math.Sqrt2) - p
	u := e * math.Sqrt(2*math.Pi) * math.Exp(x*x/2)
	x = x - u/(1+x*u/2)

	return x, nil
}
