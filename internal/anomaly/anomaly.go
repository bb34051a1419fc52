// Package anomaly flags irregular catalog records: items whose sales
// velocity, turnover rate or stock level sits far outside the rest of
// the batch. Scores are feature z-scores computed over the batch
// itself, so the detector needs no training state.
package anomaly

import (
	"math"
	"sort"

	"github.com/Sohamiota/Target-JIT-org/internal/domain"
)

// DefaultThreshold is the |z| above which a feature flags its item.
const DefaultThreshold = 3.0

// Feature names, in score-vector order.
var featureNames = []string{"sales_velocity", "turnover_rate", "current_stock"}

// Report is one item's verdict: the per-feature z-scores, the worst of
// them, and whether any crossed the threshold.
type Report struct {
	SKUID   string             `json:"sku_id"`
	Anomaly bool               `json:"anomaly"`
	Score   float64            `json:"anomaly_score"`
	ZScores map[string]float64 `json:"z_scores"`
}

// Detector flags items by batch z-score.
type Detector struct {
	Threshold float64
}

func New() *Detector {
	return &Detector{Threshold: DefaultThreshold}
}

// Detect scores every item against the batch. Constant features score
// zero across the board; fewer than two items can never flag.
func (d *Detector) Detect(items []domain.CatalogItem) []Report {
	if len(items) == 0 {
		return nil
	}
	threshold := d.Threshold
	if threshold <= 0 {
		threshold = DefaultThreshold
	}

	features := make([][3]float64, len(items))
	for i, it := range items {
		features[i] = [3]float64{it.SalesVelocity, it.TurnoverRate, float64(it.CurrentStock)}
	}

	var mean, std [3]float64
	n := float64(len(items))
	for _, f := range features {
		for j := range f {
			mean[j] += f[j]
		}
	}
	for j := range mean {
		mean[j] /= n
	}
	for _, f := range features {
		for j := range f {
			std[j] += (f[j] - mean[j]) * (f[j] - mean[j])
		}
	}
	for j := range std {
		std[j] = math.Sqrt(std[j] / n)
		if std[j] == 0 {
			std[j] = 1
		}
	}

	out := make([]Report, len(items))
	for i, it := range items {
		scores := make(map[string]float64, len(featureNames))
		var worst float64
		for j, name := range featureNames {
			z := math.Abs((features[i][j] - mean[j]) / std[j])
			scores[name] = z
			if z > worst {
				worst = z
			}
		}
		out[i] = Report{
			SKUID:   it.SKUID,
			Anomaly: worst > threshold,
			Score:   worst,
			ZScores: scores,
		}
	}
	return out
}

// Anomalies returns only the flagged reports, worst first.
func Anomalies(reports []Report) []Report {
	var out []Report
	for _, r := range reports {
		if r.Anomaly {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}
