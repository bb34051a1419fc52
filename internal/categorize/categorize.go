// Package categorize buckets catalog items into fast, medium and slow
// moving bands by clustering sales velocity against turnover rate.
package categorize

import (
	"math/rand"
	"sort"

	"github.com/Sohamiota/Target-JIT-org/internal/domain"
)

const (
	clusters      = 3
	defaultSeed   = 42
	maxIterations = 100
)

// Assignment is one item's movement band with the features that
// placed it there.
type Assignment struct {
	SKUID    string  `json:"sku_id"`
	Movement string  `json:"movement"`
	Velocity float64 `json:"sales_velocity"`
	Turnover float64 `json:"turnover_rate"`
}

// Categorizer clusters the catalog with a fixed seed so repeated calls
// over the same data give the same bands.
type Categorizer struct {
	seed int64
}

func New() *Categorizer {
	return &Categorizer{seed: defaultSeed}
}

// Categorize fits three clusters over the scaled (velocity, turnover)
// plane and labels them by activity: the cluster whose centroid sits
// highest overall is fast-moving, the lowest slow-moving.
func (c *Categorizer) Categorize(items []domain.CatalogItem) ([]Assignment, error) {
	if len(items) < clusters {
		return nil, &domain.DomainError{Op: "categorize", Reason: "need at least 3 items to cluster"}
	}

	points := make([]point, len(items))
	for i, it := range items {
		points[i] = point{it.SalesVelocity, it.TurnoverRate}
	}
	scaled := standardize(points)

	r := rand.New(rand.NewSource(c.seed))
	centroids, assign := lloyd(r, scaled, clusters, maxIterations)

	// Rank clusters by centroid coordinate sum, descending.
	order := []int{0, 1, 2}
	sort.Slice(order, func(i, j int) bool {
		a, b := centroids[order[i]], centroids[order[j]]
		return a[0]+a[1] > b[0]+b[1]
	})
	labels := make([]string, clusters)
	for rank, cluster := range order {
		switch rank {
		case 0:
			labels[cluster] = domain.MovementFast
		case 1:
			labels[cluster] = domain.MovementMedium
		default:
			labels[cluster] = domain.MovementSlow
		}
	}

	out := make([]Assignment, len(items))
	for i, it := range items {
		out[i] = Assignment{
			SKUID:    it.SKUID,
			Movement: labels[assign[i]],
			Velocity: it.SalesVelocity,
			Turnover: it.TurnoverRate,
		}
	}
	return out, nil
}

// Counts tallies assignments per movement band.
func Counts(assignments []Assignment) map[string]int {
	counts := make(map[string]int, clusters)
	for _, a := range assignments {
		counts[a.Movement]++
	}
	return counts
}
