package categorize

import (
	"math"
	"math/rand"
)

type point [2]float64

func (p point) distSq(q point) float64 {
	dx := p[0] - q[0]
	dy := p[1] - q[1]
	return dx*dx + dy*dy
}

// standardize centers each column on zero with unit variance. Constant
// columns keep scale one so they do not blow up to NaN.
func standardize(points []point) []point {
	var mean, variance point
	n := float64(len(points))
	for _, p := range points {
		mean[0] += p[0]
		mean[1] += p[1]
	}
	mean[0] /= n
	mean[1] /= n
	for _, p := range points {
		variance[0] += (p[0] - mean[0]) * (p[0] - mean[0])
		variance[1] += (p[1] - mean[1]) * (p[1] - mean[1])
	}
	std := point{math.Sqrt(variance[0] / n), math.Sqrt(variance[1] / n)}
	for i := range std {
		if std[i] == 0 {
			std[i] = 1
		}
	}

	scaled := make([]point, len(points))
	for i, p := range points {
		scaled[i] = point{(p[0] - mean[0]) / std[0], (p[1] - mean[1]) / std[1]}
	}
	return scaled
}

// seedCentroids picks k starting centroids with the k-means++ rule:
// each next centroid is drawn with probability proportional to its
// squared distance from the nearest one chosen so far.
func seedCentroids(r *rand.Rand, points []point, k int) []point {
	centroids := make([]point, 0, k)
	centroids = append(centroids, points[r.Intn(len(points))])

	dists := make([]float64, len(points))
	for len(centroids) < k {
		var total float64
		for i, p := range points {
			best := math.Inf(1)
			for _, c := range centroids {
				if d := p.distSq(c); d < best {
					best = d
				}
			}
			dists[i] = best
			total += best
		}

		if total == 0 {
			// All points coincide with a centroid; fall back to uniform.
			centroids = append(centroids, points[r.Intn(len(points))])
			continue
		}

		target := r.Float64() * total
		var acc float64
		chosen := len(points) - 1
		for i, d := range dists {
			acc += d
			if acc >= target {
				chosen = i
				break
			}
		}
		centroids = append(centroids, points[chosen])
	}
	return centroids
}

// lloyd iterates assignment and centroid updates until assignments
// settle. Returns the final centroids and per-point cluster indices.
func lloyd(r *rand.Rand, points []point, k, maxIter int) ([]point, []int) {
	centroids := seedCentroids(r, points, k)
	assign := make([]int, len(points))

	for iter := 0; iter < maxIter; iter++ {
		changed := false
		for i, p := range points {
			best := 0
			bestDist := p.distSq(centroids[0])
			for c := 1; c < k; c++ {
				if d := p.distSq(centroids[c]); d < bestDist {
					best = c
					bestDist = d
				}
			}
			if assign[i] != best {
				assign[i] = best
				changed = true
			}
		}
		if !changed && iter > 0 {
			break
		}

		sums := make([]point, k)
		counts := make([]int, k)
		for i, p := range points {
			c := assign[i]
			sums[c][0] += p[0]
			sums[c][1] += p[1]
			counts[c]++
		}
		for c := 0; c < k; c++ {
			// An empty cluster keeps its previous centroid.
			if counts[c] > 0 {
				centroids[c] = point{sums[c][0] / float64(counts[c]), sums[c][1] / float64(counts[c])}
			}
		}
	}

	return centroids, assign
}
