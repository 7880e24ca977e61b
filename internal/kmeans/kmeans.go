package kmeans

import (
	"math"
	"math/rand"
)

const maxIterations = 50

// Result holds the cluster centers and the center index assigned to
// each input point, in input order.
type Result struct {
	Centers     [][]float64
	Assignments []int
}

// Partition clusters points into k groups with Lloyd's algorithm. It
// restarts from `restarts` seeded random initializations and keeps the
// run with the lowest within-cluster sum of squares, so results are
// reproducible for a fixed seed. Clusters may come back empty when
// there are fewer distinct points than k.
func Partition(points [][]float64, k, restarts int, seed int64) Result {
	if len(points) == 0 || k <= 0 {
		return Result{}
	}
	if restarts < 1 {
		restarts = 1
	}

	rng := rand.New(rand.NewSource(seed))
	best := Result{}
	bestInertia := math.Inf(1)
	for attempt := 0; attempt < restarts; attempt++ {
		candidate, inertia := run(points, k, rng)
		if inertia < bestInertia {
			best = candidate
			bestInertia = inertia
		}
	}
	return best
}

func run(points [][]float64, k int, rng *rand.Rand) (Result, float64) {
	centers := initialCenters(points, k, rng)
	assignments := make([]int, len(points))

	for iter := 0; iter < maxIterations; iter++ {
		changed := false
		for i, p := range points {
			nearest := nearestCenter(p, centers)
			if assignments[i] != nearest {
				assignments[i] = nearest
				changed = true
			}
		}
		if iter > 0 && !changed {
			break
		}
		recomputeCenters(points, assignments, centers)
	}

	inertia := 0.0
	for i, p := range points {
		inertia += squaredDistance(p, centers[assignments[i]])
	}
	return Result{Centers: centers, Assignments: assignments}, inertia
}

// initialCenters samples k distinct points when possible; with fewer
// points than k the remaining centers duplicate sampled points, which
// leaves their clusters empty after assignment.
func initialCenters(points [][]float64, k int, rng *rand.Rand) [][]float64 {
	dim := len(points[0])
	centers := make([][]float64, k)
	if len(points) >= k {
		perm := rng.Perm(len(points))
		for i := 0; i < k; i++ {
			centers[i] = cloneVector(points[perm[i]], dim)
		}
		return centers
	}
	for i := 0; i < k; i++ {
		centers[i] = cloneVector(points[rng.Intn(len(points))], dim)
	}
	return centers
}

func recomputeCenters(points [][]float64, assignments []int, centers [][]float64) {
	dim := len(centers[0])
	sums := make([][]float64, len(centers))
	counts := make([]int, len(centers))
	for i := range sums {
		sums[i] = make([]float64, dim)
	}
	for i, p := range points {
		c := assignments[i]
		counts[c]++
		for d := 0; d < dim; d++ {
			sums[c][d] += p[d]
		}
	}
	for c := range centers {
		if counts[c] == 0 {
			continue // empty cluster keeps its previous center
		}
		for d := 0; d < dim; d++ {
			centers[c][d] = sums[c][d] / float64(counts[c])
		}
	}
}

func nearestCenter(p []float64, centers [][]float64) int {
	nearest := 0
	nearestDist := math.Inf(1)
	for i, c := range centers {
		if d := squaredDistance(p, c); d < nearestDist {
			nearest = i
			nearestDist = d
		}
	}
	return nearest
}

func squaredDistance(a, b []float64) float64 {
	total := 0.0
	for i := range a {
		diff := a[i] - b[i]
		total += diff * diff
	}
	return total
}

func cloneVector(v []float64, dim int) []float64 {
	out := make([]float64, dim)
	copy(out, v)
	return out
}
