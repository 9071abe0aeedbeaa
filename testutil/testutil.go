package testutil

import (
	"math"
	"math/rand"
	"sort"
	"sync"

	"github.com/hupe1980/kdknn/distance"
	"github.com/hupe1980/kdknn/model"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Float64 returns a pseudo-random number in [0.0,1.0).
func (r *RNG) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float64()
}

// UniformPoints generates num points with coordinates in [0, 100) and
// identities startID, startID+1, ...
func (r *RNG) UniformPoints(num int, startID int32) []model.Point {
	r.mu.Lock()
	defer r.mu.Unlock()

	points := make([]model.Point, num)
	for i := range points {
		points[i] = model.Point{
			X:  r.rand.Float64() * 100,
			Y:  r.rand.Float64() * 100,
			Z:  r.rand.Float64() * 100,
			ID: startID + int32(i),
		}
	}
	return points
}

// ClusteredPoints generates points around random centroids in [0, 100)^3.
// Useful for testing pruning on non-uniform data.
func (r *RNG) ClusteredPoints(num, clusters int, spread float64) []model.Point {
	if clusters < 1 {
		clusters = 1
	}
	centroids := r.UniformPoints(clusters, 0)

	r.mu.Lock()
	defer r.mu.Unlock()

	points := make([]model.Point, num)
	for i := range points {
		c := centroids[i%clusters]
		points[i] = model.Point{
			X:  c.X + r.rand.NormFloat64()*spread,
			Y:  c.Y + r.rand.NormFloat64()*spread,
			Z:  c.Z + r.rand.NormFloat64()*spread,
			ID: int32(i),
		}
	}
	return points
}

// GridPoints generates points on an integer lattice with the given number of
// distinct values per axis. Produces many equal coordinates and equal distances.
func (r *RNG) GridPoints(num, values int) []model.Point {
	r.mu.Lock()
	defer r.mu.Unlock()

	if values < 1 {
		values = 1
	}
	points := make([]model.Point, num)
	for i := range points {
		points[i] = model.Point{
			X:  float64(r.rand.Intn(values)),
			Y:  float64(r.rand.Intn(values)),
			Z:  float64(r.rand.Intn(values)),
			ID: int32(i),
		}
	}
	return points
}

// Shuffle returns a shuffled copy of points.
func (r *RNG) Shuffle(points []model.Point) []model.Point {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := model.Clone(points)
	r.rand.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

// BruteForceSearch performs exact search for ground truth. Ties are broken
// by smaller identity; the result is sentinel padded up to k.
func BruteForceSearch(points []model.Point, query model.Point, k int) []model.Neighbor {
	if k <= 0 {
		return []model.Neighbor{}
	}

	results := make([]model.Neighbor, len(points))
	for i, p := range points {
		results[i] = model.Neighbor{Distance: distance.Euclidean(query, p), ID: p.ID}
	}

	return topK(results, k)
}

// topK orders results by distance then identity and returns the first k,
// sentinel padded.
func topK(results []model.Neighbor, k int) []model.Neighbor {
	sort.Slice(results, func(i, j int) bool {
		if results[i].Distance != results[j].Distance {
			return results[i].Distance < results[j].Distance
		}
		return results[i].ID < results[j].ID
	})

	out := make([]model.Neighbor, k)
	for i := range out {
		if i < len(results) {
			out[i] = results[i]
		} else {
			out[i] = model.Sentinel()
		}
	}
	return out
}

// ComputeRecall computes recall@k by comparing approximate results against ground truth.
// Sentinel entries are ignored on both sides.
func ComputeRecall(groundTruth, approximate []model.Neighbor) float64 {
	truthSet := make(map[int32]struct{}, len(groundTruth))
	for _, n := range groundTruth {
		if !n.IsSentinel() {
			truthSet[n.ID] = struct{}{}
		}
	}
	if len(truthSet) == 0 {
		return 1.0
	}

	hits := 0
	for _, n := range approximate {
		if _, ok := truthSet[n.ID]; ok {
			hits++
		}
	}

	return float64(hits) / float64(len(truthSet))
}

// SameDistances reports whether a and b carry equal distances position by
// position, within tol. Identities may differ among exact ties.
func SameDistances(a, b []model.Neighbor, tol float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		da, db := a[i].Distance, b[i].Distance
		if math.IsInf(da, 1) && math.IsInf(db, 1) {
			continue
		}
		if math.Abs(da-db) > tol {
			return false
		}
	}
	return true
}
