package feed

import (
	crand "crypto/rand"
	"encoding/binary"
	"math"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
)

// Observation is one scored color of the shopper's history.
type Observation struct {
	ColorScoreID   uuid.UUID
	ProductColorID uuid.UUID
	ProductID      uuid.UUID
	Cluster        int
	Score          float64
}

// Sampler draws a cluster-diversified set of products from a shopper's
// color score history.
type Sampler struct {
	Params Params
}

func NewSampler(p Params) Sampler {
	if p.Validate() != nil {
		p = DefaultParams()
	}
	return Sampler{Params: p}
}

// NewRand returns a PCG generator seeded from crypto entropy. Each sampling
// call should use its own generator.
func NewRand() *rand.Rand {
	var seed [16]byte
	if _, err := crand.Read(seed[:]); err != nil {
		now := uint64(time.Now().UnixNano())
		return rand.New(rand.NewPCG(now, now^0x9e3779b97f4a7c15))
	}
	return rand.New(rand.NewPCG(binary.LittleEndian.Uint64(seed[:8]), binary.LittleEndian.Uint64(seed[8:])))
}

// ClusterAggregates returns, aligned with clusters, the mean of exp(score)
// over the history rows of each cluster. Clusters without history get 0.
func ClusterAggregates(history []Observation, clusters []int) []float64 {
	type acc struct {
		sum float64
		n   int
	}
	byCluster := make(map[int]*acc, len(clusters))
	for _, c := range clusters {
		byCluster[c] = &acc{}
	}
	for _, h := range history {
		a, ok := byCluster[h.Cluster]
		if !ok {
			continue
		}
		a.sum += math.Exp(h.Score)
		a.n++
	}
	out := make([]float64, len(clusters))
	for i, c := range clusters {
		a := byCluster[c]
		if a.n == 0 {
			continue
		}
		mean := a.sum / float64(a.n)
		if math.IsInf(mean, 1) {
			mean = math.MaxFloat64
		}
		out[i] = mean
	}
	return out
}

// DrawClusters performs trials independent cluster picks. Each pick uses
// the sharp distribution with probability sharpProb, the smooth one
// otherwise; sharp picks come first, then the combined sequence is shuffled.
func DrawClusters(rng *rand.Rand, clusters []int, sharp, smooth []float64, sharpProb float64, trials int) []int {
	if trials <= 0 || len(clusters) == 0 {
		return nil
	}
	sharpCount := 0
	for i := 0; i < trials; i++ {
		if rng.Float64() < sharpProb {
			sharpCount++
		}
	}
	out := make([]int, 0, trials)
	for i := 0; i < sharpCount; i++ {
		out = append(out, clusters[weightedIndex(rng, sharp)])
	}
	for i := sharpCount; i < trials; i++ {
		out = append(out, clusters[weightedIndex(rng, smooth)])
	}
	rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

// Sample returns at most n distinct product ids. clusters is the fixed,
// ordered set of candidate cluster labels; history holds the shopper's
// scored colors among the candidates. An empty history yields nothing.
func (s Sampler) Sample(rng *rand.Rand, history []Observation, clusters []int, n int) []uuid.UUID {
	if n <= 0 || len(history) == 0 || len(clusters) == 0 {
		return []uuid.UUID{}
	}
	if rng == nil {
		rng = NewRand()
	}
	p := s.Params

	agg := ClusterAggregates(history, clusters)
	sharp := Softmax(agg, p.SharpTemperature)
	smooth := Softmax(agg, p.SmoothTemperature)
	draws := DrawClusters(rng, clusters, sharp, smooth, p.SharpProbability, p.DrawMultiplier*n)

	byCluster := make(map[int][]Observation, len(clusters))
	for _, h := range history {
		byCluster[h.Cluster] = append(byCluster[h.Cluster], h)
	}

	selected := make(map[uuid.UUID]bool, n)
	out := make([]uuid.UUID, 0, n)
	remaining := make([]Observation, 0, len(history))
	scores := make([]float64, 0, len(history))
	for _, c := range draws {
		if len(out) >= n {
			break
		}
		remaining = remaining[:0]
		scores = scores[:0]
		for _, h := range byCluster[c] {
			if selected[h.ProductID] {
				continue
			}
			remaining = append(remaining, h)
			scores = append(scores, h.Score)
		}
		if len(remaining) == 0 {
			continue
		}
		pick := remaining[weightedIndex(rng, Softmax(scores, p.ColorTemperature))]
		if selected[pick.ProductID] {
			continue
		}
		selected[pick.ProductID] = true
		out = append(out, pick.ProductID)
	}
	return out
}

// weightedIndex draws an index with probability proportional to probs.
func weightedIndex(rng *rand.Rand, probs []float64) int {
	var total float64
	last := -1
	for i, p := range probs {
		if p > 0 {
			total += p
			last = i
		}
	}
	if last < 0 {
		return rng.IntN(len(probs))
	}
	u := rng.Float64() * total
	var acc float64
	for i, p := range probs {
		if p <= 0 {
			continue
		}
		acc += p
		if u < acc {
			return i
		}
	}
	return last
}
