package testutil

import (
	"math"
	"math/rand"
	"sync"
)

// MatrixDim is the dimension of Particle.Inertia.
const MatrixDim = 3

// Particle is a record type covering every supported field kind.
type Particle struct {
	ID      int64
	Mass    float32
	Charge  int8
	Samples []int32
	Weights []float64 `soa:"weights"`
	Inertia [MatrixDim][MatrixDim]float64
}

// Demo is the record type of DemoBatch.
type Demo struct {
	X float64     `soa:"x"`
	V []int32     `soa:"v"`
	M [2][2]int16 `soa:"m"`
}

// DemoBatch returns three records with vector fields of length 4, 1 and 2.
func DemoBatch() []Demo {
	return []Demo{
		{X: 0, V: []int32{10, 11, 12, 13}, M: [2][2]int16{{100, 101}, {102, 103}}},
		{X: 4, V: []int32{20}, M: [2][2]int16{{200, 201}, {202, 203}}},
		{X: 8, V: []int32{30, 31}, M: [2][2]int16{{300, 301}, {302, 303}}},
	}
}

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
		rand: rand.New(rand.NewSource(seed)), //nolint:gosec // deterministic test data
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand = rand.New(rand.NewSource(r.seed)) //nolint:gosec // deterministic test data
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

// Float32 returns, as a float32, a pseudo-random number in [0.0,1.0).
func (r *RNG) Float32() float32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float32()
}

// FillUniform fills dst with random values in range [0, 1).
// Locks only once per call (preferred over calling Float32 in a loop).
func (r *RNG) FillUniform(dst []float32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range dst {
		dst[i] = r.rand.Float32()
	}
}

// Lengths returns n vector lengths drawn uniformly from [0, maxLen].
func (r *RNG) Lengths(n, maxLen int) []int {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]int, n)
	for i := range out {
		out[i] = r.rand.Intn(maxLen + 1)
	}
	return out
}

// ZipfLengths returns n vector lengths in [0, maxLen) following Zipf's law
// with skew s: most records are short, a few are long.
func (r *RNG) ZipfLengths(n, maxLen int, s float64) []int {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]int, n)
	for i := range out {
		out[i] = r.zipfLocked(maxLen, s)
	}
	return out
}

// zipfLocked samples by inverse transform (caller must hold lock).
func (r *RNG) zipfLocked(n int, s float64) int {
	if n <= 1 {
		return 0
	}

	var hns float64
	for i := 1; i <= n; i++ {
		hns += 1.0 / math.Pow(float64(i), s)
	}

	u := r.rand.Float64() * hns
	var cumulative float64
	for k := 1; k <= n; k++ {
		cumulative += 1.0 / math.Pow(float64(k), s)
		if u <= cumulative {
			return k - 1
		}
	}

	return n - 1
}

// Particles generates n particles whose vector fields have uniform random
// lengths in [0, maxLen].
func (r *RNG) Particles(n, maxLen int) []Particle {
	return r.ParticlesWithLengths(r.Lengths(n, maxLen))
}

// ParticlesWithLengths generates one particle per entry of lengths; both
// vector fields of particle i have lengths[i] elements.
func (r *RNG) ParticlesWithLengths(lengths []int) []Particle {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Particle, len(lengths))
	for i, l := range lengths {
		p := Particle{
			ID:      int64(i),
			Mass:    r.rand.Float32() * 100,
			Charge:  int8(r.rand.Intn(7) - 3),
			Samples: make([]int32, l),
			Weights: make([]float64, l),
		}
		for j := 0; j < l; j++ {
			p.Samples[j] = r.rand.Int31()
			p.Weights[j] = r.rand.NormFloat64()
		}
		for row := range p.Inertia {
			for col := range p.Inertia[row] {
				p.Inertia[row][col] = r.rand.Float64()
			}
		}
		out[i] = p
	}
	return out
}
