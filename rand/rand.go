package rand

import (
	"math"

	"github.com/pkg/errors"
	"github.com/seehuhn/mt19937"
)

// A Generator uses a goroutine to populate batches of random numbers from a
// seeded Mersenne twister. Every stochastic component in this repository
// draws from an explicitly constructed Generator; nothing seeds itself.
type Generator struct {
	ch        chan int64
	spare     float64
	haveSpare bool
}

// NewGenerator starts a new background PRNG based on the given seed.
func NewGenerator(seed int64) (*Generator, error) {
	numChan := make(chan int64, 1024)

	go func() {
		r := mt19937.New()
		r.Seed(seed)
		for {
			numChan <- r.Int63()
		}
	}()

	g := &Generator{
		ch: numChan,
	}

	return g, nil
}

// Int63 provides the same interface as Go's math/rand, but with pre-generation.
func (g *Generator) Int63() int64 {
	return <-g.ch
}

// Int63n is a copy of the current Go code
func (g *Generator) Int63n(n int64) int64 {
	if n <= 0 {
		panic("invalid argument to Int63n")
	}

	if n&(n-1) == 0 { // n is power of two, can mask
		return g.Int63() & (n - 1)
	}

	max := int64((1 << 63) - 1 - (1<<63)%uint64(n))
	v := g.Int63()
	for v > max {
		v = g.Int63()
	}

	return v % n
}

// Float64 uses the commented, simpler implmentation since we don't have the
// same support requirements for users
func (g *Generator) Float64() float64 {
	// See the Go lang comments for Rand Float64 implementation for details
	return float64(g.Int63n(1<<53)) / (1 << 53)
}

// NormFloat64 returns a standard normal variate via the Marsaglia polar
// method. The spare deviate from each pair is kept for the next call.
// Generators are single-consumer so there is no locking here.
func (g *Generator) NormFloat64() float64 {
	if g.haveSpare {
		g.haveSpare = false
		return g.spare
	}

	var u, v, s float64
	for {
		u = 2.0*g.Float64() - 1.0
		v = 2.0*g.Float64() - 1.0
		s = u*u + v*v
		if s > 0 && s < 1 {
			break
		}
	}

	f := math.Sqrt(-2.0 * math.Log(s) / s)
	g.spare = v * f
	g.haveSpare = true
	return u * f
}

// Perm returns a random permutation of [0, n), same contract as math/rand.
func (g *Generator) Perm(n int) []int {
	m := make([]int, n)
	for i := 1; i < n; i++ {
		j := int(g.Int63n(int64(i + 1)))
		m[i] = m[j]
		m[j] = i
	}
	return m
}

// Choice returns k distinct indices drawn uniformly from [0, n) without
// replacement, via a partial Fisher-Yates shuffle.
func (g *Generator) Choice(n, k int) ([]int, error) {
	if k < 1 || k > n {
		return nil, errors.Errorf("Can not choose %d from %d", k, n)
	}

	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}

	for i := 0; i < k; i++ {
		j := i + int(g.Int63n(int64(n-i)))
		idx[i], idx[j] = idx[j], idx[i]
	}

	return idx[:k], nil
}
