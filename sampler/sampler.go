// Package sampler provides the ensemble MCMC machinery: walker
// initialization, the affine-invariant stretch move, and chain storage with
// burn-in/thinning extraction. The target density is supplied as a plain
// log-probability function, so the sampler knows nothing about the kinetic
// model it explores.
package sampler

import (
	"github.com/pkg/errors"

	"github.com/LiBuchauer/spatial-MP-discordances/rand"
)

// LogProbFunc evaluates the unnormalized log posterior at one parameter
// vector. Rejected regions are signalled with -Inf, never with an error;
// that is the normal control path for proposal rejection.
type LogProbFunc func(theta []float64) float64

// An Ensemble runs a multi-walker MCMC over the given log-probability
// function, starting from the supplied walker positions, and returns the
// full chain. Any correct ensemble sampler satisfies this; the stretch
// sampler in this package is the default implementation.
type Ensemble interface {
	Run(pos [][]float64, steps int, fn LogProbFunc) (*Chain, error)
}

// InitWalkers builds an ensemble start by perturbing the start point with
// independent Gaussian jitter of the given scale, per dimension per walker.
// The jitter breaks symmetry so walkers explore independently while staying
// near a plausible high-probability region.
func InitWalkers(start []float64, nWalkers int, scale float64, gen *rand.Generator) ([][]float64, error) {
	if len(start) < 1 {
		return nil, errors.Errorf("Empty start point")
	}
	if nWalkers < 2 {
		return nil, errors.Errorf("Need at least 2 walkers, got %d", nWalkers)
	}
	if scale <= 0 {
		return nil, errors.Errorf("Jitter scale must be positive, got %v", scale)
	}
	if gen == nil {
		return nil, errors.Errorf("No random generator supplied")
	}

	pos := make([][]float64, nWalkers)
	for w := range pos {
		pos[w] = make([]float64, len(start))
		for d := range start {
			pos[w][d] = start[d] + scale*gen.NormFloat64()
		}
	}

	return pos, nil
}
