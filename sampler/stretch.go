package sampler

import (
	"math"

	"github.com/pkg/errors"

	"github.com/LiBuchauer/spatial-MP-discordances/buffer"
	"github.com/LiBuchauer/spatial-MP-discordances/rand"
)

// AcceptWindow is the step window for the rolling acceptance fraction.
const AcceptWindow = 100

// Stretch is an affine-invariant ensemble sampler using the stretch move of
// Goodman & Weare (2010). Each step updates the walkers in two halves: every
// walker in one half proposes along the line through itself and a random
// walker of the other half, scaled by z drawn from g(z) ~ 1/sqrt(z) on
// [1/a, a]. The move is accepted with probability
// min(1, z^(dim-1) * exp(logp(new) - logp(old))).
type Stretch struct {
	A      float64               // Stretch scale parameter, > 1
	Gen    *rand.Generator       // Source of all randomness for the run
	Accept *buffer.CircularFloat // Rolling per-step acceptance fraction

	accepted int64
	proposed int64
}

// NewStretch returns a stretch sampler with the canonical scale a = 2.
func NewStretch(gen *rand.Generator) (*Stretch, error) {
	if gen == nil {
		return nil, errors.Errorf("No random generator supplied")
	}

	return &Stretch{
		A:      2.0,
		Gen:    gen,
		Accept: buffer.NewCircularFloat(AcceptWindow),
	}, nil
}

// AcceptanceRate is the overall fraction of accepted proposals so far.
func (s *Stretch) AcceptanceRate() float64 {
	if s.proposed == 0 {
		return 0
	}
	return float64(s.accepted) / float64(s.proposed)
}

// RecentAcceptance is the mean acceptance fraction over the last
// AcceptWindow steps (or over all steps while fewer have run). Unlike
// AcceptanceRate it reflects only the tail of the run, so a chain that
// started badly but settled reports its settled rate. Zero before the
// first step.
func (s *Stretch) RecentAcceptance() float64 {
	m, err := s.Accept.Mean()
	if err != nil {
		return 0
	}
	return m
}

// drawZ samples the stretch factor from g(z) ~ 1/sqrt(z) on [1/a, a] via
// the inverse-CDF form ((a-1)u + 1)^2 / a.
func (s *Stretch) drawZ() float64 {
	u := s.Gen.Float64()
	v := (s.A-1.0)*u + 1.0
	return v * v / s.A
}

// Run implements Ensemble. The walker count must be even and at least
// 2*dim+2 so that each half spans the parameter space.
func (s *Stretch) Run(pos [][]float64, steps int, fn LogProbFunc) (*Chain, error) {
	if steps < 1 {
		return nil, errors.Errorf("Step count must be >= 1, got %d", steps)
	}
	if fn == nil {
		return nil, errors.Errorf("No log-probability function supplied")
	}

	nWalkers := len(pos)
	if nWalkers < 4 || nWalkers%2 != 0 {
		return nil, errors.Errorf("Walker count must be even and >= 4, got %d", nWalkers)
	}

	dim := len(pos[0])
	if dim < 1 {
		return nil, errors.Errorf("Empty parameter vectors")
	}
	if nWalkers < 2*dim+2 {
		return nil, errors.Errorf("Need at least %d walkers for dim %d, got %d", 2*dim+2, dim, nWalkers)
	}
	for w := range pos {
		if len(pos[w]) != dim {
			return nil, errors.Errorf("Walker %d has dim %d, walker 0 has %d", w, len(pos[w]), dim)
		}
	}

	// Working copies so the caller's start positions survive
	cur := make([][]float64, nWalkers)
	logProb := make([]float64, nWalkers)
	allRejected := true
	for w := range pos {
		cur[w] = make([]float64, dim)
		copy(cur[w], pos[w])
		logProb[w] = fn(cur[w])
		if !math.IsInf(logProb[w], -1) {
			allRejected = false
		}
	}
	if allRejected {
		return nil, errors.Errorf("All %d walkers start at zero posterior probability", nWalkers)
	}

	chain, err := NewChain(steps, nWalkers, dim)
	if err != nil {
		return nil, err
	}

	half := nWalkers / 2
	proposal := make([]float64, dim)

	for step := 0; step < steps; step++ {
		stepAccepted := 0

		for _, offset := range []int{0, half} {
			for i := 0; i < half; i++ {
				k := offset + i

				// Partner from the complementary half
				j := int(s.Gen.Int63n(int64(half)))
				if offset == 0 {
					j += half
				}

				z := s.drawZ()
				for d := 0; d < dim; d++ {
					proposal[d] = cur[j][d] + z*(cur[k][d]-cur[j][d])
				}

				newLP := fn(proposal)
				logRatio := float64(dim-1)*math.Log(z) + newLP - logProb[k]

				s.proposed++
				if logRatio >= 0 || math.Log(s.Gen.Float64()) < logRatio {
					copy(cur[k], proposal)
					logProb[k] = newLP
					s.accepted++
					stepAccepted++
				}
			}
		}

		s.Accept.Add(float64(stepAccepted) / float64(nWalkers))

		if err := chain.Record(step, cur, logProb); err != nil {
			return nil, errors.Wrap(err, "Failure recording ensemble step")
		}
	}

	return chain, nil
}
