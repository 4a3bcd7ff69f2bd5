package sampler

import (
	"github.com/pkg/errors"

	"github.com/LiBuchauer/spatial-MP-discordances/buffer"
)

// Chain is the full record of an ensemble run: walker positions and the
// matching log-posterior values, indexed by (step, walker, dimension). It
// is produced incrementally by an Ensemble and consumed once complete.
type Chain struct {
	Walkers   int
	Dim       int
	Positions [][][]float64 // [step][walker][dim]
	LogProb   [][]float64   // [step][walker]
}

// NewChain allocates chain storage for the given run shape.
func NewChain(steps int, walkers int, dim int) (*Chain, error) {
	if steps < 1 || walkers < 1 || dim < 1 {
		return nil, errors.Errorf("Invalid chain shape %dx%dx%d", steps, walkers, dim)
	}

	c := &Chain{
		Walkers:   walkers,
		Dim:       dim,
		Positions: make([][][]float64, steps),
		LogProb:   make([][]float64, steps),
	}
	for s := range c.Positions {
		c.Positions[s] = make([][]float64, walkers)
		for w := range c.Positions[s] {
			c.Positions[s][w] = make([]float64, dim)
		}
		c.LogProb[s] = make([]float64, walkers)
	}

	return c, nil
}

// Steps is the recorded step count.
func (c *Chain) Steps() int {
	return len(c.Positions)
}

// Record stores the ensemble state for one step. The positions are copied
// so the sampler may keep mutating its working state.
func (c *Chain) Record(step int, pos [][]float64, logProb []float64) error {
	if step < 0 || step >= c.Steps() {
		return errors.Errorf("Step %d outside chain of %d steps", step, c.Steps())
	}
	if len(pos) != c.Walkers || len(logProb) != c.Walkers {
		return errors.Errorf("Walker count mismatch: chain has %d", c.Walkers)
	}

	for w := range pos {
		if len(pos[w]) != c.Dim {
			return errors.Errorf("Walker %d has dim %d, chain has %d", w, len(pos[w]), c.Dim)
		}
		copy(c.Positions[step][w], pos[w])
		c.LogProb[step][w] = logProb[w]
	}

	return nil
}

// Drift compares the mean log-posterior over the first and second halves of
// the last window steps. A stationary chain gives a value near zero; a
// large positive value means the chain was still climbing and the burn-in
// discard is probably too short.
func (c *Chain) Drift(window int) (float64, error) {
	if window < 2 || window > c.Steps() {
		return 0, errors.Errorf("Drift window %d invalid for chain of %d steps", window, c.Steps())
	}

	buf := buffer.NewCircularFloat(window)
	for s := c.Steps() - window; s < c.Steps(); s++ {
		mean := 0.0
		for _, lp := range c.LogProb[s] {
			mean += lp
		}
		buf.Add(mean / float64(c.Walkers))
	}

	first, err := buf.FirstHalfMean()
	if err != nil {
		return 0, err
	}
	second, err := buf.SecondHalfMean()
	if err != nil {
		return 0, err
	}

	return second - first, nil
}

// FlatSample is one retained draw: the parameter vector plus its recorded
// log posterior.
type FlatSample struct {
	Theta   []float64
	LogProb float64
}

// Flatten discards the burn-in prefix, flattens the remaining steps
// step-major (walker order within each step), and retains every thin-th
// row. The result always has exactly
// floor((steps-discard)*walkers/thin) rows.
func (c *Chain) Flatten(discard int, thin int) ([]FlatSample, error) {
	if discard < 0 || discard >= c.Steps() {
		return nil, errors.Errorf("Discard %d invalid for chain of %d steps", discard, c.Steps())
	}
	if thin < 1 {
		return nil, errors.Errorf("Thin stride must be >= 1, got %d", thin)
	}

	total := (c.Steps() - discard) * c.Walkers
	out := make([]FlatSample, 0, total/thin)

	// Keep the last row of each stride so exactly floor(total/thin) rows
	// survive regardless of how the stride divides the row count.
	flat := 0
	for s := discard; s < c.Steps(); s++ {
		for w := 0; w < c.Walkers; w++ {
			flat++
			if flat%thin == 0 {
				theta := make([]float64, c.Dim)
				copy(theta, c.Positions[s][w])
				out = append(out, FlatSample{Theta: theta, LogProb: c.LogProb[s][w]})
			}
		}
	}

	return out, nil
}
