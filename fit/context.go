package fit

import (
	"sort"

	"github.com/pkg/errors"

	"github.com/LiBuchauer/spatial-MP-discordances/model"
	"github.com/LiBuchauer/spatial-MP-discordances/ode"
)

// StartValue seeds one gene's chain near a plausible posterior mode,
// typically taken from a preliminary point-estimate run.
type StartValue struct {
	Beta0  float64
	Delta0 float64
}

// Context is the read-only input set shared by every per-gene fit in a
// batch: records, driving signals, priors and the solver, loaded once and
// never mutated. It replaces hidden process-global state with an explicit
// object passed by reference.
type Context struct {
	Genes      map[string]*model.GeneRecord
	Signals    map[string]model.DrivingSignal
	Priors     *model.PriorSpec
	Efficiency model.DrivingSignal   // Optional translation-efficiency decay
	Starts     map[string]StartValue // Optional per-gene chain seeds
	Solver     ode.Solver
}

// Check validates the batch inputs as a whole.
func (c *Context) Check() error {
	if len(c.Genes) < 1 {
		return errors.Errorf("Context has no gene records")
	}
	if c.Priors == nil {
		return errors.Errorf("Context has no prior spec")
	}
	if err := c.Priors.Check(); err != nil {
		return err
	}
	if c.Solver == nil {
		return errors.Errorf("Context has no ODE solver")
	}

	for id, rec := range c.Genes {
		if err := rec.Check(); err != nil {
			return errors.Wrapf(err, "Invalid record for gene %s", id)
		}
		if _, ok := c.Signals[id]; !ok {
			return errors.Errorf("Gene %s has no mRNA driving signal", id)
		}
	}

	return nil
}

// GeneIDs returns all gene identifiers in sorted order.
func (c *Context) GeneIDs() []string {
	ids := make([]string, 0, len(c.Genes))
	for id := range c.Genes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Problem binds one gene's data to the probability model under the given
// policy.
func (c *Context) Problem(cfg Config, gene string) (*model.Problem, error) {
	rec, ok := c.Genes[gene]
	if !ok {
		return nil, errors.Errorf("Unknown gene %s", gene)
	}

	sig, ok := c.Signals[gene]
	if !ok {
		return nil, errors.Errorf("Gene %s has no mRNA driving signal", gene)
	}

	return model.NewProblem(cfg.Variant, rec, sig, c.Efficiency, c.Priors, cfg.FixedInit, c.Solver)
}
