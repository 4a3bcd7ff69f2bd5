// Package posterior turns a finished chain into the terminal per-gene
// artifacts: the flattened sample table with point estimates, and the
// posterior-predictive validation record (p-value plus per-timepoint HDIs).
package posterior

import (
	"math"

	"github.com/montanaflynn/stats"
	"github.com/pkg/errors"

	"github.com/LiBuchauer/spatial-MP-discordances/sampler"
)

// FlatTable is the 2-D table of retained posterior draws: one row per kept
// (step, walker) pair, parameter columns plus the recorded log posterior.
type FlatTable struct {
	Names   []string // Parameter column names, theta order
	Samples []sampler.FlatSample
}

// Flatten derives a named table from a chain with the given burn-in discard
// and thinning stride.
func Flatten(c *sampler.Chain, names []string, discard int, thin int) (*FlatTable, error) {
	if len(names) != c.Dim {
		return nil, errors.Errorf("Have %d column names for chain dim %d", len(names), c.Dim)
	}

	flat, err := c.Flatten(discard, thin)
	if err != nil {
		return nil, err
	}
	if len(flat) < 1 {
		return nil, errors.Errorf("Flattening left no samples (steps=%d discard=%d thin=%d)", c.Steps(), discard, thin)
	}

	return &FlatTable{Names: names, Samples: flat}, nil
}

// Len is the retained row count.
func (t *FlatTable) Len() int {
	return len(t.Samples)
}

// Column copies out one parameter column.
func (t *FlatTable) Column(d int) ([]float64, error) {
	if d < 0 || d >= len(t.Names) {
		return nil, errors.Errorf("No column %d in table of %d parameters", d, len(t.Names))
	}

	col := make([]float64, len(t.Samples))
	for i, fs := range t.Samples {
		col[i] = fs.Theta[d]
	}
	return col, nil
}

// MAP returns the row with the highest recorded log posterior.
func (t *FlatTable) MAP() (sampler.FlatSample, error) {
	if t.Len() < 1 {
		return sampler.FlatSample{}, errors.Errorf("Empty sample table")
	}

	best := 0
	for i := 1; i < len(t.Samples); i++ {
		if t.Samples[i].LogProb > t.Samples[best].LogProb {
			best = i
		}
	}
	return t.Samples[best], nil
}

// Medians returns the per-parameter posterior median, robust central
// tendency for the typically skewed rate posteriors.
func (t *FlatTable) Medians() ([]float64, error) {
	meds := make([]float64, len(t.Names))
	for d := range t.Names {
		col, err := t.Column(d)
		if err != nil {
			return nil, err
		}
		m, err := stats.Median(col)
		if err != nil {
			return nil, errors.Wrapf(err, "Could not take median of column %s", t.Names[d])
		}
		meds[d] = m
	}
	return meds, nil
}

// Summary holds the point estimates extracted from one gene's table.
type Summary struct {
	Medians  []float64          // Per-parameter posterior median
	MAP      sampler.FlatSample // Maximum a posteriori row
	HalfLife float64            // ln(2) / delta at the MAP, in hours
}

// Summarize extracts medians, the MAP row and the implied protein half-life.
// Column 1 must be the log decay rate, which the fixed parameter ordering
// guarantees.
func Summarize(t *FlatTable) (*Summary, error) {
	if len(t.Names) < 2 {
		return nil, errors.Errorf("Table has %d parameters, need log_beta and log_delta", len(t.Names))
	}

	meds, err := t.Medians()
	if err != nil {
		return nil, err
	}

	mp, err := t.MAP()
	if err != nil {
		return nil, err
	}

	return &Summary{
		Medians:  meds,
		MAP:      mp,
		HalfLife: math.Ln2 / math.Exp(mp.Theta[1]),
	}, nil
}
