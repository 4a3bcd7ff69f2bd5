// Package model contains the kinetic forward model for protein expression
// and the probability model (gamma priors x Gaussian likelihood) that the
// ensemble sampler explores per gene.
package model

import (
	"math"

	"github.com/pkg/errors"
)

// NumTimepoints is the fixed length of every observed time course.
const NumTimepoints = 6

// Horizon is the last observation time in hours.
const Horizon = 96.0

// TimeGrid returns the fixed observation times: NumTimepoints uniformly
// spaced points over [0, Horizon] hours.
func TimeGrid() []float64 {
	ts := make([]float64, NumTimepoints)
	for i := range ts {
		// Multiply before dividing so the grid hits the exact decimals
		// (19.2, 38.4, ...) instead of accumulating a half-ulp error
		ts[i] = float64(i) * Horizon / float64(NumTimepoints-1)
	}
	return ts
}

// GeneRecord holds the observed time course for one gene. Records are
// immutable once loaded and shared read-only across the batch.
type GeneRecord struct {
	ID         string    // Gene identifier
	MRNA       []float64 // mRNA observations on the time grid
	Protein    []float64 // Protein observations on the time grid
	ProteinSEM []float64 // Standard error of the mean per protein observation
	Reference  []float64 // Optional ground-truth protein trajectory (power analysis)
}

// Check returns an error if the record can not be fit.
func (g *GeneRecord) Check() error {
	if len(g.ID) < 1 {
		return errors.Errorf("Gene record is missing an identifier")
	}

	series := map[string][]float64{
		"mRNA":        g.MRNA,
		"protein":     g.Protein,
		"protein SEM": g.ProteinSEM,
	}
	for name, vals := range series {
		if len(vals) != NumTimepoints {
			return errors.Errorf("Gene %s has %d %s values, need %d", g.ID, len(vals), name, NumTimepoints)
		}
		for i, v := range vals {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return errors.Errorf("Gene %s has non-finite %s value at timepoint %d", g.ID, name, i)
			}
		}
	}

	if g.Reference != nil && len(g.Reference) != NumTimepoints {
		return errors.Errorf("Gene %s has %d reference values, need %d", g.ID, len(g.Reference), NumTimepoints)
	}

	return nil
}
