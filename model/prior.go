package model

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/stat/distuv"
)

// GammaPrior is a shape/location/scale gamma density over a log-rate
// parameter. The location/scale form matches the fitted prior parameter
// files the data pipeline produces.
type GammaPrior struct {
	Shape float64
	Loc   float64
	Scale float64

	dist distuv.Gamma
}

// NewGammaPrior validates the parameters and returns a ready density.
func NewGammaPrior(shape float64, loc float64, scale float64) (*GammaPrior, error) {
	if shape <= 0 {
		return nil, errors.Errorf("Gamma shape must be positive, got %v", shape)
	}
	if scale <= 0 {
		return nil, errors.Errorf("Gamma scale must be positive, got %v", scale)
	}

	return &GammaPrior{
		Shape: shape,
		Loc:   loc,
		Scale: scale,
		dist:  distuv.Gamma{Alpha: shape, Beta: 1},
	}, nil
}

// Density evaluates the prior pdf at x. Zero for x below the location. The
// support boundary x == loc follows the limit of y^(shape-1)e^(-y)/Gamma(shape)
// as y -> 0 (finite 1/scale at shape 1, divergent below, zero above); the
// wrapped distribution returns 0 there unconditionally.
func (g *GammaPrior) Density(x float64) float64 {
	y := (x - g.Loc) / g.Scale

	if y == 0 {
		switch {
		case g.Shape < 1:
			return math.Inf(1)
		case g.Shape == 1:
			return 1 / g.Scale
		default:
			return 0
		}
	}

	return g.dist.Prob(y) / g.Scale
}

// PriorSpec is the pair of independent priors over the log rate parameters.
// It is immutable and shared read-only across all genes and walkers.
type PriorSpec struct {
	LogBeta  *GammaPrior
	LogDelta *GammaPrior
}

// Check returns an error unless both component priors are present.
func (p *PriorSpec) Check() error {
	if p.LogBeta == nil || p.LogDelta == nil {
		return errors.Errorf("Prior spec needs both log_beta and log_delta densities")
	}
	return nil
}
