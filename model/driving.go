package model

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/interp"
)

// A DrivingSignal is a continuous function of time over [0, Horizon] used as
// external forcing during integration. The forward model references signals,
// it never owns them.
type DrivingSignal interface {
	Eval(t float64) float64
}

// Interp is a piecewise-linear DrivingSignal fitted through observed points.
// This replaces the interpolant table the upstream data pipeline ships: the
// interpolants are rebuilt from the observations at load time.
type Interp struct {
	pl interp.PiecewiseLinear
}

// NewInterp fits a piecewise-linear interpolant through the given points.
// ts must be strictly increasing.
func NewInterp(ts []float64, vals []float64) (*Interp, error) {
	it := &Interp{}
	if err := it.pl.Fit(ts, vals); err != nil {
		return nil, errors.Wrap(err, "Could not fit interpolant")
	}
	return it, nil
}

// NewGridInterp fits an interpolant through values on the fixed time grid.
func NewGridInterp(vals []float64) (*Interp, error) {
	if len(vals) != NumTimepoints {
		return nil, errors.Errorf("Need %d grid values, got %d", NumTimepoints, len(vals))
	}
	return NewInterp(TimeGrid(), vals)
}

// Eval implements DrivingSignal.
func (it *Interp) Eval(t float64) float64 {
	return it.pl.Predict(t)
}

// Constant is a DrivingSignal with a fixed value, mainly for tests and
// identity efficiency factors.
type Constant float64

// Eval implements DrivingSignal.
func (c Constant) Eval(t float64) float64 {
	return float64(c)
}
