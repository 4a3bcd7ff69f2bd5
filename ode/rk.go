// Package ode provides the initial-value solver used to integrate the
// kinetic forward model over the observation grid. The solver is behind a
// small interface so that any correct IVP integrator can stand in.
package ode

import (
	"math"

	"github.com/pkg/errors"
)

// DerivFunc is the right-hand side of a scalar first-order ODE dy/dt = f(y, t).
type DerivFunc func(y float64, t float64) float64

// A Solver integrates dy/dt = f from y(ts[0]) = y0 and returns the state at
// every requested time. ts must be strictly increasing.
type Solver interface {
	Solve(f DerivFunc, y0 float64, ts []float64) ([]float64, error)
}

// RK4 is a classic fixed-step fourth-order Runge-Kutta integrator. Each
// interval between requested times is split into Substeps equal steps. The
// forcing functions in this repository are piecewise-linear and mild, so a
// fixed step is accurate and keeps the hot sampling loop allocation-free.
type RK4 struct {
	Substeps int
}

// DefaultSubsteps is the per-interval step count used by NewRK4. With the
// 19.2h observation spacing this gives a 0.3h step.
const DefaultSubsteps = 64

// NewRK4 returns an RK4 solver with the default step refinement.
func NewRK4() *RK4 {
	return &RK4{Substeps: DefaultSubsteps}
}

// Solve implements Solver.
func (r *RK4) Solve(f DerivFunc, y0 float64, ts []float64) ([]float64, error) {
	if len(ts) < 1 {
		return nil, errors.Errorf("No output times requested")
	}
	if r.Substeps < 1 {
		return nil, errors.Errorf("Invalid substep count %d", r.Substeps)
	}

	out := make([]float64, len(ts))
	out[0] = y0

	y := y0
	for i := 1; i < len(ts); i++ {
		t0, t1 := ts[i-1], ts[i]
		if t1 <= t0 {
			return nil, errors.Errorf("Output times must be strictly increasing: t[%d]=%v t[%d]=%v", i-1, t0, i, t1)
		}

		h := (t1 - t0) / float64(r.Substeps)
		t := t0
		for s := 0; s < r.Substeps; s++ {
			k1 := f(y, t)
			k2 := f(y+0.5*h*k1, t+0.5*h)
			k3 := f(y+0.5*h*k2, t+0.5*h)
			k4 := f(y+h*k3, t+h)
			y += h / 6.0 * (k1 + 2.0*k2 + 2.0*k3 + k4)
			t += h
		}

		if math.IsNaN(y) || math.IsInf(y, 0) {
			return nil, errors.Errorf("Integration diverged at t=%v", t1)
		}

		out[i] = y
	}

	return out, nil
}
