package model

import (
	"math"

	"github.com/pkg/errors"

	"github.com/LiBuchauer/spatial-MP-discordances/ode"
)

// DensityFloor is the hard-exclusion threshold for prior densities: any
// component density below it is treated the same as zero density and the
// proposal is rejected outright, keeping log(0) underflow artifacts out of
// the chain.
const DensityFloor = 1e-9

// PzeroMax bounds the uniform prior over the free initial condition.
const PzeroMax = 3e8

// ErrorFloor is the minimum magnitude for any value used as a divisor.
const ErrorFloor = 1e-4

// Problem binds one gene's data to the probability model. Its
// LogProbability method is exactly the function handed to the ensemble
// sampler. A Problem is read-only after construction.
type Problem struct {
	Variant    Variant
	Rec        *GeneRecord
	MRNA       DrivingSignal
	Efficiency DrivingSignal // nil means no translation-efficiency decay
	Priors     *PriorSpec
	FixedInit  float64 // Initial condition for fixed-init variants; <= 0 falls back to first observation
	Solver     ode.Solver

	grid []float64
}

// NewProblem validates the pieces and returns a fit-ready problem.
func NewProblem(v Variant, rec *GeneRecord, mrna DrivingSignal, efficiency DrivingSignal, priors *PriorSpec, fixedInit float64, solver ode.Solver) (*Problem, error) {
	if rec == nil {
		return nil, errors.Errorf("No gene record supplied")
	}
	if err := rec.Check(); err != nil {
		return nil, errors.Wrapf(err, "Invalid record for gene %s", rec.ID)
	}
	if v.NeedsReference() && rec.Reference == nil {
		return nil, errors.Errorf("Gene %s has no reference trajectory but variant %s needs one", rec.ID, v)
	}
	if mrna == nil {
		return nil, errors.Errorf("No mRNA driving signal for gene %s", rec.ID)
	}
	if priors == nil {
		return nil, errors.Errorf("No prior spec for gene %s", rec.ID)
	}
	if err := priors.Check(); err != nil {
		return nil, err
	}
	if solver == nil {
		return nil, errors.Errorf("No ODE solver for gene %s", rec.ID)
	}

	return &Problem{
		Variant:    v,
		Rec:        rec,
		MRNA:       mrna,
		Efficiency: efficiency,
		Priors:     priors,
		FixedInit:  fixedInit,
		Solver:     solver,
		grid:       TimeGrid(),
	}, nil
}

// Dim is the parameter-vector dimensionality the sampler must use.
func (p *Problem) Dim() int {
	return p.Variant.Dim()
}

// LogPrior evaluates the independent priors at theta. The two rate
// components are gamma densities over the log rates; the optional free
// initial condition is uniform over [0, PzeroMax). A component density
// below DensityFloor (or an out-of-range initial condition) forces an
// immediate -Inf.
func (p *Problem) LogPrior(theta Theta) float64 {
	pBeta := p.Priors.LogBeta.Density(theta[0])
	pDelta := p.Priors.LogDelta.Density(theta[1])
	if pBeta < DensityFloor || pDelta < DensityFloor {
		return math.Inf(-1)
	}

	lp := math.Log(pBeta) + math.Log(pDelta)

	if p.Variant == FreeInit {
		pzero := theta[2]
		if pzero < 0 || pzero >= PzeroMax {
			return math.Inf(-1)
		}
		lp += math.Log(1.0 / PzeroMax)
	}

	return lp
}

// Trajectory integrates the forward model at theta over the time grid.
func (p *Problem) Trajectory(theta Theta) ([]float64, error) {
	beta := math.Exp(theta[0])
	delta := math.Exp(theta[1])
	p0 := p.Variant.InitialCondition(theta, p.Rec.Protein[0], p.FixedInit)

	f := Derivative(beta, delta, p.MRNA, p.Efficiency)
	return p.Solver.Solve(f, p0, p.grid)
}

// LogLikelihood is the Gaussian log likelihood of the observed protein
// course under the model trajectory at theta, up to additive constants:
// -0.5 times the sum of squared standardized residuals. Only relative
// probability matters for sampling, so the constants are omitted.
func (p *Problem) LogLikelihood(theta Theta) float64 {
	traj, err := p.Trajectory(theta)
	if err != nil {
		// A parameter region the integrator can not handle is rejected
		// like any other zero-probability proposal.
		return math.Inf(-1)
	}

	ll := 0.0
	for i, m := range traj {
		sem := math.Max(p.Rec.ProteinSEM[i], ErrorFloor)
		r := (p.Rec.Protein[i] - m) / sem
		ll += r * r
	}

	return -0.5 * ll
}

// LogProbability is the unnormalized log posterior. A non-finite prior
// short-circuits before any integration happens.
func (p *Problem) LogProbability(theta Theta) float64 {
	lp := p.LogPrior(theta)
	if math.IsInf(lp, 0) || math.IsNaN(lp) {
		return math.Inf(-1)
	}
	return lp + p.LogLikelihood(theta)
}
