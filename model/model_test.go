package model

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/LiBuchauer/spatial-MP-discordances/ode"
)

func TestTimeGrid(t *testing.T) {
	assert := assert.New(t)

	ts := TimeGrid()
	assert.Equal([]float64{0, 19.2, 38.4, 57.6, 76.8, 96}, ts)
}

func TestGeneRecordCheck(t *testing.T) {
	assert := assert.New(t)

	six := []float64{1, 2, 3, 4, 5, 6}

	rec := &GeneRecord{ID: "GeneA", MRNA: six, Protein: six, ProteinSEM: six}
	assert.NoError(rec.Check())

	rec = &GeneRecord{MRNA: six, Protein: six, ProteinSEM: six}
	assert.Error(rec.Check())

	rec = &GeneRecord{ID: "GeneA", MRNA: six[:5], Protein: six, ProteinSEM: six}
	assert.Error(rec.Check())

	bad := []float64{1, 2, math.NaN(), 4, 5, 6}
	rec = &GeneRecord{ID: "GeneA", MRNA: six, Protein: bad, ProteinSEM: six}
	assert.Error(rec.Check())

	rec = &GeneRecord{ID: "GeneA", MRNA: six, Protein: six, ProteinSEM: six, Reference: six[:3]}
	assert.Error(rec.Check())
}

func TestInterp(t *testing.T) {
	assert := assert.New(t)

	vals := []float64{0, 19.2, 38.4, 57.6, 76.8, 96}
	it, err := NewGridInterp(vals)
	assert.NoError(err)

	// Identity through the grid points and linear in between
	assert.InDelta(38.4, it.Eval(38.4), 1e-9)
	assert.InDelta(10.0, it.Eval(10.0), 1e-9)
	assert.InDelta(50.0, it.Eval(50.0), 1e-9)

	_, err = NewGridInterp(vals[:4])
	assert.Error(err)
}

func TestVariant(t *testing.T) {
	assert := assert.New(t)

	assert.Equal(3, FreeInit.Dim())
	assert.Equal(2, FixedInitDecay.Dim())
	assert.Equal(2, FixedInitReference.Dim())

	assert.Equal([]string{"log_beta", "log_delta", "Pzero"}, FreeInit.ParamNames())
	assert.Equal([]string{"log_beta", "log_delta"}, FixedInitReference.ParamNames())

	for _, v := range []Variant{FreeInit, FixedInitDecay, FixedInitReference} {
		parsed, err := ParseVariant(v.String())
		assert.NoError(err)
		assert.Equal(v, parsed)
	}
	_, err := ParseVariant("nope")
	assert.Error(err)

	theta := Theta{1, 2, 12345}
	assert.InDelta(12345.0, FreeInit.InitialCondition(theta, 7, 10000), 1e-9)
	assert.InDelta(10000.0, FixedInitDecay.InitialCondition(theta[:2], 7, 10000), 1e-9)
	assert.InDelta(7.0, FixedInitDecay.InitialCondition(theta[:2], 7, 0), 1e-9)
}

func TestGammaPrior(t *testing.T) {
	assert := assert.New(t)

	_, err := NewGammaPrior(0, 0, 1)
	assert.Error(err)
	_, err = NewGammaPrior(1, 0, 0)
	assert.Error(err)

	// Shape 1, loc 0, scale 1 is a standard exponential
	g, err := NewGammaPrior(1, 0, 1)
	assert.NoError(err)
	assert.InDelta(1.0, g.Density(0.0), 1e-9)
	assert.InDelta(math.Exp(-2.0), g.Density(2.0), 1e-9)
	assert.InDelta(0.0, g.Density(-1.0), 1e-12)

	// Location shifts, scale stretches
	g, err = NewGammaPrior(1, -5, 2)
	assert.NoError(err)
	assert.InDelta(0.5, g.Density(-5.0), 1e-9)
	assert.InDelta(0.5*math.Exp(-1.0), g.Density(-3.0), 1e-9)

	// Support boundary across the shape regimes
	g, err = NewGammaPrior(2, 0, 1)
	assert.NoError(err)
	assert.InDelta(0.0, g.Density(0.0), 1e-12)
	g, err = NewGammaPrior(0.5, 0, 1)
	assert.NoError(err)
	assert.True(math.IsInf(g.Density(0.0), 1))
}

// widePriors is a prior spec loose enough to be effectively flat around
// typical log-rate values.
func widePriors(t *testing.T) *PriorSpec {
	t.Helper()
	b, err := NewGammaPrior(2, -20, 8)
	assert.NoError(t, err)
	d, err := NewGammaPrior(2, -20, 8)
	assert.NoError(t, err)
	return &PriorSpec{LogBeta: b, LogDelta: d}
}

func testProblem(t *testing.T, v Variant) *Problem {
	t.Helper()

	rec := &GeneRecord{
		ID:         "GeneA",
		MRNA:       []float64{1, 1, 1, 1, 1, 1},
		Protein:    []float64{2, 2, 2, 2, 2, 2},
		ProteinSEM: []float64{0.1, 0.1, 0.1, 0.1, 0.1, 0.1},
	}
	if v.NeedsReference() {
		rec.Reference = rec.Protein
	}

	prob, err := NewProblem(v, rec, Constant(1.0), nil, widePriors(t), 10000, ode.NewRK4())
	assert.NoError(t, err)
	return prob
}

func TestLogPrior(t *testing.T) {
	assert := assert.New(t)

	prob := testProblem(t, FreeInit)

	// In-range theta: finite and equal to the sum of component log densities
	theta := Theta{-2.3, -3.0, 1000.0}
	lp := prob.LogPrior(theta)
	assert.False(math.IsInf(lp, 0))

	exp := math.Log(prob.Priors.LogBeta.Density(theta[0])) +
		math.Log(prob.Priors.LogDelta.Density(theta[1])) +
		math.Log(1.0/PzeroMax)
	assert.InDelta(exp, lp, 1e-12)

	// Out-of-range initial condition: exactly -Inf
	assert.True(math.IsInf(prob.LogPrior(Theta{-2.3, -3.0, -1.0}), -1))
	assert.True(math.IsInf(prob.LogPrior(Theta{-2.3, -3.0, 3e8}), -1))
	// Boundary: 0 is inside, PzeroMax is not
	assert.False(math.IsInf(prob.LogPrior(Theta{-2.3, -3.0, 0.0}), -1))

	// A rate value far outside the gamma support trips the density floor
	assert.True(math.IsInf(prob.LogPrior(Theta{-100.0, -3.0, 1000.0}), -1))
	assert.True(math.IsInf(prob.LogPrior(Theta{-2.3, 500.0, 1000.0}), -1))
}

// trippedSignal fails the test if the forward model is ever evaluated.
type trippedSignal struct {
	t *testing.T
}

func (s trippedSignal) Eval(t float64) float64 {
	s.t.Fatalf("Driving signal evaluated during a prior rejection")
	return 0
}

func TestLogProbabilityShortCircuit(t *testing.T) {
	assert := assert.New(t)

	prob := testProblem(t, FreeInit)
	prob.MRNA = trippedSignal{t}

	// Prior is -Inf, so no integration may happen
	lp := prob.LogProbability(Theta{-2.3, -3.0, -5.0})
	assert.True(math.IsInf(lp, -1))
}

func TestLogProbabilityFinite(t *testing.T) {
	assert := assert.New(t)

	prob := testProblem(t, FixedInitDecay)
	prob.FixedInit = 2.0 // start at the observed plateau

	theta := Theta{math.Log(0.1), math.Log(0.05)}
	lp := prob.LogProbability(theta)
	assert.False(math.IsInf(lp, 0))
	assert.False(math.IsNaN(lp))
	assert.InDelta(prob.LogPrior(theta)+prob.LogLikelihood(theta), lp, 1e-12)
}

func TestPureDecayTrajectory(t *testing.T) {
	assert := assert.New(t)

	prob := testProblem(t, FreeInit)

	// beta = exp(-1000) ~ 0: strictly decreasing toward zero from any
	// positive start
	theta := Theta{-1000.0, math.Log(0.05), 500.0}
	traj, err := prob.Trajectory(theta)
	assert.NoError(err)
	assert.Len(traj, NumTimepoints)

	assert.InDelta(500.0, traj[0], 1e-9)
	for i := 1; i < len(traj); i++ {
		assert.True(traj[i] < traj[i-1], "Trajectory not decreasing at %d: %v", i, traj)
		assert.True(traj[i] > 0)
	}

	// And it matches the analytic exponential
	for i, tm := range TimeGrid() {
		assert.InDelta(500.0*math.Exp(-0.05*tm), traj[i], 1e-4)
	}
}

func TestEfficiencyFactor(t *testing.T) {
	assert := assert.New(t)

	prob := testProblem(t, FixedInitDecay)
	prob.FixedInit = 0.0 // fall back to first observed protein value

	theta := Theta{math.Log(0.1), math.Log(0.05)}
	plain, err := prob.Trajectory(theta)
	assert.NoError(err)

	// A vanishing efficiency factor turns off production entirely
	prob.Efficiency = Constant(0.0)
	decayOnly, err := prob.Trajectory(theta)
	assert.NoError(err)

	for i := 1; i < NumTimepoints; i++ {
		assert.True(decayOnly[i] < plain[i])
		assert.True(decayOnly[i] < decayOnly[i-1])
	}

	// Identity efficiency reproduces the plain trajectory
	prob.Efficiency = Constant(1.0)
	same, err := prob.Trajectory(theta)
	assert.NoError(err)
	for i := range same {
		assert.InDelta(plain[i], same[i], 1e-12)
	}
}

func TestNewProblemValidation(t *testing.T) {
	assert := assert.New(t)

	rec := &GeneRecord{
		ID:         "GeneA",
		MRNA:       []float64{1, 1, 1, 1, 1, 1},
		Protein:    []float64{2, 2, 2, 2, 2, 2},
		ProteinSEM: []float64{0.1, 0.1, 0.1, 0.1, 0.1, 0.1},
	}
	priors := widePriors(t)

	_, err := NewProblem(FreeInit, nil, Constant(1), nil, priors, 0, ode.NewRK4())
	assert.Error(err)

	_, err = NewProblem(FreeInit, rec, nil, nil, priors, 0, ode.NewRK4())
	assert.Error(err)

	_, err = NewProblem(FreeInit, rec, Constant(1), nil, nil, 0, ode.NewRK4())
	assert.Error(err)

	_, err = NewProblem(FreeInit, rec, Constant(1), nil, &PriorSpec{}, 0, ode.NewRK4())
	assert.Error(err)

	_, err = NewProblem(FreeInit, rec, Constant(1), nil, priors, 0, nil)
	assert.Error(err)

	// Reference required for the power-analysis variant
	_, err = NewProblem(FixedInitReference, rec, Constant(1), nil, priors, 10000, ode.NewRK4())
	assert.Error(err)

	rec.Reference = rec.Protein
	_, err = NewProblem(FixedInitReference, rec, Constant(1), nil, priors, 10000, ode.NewRK4())
	assert.NoError(err)
}
