package posterior

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/LiBuchauer/spatial-MP-discordances/model"
	"github.com/LiBuchauer/spatial-MP-discordances/ode"
	"github.com/LiBuchauer/spatial-MP-discordances/rand"
	"github.com/LiBuchauer/spatial-MP-discordances/sampler"
)

// predictiveFixture fits nothing: it builds a problem whose steady state is
// protein == 2 under constant mRNA, plus a synthetic sample table scattered
// around the true rates.
func predictiveFixture(t *testing.T, variant model.Variant) (*model.Problem, *FlatTable) {
	t.Helper()
	assert := assert.New(t)

	rec := &model.GeneRecord{
		ID:         "GeneA",
		MRNA:       []float64{1, 1, 1, 1, 1, 1},
		Protein:    []float64{2, 2, 2, 2, 2, 2},
		ProteinSEM: []float64{0.2, 0.2, 0.2, 0.2, 0.2, 0.2},
	}
	if variant.NeedsReference() {
		rec.Reference = []float64{2, 2, 2, 2, 2, 2}
	}

	b, err := model.NewGammaPrior(2, -20, 8)
	assert.NoError(err)
	d, err := model.NewGammaPrior(2, -20, 8)
	assert.NoError(err)
	priors := &model.PriorSpec{LogBeta: b, LogDelta: d}

	// Fixed-init variants start at the observed plateau
	prob, err := model.NewProblem(variant, rec, model.Constant(1.0), nil, priors, 2.0, ode.NewRK4())
	assert.NoError(err)

	gen, err := rand.NewGenerator(5)
	assert.NoError(err)

	dim := variant.Dim()
	rows := make([]sampler.FlatSample, 200)
	for i := range rows {
		theta := make([]float64, dim)
		theta[0] = math.Log(0.1) + 0.05*gen.NormFloat64()
		theta[1] = math.Log(0.05) + 0.05*gen.NormFloat64()
		if dim == 3 {
			theta[2] = 2.0 + 0.05*gen.NormFloat64()
		}
		rows[i] = sampler.FlatSample{Theta: theta, LogProb: prob.LogProbability(theta)}
	}

	return prob, &FlatTable{Names: variant.ParamNames(), Samples: rows}
}

func TestValidate(t *testing.T) {
	assert := assert.New(t)

	prob, tab := predictiveFixture(t, model.FixedInitDecay)

	gen, err := rand.NewGenerator(11)
	assert.NoError(err)

	res, err := Validate(tab, prob, 100, gen)
	assert.NoError(err)

	assert.Equal("GeneA", res.Gene)
	assert.Equal(100, res.Draws)
	assert.True(res.PValue >= 0.0 && res.PValue <= 1.0)

	// The synthetic table sits on the truth, so the model should not look
	// decisively inadequate in either tail
	assert.True(res.PValue > 0.02 && res.PValue < 0.99, "p-value %v", res.PValue)

	assert.Len(res.HDIs, len(CredibleMasses))
	for m := range res.HDIs {
		assert.Len(res.HDIs[m], model.NumTimepoints)
		for j, iv := range res.HDIs[m] {
			assert.True(iv.Min <= iv.Max, "mass %d tp %d", m, j)
		}
		// Trajectories hover near the plateau at 2
		assert.True(res.HDIs[m][model.NumTimepoints-1].Min > 1.0)
		assert.True(res.HDIs[m][model.NumTimepoints-1].Max < 3.0)
	}

	// 95% interval contains the 68% one
	for j := 0; j < model.NumTimepoints; j++ {
		assert.True(res.HDIs[1][j].Min <= res.HDIs[0][j].Min)
		assert.True(res.HDIs[1][j].Max >= res.HDIs[0][j].Max)
	}

	assert.Len(res.MAPTrajectory, model.NumTimepoints)
	assert.True(math.IsNaN(res.ReferenceChi2))
}

func TestValidateReferenceComparison(t *testing.T) {
	assert := assert.New(t)

	prob, tab := predictiveFixture(t, model.FixedInitReference)

	gen, err := rand.NewGenerator(11)
	assert.NoError(err)

	res, err := Validate(tab, prob, 50, gen)
	assert.NoError(err)
	assert.False(math.IsNaN(res.ReferenceChi2))
	assert.True(res.ReferenceChi2 >= 0.0)
}

func TestValidateDeterminism(t *testing.T) {
	assert := assert.New(t)

	prob, tab := predictiveFixture(t, model.FreeInit)

	run := func(seed int64) *PredictiveResult {
		gen, err := rand.NewGenerator(seed)
		assert.NoError(err)
		res, err := Validate(tab, prob, 80, gen)
		assert.NoError(err)
		return res
	}

	a := run(21)
	b := run(21)
	assert.Equal(a.PValue, b.PValue)
	assert.Equal(a.HDIs, b.HDIs)
	assert.Equal(a.MAPTrajectory, b.MAPTrajectory)
}

func TestValidateBadArgs(t *testing.T) {
	assert := assert.New(t)

	prob, tab := predictiveFixture(t, model.FixedInitDecay)

	gen, err := rand.NewGenerator(1)
	assert.NoError(err)

	_, err = Validate(nil, prob, 10, gen)
	assert.Error(err)

	_, err = Validate(tab, prob, 0, gen)
	assert.Error(err)

	// Without replacement caps draws at the row count
	_, err = Validate(tab, prob, tab.Len()+1, gen)
	assert.Error(err)

	_, err = Validate(tab, prob, 10, nil)
	assert.Error(err)

	// Single draw still yields a p-value in range
	res, err := Validate(tab, prob, 1, gen)
	assert.NoError(err)
	assert.True(res.PValue == 0.0 || res.PValue == 1.0)
}
