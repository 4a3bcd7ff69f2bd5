package posterior

import (
	"math"

	"github.com/pkg/errors"

	"github.com/LiBuchauer/spatial-MP-discordances/model"
	"github.com/LiBuchauer/spatial-MP-discordances/rand"
)

// CredibleMasses are the credible masses reported per timepoint.
var CredibleMasses = []float64{0.68, 0.95}

// PredictiveResult is the terminal validation artifact for one gene.
type PredictiveResult struct {
	Gene   string
	Draws  int
	PValue float64 // Posterior-predictive p-value; far from 0.5 means misfit

	// HDIs[m][j] is the interval of mass CredibleMasses[m] over the
	// simulated-trajectory ensemble at timepoint j.
	HDIs [][]Interval

	// MAPTrajectory is the model trajectory at the MAP row, kept for
	// diagnostic output.
	MAPTrajectory []float64

	// ReferenceChi2 is the discrepancy between the MAP trajectory and the
	// independent ground-truth trajectory, when the record carries one.
	// NaN otherwise.
	ReferenceChi2 float64
}

// chi2 is the summed squared discrepancy between two trajectories under the
// given per-timepoint errors, with errors floored to stay usable divisors.
func chi2(a []float64, b []float64, errs []float64) float64 {
	sum := 0.0
	for i := range a {
		e := math.Max(errs[i], model.ErrorFloor)
		r := (a[i] - b[i]) / e
		sum += r * r
	}
	return sum
}

// Validate performs the posterior-predictive model check of Gelman et al.
// (1996): nDraws parameter vectors are drawn from the table uniformly
// without replacement, each is integrated to a simulated trajectory, a
// synthetic noisy replicate is generated from it, and the fraction of draws
// whose synthetic discrepancy exceeds the observed discrepancy is the
// p-value. Per-timepoint HDIs over the simulated ensemble come along for
// free. The result is deterministic given the generator's seed.
func Validate(table *FlatTable, prob *model.Problem, nDraws int, gen *rand.Generator) (*PredictiveResult, error) {
	if table == nil || table.Len() < 1 {
		return nil, errors.Errorf("No sample table to validate against")
	}
	if nDraws < 1 {
		return nil, errors.Errorf("Draw count must be >= 1, got %d", nDraws)
	}
	if nDraws > table.Len() {
		return nil, errors.Errorf("Can not draw %d of %d rows without replacement", nDraws, table.Len())
	}
	if gen == nil {
		return nil, errors.Errorf("No random generator supplied")
	}

	rec := prob.Rec

	idx, err := gen.Choice(table.Len(), nDraws)
	if err != nil {
		return nil, err
	}

	// Relative observation errors, propagated below onto each simulated
	// trajectory to mimic the empirical noise pattern.
	relErr := make([]float64, model.NumTimepoints)
	for i := range relErr {
		relErr[i] = rec.ProteinSEM[i] / math.Max(rec.Protein[i], model.ErrorFloor)
	}

	ensemble := make([][]float64, model.NumTimepoints)
	for j := range ensemble {
		ensemble[j] = make([]float64, 0, nDraws)
	}

	exceeded := 0
	predErr := make([]float64, model.NumTimepoints)
	drawn := make([]float64, model.NumTimepoints)

	for _, ind := range idx {
		theta := table.Samples[ind].Theta

		traj, err := prob.Trajectory(theta)
		if err != nil {
			return nil, errors.Wrapf(err, "Retained sample failed to integrate for gene %s", rec.ID)
		}

		chi2Obs := chi2(traj, rec.Protein, rec.ProteinSEM)

		for j, m := range traj {
			predErr[j] = math.Max(m*relErr[j], model.ErrorFloor)
			drawn[j] = math.Max(m+predErr[j]*gen.NormFloat64(), 0)
			ensemble[j] = append(ensemble[j], m)
		}

		chi2Pred := chi2(traj, drawn, predErr)
		if chi2Pred > chi2Obs {
			exceeded++
		}
	}

	res := &PredictiveResult{
		Gene:          rec.ID,
		Draws:         nDraws,
		PValue:        float64(exceeded) / float64(nDraws),
		HDIs:          make([][]Interval, len(CredibleMasses)),
		ReferenceChi2: math.NaN(),
	}

	for m, mass := range CredibleMasses {
		res.HDIs[m] = make([]Interval, model.NumTimepoints)
		for j := range res.HDIs[m] {
			iv, err := HDI(ensemble[j], mass)
			if err != nil {
				return nil, errors.Wrapf(err, "HDI failed at timepoint %d for gene %s", j, rec.ID)
			}
			res.HDIs[m][j] = iv
		}
	}

	mp, err := table.MAP()
	if err != nil {
		return nil, err
	}
	res.MAPTrajectory, err = prob.Trajectory(mp.Theta)
	if err != nil {
		return nil, errors.Wrapf(err, "MAP sample failed to integrate for gene %s", rec.ID)
	}

	if rec.Reference != nil {
		res.ReferenceChi2 = chi2(res.MAPTrajectory, rec.Reference, rec.ProteinSEM)
	}

	return res, nil
}
