package fit

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pkg/errors"

	"github.com/LiBuchauer/spatial-MP-discordances/model"
	"github.com/LiBuchauer/spatial-MP-discordances/ode"
)

// File names inside a processed-data folder. They follow the upstream data
// pipeline's artifact names; the pickled interpolant and decay-function
// objects are replaced by CSV observations re-interpolated at load time.
const (
	MRNAFile       = "M_data_sc_based_scaled.csv"
	ProteinFile    = "P_data_vol_corrected_scaled.csv"
	SEMFile        = "Psem_data_vol_corrected_scaled.csv"
	ReferenceFile  = "Pmodel_data_vol_corrected_scaled.csv"
	BetaPriorFile  = "log_beta_gamma_fit.csv"
	DeltaPriorFile = "log_delta_gamma_fit.csv"
	StartValueFile = "beta_delta_start_values.csv"
	EfficiencyFile = "TE_decay_norm.csv"
)

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "Could not READ %s", path)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, errors.Wrapf(err, "Could not PARSE %s", path)
	}
	if len(rows) < 2 {
		return nil, errors.Errorf("File %s has no data rows", path)
	}

	return rows[1:], nil // drop the header
}

func parseFloats(fields []string, path string) ([]float64, error) {
	vals := make([]float64, len(fields))
	for i, s := range fields {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "Bad number %q in %s", s, path)
		}
		vals[i] = v
	}
	return vals, nil
}

// readWideTable reads a gene-indexed table: one row per gene, identifier
// first, then the per-timepoint values.
func readWideTable(path string) (map[string][]float64, error) {
	rows, err := readCSV(path)
	if err != nil {
		return nil, err
	}

	out := make(map[string][]float64, len(rows))
	for _, row := range rows {
		if len(row) != model.NumTimepoints+1 {
			return nil, errors.Errorf("Row for %q in %s has %d values, need %d", row[0], path, len(row)-1, model.NumTimepoints)
		}
		vals, err := parseFloats(row[1:], path)
		if err != nil {
			return nil, err
		}
		if _, dup := out[row[0]]; dup {
			return nil, errors.Errorf("Duplicate gene %q in %s", row[0], path)
		}
		out[row[0]] = vals
	}

	return out, nil
}

// readGammaFit reads a fitted prior parameter file: key/value rows for the
// shape (a), location and scale of the gamma density.
func readGammaFit(path string) (*model.GammaPrior, error) {
	rows, err := readCSV(path)
	if err != nil {
		return nil, err
	}

	params := make(map[string]float64)
	for _, row := range rows {
		if len(row) != 2 {
			return nil, errors.Errorf("Bad parameter row in %s: %v", path, row)
		}
		v, err := strconv.ParseFloat(row[1], 64)
		if err != nil {
			return nil, errors.Wrapf(err, "Bad number %q in %s", row[1], path)
		}
		params[row[0]] = v
	}

	for _, key := range []string{"a", "loc", "scale"} {
		if _, ok := params[key]; !ok {
			return nil, errors.Errorf("File %s is missing gamma parameter %q", path, key)
		}
	}

	return model.NewGammaPrior(params["a"], params["loc"], params["scale"])
}

// readStartValues reads optional per-gene chain seeds (beta_0, delta_0).
func readStartValues(path string) (map[string]StartValue, error) {
	rows, err := readCSV(path)
	if err != nil {
		return nil, err
	}

	out := make(map[string]StartValue, len(rows))
	for _, row := range rows {
		if len(row) != 3 {
			return nil, errors.Errorf("Bad start-value row in %s: %v", path, row)
		}
		vals, err := parseFloats(row[1:], path)
		if err != nil {
			return nil, err
		}
		out[row[0]] = StartValue{Beta0: vals[0], Delta0: vals[1]}
	}

	return out, nil
}

// readEfficiency reads the normalized translation-efficiency decay curve as
// (time, value) rows and interpolates it.
func readEfficiency(path string) (model.DrivingSignal, error) {
	rows, err := readCSV(path)
	if err != nil {
		return nil, err
	}

	ts := make([]float64, 0, len(rows))
	vals := make([]float64, 0, len(rows))
	for _, row := range rows {
		if len(row) != 2 {
			return nil, errors.Errorf("Bad efficiency row in %s: %v", path, row)
		}
		pair, err := parseFloats(row, path)
		if err != nil {
			return nil, err
		}
		ts = append(ts, pair[0])
		vals = append(vals, pair[1])
	}

	return model.NewInterp(ts, vals)
}

// LoadContext builds the shared batch context from a processed-data folder.
// The reference table is required only by the power-analysis variant; start
// values and the efficiency curve are picked up when present.
func LoadContext(folder string, variant model.Variant) (*Context, error) {
	mrna, err := readWideTable(filepath.Join(folder, MRNAFile))
	if err != nil {
		return nil, err
	}
	protein, err := readWideTable(filepath.Join(folder, ProteinFile))
	if err != nil {
		return nil, err
	}
	sem, err := readWideTable(filepath.Join(folder, SEMFile))
	if err != nil {
		return nil, err
	}

	var reference map[string][]float64
	if variant.NeedsReference() {
		reference, err = readWideTable(filepath.Join(folder, ReferenceFile))
		if err != nil {
			return nil, err
		}
	}

	betaPrior, err := readGammaFit(filepath.Join(folder, BetaPriorFile))
	if err != nil {
		return nil, err
	}
	deltaPrior, err := readGammaFit(filepath.Join(folder, DeltaPriorFile))
	if err != nil {
		return nil, err
	}

	ctx := &Context{
		Genes:   make(map[string]*model.GeneRecord, len(protein)),
		Signals: make(map[string]model.DrivingSignal, len(protein)),
		Priors:  &model.PriorSpec{LogBeta: betaPrior, LogDelta: deltaPrior},
		Solver:  ode.NewRK4(),
	}

	for id, pvals := range protein {
		mvals, ok := mrna[id]
		if !ok {
			return nil, errors.Errorf("Gene %s has protein data but no mRNA data", id)
		}
		svals, ok := sem[id]
		if !ok {
			return nil, errors.Errorf("Gene %s has protein data but no SEM data", id)
		}

		rec := &model.GeneRecord{
			ID:         id,
			MRNA:       mvals,
			Protein:    pvals,
			ProteinSEM: svals,
		}
		if reference != nil {
			rvals, ok := reference[id]
			if !ok {
				return nil, errors.Errorf("Gene %s has no reference trajectory", id)
			}
			rec.Reference = rvals
		}

		sig, err := model.NewGridInterp(mvals)
		if err != nil {
			return nil, errors.Wrapf(err, "Could not interpolate mRNA for gene %s", id)
		}

		ctx.Genes[id] = rec
		ctx.Signals[id] = sig
	}

	svPath := filepath.Join(folder, StartValueFile)
	if _, err := os.Stat(svPath); err == nil {
		ctx.Starts, err = readStartValues(svPath)
		if err != nil {
			return nil, err
		}
	}

	effPath := filepath.Join(folder, EfficiencyFile)
	if _, err := os.Stat(effPath); err == nil {
		ctx.Efficiency, err = readEfficiency(effPath)
		if err != nil {
			return nil, err
		}
	}

	if err := ctx.Check(); err != nil {
		return nil, errors.Wrap(err, "Loaded context is not valid")
	}

	return ctx, nil
}
