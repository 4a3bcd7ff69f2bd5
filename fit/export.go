package fit

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pkg/errors"

	"github.com/LiBuchauer/spatial-MP-discordances/posterior"
)

// formatFloat writes the shortest round-trippable decimal form.
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// ExportChainCSV writes the flattened sample table: a row index column,
// one column per parameter, and the recorded log posterior.
func ExportChainCSV(w io.Writer, table *posterior.FlatTable) error {
	cw := csv.NewWriter(w)

	header := append([]string{""}, table.Names...)
	header = append(header, "log_prob")
	if err := cw.Write(header); err != nil {
		return errors.Wrap(err, "Could not write chain header")
	}

	row := make([]string, 0, len(header))
	for i, fs := range table.Samples {
		row = row[:0]
		row = append(row, strconv.Itoa(i))
		for _, v := range fs.Theta {
			row = append(row, formatFloat(v))
		}
		row = append(row, formatFloat(fs.LogProb))
		if err := cw.Write(row); err != nil {
			return errors.Wrapf(err, "Could not write chain row %d", i)
		}
	}

	cw.Flush()
	return errors.Wrap(cw.Error(), "Could not flush chain csv")
}

// ExportPredictiveCSV writes the posterior-predictive record in the
// key/value layout downstream tooling expects: one
// model_HDI<mass>_<side>_tp<N> row per interval bound, then pp_pval.
func ExportPredictiveCSV(w io.Writer, res *posterior.PredictiveResult) error {
	cw := csv.NewWriter(w)

	if err := cw.Write([]string{"", "value"}); err != nil {
		return errors.Wrap(err, "Could not write predictive header")
	}

	for m, mass := range posterior.CredibleMasses {
		for j, iv := range res.HDIs[m] {
			left := fmt.Sprintf("model_HDI%g_left_tp%d", mass, j+1)
			right := fmt.Sprintf("model_HDI%g_right_tp%d", mass, j+1)
			if err := cw.Write([]string{left, formatFloat(iv.Min)}); err != nil {
				return errors.Wrap(err, "Could not write HDI row")
			}
			if err := cw.Write([]string{right, formatFloat(iv.Max)}); err != nil {
				return errors.Wrap(err, "Could not write HDI row")
			}
		}
	}

	if err := cw.Write([]string{"pp_pval", formatFloat(res.PValue)}); err != nil {
		return errors.Wrap(err, "Could not write p-value row")
	}

	cw.Flush()
	return errors.Wrap(cw.Error(), "Could not flush predictive csv")
}

// WriteGeneResults exports one finished fit into resultsDir using the
// per-gene artifact names the downstream analysis consumes.
func WriteGeneResults(dir string, res *Result) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrapf(err, "Could not create results dir %s", dir)
	}

	chainPath := filepath.Join(dir, fmt.Sprintf("%s_chain_sample.csv", res.Gene))
	f, err := os.Create(chainPath)
	if err != nil {
		return errors.Wrapf(err, "Could not create %s", chainPath)
	}
	if err := ExportChainCSV(f, res.Table); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return errors.Wrapf(err, "Could not close %s", chainPath)
	}

	predPath := filepath.Join(dir, fmt.Sprintf("%s_posterior_predictive_results.csv", res.Gene))
	f, err = os.Create(predPath)
	if err != nil {
		return errors.Wrapf(err, "Could not create %s", predPath)
	}
	if err := ExportPredictiveCSV(f, res.Predictive); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return errors.Wrapf(err, "Could not close %s", predPath)
	}

	return nil
}
