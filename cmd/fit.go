package cmd

import (
	"log"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/LiBuchauer/spatial-MP-discordances/fit"
	"github.com/LiBuchauer/spatial-MP-discordances/rand"
)

var fitCmd = &cobra.Command{
	Use:   "fit [genes...]",
	Short: "Fit the kinetic model to the named genes (or every gene in the data folder)",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := sp.Setup(); err != nil {
			return err
		}
		return FitGenes(sp, args)
	},
}

// FitGenes loads the shared context and fits the requested genes
// sequentially, exporting each finished gene's tables before moving on.
func FitGenes(sp *startupParams, genes []string) error {
	cfg := sp.Policy()
	sp.Report(cfg)

	ctx, err := fit.LoadContext(sp.dataDir, sp.variant)
	if err != nil {
		return errors.Wrapf(err, "Could not load data folder %s", sp.dataDir)
	}
	sp.out.Printf("Loaded %d genes from %s\n", len(ctx.GeneIDs()), sp.dataDir)

	gen, err := rand.NewGenerator(sp.randomSeed)
	if err != nil {
		return err
	}

	var mon *monitor
	var onGene func(gene string, res *fit.Result, err error)
	if sp.monitor {
		mon = &monitor{}
		if err := mon.Start(sp.monitorAddr); err != nil {
			return err
		}
		defer mon.Stop()

		if len(genes) > 0 {
			mon.Genes.Set(int64(len(genes)))
		} else {
			mon.Genes.Set(int64(len(ctx.GeneIDs())))
		}
		startTime := time.Now()
		onGene = func(gene string, res *fit.Result, err error) {
			mon.CurrentGene.Set(gene)
			mon.RunTime.Set(time.Since(startTime).Seconds())
			if err != nil {
				mon.Failed.Add(1)
				return
			}
			mon.Fitted.Add(1)
			mon.LastHalfLife.Set(res.Summary.HalfLife)
			mon.LastPValue.Set(res.Predictive.PValue)
			mon.LastAcceptance.Set(res.Acceptance)
			mon.LastRecentAcceptance.Set(res.RecentAcceptance)
			mon.LastDrift.Set(res.Drift)
		}
	}

	// Per-gene lines go to the console only in verbose mode, but always
	// land in the trace file
	var batchOut *log.Logger
	if sp.verbose {
		batchOut = sp.out
	} else {
		batchOut = sp.trace
	}

	report, err := fit.Batch(ctx, cfg, genes, gen, sp.resultsDir, batchOut, onGene)
	if err != nil {
		return err
	}

	sp.out.Printf("Fitted %d genes, %d failed\n", len(report.Fitted), len(report.Failed))
	for gene, ferr := range report.Failed {
		sp.out.Printf("  %s: %v\n", gene, ferr)
	}

	if len(report.Fitted) < 1 {
		return errors.Errorf("No gene could be fitted")
	}
	return nil
}
