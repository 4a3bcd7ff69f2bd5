package fit

import (
	"log"
	"math"

	"github.com/pkg/errors"

	"github.com/LiBuchauer/spatial-MP-discordances/model"
	"github.com/LiBuchauer/spatial-MP-discordances/posterior"
	"github.com/LiBuchauer/spatial-MP-discordances/rand"
	"github.com/LiBuchauer/spatial-MP-discordances/sampler"
)

// Result is everything a finished per-gene fit produces.
type Result struct {
	Gene             string
	Table            *posterior.FlatTable
	Summary          *posterior.Summary
	Predictive       *posterior.PredictiveResult
	Acceptance       float64 // Overall proposal acceptance fraction
	RecentAcceptance float64 // Acceptance over the trailing step window
	Drift            float64 // Log-posterior drift over the post-burn-in window
}

// startPoint derives the chain start for a gene: per-gene start values in
// log space when available, the prior-mode default otherwise, plus the
// first observed protein level for the free-initial-condition variant.
func startPoint(ctx *Context, cfg Config, rec *model.GeneRecord) []float64 {
	logBeta := DefaultStartLogBeta
	logDelta := DefaultStartLogDelta
	if sv, ok := ctx.Starts[rec.ID]; ok && sv.Beta0 > 0 && sv.Delta0 > 0 {
		logBeta = math.Log(sv.Beta0)
		logDelta = math.Log(sv.Delta0)
	}

	if cfg.Variant == model.FreeInit {
		return []float64{logBeta, logDelta, rec.Protein[0]}
	}
	return []float64{logBeta, logDelta}
}

// FitGene runs the full pipeline for one gene: jittered walker init,
// ensemble sampling, burn-in discard and thinning, point estimates, and the
// posterior-predictive check. All randomness comes from gen, so a fixed
// seed reproduces the fit exactly.
func FitGene(ctx *Context, cfg Config, gene string, gen *rand.Generator) (*Result, error) {
	if err := cfg.Check(); err != nil {
		return nil, errors.Wrap(err, "Invalid sampling policy")
	}
	if gen == nil {
		return nil, errors.Errorf("No random generator supplied")
	}

	prob, err := ctx.Problem(cfg, gene)
	if err != nil {
		return nil, errors.Wrapf(err, "Could not set up gene %s", gene)
	}

	pos, err := sampler.InitWalkers(startPoint(ctx, cfg, prob.Rec), cfg.Walkers, cfg.JitterScale, gen)
	if err != nil {
		return nil, errors.Wrapf(err, "Could not initialize walkers for gene %s", gene)
	}

	st, err := sampler.NewStretch(gen)
	if err != nil {
		return nil, err
	}

	chain, err := st.Run(pos, cfg.Steps, prob.LogProbability)
	if err != nil {
		return nil, errors.Wrapf(err, "Sampling failed for gene %s", gene)
	}

	table, err := posterior.Flatten(chain, cfg.Variant.ParamNames(), cfg.Discard, cfg.Thin)
	if err != nil {
		return nil, errors.Wrapf(err, "Could not flatten chain for gene %s", gene)
	}

	summary, err := posterior.Summarize(table)
	if err != nil {
		return nil, errors.Wrapf(err, "Could not summarize samples for gene %s", gene)
	}

	pred, err := posterior.Validate(table, prob, cfg.Draws, gen)
	if err != nil {
		return nil, errors.Wrapf(err, "Posterior-predictive check failed for gene %s", gene)
	}

	drift, err := chain.Drift(cfg.Steps - cfg.Discard)
	if err != nil {
		return nil, errors.Wrapf(err, "Drift check failed for gene %s", gene)
	}

	return &Result{
		Gene:             gene,
		Table:            table,
		Summary:          summary,
		Predictive:       pred,
		Acceptance:       st.AcceptanceRate(),
		RecentAcceptance: st.RecentAcceptance(),
		Drift:            drift,
	}, nil
}

// BatchReport records which genes of a batch finished and which failed.
type BatchReport struct {
	Fitted []string
	Failed map[string]error
}

// Batch fits the given genes sequentially against one shared context. A
// failing gene is recorded and skipped; it never aborts the neighbors.
// Finished results are exported to resultsDir right away so a later failure
// can not corrupt completed output. onGene, when non-nil, is called after
// every attempted gene for progress reporting.
func Batch(ctx *Context, cfg Config, genes []string, gen *rand.Generator, resultsDir string, out *log.Logger, onGene func(gene string, res *Result, err error)) (*BatchReport, error) {
	if err := ctx.Check(); err != nil {
		return nil, errors.Wrap(err, "Invalid batch context")
	}
	if err := cfg.Check(); err != nil {
		return nil, errors.Wrap(err, "Invalid sampling policy")
	}
	if len(genes) < 1 {
		genes = ctx.GeneIDs()
	}

	report := &BatchReport{
		Fitted: make([]string, 0, len(genes)),
		Failed: make(map[string]error),
	}

	for _, gene := range genes {
		res, err := FitGene(ctx, cfg, gene, gen)
		if err == nil {
			err = WriteGeneResults(resultsDir, res)
		}

		if err != nil {
			report.Failed[gene] = err
			if out != nil {
				out.Printf("Gene %s FAILED: %v\n", gene, err)
			}
		} else {
			report.Fitted = append(report.Fitted, gene)
			if out != nil {
				out.Printf("Gene %s done: half-life %.3f h, pval %.3f, acceptance %.2f (recent %.2f), drift %.3f\n",
					gene, res.Summary.HalfLife, res.Predictive.PValue, res.Acceptance, res.RecentAcceptance, res.Drift)
			}
		}

		if onGene != nil {
			onGene(gene, res, err)
		}
	}

	return report, nil
}
