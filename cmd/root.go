package cmd

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/LiBuchauer/spatial-MP-discordances/fit"
	"github.com/LiBuchauer/spatial-MP-discordances/model"
)

// startupParams carries everything parsed from the command line plus the
// loggers the subcommands write to.
type startupParams struct {
	dataDir     string
	resultsDir  string
	variantName string
	randomSeed  int64

	walkers int
	steps   int
	discard int
	thin    int
	draws   int

	fixedInit float64

	monitor     bool
	monitorAddr string

	verbose   bool
	traceFile string

	variant model.Variant
	out     *log.Logger
	trace   *log.Logger
}

var sp = &startupParams{}

// Setup finalizes the startup parameters after flag parsing: variant name
// resolution and logger creation. Must be called before any work is done.
func (sp *startupParams) Setup() error {
	v, err := model.ParseVariant(sp.variantName)
	if err != nil {
		return err
	}
	sp.variant = v

	sp.out = log.New(os.Stdout, "", 0)

	if len(sp.traceFile) > 0 {
		f, err := os.Create(sp.traceFile)
		if err != nil {
			return errors.Wrapf(err, "Could not create trace file %s", sp.traceFile)
		}
		sp.trace = log.New(f, "", 0)
	} else {
		sp.trace = log.New(io.Discard, "", 0)
	}

	return nil
}

// Policy builds the sampling policy for the selected variant: the lighter
// power-analysis schedule for the reference-comparison variant, the full
// production schedule otherwise. Any flag set to a positive value overrides
// the schedule default.
func (sp *startupParams) Policy() fit.Config {
	var cfg fit.Config
	if sp.variant == model.FixedInitReference {
		cfg = fit.PowerConfig()
	} else {
		cfg = fit.DefaultConfig(sp.variant)
	}

	if sp.walkers > 0 {
		cfg.Walkers = sp.walkers
	}
	if sp.steps > 0 {
		cfg.Steps = sp.steps
	}
	if sp.discard > 0 {
		cfg.Discard = sp.discard
	}
	if sp.thin > 0 {
		cfg.Thin = sp.thin
	}
	if sp.draws > 0 {
		cfg.Draws = sp.draws
	}
	if sp.fixedInit > 0 {
		cfg.FixedInit = sp.fixedInit
	}

	return cfg
}

// Report writes the run parameters to both the console and the trace file.
func (sp *startupParams) Report(cfg fit.Config) {
	for _, target := range []*log.Logger{sp.out, sp.trace} {
		target.Printf("Data:      %s\n", sp.dataDir)
		target.Printf("Results:   %s\n", sp.resultsDir)
		target.Printf("Variant:   %s\n", sp.variant)
		target.Printf("Rnd Seed:  %d\n", sp.randomSeed)
		target.Printf("Policy:    %d walkers x %d steps, discard %d, thin %d, %d draws\n",
			cfg.Walkers, cfg.Steps, cfg.Discard, cfg.Thin, cfg.Draws)
	}
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "dynge",
	Short: "Bayesian protein synthesis/degradation rate estimation",
	Long: `dynge fits a first-order protein production and decay model to
time-resolved mRNA and protein measurements, one gene at a time, with an
affine-invariant ensemble sampler. Among other features:

  - Three model variants (free or fixed initial protein level, with an
    optional reference-rate comparison)
  - Posterior medians, MAP estimates, protein half-lives
  - Posterior-predictive p-values and 68%/95% credible trajectory bands
  - Cluster job-file generation for large gene panels
`,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Usage()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	rootCmd.PersistentFlags().StringVarP(&sp.dataDir, "data", "d", "", "Folder with the processed input tables")
	rootCmd.PersistentFlags().StringVarP(&sp.resultsDir, "results", "o", "results", "Folder for per-gene output tables")
	rootCmd.PersistentFlags().StringVarP(&sp.variantName, "variant", "m", "free-init", "Model variant (free-init, fixed-init-decay, fixed-init-reference)")
	rootCmd.PersistentFlags().Int64VarP(&sp.randomSeed, "seed", "r", 1, "Random seed to use")

	rootCmd.PersistentFlags().IntVar(&sp.walkers, "walkers", 0, "Override ensemble walker count")
	rootCmd.PersistentFlags().IntVar(&sp.steps, "steps", 0, "Override ensemble step count")
	rootCmd.PersistentFlags().IntVar(&sp.discard, "discard", 0, "Override burn-in discard")
	rootCmd.PersistentFlags().IntVar(&sp.thin, "thin", 0, "Override thinning stride")
	rootCmd.PersistentFlags().IntVar(&sp.draws, "draws", 0, "Override posterior-predictive draw count")
	rootCmd.PersistentFlags().Float64Var(&sp.fixedInit, "fixed-init", 0, "Override initial protein level for fixed-init variants")

	rootCmd.PersistentFlags().BoolVar(&sp.monitor, "monitor", false, "Serve batch progress over HTTP while fitting")
	rootCmd.PersistentFlags().StringVar(&sp.monitorAddr, "monitor-addr", ":8000", "Listen address for the progress monitor")

	rootCmd.PersistentFlags().BoolVarP(&sp.verbose, "verbose", "v", false, "Verbose logging (default is much more parsimonious)")
	rootCmd.PersistentFlags().StringVarP(&sp.traceFile, "trace", "t", "", "Trace file for per-gene fit details")

	rootCmd.MarkPersistentFlagRequired("data")

	rootCmd.AddCommand(fitCmd)
	rootCmd.AddCommand(jobsCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
