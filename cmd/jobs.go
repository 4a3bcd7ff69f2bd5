package cmd

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/LiBuchauer/spatial-MP-discordances/fit"
)

var jobsDir string
var jobsBatchSize int
var jobsCommand string

var jobsCmd = &cobra.Command{
	Use:   "jobs [genes...]",
	Short: "Write cluster job files that fit the gene panel in batches",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := sp.Setup(); err != nil {
			return err
		}
		return WriteJobs(sp, args)
	},
}

func init() {
	jobsCmd.Flags().StringVar(&jobsDir, "jobs-dir", "jobs", "Folder for the generated job files")
	jobsCmd.Flags().IntVar(&jobsBatchSize, "batch-size", 24, "Genes per job file")
	jobsCmd.Flags().StringVar(&jobsCommand, "command", "", "Fit command each job invokes, gene names are appended")
}

// WriteJobs splits the gene panel (the args, or every gene in the data
// folder) into job files for independent cluster processes.
func WriteJobs(sp *startupParams, genes []string) error {
	if len(genes) < 1 {
		ctx, err := fit.LoadContext(sp.dataDir, sp.variant)
		if err != nil {
			return errors.Wrapf(err, "Could not load data folder %s", sp.dataDir)
		}
		genes = ctx.GeneIDs()
	}

	command := jobsCommand
	if len(command) < 1 {
		command = "dynge fit --data " + sp.dataDir + " --results " + sp.resultsDir + " --variant " + sp.variant.String()
	}

	n, err := fit.WriteJobFiles(jobsDir, genes, jobsBatchSize, command)
	if err != nil {
		return err
	}
	sp.out.Printf("Wrote %d job files for %d genes to %s\n", n, len(genes), jobsDir)

	return nil
}
