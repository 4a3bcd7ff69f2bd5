package fit

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// WriteJobFiles splits the gene list into batches of batchSize and writes
// one shell job file per batch, each invoking the given fit command with
// its genes as arguments. Batches run as independent processes, which is
// what isolates one gene group's failure from the rest of the cluster run.
// Returns the number of job files written.
func WriteJobFiles(dir string, genes []string, batchSize int, command string) (int, error) {
	if len(genes) < 1 {
		return 0, errors.Errorf("No genes to dispatch")
	}
	if batchSize < 1 {
		return 0, errors.Errorf("Batch size must be >= 1, got %d", batchSize)
	}
	if len(command) < 1 {
		return 0, errors.Errorf("No fit command given")
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, errors.Wrapf(err, "Could not create job dir %s", dir)
	}

	count := 0
	for start := 0; start < len(genes); start += batchSize {
		end := start + batchSize
		if end > len(genes) {
			end = len(genes)
		}

		path := filepath.Join(dir, fmt.Sprintf("dynGE_job_%d.sh", count))
		body := fmt.Sprintf("#!/bin/sh\n\n%s", command)
		for _, g := range genes[start:end] {
			body += " " + g
		}
		body += "\n"

		if err := os.WriteFile(path, []byte(body), 0o755); err != nil {
			return count, errors.Wrapf(err, "Could not write job file %s", path)
		}
		count++
	}

	return count, nil
}
