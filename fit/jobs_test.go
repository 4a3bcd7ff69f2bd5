package fit

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWriteJobFiles(t *testing.T) {
	assert := assert.New(t)

	genes := []string{"G1", "G2", "G3", "G4", "G5"}
	dir := t.TempDir()

	n, err := WriteJobFiles(dir, genes, 2, "dynge fit --data ../processed_data")
	assert.NoError(err)
	assert.Equal(3, n)

	data, err := os.ReadFile(filepath.Join(dir, "dynGE_job_0.sh"))
	assert.NoError(err)
	assert.Equal("#!/bin/sh\n\ndynge fit --data ../processed_data G1 G2\n", string(data))

	data, err = os.ReadFile(filepath.Join(dir, "dynGE_job_2.sh"))
	assert.NoError(err)
	assert.Equal("#!/bin/sh\n\ndynge fit --data ../processed_data G5\n", string(data))

	// Batch size covering everything yields a single file
	dir = t.TempDir()
	n, err = WriteJobFiles(dir, genes, 10, "dynge fit")
	assert.NoError(err)
	assert.Equal(1, n)
}

func TestWriteJobFilesBadArgs(t *testing.T) {
	assert := assert.New(t)

	dir := t.TempDir()

	_, err := WriteJobFiles(dir, nil, 2, "dynge fit")
	assert.Error(err)
	_, err = WriteJobFiles(dir, []string{"G1"}, 0, "dynge fit")
	assert.Error(err)
	_, err = WriteJobFiles(dir, []string{"G1"}, 2, "")
	assert.Error(err)
}
