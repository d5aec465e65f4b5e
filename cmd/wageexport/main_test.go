package main

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/couchcryptid/h1b-wage-explorer/internal/dataset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRun_ExportsAndVerifiesOFLCBundle(t *testing.T) {
	out := filepath.Join(t.TempDir(), "nested", "wages.csv")

	err := run("../../internal/dataset/testdata/oflc", "oflc", out, true, discardLogger())
	require.NoError(t, err)

	snap, err := dataset.Load(out, dataset.FormatRecords, dataset.Options{Logger: discardLogger()})
	require.NoError(t, err)
	assert.Len(t, snap.Records, 17)
}

func TestRun_RecordsSourceDropsDuplicates(t *testing.T) {
	out := filepath.Join(t.TempDir(), "wages.csv")

	require.NoError(t, run("../../internal/dataset/testdata/wages.csv", "records", out, true, discardLogger()))

	snap, err := dataset.Load(out, dataset.FormatRecords, dataset.Options{Logger: discardLogger()})
	require.NoError(t, err)
	assert.Len(t, snap.Records, 8)
	assert.Equal(t, 0, snap.Duplicates)
}

func TestRun_Errors(t *testing.T) {
	dir := t.TempDir()

	err := run("../../internal/dataset/testdata/oflc", "xlsx", filepath.Join(dir, "a.csv"), false, discardLogger())
	require.ErrorIs(t, err, dataset.ErrUnknownFormat)

	err = run(filepath.Join(dir, "missing"), "oflc", filepath.Join(dir, "b.csv"), false, discardLogger())
	var loadErr *dataset.LoadError
	require.ErrorAs(t, err, &loadErr)

	_, statErr := os.Stat(filepath.Join(dir, "b.csv"))
	assert.ErrorIs(t, statErr, os.ErrNotExist, "nothing is written when the load fails")
}
