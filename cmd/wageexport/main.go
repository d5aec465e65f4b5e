// Command wageexport flattens an OFLC export bundle into the normalized
// records CSV that wageserver loads with DATA_FORMAT=records. Loading the
// flat file skips the geography and occupation joins at startup.
//
// Usage:
//
//	go run ./cmd/wageexport \
//	  -data ./oflc \
//	  -out data/wages.csv \
//	  -verify
package main

import (
	"bytes"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/couchcryptid/h1b-wage-explorer/internal/dataset"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func main() {
	dataPath := flag.String("data", "", "OFLC export directory, or a records CSV with -format records")
	format := flag.String("format", string(dataset.FormatOFLC), "source format: oflc or records")
	out := flag.String("out", "", "output path for the normalized records CSV")
	verify := flag.Bool("verify", false, "reload the written file and compare it with the source")
	logLevel := flag.String("log-level", "info", "log level: debug, info, warn, error")
	flag.Parse()

	logger := sharedobs.NewLogger(*logLevel, "text")

	if *dataPath == "" || *out == "" {
		flag.Usage()
		logger.Error("missing required flags: -data, -out")
		os.Exit(2)
	}

	if err := run(*dataPath, *format, *out, *verify, logger); err != nil {
		logger.Error("export failed", "error", err)
		os.Exit(1)
	}
}

func run(dataPath, formatName, out string, verify bool, logger *slog.Logger) error {
	format, err := dataset.ParseFormat(formatName)
	if err != nil {
		return err
	}

	snapshot, err := dataset.Load(dataPath, format, dataset.Options{
		Logger: logger,
		OnFile: func(name string, rows int) {
			logger.Info("source file read", "file", filepath.Base(name), "rows", rows)
		},
	})
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := dataset.WriteRecords(&buf, snapshot.Records); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	if err := os.WriteFile(out, buf.Bytes(), 0o644); err != nil { //nolint:gosec // export is meant to be world-readable
		return fmt.Errorf("writing %s: %w", out, err)
	}
	logger.Info("records written", "path", out, "records", len(snapshot.Records), "duplicates", snapshot.Duplicates)

	if verify {
		return verifyExport(out, snapshot, logger)
	}
	return nil
}

// verifyExport reloads the written file and diffs it against the source
// snapshot. Wages are compared to the cent.
func verifyExport(path string, want *dataset.Snapshot, logger *slog.Logger) error {
	got, err := dataset.Load(path, dataset.FormatRecords, dataset.Options{Logger: logger})
	if err != nil {
		return fmt.Errorf("reloading export: %w", err)
	}
	if diff := cmp.Diff(want.Records, got.Records, cmpopts.EquateApprox(0, 0.005)); diff != "" {
		return fmt.Errorf("export does not match source (-source +export):\n%s", diff)
	}
	logger.Info("export verified", "records", len(got.Records))
	return nil
}
