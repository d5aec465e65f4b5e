// Package dataset loads prevailing wage source files into an immutable
// snapshot of domain.WageRecord rows.
package dataset

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/couchcryptid/h1b-wage-explorer/internal/domain"
)

// Format names a supported source layout.
type Format string

const (
	// FormatRecords is a single normalized CSV with one wage per row.
	FormatRecords Format = "records"
	// FormatOFLC is a directory holding the raw OFLC export bundle.
	FormatOFLC Format = "oflc"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatRecords, FormatOFLC:
		return Format(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// Options tune a load.
type Options struct {
	// Logger receives duplicate-row warnings. Defaults to slog.Default().
	Logger *slog.Logger
	// OnFile is called after each source file has been read.
	OnFile func(name string, rows int)
}

func (o Options) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.Default()
	}
	return o.Logger
}

func (o Options) fileRead(name string, rows int) {
	if o.OnFile != nil {
		o.OnFile(name, rows)
	}
}

// Snapshot is the loaded wage table and where it came from.
type Snapshot struct {
	Records    []domain.WageRecord
	Source     string
	Format     Format
	Duplicates int
	LoadedAt   time.Time
}

// Load reads path in the given format. Any problem with the source is
// returned as a *LoadError; an empty result is an error too.
func Load(path string, format Format, opts Options) (*Snapshot, error) {
	var (
		records []domain.WageRecord
		err     error
	)
	switch format {
	case FormatRecords:
		records, err = loadRecordsFile(path, opts)
	case FormatOFLC:
		records, err = loadOFLC(path, opts)
	default:
		return nil, &LoadError{Source: path, Err: fmt.Errorf("%w: %q", ErrUnknownFormat, format)}
	}
	if err != nil {
		return nil, err
	}

	unique, duplicates := Dedup(records, opts.logger())
	if len(unique) == 0 {
		return nil, &LoadError{Source: path, Err: ErrNoRecords}
	}

	return &Snapshot{
		Records:    unique,
		Source:     path,
		Format:     format,
		Duplicates: duplicates,
		LoadedAt:   domain.Now(),
	}, nil
}

func loadRecordsFile(path string, opts Options) ([]domain.WageRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &LoadError{Source: path, Err: err}
	}
	defer f.Close()

	records, err := ParseRecords(f, path)
	if err != nil {
		return nil, err
	}
	opts.fileRead(path, len(records))
	return records, nil
}

// Dedup keeps the first record for each (job role, state, county, level) key
// and logs every discarded duplicate. It returns the kept records and the
// number discarded.
func Dedup(records []domain.WageRecord, logger *slog.Logger) ([]domain.WageRecord, int) {
	seen := make(map[domain.RecordKey]float64, len(records))
	out := make([]domain.WageRecord, 0, len(records))
	discarded := 0
	for _, rec := range records {
		key := rec.Key()
		if kept, ok := seen[key]; ok {
			discarded++
			logger.Warn("discarding duplicate wage record",
				"job_role", rec.JobRole,
				"state", rec.Region.State,
				"county", rec.Region.County,
				"wage_level", rec.WageLevel.String(),
				"kept_wage", kept,
				"discarded_wage", rec.AnnualWage,
			)
			continue
		}
		seen[key] = rec.AnnualWage
		out = append(out, rec)
	}
	return out, discarded
}
