package dataset

import (
	"bytes"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/couchcryptid/h1b-wage-explorer/internal/domain"
	"github.com/google/go-cmp/cmp"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	recordsFixture = "testdata/wages.csv"
	oflcFixture    = "testdata/oflc"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func loadFixture(t *testing.T, path string, format Format) *Snapshot {
	t.Helper()
	snap, err := Load(path, format, Options{Logger: discardLogger()})
	require.NoError(t, err)
	return snap
}

func TestLoad_Records(t *testing.T) {
	loadedAt := time.Date(2025, time.July, 1, 12, 0, 0, 0, time.UTC)
	domain.SetClock(clockwork.NewFakeClockAt(loadedAt))
	defer domain.SetClock(nil)

	snap := loadFixture(t, recordsFixture, FormatRecords)

	assert.Len(t, snap.Records, 8)
	assert.Equal(t, 1, snap.Duplicates)
	assert.Equal(t, FormatRecords, snap.Format)
	assert.Equal(t, recordsFixture, snap.Source)
	assert.Equal(t, loadedAt, snap.LoadedAt)

	first := snap.Records[0]
	assert.Equal(t, domain.WageRecord{
		JobRole:   "Software Developers",
		SOCCode:   "15-1252",
		WageLevel: domain.LevelI,
		Region: domain.Region{
			State:     "CA",
			County:    "Santa Clara County",
			StateName: "California",
		},
		AnnualWage: 112000,
	}, first)

	ny := snap.Records[len(snap.Records)-1]
	assert.Equal(t, "NY", ny.Region.State)
	assert.Empty(t, ny.Region.County)
}

func TestLoad_DuplicateKeepsFirstAndLogs(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))

	snap, err := Load(recordsFixture, FormatRecords, Options{Logger: logger})
	require.NoError(t, err)

	e := domain.NewEngine(snap.Records)
	got := e.Filter(domain.FilterCriteria{
		JobRole:   "Software Developers",
		WageLevel: domain.LevelII,
		Region:    domain.Region{State: "CA", County: "Santa Clara County"},
	})
	require.Len(t, got, 1)
	assert.Equal(t, 138000.0, got[0].AnnualWage)

	assert.Contains(t, logs.String(), "discarding duplicate wage record")
	assert.Contains(t, logs.String(), "discarded_wage=999999")
}

func TestLoad_DeterministicRoundTrip(t *testing.T) {
	for _, tt := range []struct {
		path   string
		format Format
	}{
		{recordsFixture, FormatRecords},
		{oflcFixture, FormatOFLC},
	} {
		first := loadFixture(t, tt.path, tt.format)
		second := loadFixture(t, tt.path, tt.format)

		if diff := cmp.Diff(first.Records, second.Records); diff != "" {
			t.Errorf("%s: reload differs (-first +second):\n%s", tt.path, diff)
		}
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("testdata/does-not-exist.csv", FormatRecords, Options{Logger: discardLogger()})

	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoad_UnknownFormat(t *testing.T) {
	_, err := Load(recordsFixture, Format("parquet"), Options{})

	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestLoad_HeaderOnlyIsError(t *testing.T) {
	path := writeTemp(t, "job_role,wage_level,state,county,annual_wage\n")

	_, err := Load(path, FormatRecords, Options{Logger: discardLogger()})

	assert.ErrorIs(t, err, ErrNoRecords)
}

func TestLoad_OnFileCallback(t *testing.T) {
	var files []string
	_, err := Load(oflcFixture, FormatOFLC, Options{
		Logger: discardLogger(),
		OnFile: func(name string, _ int) { files = append(files, name) },
	})
	require.NoError(t, err)

	assert.Equal(t, OFLCFiles, files)
}

func TestParseRecords_Malformed(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		line    int
		wantErr error
	}{
		{
			name:    "missing column",
			input:   "job_role,wage_level,state,county\nDevs,Level I,CA,\n",
			wantErr: ErrMissingColumn,
		},
		{
			name:    "negative wage",
			input:   "job_role,wage_level,state,county,annual_wage\nDevs,Level I,CA,,-5\n",
			line:    2,
			wantErr: domain.ErrInvalidWage,
		},
		{
			name:    "non-numeric wage",
			input:   "job_role,wage_level,state,county,annual_wage\nDevs,Level I,CA,,lots\nDevs,Level II,CA,,2\n",
			line:    2,
			wantErr: domain.ErrInvalidWage,
		},
		{
			name:    "unknown level",
			input:   "job_role,wage_level,state,county,annual_wage\nDevs,Level I,CA,,1\nDevs,Level V,CA,,2\n",
			line:    3,
			wantErr: domain.ErrUnknownWageLevel,
		},
		{
			name:    "empty state",
			input:   "job_role,wage_level,state,county,annual_wage\nDevs,Level I, ,,1\n",
			line:    2,
			wantErr: ErrEmptyField,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseRecords(strings.NewReader(tt.input), "inline.csv")

			assert.ErrorIs(t, err, tt.wantErr)
			var loadErr *LoadError
			require.ErrorAs(t, err, &loadErr)
			assert.Equal(t, tt.line, loadErr.Line)
			assert.Equal(t, "inline.csv", loadErr.Source)
		})
	}
}

func TestParseRecords_HeaderCaseAndBlankRows(t *testing.T) {
	input := "\ufeffJob_Role, Wage_Level ,STATE,County,Annual_Wage\n" +
		"Software   Developers,2,tx,Travis County,\"$102,000\"\n" +
		",,,,\n"

	got, err := ParseRecords(strings.NewReader(input), "inline.csv")

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Software Developers", got[0].JobRole)
	assert.Equal(t, domain.LevelII, got[0].WageLevel)
	assert.Equal(t, "TX", got[0].Region.State)
	assert.Equal(t, 102000.0, got[0].AnnualWage)
}

func TestParseRecords_NoCountyColumn(t *testing.T) {
	input := "job_role,wage_level,state,annual_wage\nSoftware Developers,Level II,CA,120000\n"

	got, err := ParseRecords(strings.NewReader(input), "inline.csv")

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, domain.Region{State: "CA"}, got[0].Region)
	assert.Equal(t, domain.LevelII, got[0].WageLevel)
	assert.Equal(t, 120000.0, got[0].AnnualWage)
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("oflc")
	require.NoError(t, err)
	assert.Equal(t, FormatOFLC, f)

	_, err = ParseFormat("xlsx")
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestDedup(t *testing.T) {
	records := []domain.WageRecord{
		{JobRole: "Devs", WageLevel: domain.LevelI, Region: domain.Region{State: "CA"}, AnnualWage: 1},
		{JobRole: "devs", WageLevel: domain.LevelI, Region: domain.Region{State: "ca"}, AnnualWage: 2},
		{JobRole: "Devs", WageLevel: domain.LevelII, Region: domain.Region{State: "CA"}, AnnualWage: 3},
	}

	got, discarded := Dedup(records, discardLogger())

	assert.Equal(t, 1, discarded)
	require.Len(t, got, 2)
	assert.Equal(t, 1.0, got[0].AnnualWage)
	assert.Equal(t, 3.0, got[1].AnnualWage)
}

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "wages.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}
