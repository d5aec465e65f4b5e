package main

import (
	"bytes"
	"sync"
	"testing"

	"github.com/couchcryptid/h1b-wage-explorer/internal/domain"
	"github.com/pterm/pterm"
	"github.com/stretchr/testify/assert"
)

const (
	recordsFixture = "../../internal/dataset/testdata/wages.csv"
	oflcFixture    = "../../internal/dataset/testdata/oflc"
)

// lockedBuffer is shared by the logger and the progress bar goroutine.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout bytes.Buffer
	var stderr lockedBuffer
	code := run(append([]string{"-no-color"}, args...), &stdout, &stderr)
	return code, pterm.RemoveColorFromString(stdout.String()), stderr.String()
}

func TestRun_Wages(t *testing.T) {
	code, out, _ := runCLI(t, "-data", recordsFixture, "-state", "CA")

	assert.Equal(t, exitOK, code)
	assert.Contains(t, out, "8 records")
	assert.Contains(t, out, "duplicates discarded: 1")
	assert.Contains(t, out, "Santa Clara County")
	assert.Contains(t, out, "$138,000")
	assert.Contains(t, out, "$66.35/hr")
	assert.NotContains(t, out, "Travis County")
	assert.NotContains(t, out, "By County")
}

func TestRun_WagesCountyDetail(t *testing.T) {
	code, out, _ := runCLI(t, "-data", recordsFixture, "-role", "Software Developers", "-detail", "county")

	assert.Equal(t, exitOK, code)
	assert.Contains(t, out, "By County")
	assert.Contains(t, out, "Travis County")
}

func TestRun_WagesTruncated(t *testing.T) {
	code, out, _ := runCLI(t, "-data", recordsFixture, "-limit", "2")

	assert.Equal(t, exitOK, code)
	assert.Contains(t, out, "showing 2 of 8 records")
}

func TestRun_Classify(t *testing.T) {
	code, out, _ := runCLI(t, "-data", recordsFixture, "-salary", "$150,000", "-role", "Software Developers")

	assert.Equal(t, exitOK, code)
	assert.Contains(t, out, "$72.12/hr ($150,000/yr)")
	assert.Contains(t, out, "Level III at $164,000")
	assert.Contains(t, out, "100.0%")
}

func TestRun_ClassifyHourly(t *testing.T) {
	code, out, _ := runCLI(t, "-data", recordsFixture, "-salary", "50", "-hourly", "-state", "NY")

	assert.Equal(t, exitOK, code)
	assert.Contains(t, out, "$104,000/yr")
	assert.Contains(t, out, "Data Scientists")
}

func TestRun_Lists(t *testing.T) {
	code, out, _ := runCLI(t, "-data", recordsFixture, "-roles")
	assert.Equal(t, exitOK, code)
	assert.Contains(t, out, "Data Scientists")
	assert.Contains(t, out, "Software Developers")

	code, out, _ = runCLI(t, "-data", recordsFixture, "-states")
	assert.Equal(t, exitOK, code)
	assert.Contains(t, out, "NY")
	assert.Contains(t, out, "TX")
}

func TestRun_OFLC(t *testing.T) {
	code, out, _ := runCLI(t, "-data", oflcFixture, "-format", "oflc", "-roles")

	assert.Equal(t, exitOK, code)
	assert.Contains(t, out, "Data Scientists")
	assert.Contains(t, out, "Software Developers")
}

func TestRun_InvalidCriteria(t *testing.T) {
	code, _, stderr := runCLI(t, "-data", recordsFixture, "-level", "7")

	assert.Equal(t, exitUsage, code)
	assert.Contains(t, stderr, "wage_level")
}

func TestRun_NegativeSalary(t *testing.T) {
	code, _, stderr := runCLI(t, "-data", recordsFixture, "-salary", "-5")

	assert.Equal(t, exitUsage, code)
	assert.Contains(t, stderr, "salary")
}

func TestRun_MissingData(t *testing.T) {
	code, _, stderr := runCLI(t, "-data", "testdata/does-not-exist.csv")

	assert.Equal(t, exitError, code)
	assert.Contains(t, stderr, "does-not-exist.csv")
}

func TestRun_UsageErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"unknown format", []string{"-data", recordsFixture, "-format", "xlsx"}},
		{"unknown flag", []string{"-bogus"}},
		{"positional argument", []string{"-data", recordsFixture, "extra"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, _ := runCLI(t, tt.args...)
			assert.Equal(t, exitUsage, code)
		})
	}
}

func TestNextThreshold(t *testing.T) {
	thresholds := map[domain.WageLevel]float64{
		domain.LevelI:  112000,
		domain.LevelII: 138000,
		domain.LevelIV: 190000,
	}

	tests := []struct {
		level domain.WageLevel
		want  string
	}{
		{domain.Unclassified, "Level I at $112,000"},
		{domain.LevelII, "Level IV at $190,000"},
		{domain.LevelIV, "-"},
	}
	for _, tt := range tests {
		t.Run(tt.level.String(), func(t *testing.T) {
			got := nextThreshold(domain.RegionClassification{Level: tt.level, Thresholds: thresholds})
			assert.Equal(t, tt.want, got)
		})
	}
}
