package dataset

import (
	"bytes"
	"strings"
	"testing"

	"github.com/couchcryptid/h1b-wage-explorer/internal/domain"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteRecords_ReloadsOFLCBundle(t *testing.T) {
	snap := loadFixture(t, oflcFixture, FormatOFLC)

	var buf bytes.Buffer
	require.NoError(t, WriteRecords(&buf, snap.Records))

	reloaded, err := ParseRecords(&buf, "export.csv")
	require.NoError(t, err)

	// Hourly-derived wages are rounded to cents on the way out.
	if diff := cmp.Diff(snap.Records, reloaded, cmpopts.EquateApprox(0, 0.005)); diff != "" {
		t.Errorf("reloaded records mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteRecords_Layout(t *testing.T) {
	records := []domain.WageRecord{{
		JobRole:    "Software Developers",
		SOCCode:    "15-1252",
		WageLevel:  domain.LevelII,
		Region:     domain.Region{State: "TX", County: "Travis County", StateName: "Texas"},
		AnnualWage: 102000,
	}}

	var buf bytes.Buffer
	require.NoError(t, WriteRecords(&buf, records))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "job_role,wage_level,state,county,annual_wage,soc_code,state_name,area_code,area_name", lines[0])
	assert.Equal(t, "Software Developers,Level II,TX,Travis County,102000.00,15-1252,Texas,,", lines[1])
}
