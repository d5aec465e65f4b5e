package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregateByState(t *testing.T) {
	got := AggregateByState(fixture())

	require.Len(t, got, 2)
	assert.Equal(t, "CA", got[0].State)
	assert.Equal(t, 4, got[0].Stats.Count)
	assert.Equal(t, 110000.0, got[0].Stats.Min)
	assert.Equal(t, 175000.0, got[0].Stats.Max)
	assert.Equal(t, "TX", got[1].State)
	assert.Equal(t, 120000.0, got[1].Stats.Mean)
}

func TestAggregateByState_Empty(t *testing.T) {
	got := AggregateByState(nil)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestAggregateByCounty(t *testing.T) {
	records := append(fixture(), rec(roleSWE, LevelI, "NY", "", 90000))

	got := AggregateByCounty(records)

	require.Len(t, got, 4)
	assert.Equal(t, []string{"Alameda County", "Los Angeles County", "Santa Clara County", "Travis County"},
		[]string{got[0].County, got[1].County, got[2].County, got[3].County})
	assert.Equal(t, 2, got[2].Stats.Count)
	assert.Equal(t, 162500.0, got[2].Stats.Mean)
	assert.Equal(t, "TX", got[3].State)
}

func TestClassifyByRegion(t *testing.T) {
	records := append(ladder(),
		rec(roleSWE, LevelI, "TX", "Travis County", 80000),
		rec(roleSWE, LevelII, "TX", "Travis County", 95000),
		rec(roleSWE, LevelIII, "TX", "Travis County", 110000),
		rec(roleSWE, LevelIV, "TX", "Travis County", 125000),
	)

	got := ClassifyByRegion(115000, records)

	require.Len(t, got, 2)
	assert.Equal(t, "CA", got[0].Region.State)
	assert.Equal(t, LevelI, got[0].Level)
	assert.Equal(t, 100000.0, got[0].Thresholds[LevelI])
	assert.Equal(t, "TX", got[1].Region.State)
	assert.Equal(t, LevelIII, got[1].Level)
}

func TestDistribution(t *testing.T) {
	classifications := []RegionClassification{
		{Level: LevelI}, {Level: LevelI}, {Level: LevelIII}, {Level: Unclassified},
	}

	got := Distribution(classifications)

	require.Len(t, got, 5)
	assert.Equal(t, LevelShare{Level: Unclassified, Count: 1, Percent: 25}, got[0])
	assert.Equal(t, LevelShare{Level: LevelI, Count: 2, Percent: 50}, got[1])
	assert.Equal(t, LevelShare{Level: LevelII, Count: 0, Percent: 0}, got[2])
	assert.Equal(t, LevelShare{Level: LevelIII, Count: 1, Percent: 25}, got[3])
	assert.Equal(t, LevelShare{Level: LevelIV, Count: 0, Percent: 0}, got[4])
}

func TestDistribution_Empty(t *testing.T) {
	for _, share := range Distribution(nil) {
		assert.Zero(t, share.Count)
		assert.Zero(t, share.Percent)
	}
}

func TestClassificationByState_ModeWithLowerTieBreak(t *testing.T) {
	classifications := []RegionClassification{
		{Region: Region{State: "TX"}, Level: LevelII},
		{Region: Region{State: "CA"}, Level: LevelIII},
		{Region: Region{State: "CA"}, Level: LevelI},
		{Region: Region{State: "CA"}, Level: LevelIII},
		{Region: Region{State: "TX"}, Level: LevelIV},
	}

	got := ClassificationByState(classifications)

	require.Len(t, got, 2)
	assert.Equal(t, StateClassification{State: "CA", Level: LevelIII, Regions: 3}, got[0])
	assert.Equal(t, StateClassification{State: "TX", Level: LevelII, Regions: 2}, got[1])
}
