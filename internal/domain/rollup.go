package domain

import (
	"math"
	"sort"
	"strings"
)

// StateAggregate is the wage summary for one state, used to shade a
// state-level map.
type StateAggregate struct {
	State     string          `json:"state"`
	StateName string          `json:"state_name,omitempty"`
	Stats     AggregateResult `json:"stats"`
}

// AggregateByState groups records by state and aggregates each group.
// The result is sorted by state abbreviation.
func AggregateByState(records []WageRecord) []StateAggregate {
	groups := make(map[string][]WageRecord)
	names := make(map[string]string)
	for _, rec := range records {
		state := rec.Region.State
		groups[state] = append(groups[state], rec)
		if names[state] == "" {
			names[state] = rec.Region.StateName
		}
	}

	out := make([]StateAggregate, 0, len(groups))
	for state, recs := range groups {
		out = append(out, StateAggregate{
			State:     state,
			StateName: names[state],
			Stats:     Aggregate(recs),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].State < out[j].State })
	return out
}

// CountyAggregate is the wage summary for one county, used to shade a
// county-level map.
type CountyAggregate struct {
	State  string          `json:"state"`
	County string          `json:"county"`
	Stats  AggregateResult `json:"stats"`
}

// AggregateByCounty groups county records by (state, county) and aggregates
// each group. State-wide records without a county are skipped. The result is
// sorted by state, then county.
func AggregateByCounty(records []WageRecord) []CountyAggregate {
	type key struct{ state, county string }
	groups := make(map[key][]WageRecord)
	display := make(map[key]string)
	for _, rec := range records {
		if rec.Region.County == "" {
			continue
		}
		k := key{strings.ToUpper(rec.Region.State), strings.ToLower(rec.Region.County)}
		groups[k] = append(groups[k], rec)
		if _, ok := display[k]; !ok {
			display[k] = rec.Region.County
		}
	}

	out := make([]CountyAggregate, 0, len(groups))
	for k, recs := range groups {
		out = append(out, CountyAggregate{State: k.state, County: display[k], Stats: Aggregate(recs)})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].State != out[j].State {
			return out[i].State < out[j].State
		}
		return strings.ToLower(out[i].County) < strings.ToLower(out[j].County)
	})
	return out
}

// RegionClassification is the outcome of classifying one salary against the
// thresholds of one job role in one region.
type RegionClassification struct {
	JobRole    string                `json:"job_role"`
	Region     Region                `json:"region"`
	Level      WageLevel             `json:"classification"`
	Thresholds map[WageLevel]float64 `json:"thresholds"`
}

type regionKey struct {
	role   string
	state  string
	county string
}

// ClassifyByRegion groups records by (job role, state, county) and classifies
// salary in each group. Groups keep the order in which they first appear.
func ClassifyByRegion(salary float64, records []WageRecord) []RegionClassification {
	index := make(map[regionKey]int)
	var groups [][]WageRecord
	for _, rec := range records {
		key := regionKey{
			role:   strings.ToLower(rec.JobRole),
			state:  strings.ToUpper(rec.Region.State),
			county: strings.ToLower(rec.Region.County),
		}
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, nil)
		}
		groups[i] = append(groups[i], rec)
	}

	out := make([]RegionClassification, 0, len(groups))
	for _, recs := range groups {
		thresholds := LevelThresholds(recs)
		level := Unclassified
		if !math.IsNaN(salary) {
			level = classifyThresholds(salary, thresholds)
		}
		out = append(out, RegionClassification{
			JobRole:    recs[0].JobRole,
			Region:     recs[0].Region,
			Level:      level,
			Thresholds: thresholds,
		})
	}
	return out
}

// LevelShare is the number and percentage of regions in one classification.
type LevelShare struct {
	Level   WageLevel `json:"level"`
	Count   int       `json:"count"`
	Percent float64   `json:"percent"`
}

// Distribution counts classifications per level, from Unclassified up to
// Level IV. Percentages are zero when there are no classifications.
func Distribution(classifications []RegionClassification) []LevelShare {
	counts := make(map[WageLevel]int)
	for _, c := range classifications {
		counts[c.Level]++
	}

	total := len(classifications)
	levels := append([]WageLevel{Unclassified}, Levels...)
	out := make([]LevelShare, 0, len(levels))
	for _, level := range levels {
		share := LevelShare{Level: level, Count: counts[level]}
		if total > 0 {
			share.Percent = float64(share.Count) / float64(total) * 100
		}
		out = append(out, share)
	}
	return out
}

// StateClassification is the most common classification within a state.
type StateClassification struct {
	State   string    `json:"state"`
	Level   WageLevel `json:"classification"`
	Regions int       `json:"regions"`
}

// ClassificationByState reports the most common classification per state.
// Ties go to the lower level. The result is sorted by state.
func ClassificationByState(classifications []RegionClassification) []StateClassification {
	counts := make(map[string]map[WageLevel]int)
	for _, c := range classifications {
		state := c.Region.State
		if counts[state] == nil {
			counts[state] = make(map[WageLevel]int)
		}
		counts[state][c.Level]++
	}

	out := make([]StateClassification, 0, len(counts))
	for state, byLevel := range counts {
		best, bestCount, total := Unclassified, -1, 0
		for _, level := range append([]WageLevel{Unclassified}, Levels...) {
			n := byLevel[level]
			total += n
			if n > bestCount {
				best, bestCount = level, n
			}
		}
		out = append(out, StateClassification{State: state, Level: best, Regions: total})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].State < out[j].State })
	return out
}
