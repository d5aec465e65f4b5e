package domain

import (
	"math"
	"sort"
	"strings"
)

// Engine answers filter, aggregate and classify queries over an immutable
// wage table. It is safe for concurrent use because nothing mutates it after
// construction.
type Engine struct {
	records []WageRecord
	roles   []string
	states  []string
}

// NewEngine copies records into a new engine.
func NewEngine(records []WageRecord) *Engine {
	owned := make([]WageRecord, len(records))
	copy(owned, records)

	return &Engine{
		records: owned,
		roles:   uniqueSorted(owned, func(r WageRecord) string { return r.JobRole }),
		states:  uniqueSorted(owned, func(r WageRecord) string { return r.Region.State }),
	}
}

// Len returns the number of records in the table.
func (e *Engine) Len() int {
	return len(e.records)
}

// Records returns a copy of the full table.
func (e *Engine) Records() []WageRecord {
	out := make([]WageRecord, len(e.records))
	copy(out, e.records)
	return out
}

// JobRoles returns the distinct job roles, sorted case-insensitively.
func (e *Engine) JobRoles() []string {
	return append([]string(nil), e.roles...)
}

// States returns the distinct state abbreviations in sorted order.
func (e *Engine) States() []string {
	return append([]string(nil), e.states...)
}

// Filter returns every record matching all non-empty fields of criteria, in
// table order. Empty criteria return the whole table; no match returns an
// empty, non-nil slice.
func (e *Engine) Filter(criteria FilterCriteria) []WageRecord {
	if criteria.IsEmpty() {
		return e.Records()
	}

	out := make([]WageRecord, 0)
	for _, rec := range e.records {
		if criteria.Matches(rec) {
			out = append(out, rec)
		}
	}
	return out
}

// Aggregate is a convenience for the package-level Aggregate.
func (e *Engine) Aggregate(records []WageRecord) AggregateResult {
	return Aggregate(records)
}

// Classify is a convenience for the package-level Classify.
func (e *Engine) Classify(salary float64, records []WageRecord) WageLevel {
	return Classify(salary, records)
}

// Aggregate computes count, mean, median, min and max of the annual wages.
// An empty input yields an undefined result (Count == 0).
func Aggregate(records []WageRecord) AggregateResult {
	n := len(records)
	if n == 0 {
		return AggregateResult{}
	}

	wages := make([]float64, n)
	var sum float64
	for i, rec := range records {
		wages[i] = rec.AnnualWage
		sum += rec.AnnualWage
	}
	sort.Float64s(wages)

	return AggregateResult{
		Count:  n,
		Mean:   sum / float64(n),
		Median: median(wages),
		Min:    wages[0],
		Max:    wages[n-1],
	}
}

// median expects a sorted, non-empty slice.
func median(sorted []float64) float64 {
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// LevelThresholds returns the lowest annual wage observed per wage level.
func LevelThresholds(records []WageRecord) map[WageLevel]float64 {
	thresholds := make(map[WageLevel]float64, len(Levels))
	for _, rec := range records {
		if !rec.WageLevel.Valid() {
			continue
		}
		if t, ok := thresholds[rec.WageLevel]; !ok || rec.AnnualWage < t {
			thresholds[rec.WageLevel] = rec.AnnualWage
		}
	}
	return thresholds
}

// Classify returns the highest wage level whose threshold is at or below
// salary, or Unclassified when salary is below every known threshold. Levels
// sharing a threshold resolve to the higher one, so the result never
// decreases as salary grows.
func Classify(salary float64, records []WageRecord) WageLevel {
	if math.IsNaN(salary) {
		return Unclassified
	}
	return classifyThresholds(salary, LevelThresholds(records))
}

func classifyThresholds(salary float64, thresholds map[WageLevel]float64) WageLevel {
	result := Unclassified
	for _, level := range Levels {
		if t, ok := thresholds[level]; ok && t <= salary {
			result = level
		}
	}
	return result
}

func uniqueSorted(records []WageRecord, field func(WageRecord) string) []string {
	seen := make(map[string]bool)
	out := make([]string, 0)
	for _, rec := range records {
		v := field(rec)
		key := strings.ToLower(v)
		if v == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.ToLower(out[i]) < strings.ToLower(out[j])
	})
	return out
}
