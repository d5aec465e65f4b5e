package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// HoursPerYear converts between hourly and annual wages (40 hours * 52 weeks).
const HoursPerYear = 2080

// WageLevel is one of the four DOL prevailing wage tiers. The zero value is
// Unclassified, which doubles as "any level" in FilterCriteria.
type WageLevel int

const (
	Unclassified WageLevel = iota
	LevelI
	LevelII
	LevelIII
	LevelIV
)

// Levels lists the classified wage levels in ascending order.
var Levels = []WageLevel{LevelI, LevelII, LevelIII, LevelIV}

var levelNames = map[WageLevel]string{
	Unclassified: "Below Level I",
	LevelI:       "Level I",
	LevelII:      "Level II",
	LevelIII:     "Level III",
	LevelIV:      "Level IV",
}

var levelTitles = map[WageLevel]string{
	LevelI:   "Entry",
	LevelII:  "Qualified",
	LevelIII: "Experienced",
	LevelIV:  "Fully Competent",
}

func (l WageLevel) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return fmt.Sprintf("WageLevel(%d)", int(l))
}

// Title returns the DOL experience description, e.g. "Entry" for Level I.
func (l WageLevel) Title() string {
	return levelTitles[l]
}

// Valid reports whether l is one of Level I..IV.
func (l WageLevel) Valid() bool {
	return l >= LevelI && l <= LevelIV
}

func (l WageLevel) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

func (l *WageLevel) UnmarshalText(text []byte) error {
	s := string(text)
	if strings.EqualFold(strings.TrimSpace(s), levelNames[Unclassified]) {
		*l = Unclassified
		return nil
	}
	level, err := ParseWageLevel(s)
	if err != nil {
		return err
	}
	*l = level
	return nil
}

// Region identifies a state and, optionally, a county within it. Only State
// and County take part in matching; the remaining fields are display data.
type Region struct {
	State  string `json:"state"`
	County string `json:"county,omitempty"`

	StateName string `json:"state_name,omitempty"`
	AreaCode  string `json:"area_code,omitempty"`
	AreaName  string `json:"area_name,omitempty"`
}

// IsZero reports whether no state is set.
func (r Region) IsZero() bool {
	return r.State == ""
}

// Contains reports whether other lies inside r. A state-only region contains
// every county of that state; a county region contains only itself.
func (r Region) Contains(other Region) bool {
	if r.IsZero() {
		return true
	}
	if !strings.EqualFold(r.State, other.State) {
		return false
	}
	if r.County == "" {
		return true
	}
	return strings.EqualFold(r.County, other.County)
}

// WageRecord is one prevailing wage: a job role at one wage level in one region.
type WageRecord struct {
	JobRole    string    `json:"job_role"`
	SOCCode    string    `json:"soc_code,omitempty"`
	WageLevel  WageLevel `json:"wage_level"`
	Region     Region    `json:"region"`
	AnnualWage float64   `json:"annual_wage"`
}

// HourlyWage returns the annual wage divided by HoursPerYear.
func (r WageRecord) HourlyWage() float64 {
	return AnnualToHourly(r.AnnualWage)
}

// RecordKey is the identity of a WageRecord in the dataset.
type RecordKey struct {
	JobRole   string
	State     string
	County    string
	WageLevel WageLevel
}

// Key returns the case-normalized identity used for deduplication.
func (r WageRecord) Key() RecordKey {
	return RecordKey{
		JobRole:   strings.ToLower(r.JobRole),
		State:     strings.ToUpper(r.Region.State),
		County:    strings.ToLower(r.Region.County),
		WageLevel: r.WageLevel,
	}
}

// FilterCriteria selects wage records. Empty fields do not restrict the match.
type FilterCriteria struct {
	JobRole   string
	WageLevel WageLevel
	Region    Region

	// SalaryThreshold keeps records whose annual wage is at least this amount.
	SalaryThreshold *float64
}

// IsEmpty reports whether the criteria match every record.
func (c FilterCriteria) IsEmpty() bool {
	return c.JobRole == "" && c.WageLevel == Unclassified && c.Region.IsZero() && c.SalaryThreshold == nil
}

// Matches reports whether rec satisfies every non-empty field of c.
func (c FilterCriteria) Matches(rec WageRecord) bool {
	if c.JobRole != "" && !strings.EqualFold(c.JobRole, rec.JobRole) {
		return false
	}
	if c.WageLevel != Unclassified && c.WageLevel != rec.WageLevel {
		return false
	}
	if !c.Region.Contains(rec.Region) {
		return false
	}
	if c.SalaryThreshold != nil && rec.AnnualWage < *c.SalaryThreshold {
		return false
	}
	return true
}

// AggregateResult summarizes the annual wages of a record set. Statistics are
// undefined when Count is zero.
type AggregateResult struct {
	Count  int
	Mean   float64
	Median float64
	Min    float64
	Max    float64
}

// Defined reports whether the result was computed over at least one record.
func (a AggregateResult) Defined() bool {
	return a.Count > 0
}

// MarshalJSON renders undefined statistics as null rather than zero.
func (a AggregateResult) MarshalJSON() ([]byte, error) {
	type stats struct {
		Count  int      `json:"count"`
		Mean   *float64 `json:"mean"`
		Median *float64 `json:"median"`
		Min    *float64 `json:"min"`
		Max    *float64 `json:"max"`
	}
	out := stats{Count: a.Count}
	if a.Defined() {
		out.Mean, out.Median, out.Min, out.Max = &a.Mean, &a.Median, &a.Min, &a.Max
	}
	return json.Marshal(out)
}

// QueryEvent describes one answered dashboard query. Events are published for
// offline usage analytics and carry no user identity.
type QueryEvent struct {
	Kind         string    `json:"kind"`
	JobRole      string    `json:"job_role,omitempty"`
	WageLevel    string    `json:"wage_level,omitempty"`
	State        string    `json:"state,omitempty"`
	County       string    `json:"county,omitempty"`
	AnnualSalary float64   `json:"annual_salary,omitempty"`
	ResultCount  int       `json:"result_count"`
	QueriedAt    time.Time `json:"queried_at"`
}
