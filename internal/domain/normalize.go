package domain

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var (
	ErrUnknownWageLevel = errors.New("unknown wage level")
	ErrInvalidWage      = errors.New("invalid wage")
)

// wageLevelAliases maps every accepted spelling (lower-cased, spaces removed)
// to its level: "level ii", "level 2", "ii", "2" and the OFLC column name
// "level2" all mean Level II.
var wageLevelAliases = map[string]WageLevel{
	"leveli": LevelI, "level1": LevelI, "i": LevelI, "1": LevelI,
	"levelii": LevelII, "level2": LevelII, "ii": LevelII, "2": LevelII,
	"leveliii": LevelIII, "level3": LevelIII, "iii": LevelIII, "3": LevelIII,
	"leveliv": LevelIV, "level4": LevelIV, "iv": LevelIV, "4": LevelIV,
}

// ParseWageLevel accepts "Level I".."Level IV", "Level 1".."Level 4",
// roman or arabic numerals alone, and the OFLC column names Level1..Level4.
func ParseWageLevel(s string) (WageLevel, error) {
	key := strings.ToLower(strings.Join(strings.Fields(s), ""))
	if level, ok := wageLevelAliases[key]; ok {
		return level, nil
	}
	return Unclassified, fmt.Errorf("%w: %q", ErrUnknownWageLevel, s)
}

// stateAbbreviations maps lower-cased state and territory names to their
// postal abbreviations.
var stateAbbreviations = map[string]string{
	"alabama": "AL", "alaska": "AK", "arizona": "AZ", "arkansas": "AR",
	"california": "CA", "colorado": "CO", "connecticut": "CT", "delaware": "DE",
	"district of columbia": "DC", "florida": "FL", "georgia": "GA", "hawaii": "HI",
	"idaho": "ID", "illinois": "IL", "indiana": "IN", "iowa": "IA",
	"kansas": "KS", "kentucky": "KY", "louisiana": "LA", "maine": "ME",
	"maryland": "MD", "massachusetts": "MA", "michigan": "MI", "minnesota": "MN",
	"mississippi": "MS", "missouri": "MO", "montana": "MT", "nebraska": "NE",
	"nevada": "NV", "new hampshire": "NH", "new jersey": "NJ", "new mexico": "NM",
	"new york": "NY", "north carolina": "NC", "north dakota": "ND", "ohio": "OH",
	"oklahoma": "OK", "oregon": "OR", "pennsylvania": "PA", "rhode island": "RI",
	"south carolina": "SC", "south dakota": "SD", "tennessee": "TN", "texas": "TX",
	"utah": "UT", "vermont": "VT", "virginia": "VA", "washington": "WA",
	"west virginia": "WV", "wisconsin": "WI", "wyoming": "WY",
	"puerto rico": "PR", "guam": "GU", "virgin islands": "VI",
	"northern mariana islands": "MP",
}

// NormalizeState returns the upper-cased postal abbreviation for s. Full
// state names ("California", "new york") resolve to their abbreviation;
// anything else is trimmed and upper-cased as is.
func NormalizeState(s string) string {
	name := strings.ToLower(strings.Join(strings.Fields(s), " "))
	if abbr, ok := stateAbbreviations[name]; ok {
		return abbr
	}
	return strings.ToUpper(strings.TrimSpace(s))
}

// NormalizeName collapses internal whitespace and trims a job role or county
// name. Case is preserved for display; matching is case-insensitive.
func NormalizeName(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// ParseWage parses a wage amount, tolerating "$" prefixes and thousands
// separators. Negative, NaN and infinite values are rejected.
func ParseWage(s string) (float64, error) {
	raw := strings.TrimSpace(s)
	raw = strings.TrimPrefix(raw, "$")
	raw = strings.ReplaceAll(raw, ",", "")
	if raw == "" {
		return 0, fmt.Errorf("%w: empty", ErrInvalidWage)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidWage, s)
	}
	if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidWage, s)
	}
	return v, nil
}

// HourlyToAnnual converts an hourly wage to an annual one.
func HourlyToAnnual(hourly float64) float64 {
	return hourly * HoursPerYear
}

// AnnualToHourly converts an annual wage to an hourly one.
func AnnualToHourly(annual float64) float64 {
	return annual / HoursPerYear
}
