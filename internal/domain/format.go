package domain

import (
	"fmt"
	"math"

	"github.com/dustin/go-humanize"
)

// FormatAnnual renders an annual wage as whole dollars, e.g. "$80,000".
func FormatAnnual(annual float64) string {
	return fmt.Sprintf("$%s", humanize.Comma(int64(math.Round(annual))))
}

// FormatHourly renders the hourly equivalent of an annual wage, e.g. "$38.46/hr".
func FormatHourly(annual float64) string {
	cents := int64(math.Round(AnnualToHourly(annual) * 100))
	return fmt.Sprintf("$%s.%02d/hr", humanize.Comma(cents/100), cents%100)
}

// FormatWage renders both forms, e.g. "$38.46/hr ($80,000/yr)".
func FormatWage(annual float64) string {
	return fmt.Sprintf("%s (%s/yr)", FormatHourly(annual), FormatAnnual(annual))
}
