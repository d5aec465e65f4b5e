package domain

import (
	"fmt"
	"math"
)

// InvalidCriteriaError reports malformed query input. It is raised at the
// query boundary so the engine only ever sees valid criteria.
type InvalidCriteriaError struct {
	Field  string
	Reason string
}

func (e *InvalidCriteriaError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func invalid(field, format string, args ...any) *InvalidCriteriaError {
	return &InvalidCriteriaError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// Validate checks criteria built from user input.
func (c FilterCriteria) Validate() error {
	if c.WageLevel != Unclassified && !c.WageLevel.Valid() {
		return invalid("wage_level", "unknown level %d", int(c.WageLevel))
	}
	if c.Region.County != "" && c.Region.State == "" {
		return invalid("county", "county %q requires a state", c.Region.County)
	}
	if t := c.SalaryThreshold; t != nil {
		if math.IsNaN(*t) || math.IsInf(*t, 0) {
			return invalid("salary_threshold", "must be a finite number")
		}
		if *t < 0 {
			return invalid("salary_threshold", "must not be negative, got %g", *t)
		}
	}
	return nil
}

// ValidateSalary checks a candidate salary before classification.
func ValidateSalary(salary float64) error {
	if math.IsNaN(salary) || math.IsInf(salary, 0) {
		return invalid("salary", "must be a finite number")
	}
	if salary <= 0 {
		return invalid("salary", "must be positive, got %g", salary)
	}
	return nil
}
