package dashboard

import (
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/couchcryptid/h1b-wage-explorer/internal/domain"
)

// Detail selects the geographic granularity of a wage view.
type Detail string

const (
	DetailState  Detail = "state"
	DetailCounty Detail = "county"
)

// SalaryUnit is the unit a candidate salary is entered in.
type SalaryUnit string

const (
	UnitAnnual SalaryUnit = "annual"
	UnitHourly SalaryUnit = "hourly"
)

// Query parameter names shared by the HTTP API.
const (
	ParamJobRole    = "job_role"
	ParamWageLevel  = "wage_level"
	ParamState      = "state"
	ParamCounty     = "county"
	ParamMinWage    = "min_wage"
	ParamDetail     = "detail"
	ParamLimit      = "limit"
	ParamSalary     = "salary"
	ParamSalaryUnit = "salary_unit"
)

// WageRequest asks for the wages matching Criteria.
type WageRequest struct {
	Criteria domain.FilterCriteria
	Detail   Detail
	// Limit caps the returned rows. Zero means the service page size.
	Limit int
}

// ClassifyRequest asks how an annual salary ranks in every region matching
// Criteria. Only the job role and region of Criteria apply.
type ClassifyRequest struct {
	Salary   float64
	Unit     SalaryUnit
	Criteria domain.FilterCriteria
	Limit    int
}

// AnnualSalary returns Salary converted to an annual amount.
func (r ClassifyRequest) AnnualSalary() float64 {
	if r.Unit == UnitHourly {
		return domain.HourlyToAnnual(r.Salary)
	}
	return r.Salary
}

// Validate checks the request before it reaches the engine.
func (r WageRequest) Validate() error {
	switch r.Detail {
	case "", DetailState, DetailCounty:
	default:
		return &domain.InvalidCriteriaError{Field: ParamDetail, Reason: fmt.Sprintf("unknown detail %q", r.Detail)}
	}
	if r.Limit < 0 {
		return &domain.InvalidCriteriaError{Field: ParamLimit, Reason: "must not be negative"}
	}
	return r.Criteria.Validate()
}

// Validate checks the request before it reaches the engine.
func (r ClassifyRequest) Validate() error {
	switch r.Unit {
	case "", UnitAnnual, UnitHourly:
	default:
		return &domain.InvalidCriteriaError{Field: ParamSalaryUnit, Reason: fmt.Sprintf("unknown unit %q", r.Unit)}
	}
	if r.Limit < 0 {
		return &domain.InvalidCriteriaError{Field: ParamLimit, Reason: "must not be negative"}
	}
	if err := domain.ValidateSalary(r.AnnualSalary()); err != nil {
		return err
	}
	return r.Criteria.Validate()
}

// ParseCriteria builds filter criteria from query parameters. Blank
// parameters do not restrict the match.
func ParseCriteria(values url.Values) (domain.FilterCriteria, error) {
	c := domain.FilterCriteria{
		JobRole: domain.NormalizeName(values.Get(ParamJobRole)),
		Region: domain.Region{
			State:  domain.NormalizeState(values.Get(ParamState)),
			County: domain.NormalizeName(values.Get(ParamCounty)),
		},
	}

	if raw := strings.TrimSpace(values.Get(ParamWageLevel)); raw != "" {
		level, err := domain.ParseWageLevel(raw)
		if err != nil {
			return domain.FilterCriteria{}, &domain.InvalidCriteriaError{
				Field:  ParamWageLevel,
				Reason: fmt.Sprintf("unknown wage level %q", raw),
			}
		}
		c.WageLevel = level
	}

	if raw := strings.TrimSpace(values.Get(ParamMinWage)); raw != "" {
		v, err := parseAmount(ParamMinWage, raw)
		if err != nil {
			return domain.FilterCriteria{}, err
		}
		c.SalaryThreshold = &v
	}

	if err := c.Validate(); err != nil {
		return domain.FilterCriteria{}, err
	}
	return c, nil
}

// ParseWageRequest parses the parameters of a wage query.
func ParseWageRequest(values url.Values) (WageRequest, error) {
	criteria, err := ParseCriteria(values)
	if err != nil {
		return WageRequest{}, err
	}
	limit, err := parseLimit(values)
	if err != nil {
		return WageRequest{}, err
	}

	req := WageRequest{
		Criteria: criteria,
		Detail:   Detail(strings.ToLower(strings.TrimSpace(values.Get(ParamDetail)))),
		Limit:    limit,
	}
	if req.Detail == "" {
		req.Detail = DetailState
	}
	if err := req.Validate(); err != nil {
		return WageRequest{}, err
	}
	return req, nil
}

// ParseClassifyRequest parses the parameters of a classification query.
// The salary is required; wage_level and min_wage are ignored.
func ParseClassifyRequest(values url.Values) (ClassifyRequest, error) {
	raw := strings.TrimSpace(values.Get(ParamSalary))
	if raw == "" {
		return ClassifyRequest{}, &domain.InvalidCriteriaError{Field: ParamSalary, Reason: "is required"}
	}
	salary, err := parseAmount(ParamSalary, raw)
	if err != nil {
		return ClassifyRequest{}, err
	}

	criteria, err := ParseCriteria(url.Values{
		ParamJobRole: {values.Get(ParamJobRole)},
		ParamState:   {values.Get(ParamState)},
		ParamCounty:  {values.Get(ParamCounty)},
	})
	if err != nil {
		return ClassifyRequest{}, err
	}
	limit, err := parseLimit(values)
	if err != nil {
		return ClassifyRequest{}, err
	}

	req := ClassifyRequest{
		Salary:   salary,
		Unit:     SalaryUnit(strings.ToLower(strings.TrimSpace(values.Get(ParamSalaryUnit)))),
		Criteria: criteria,
		Limit:    limit,
	}
	if req.Unit == "" {
		req.Unit = UnitAnnual
	}
	if err := req.Validate(); err != nil {
		return ClassifyRequest{}, err
	}
	return req, nil
}

// parseAmount accepts plain or currency-formatted numbers such as "$80,000".
func parseAmount(field, raw string) (float64, error) {
	cleaned := strings.NewReplacer("$", "", ",", "").Replace(raw)
	v, err := strconv.ParseFloat(strings.TrimSpace(cleaned), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, &domain.InvalidCriteriaError{Field: field, Reason: fmt.Sprintf("%q is not a number", raw)}
	}
	if v < 0 {
		return 0, &domain.InvalidCriteriaError{Field: field, Reason: fmt.Sprintf("must not be negative, got %s", raw)}
	}
	return v, nil
}

func parseLimit(values url.Values) (int, error) {
	raw := strings.TrimSpace(values.Get(ParamLimit))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, &domain.InvalidCriteriaError{Field: ParamLimit, Reason: fmt.Sprintf("%q is not a non-negative integer", raw)}
	}
	return n, nil
}
