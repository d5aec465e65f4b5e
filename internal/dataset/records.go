package dataset

import (
	"errors"
	"fmt"
	"io"

	"github.com/couchcryptid/h1b-wage-explorer/internal/domain"
)

// Columns of the normalized records layout.
const (
	colJobRole    = "job_role"
	colWageLevel  = "wage_level"
	colState      = "state"
	colCounty     = "county"
	colAnnualWage = "annual_wage"
	colSOCCode    = "soc_code"
	colStateName  = "state_name"
	colAreaCode   = "area_code"
	colAreaName   = "area_name"
)

// ParseRecords reads the normalized layout: a header row naming job_role,
// wage_level, state and annual_wage, with optional county, soc_code,
// state_name, area_code and area_name columns. A missing or blank county
// yields a state-wide record. Rows are returned in file order without
// deduplication.
func ParseRecords(r io.Reader, source string) ([]domain.WageRecord, error) {
	t, err := newTable(r, source)
	if err != nil {
		return nil, err
	}
	if err := t.require(colJobRole, colWageLevel, colState, colAnnualWage); err != nil {
		return nil, err
	}

	var records []domain.WageRecord //nolint:prealloc // size depends on file contents
	for {
		row, err := t.next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if isBlank(row) {
			continue
		}

		rec, err := parseRecordRow(t, row)
		if err != nil {
			return nil, t.rowError(err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func parseRecordRow(t *table, row []string) (domain.WageRecord, error) {
	role := domain.NormalizeName(t.get(row, colJobRole))
	if role == "" {
		return domain.WageRecord{}, fmt.Errorf("%w: %s", ErrEmptyField, colJobRole)
	}
	state := domain.NormalizeState(t.get(row, colState))
	if state == "" {
		return domain.WageRecord{}, fmt.Errorf("%w: %s", ErrEmptyField, colState)
	}
	level, err := domain.ParseWageLevel(t.get(row, colWageLevel))
	if err != nil {
		return domain.WageRecord{}, err
	}
	wage, err := domain.ParseWage(t.get(row, colAnnualWage))
	if err != nil {
		return domain.WageRecord{}, err
	}

	return domain.WageRecord{
		JobRole:   role,
		SOCCode:   t.get(row, colSOCCode),
		WageLevel: level,
		Region: domain.Region{
			State:     state,
			County:    domain.NormalizeName(t.get(row, colCounty)),
			StateName: t.get(row, colStateName),
			AreaCode:  t.get(row, colAreaCode),
			AreaName:  t.get(row, colAreaName),
		},
		AnnualWage: wage,
	}, nil
}

func isBlank(row []string) bool {
	for _, v := range row {
		if v != "" {
			return false
		}
	}
	return true
}
