package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/couchcryptid/h1b-wage-explorer/internal/domain"
)

var recordColumns = []string{
	colJobRole, colWageLevel, colState, colCounty, colAnnualWage,
	colSOCCode, colStateName, colAreaCode, colAreaName,
}

// WriteRecords writes records in the normalized layout read by ParseRecords.
// Wages keep two decimal places so hourly-derived amounts survive a reload.
func WriteRecords(w io.Writer, records []domain.WageRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(recordColumns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, rec := range records {
		row := []string{
			rec.JobRole,
			rec.WageLevel.String(),
			rec.Region.State,
			rec.Region.County,
			strconv.FormatFloat(rec.AnnualWage, 'f', 2, 64),
			rec.SOCCode,
			rec.Region.StateName,
			rec.Region.AreaCode,
			rec.Region.AreaName,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write record %d: %w", i+1, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
