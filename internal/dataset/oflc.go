package dataset

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/couchcryptid/h1b-wage-explorer/internal/domain"
)

// OFLC export bundle file names.
const (
	GeographyFile   = "Geography.csv"
	ALCExportFile   = "ALC_Export.csv"
	EDCExportFile   = "EDC_Export.csv"
	OccupationsFile = "oes_soc_occs.csv"
)

// OFLCFiles lists the bundle files in load order. EDC is optional.
var OFLCFiles = []string{GeographyFile, OccupationsFile, ALCExportFile, EDCExportFile}

// county is one Geography.csv row.
type county struct {
	state     string
	stateName string
	name      string
	areaName  string
}

// wageRow is one ALC/EDC export row before it is joined to geography.
type wageRow struct {
	area    string
	socCode string
	levels  [4]string
	annual  bool
}

// loadOFLC joins the OFLC bundle in dir into wage records. ALC rows take
// priority over EDC rows for the same (area, SOC code). Hourly rows are
// annualized. Each wage row is expanded to every county of its area and to
// each wage level with a numeric value.
func loadOFLC(dir string, opts Options) ([]domain.WageRecord, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, &LoadError{Source: dir, Err: err}
	}
	if !info.IsDir() {
		return nil, &LoadError{Source: dir, Err: errors.New("oflc format expects a directory")}
	}

	areas, err := readGeography(filepath.Join(dir, GeographyFile), opts)
	if err != nil {
		return nil, err
	}
	titles, err := readOccupations(filepath.Join(dir, OccupationsFile), opts)
	if err != nil {
		return nil, err
	}

	wages, err := readWageExport(filepath.Join(dir, ALCExportFile), opts)
	if err != nil {
		return nil, err
	}
	edcPath := filepath.Join(dir, EDCExportFile)
	if _, statErr := os.Stat(edcPath); statErr == nil {
		edc, err := readWageExport(edcPath, opts)
		if err != nil {
			return nil, err
		}
		wages = append(wages, edc...)
	}

	var records []domain.WageRecord //nolint:prealloc // size depends on the join
	seen := make(map[[2]string]bool, len(wages))
	for _, w := range wages {
		key := [2]string{w.area, w.socCode}
		if seen[key] {
			continue
		}
		seen[key] = true

		role := titles[w.socCode]
		if role == "" {
			role = w.socCode
		}

		for i, raw := range w.levels {
			if raw == "" {
				continue
			}
			amount, err := domain.ParseWage(raw)
			if err != nil {
				continue
			}
			if !w.annual {
				amount = domain.HourlyToAnnual(amount)
			}
			for _, c := range areas[w.area] {
				records = append(records, domain.WageRecord{
					JobRole:   role,
					SOCCode:   w.socCode,
					WageLevel: domain.Levels[i],
					Region: domain.Region{
						State:     c.state,
						County:    c.name,
						StateName: c.stateName,
						AreaCode:  w.area,
						AreaName:  c.areaName,
					},
					AnnualWage: amount,
				})
			}
		}
	}
	return records, nil
}

// readGeography maps each area code to its counties in file order.
func readGeography(path string, opts Options) (map[string][]county, error) {
	t, closeFn, err := openTable(path)
	if err != nil {
		return nil, err
	}
	defer closeFn() //nolint:errcheck // read-only file

	if err := t.require("area", "stateab", "countytownname"); err != nil {
		return nil, err
	}

	areas := make(map[string][]county)
	rows := 0
	for {
		row, err := t.next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		area := t.get(row, "area")
		state := domain.NormalizeState(t.get(row, "stateab"))
		if area == "" || state == "" {
			return nil, t.rowError(fmt.Errorf("%w: area/stateab", ErrEmptyField))
		}
		areas[area] = append(areas[area], county{
			state:     state,
			stateName: t.get(row, "state"),
			name:      domain.NormalizeName(t.get(row, "countytownname")),
			areaName:  t.get(row, "areaname"),
		})
		rows++
	}
	opts.fileRead(GeographyFile, rows)
	return areas, nil
}

// readOccupations maps SOC codes to occupation titles.
func readOccupations(path string, opts Options) (map[string]string, error) {
	t, closeFn, err := openTable(path)
	if err != nil {
		return nil, err
	}
	defer closeFn() //nolint:errcheck // read-only file

	if err := t.require("soccode", "title"); err != nil {
		return nil, err
	}

	titles := make(map[string]string)
	for {
		row, err := t.next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		code := t.get(row, "soccode")
		if _, ok := titles[code]; ok || code == "" {
			continue
		}
		titles[code] = domain.NormalizeName(t.get(row, "title"))
	}
	opts.fileRead(OccupationsFile, len(titles))
	return titles, nil
}

// readWageExport reads an ALC or EDC export in file order.
func readWageExport(path string, opts Options) ([]wageRow, error) {
	t, closeFn, err := openTable(path)
	if err != nil {
		return nil, err
	}
	defer closeFn() //nolint:errcheck // read-only file

	if err := t.require("area", "soccode", "level1", "level2", "level3", "level4"); err != nil {
		return nil, err
	}

	var rows []wageRow //nolint:prealloc // size depends on file contents
	for {
		row, err := t.next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		w := wageRow{
			area:    t.get(row, "area"),
			socCode: t.get(row, "soccode"),
			levels: [4]string{
				t.get(row, "level1"),
				t.get(row, "level2"),
				t.get(row, "level3"),
				t.get(row, "level4"),
			},
			annual: strings.Contains(strings.ToLower(t.get(row, "label")), "annual"),
		}
		if w.area == "" || w.socCode == "" {
			return nil, t.rowError(fmt.Errorf("%w: area/soccode", ErrEmptyField))
		}
		rows = append(rows, w)
	}
	opts.fileRead(filepath.Base(path), len(rows))
	return rows, nil
}
