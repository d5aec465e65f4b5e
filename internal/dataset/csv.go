package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// table reads a CSV file with a header row and resolves columns by
// case-insensitive name.
type table struct {
	source  string
	reader  *csv.Reader
	columns map[string]int
	line    int
}

func newTable(r io.Reader, source string) (*table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &LoadError{Source: source, Err: errors.New("empty file")}
		}
		return nil, &LoadError{Source: source, Err: fmt.Errorf("read header: %w", err)}
	}

	columns := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimPrefix(h, "\ufeff")
		columns[strings.ToLower(strings.TrimSpace(h))] = i
	}
	return &table{source: source, reader: reader, columns: columns, line: 1}, nil
}

// require returns an error naming the first absent column.
func (t *table) require(names ...string) error {
	for _, name := range names {
		if _, ok := t.columns[name]; !ok {
			return &LoadError{Source: t.source, Err: fmt.Errorf("%w: %s", ErrMissingColumn, name)}
		}
	}
	return nil
}

// next returns the next row, or io.EOF.
func (t *table) next() ([]string, error) {
	row, err := t.reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, &LoadError{Source: t.source, Line: t.line + 1, Err: err}
	}
	t.line++
	return row, nil
}

// get returns the trimmed value of a named column, or "" if the column is
// absent or the row is short.
func (t *table) get(row []string, name string) string {
	i, ok := t.columns[name]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func (t *table) rowError(err error) error {
	return &LoadError{Source: t.source, Line: t.line, Err: err}
}

// openTable opens a CSV file. The returned close func must be called.
func openTable(path string) (*table, func() error, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, &LoadError{Source: path, Err: err}
	}
	t, err := newTable(f, path)
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	return t, f.Close, nil
}
