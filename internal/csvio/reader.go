package csvio

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/tordrt/escolamerge/internal/table"
)

var (
	// ErrEmpty is returned when a CSV input has no header row
	ErrEmpty = errors.New("csv has no header row")
	// ErrTooManyFields is returned for a row longer than the header
	ErrTooManyFields = errors.New("row has more fields than the header")
)

// naTokens are the field values read as missing, besides the empty field.
var naTokens = map[string]bool{
	"#N/A": true, "#N/A N/A": true, "#NA": true, "-1.#IND": true, "-1.#QNAN": true,
	"-NaN": true, "-nan": true, "1.#IND": true, "1.#QNAN": true, "<NA>": true,
	"N/A": true, "NA": true, "NULL": true, "NaN": true, "None": true,
	"n/a": true, "nan": true, "null": true,
}

const utf8BOM = "\ufeff"

// Load reads the CSV file at path. The table is named after the file.
func Load(ctx context.Context, path string) (*table.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	t, err := read(ctx, f, filepath.Base(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return t, nil
}

// Read parses CSV data from r. The first record is the header. Repeated
// header names get a ".N" suffix. An empty field or an NA token such as
// "NA" or "null" is a missing value; every other field is kept verbatim.
// Short rows are padded with missing values; long rows are an error.
func Read(r io.Reader, name string) (*table.Table, error) {
	return read(context.Background(), r, name)
}

func read(ctx context.Context, r io.Reader, name string) (*table.Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, ErrEmpty
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse header: %w", err)
	}

	columns := make([]string, len(header))
	copy(columns, header)
	columns[0] = strings.TrimPrefix(columns[0], utf8BOM)
	columns = renameRepeated(columns)

	t := &table.Table{Name: name, Columns: columns}
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse row: %w", err)
		}
		if len(record) > len(columns) {
			line, _ := reader.FieldPos(0)
			return nil, fmt.Errorf("%w: line %d has %d fields, want at most %d", ErrTooManyFields, line, len(record), len(columns))
		}

		row := make([]table.Cell, len(columns))
		for i, field := range record {
			if field != "" && !naTokens[field] {
				row[i] = table.Value(field)
			}
		}
		t.Rows = append(t.Rows, row)
	}

	return t, nil
}

// renameRepeated suffixes later copies of a header name with ".1", ".2", ...
// skipping suffixed names the header already uses.
func renameRepeated(columns []string) []string {
	taken := make(map[string]bool, len(columns))
	for _, c := range columns {
		taken[c] = true
	}

	seen := make(map[string]bool, len(columns))
	next := make(map[string]int)
	out := make([]string, len(columns))
	for i, c := range columns {
		if !seen[c] {
			seen[c] = true
			out[i] = c
			continue
		}
		n := next[c] + 1
		for taken[fmt.Sprintf("%s.%d", c, n)] {
			n++
		}
		name := fmt.Sprintf("%s.%d", c, n)
		next[c] = n
		taken[name] = true
		seen[name] = true
		out[i] = name
	}
	return out
}
