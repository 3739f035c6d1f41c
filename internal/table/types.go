package table

import (
	"database/sql"
	"fmt"
)

// Cell is a single CSV field. Valid == false marks a missing value.
type Cell = sql.NullString

// Table is an in-memory CSV dataset.
type Table struct {
	Name    string
	Columns []string
	Rows    [][]Cell
}

// Value returns a present cell holding s
func Value(s string) Cell {
	return Cell{String: s, Valid: true}
}

// Null returns a missing cell
func Null() Cell {
	return Cell{}
}

// NumRows returns the number of data rows
func (t *Table) NumRows() int {
	return len(t.Rows)
}

// NumColumns returns the number of columns, duplicates included
func (t *Table) NumColumns() int {
	return len(t.Columns)
}

// ColumnIndex returns the index of the first column called name, or -1
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Column returns the values of the first column called name
func (t *Table) Column(name string) ([]Cell, error) {
	idx := t.ColumnIndex(name)
	if idx < 0 {
		return nil, fmt.Errorf("table %s has no column %q", t.Name, name)
	}

	values := make([]Cell, len(t.Rows))
	for i, row := range t.Rows {
		values[i] = row[idx]
	}
	return values, nil
}

// Validate checks that every row has one cell per column
func (t *Table) Validate() error {
	for i, row := range t.Rows {
		if len(row) != len(t.Columns) {
			return fmt.Errorf("table %s row %d has %d cells, want %d", t.Name, i, len(row), len(t.Columns))
		}
	}
	return nil
}

// NonNullCounts returns, per column position, how many rows hold a value
func (t *Table) NonNullCounts() []int {
	counts := make([]int, len(t.Columns))
	for _, row := range t.Rows {
		for i, cell := range row {
			if i < len(counts) && cell.Valid {
				counts[i]++
			}
		}
	}
	return counts
}
