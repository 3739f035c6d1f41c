package join

import "github.com/tordrt/escolamerge/internal/table"

// DedupColumns keeps the first column of each name and drops later ones,
// along with their data. It returns the new table and the dropped names in
// the order they were encountered.
func DedupColumns(t *table.Table) (*table.Table, []string) {
	seen := make(map[string]bool, len(t.Columns))
	var keep []int
	var dropped []string
	for i, c := range t.Columns {
		if seen[c] {
			dropped = append(dropped, c)
			continue
		}
		seen[c] = true
		keep = append(keep, i)
	}

	if len(dropped) == 0 {
		return t, nil
	}

	out := &table.Table{Name: t.Name, Columns: make([]string, len(keep))}
	for j, i := range keep {
		out.Columns[j] = t.Columns[i]
	}

	out.Rows = make([][]table.Cell, len(t.Rows))
	for r, row := range t.Rows {
		newRow := make([]table.Cell, len(keep))
		for j, i := range keep {
			newRow[j] = row[i]
		}
		out.Rows[r] = newRow
	}
	return out, dropped
}
