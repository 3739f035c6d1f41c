package join

import (
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/tordrt/escolamerge/internal/table"
)

// Kind selects which unmatched rows survive a join
type Kind string

const (
	Outer Kind = "outer"
	Inner Kind = "inner"
	Left  Kind = "left"
	Right Kind = "right"
)

// ErrMissingKey is returned when a join key is not a column of an input
var ErrMissingKey = errors.New("join key column not found")

// ParseKind validates a join kind name. An empty name means Outer.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case "":
		return Outer, nil
	case Outer, Inner, Left, Right:
		return Kind(s), nil
	default:
		return "", fmt.Errorf("invalid join kind: %s (must be outer, inner, left or right)", s)
	}
}

// Stats counts how input rows were paired
type Stats struct {
	Matched   int // output rows built from a left and a right row
	LeftOnly  int // left rows with no right counterpart
	RightOnly int // right rows with no left counterpart
}

// Join merges left and right on key. See JoinWithStats.
func Join(left, right *table.Table, key string, kind Kind) (*table.Table, error) {
	t, _, err := JoinWithStats(left, right, key, kind)
	return t, err
}

// JoinWithStats merges left and right on key and reports pairing counts.
//
// Output columns are every left column followed by every right column except
// the right key, so a name present on both sides appears twice with the left
// copy first. Duplicate keys yield one output row per left/right pair.
// Missing keys match each other.
func JoinWithStats(left, right *table.Table, key string, kind Kind) (*table.Table, Stats, error) {
	var stats Stats

	if kind == "" {
		kind = Outer
	}
	if _, err := ParseKind(string(kind)); err != nil {
		return nil, stats, err
	}

	leftKey := left.ColumnIndex(key)
	if leftKey < 0 {
		return nil, stats, fmt.Errorf("%w: %q in %s", ErrMissingKey, key, left.Name)
	}
	rightKey := right.ColumnIndex(key)
	if rightKey < 0 {
		return nil, stats, fmt.Errorf("%w: %q in %s", ErrMissingKey, key, right.Name)
	}

	out := &table.Table{
		Name:    left.Name + "+" + right.Name,
		Columns: append([]string(nil), left.Columns...),
	}
	for i, c := range right.Columns {
		if i != rightKey {
			out.Columns = append(out.Columns, c)
		}
	}

	leftGroups := groupRows(left, leftKey)
	rightGroups := groupRows(right, rightKey)

	build := func(l, r []table.Cell, k table.Cell) []table.Cell {
		row := make([]table.Cell, 0, len(out.Columns))
		if l != nil {
			row = append(row, l...)
		} else {
			row = append(row, make([]table.Cell, len(left.Columns))...)
			row[leftKey] = k
		}
		for i := range right.Columns {
			if i == rightKey {
				continue
			}
			if r != nil {
				row = append(row, r[i])
			} else {
				row = append(row, table.Null())
			}
		}
		return row
	}

	emit := func(k table.Cell, keepLeft, keepRight bool) {
		ls := leftGroups.rows[k]
		rs := rightGroups.rows[k]
		switch {
		case len(ls) > 0 && len(rs) > 0:
			for _, l := range ls {
				for _, r := range rs {
					out.Rows = append(out.Rows, build(l, r, k))
					stats.Matched++
				}
			}
		case len(ls) > 0:
			if keepLeft {
				for _, l := range ls {
					out.Rows = append(out.Rows, build(l, nil, k))
				}
			}
			stats.LeftOnly += len(ls)
		case len(rs) > 0:
			if keepRight {
				for _, r := range rs {
					out.Rows = append(out.Rows, build(nil, r, k))
				}
			}
			stats.RightOnly += len(rs)
		}
	}

	var keys []table.Cell
	switch kind {
	case Outer:
		keys = unionKeys(leftGroups.order, rightGroups.order)
		sortKeys(keys)
	case Inner, Left:
		keys = unionKeys(leftGroups.order, rightGroups.order)
	case Right:
		keys = unionKeys(rightGroups.order, leftGroups.order)
	}

	for _, k := range keys {
		emit(k, kind == Outer || kind == Left, kind == Outer || kind == Right)
	}

	return out, stats, nil
}

type groups struct {
	order []table.Cell
	rows  map[table.Cell][][]table.Cell
}

// groupRows buckets rows by key cell, remembering first-seen key order
func groupRows(t *table.Table, keyIdx int) groups {
	g := groups{rows: make(map[table.Cell][][]table.Cell)}
	for _, row := range t.Rows {
		k := normalizeKey(row[keyIdx])
		if _, ok := g.rows[k]; !ok {
			g.order = append(g.order, k)
		}
		g.rows[k] = append(g.rows[k], row)
	}
	return g
}

// normalizeKey makes every missing key compare equal
func normalizeKey(c table.Cell) table.Cell {
	if !c.Valid {
		return table.Null()
	}
	return c
}

func unionKeys(first, second []table.Cell) []table.Cell {
	seen := make(map[table.Cell]bool, len(first)+len(second))
	keys := make([]table.Cell, 0, len(first)+len(second))
	for _, list := range [][]table.Cell{first, second} {
		for _, k := range list {
			if !seen[k] {
				seen[k] = true
				keys = append(keys, k)
			}
		}
	}
	return keys
}

// sortKeys orders keys with the missing key last. When every present key
// is an integer they sort numerically, otherwise lexicographically.
func sortKeys(keys []table.Cell) {
	nums, numeric := integerKeys(keys)
	sort.SliceStable(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		if a.Valid != b.Valid {
			return a.Valid
		}
		if numeric && a.Valid {
			if x, y := nums[a.String], nums[b.String]; x != y {
				return x < y
			}
		}
		return a.String < b.String
	})
}

// integerKeys parses every present key as a base-10 integer. It reports
// false if any key does not parse.
func integerKeys(keys []table.Cell) (map[string]int64, bool) {
	nums := make(map[string]int64, len(keys))
	for _, k := range keys {
		if !k.Valid {
			continue
		}
		n, err := strconv.ParseInt(k.String, 10, 64)
		if err != nil {
			return nil, false
		}
		nums[k.String] = n
	}
	return nums, true
}
