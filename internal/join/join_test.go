package join

import (
	"errors"
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/tordrt/escolamerge/internal/table"
)

// build creates a table from string rows; "" becomes a missing value
func build(name string, columns []string, rows ...[]string) *table.Table {
	t := &table.Table{Name: name, Columns: columns}
	for _, r := range rows {
		row := make([]table.Cell, len(r))
		for i, v := range r {
			if v != "" {
				row[i] = table.Value(v)
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// flatten renders rows as strings with "<nil>" for missing values
func flatten(t *table.Table) [][]string {
	out := make([][]string, len(t.Rows))
	for i, row := range t.Rows {
		out[i] = make([]string, len(row))
		for j, c := range row {
			if c.Valid {
				out[i][j] = c.String
			} else {
				out[i][j] = "<nil>"
			}
		}
	}
	return out
}

func mergeAndDedup(t *testing.T, left, right *table.Table) *table.Table {
	t.Helper()
	joined, err := Join(left, right, "Escola", Outer)
	if err != nil {
		t.Fatalf("Join() error = %v", err)
	}
	out, _ := DedupColumns(joined)
	return out
}

func TestOuterJoinKeyCompleteness(t *testing.T) {
	a := build("a", []string{"Escola", "Equip"}, []string{"1", "x"}, []string{"2", "y"}, []string{"3", "z"})
	b := build("b", []string{"Escola", "Nome"}, []string{"2", "B"}, []string{"3", "C"}, []string{"4", "D"})

	out := mergeAndDedup(t, a, b)

	keys, err := out.Column("Escola")
	if err != nil {
		t.Fatal(err)
	}
	var got []string
	for _, k := range keys {
		got = append(got, k.String)
	}
	sort.Strings(got)

	if diff := cmp.Diff([]string{"1", "2", "3", "4"}, got); diff != "" {
		t.Errorf("keys mismatch (-want +got):\n%s", diff)
	}
	if out.NumRows() != 4 {
		t.Errorf("NumRows() = %d, want 4", out.NumRows())
	}
}

func TestOuterJoinFillsMissingSide(t *testing.T) {
	a := build("a", []string{"Escola", "Equip"}, []string{"1", "x"}, []string{"2", "y"})
	b := build("b", []string{"Escola", "Nome"}, []string{"2", "B"}, []string{"3", "C"})

	out := mergeAndDedup(t, a, b)

	want := [][]string{
		{"1", "x", "<nil>"},
		{"2", "y", "B"},
		{"3", "<nil>", "C"},
	}
	if diff := cmp.Diff(want, flatten(out)); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
}

func TestFirstOccurrenceWins(t *testing.T) {
	a := build("a", []string{"Escola", "Name"}, []string{"1", "from-a"})
	b := build("b", []string{"Escola", "Name", "Cidade"}, []string{"1", "from-b", "Natal"})

	joined, err := Join(a, b, "Escola", Outer)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"Escola", "Name", "Name", "Cidade"}, joined.Columns); diff != "" {
		t.Errorf("joined columns mismatch (-want +got):\n%s", diff)
	}

	out, dropped := DedupColumns(joined)
	if diff := cmp.Diff([]string{"Name"}, dropped); diff != "" {
		t.Errorf("dropped mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([][]string{{"1", "from-a", "Natal"}}, flatten(out)); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
}

func TestColumnCountIsDistinctNames(t *testing.T) {
	a := build("a", []string{"Escola", "Equip", "Name"}, []string{"1", "5", "n"})
	b := build("b", []string{"Escola", "Name", "Cidade", "UF"}, []string{"1", "m", "c", "RN"})

	out := mergeAndDedup(t, a, b)

	// Escola, Equip, Name, Cidade, UF
	if out.NumColumns() != 5 {
		t.Errorf("NumColumns() = %d, want 5", out.NumColumns())
	}
}

func TestEquipAndNameExample(t *testing.T) {
	a := build("a", []string{"Escola", "Equip"}, []string{"X", "5"})
	b := build("b", []string{"Escola", "Name"}, []string{"X", "Foo"}, []string{"Y", "Bar"})

	out := mergeAndDedup(t, a, b)

	if diff := cmp.Diff([]string{"Escola", "Equip", "Name"}, out.Columns); diff != "" {
		t.Errorf("columns mismatch (-want +got):\n%s", diff)
	}
	want := [][]string{
		{"X", "5", "Foo"},
		{"Y", "<nil>", "Bar"},
	}
	if diff := cmp.Diff(want, flatten(out)); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
}

func TestDuplicateKeysExpand(t *testing.T) {
	a := build("a", []string{"Escola", "A"}, []string{"1", "a1"}, []string{"1", "a2"})
	b := build("b", []string{"Escola", "B"}, []string{"1", "b1"}, []string{"1", "b2"})

	out, stats, err := JoinWithStats(a, b, "Escola", Outer)
	if err != nil {
		t.Fatal(err)
	}

	want := [][]string{
		{"1", "a1", "b1"},
		{"1", "a1", "b2"},
		{"1", "a2", "b1"},
		{"1", "a2", "b2"},
	}
	if diff := cmp.Diff(want, flatten(out)); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
	if stats.Matched != 4 {
		t.Errorf("Matched = %d, want 4", stats.Matched)
	}
}

func TestMissingKeysMatchAndSortLast(t *testing.T) {
	a := build("a", []string{"Escola", "A"}, []string{"", "a0"}, []string{"b", "a1"})
	b := build("b", []string{"Escola", "B"}, []string{"", "b0"}, []string{"a", "b1"})

	out, err := Join(a, b, "Escola", Outer)
	if err != nil {
		t.Fatal(err)
	}

	want := [][]string{
		{"a", "<nil>", "b1"},
		{"b", "a1", "<nil>"},
		{"<nil>", "a0", "b0"},
	}
	if diff := cmp.Diff(want, flatten(out)); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
}

func TestOuterJoinKeyOrder(t *testing.T) {
	tests := []struct {
		name  string
		left  []string
		right []string
		want  []string
	}{
		{
			name:  "integer keys sort numerically",
			left:  []string{"10", "2"},
			right: []string{"1", "", "2"},
			want:  []string{"1", "2", "10", "<nil>"},
		},
		{
			name:  "leading zeros tie-break as strings",
			left:  []string{"01", "3"},
			right: []string{"1"},
			want:  []string{"01", "1", "3"},
		},
		{
			name:  "mixed keys sort as strings",
			left:  []string{"10", "2"},
			right: []string{"E1"},
			want:  []string{"10", "2", "E1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var leftRows, rightRows [][]string
			for _, k := range tt.left {
				leftRows = append(leftRows, []string{k})
			}
			for _, k := range tt.right {
				rightRows = append(rightRows, []string{k})
			}
			a := build("a", []string{"Escola"}, leftRows...)
			b := build("b", []string{"Escola"}, rightRows...)

			out, err := Join(a, b, "Escola", Outer)
			if err != nil {
				t.Fatal(err)
			}

			var got []string
			for _, row := range flatten(out) {
				got = append(got, row[0])
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("key order mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestJoinKinds(t *testing.T) {
	a := build("a", []string{"Escola", "A"}, []string{"2", "a2"}, []string{"1", "a1"})
	b := build("b", []string{"Escola", "B"}, []string{"3", "b3"}, []string{"2", "b2"})

	tests := []struct {
		name      string
		kind      Kind
		want      [][]string
		wantStats Stats
	}{
		{
			name: "outer",
			kind: Outer,
			want: [][]string{
				{"1", "a1", "<nil>"},
				{"2", "a2", "b2"},
				{"3", "<nil>", "b3"},
			},
			wantStats: Stats{Matched: 1, LeftOnly: 1, RightOnly: 1},
		},
		{
			name:      "inner",
			kind:      Inner,
			want:      [][]string{{"2", "a2", "b2"}},
			wantStats: Stats{Matched: 1, LeftOnly: 1, RightOnly: 1},
		},
		{
			name: "left",
			kind: Left,
			want: [][]string{
				{"2", "a2", "b2"},
				{"1", "a1", "<nil>"},
			},
			wantStats: Stats{Matched: 1, LeftOnly: 1, RightOnly: 1},
		},
		{
			name: "right",
			kind: Right,
			want: [][]string{
				{"3", "<nil>", "b3"},
				{"2", "a2", "b2"},
			},
			wantStats: Stats{Matched: 1, LeftOnly: 1, RightOnly: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, stats, err := JoinWithStats(a, b, "Escola", tt.kind)
			if err != nil {
				t.Fatalf("JoinWithStats() error = %v", err)
			}
			if diff := cmp.Diff(tt.want, flatten(out)); diff != "" {
				t.Errorf("rows mismatch (-want +got):\n%s", diff)
			}
			if stats != tt.wantStats {
				t.Errorf("stats = %+v, want %+v", stats, tt.wantStats)
			}
		})
	}
}

func TestJoinMissingKeyColumn(t *testing.T) {
	a := build("a.csv", []string{"Escola"}, []string{"1"})
	b := build("b.csv", []string{"School"}, []string{"1"})

	_, err := Join(a, b, "Escola", Outer)
	if !errors.Is(err, ErrMissingKey) {
		t.Fatalf("Join() error = %v, want ErrMissingKey", err)
	}

	_, err = Join(b, a, "Escola", Outer)
	if !errors.Is(err, ErrMissingKey) {
		t.Fatalf("Join() error = %v, want ErrMissingKey", err)
	}
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		in      string
		want    Kind
		wantErr bool
	}{
		{in: "", want: Outer},
		{in: "outer", want: Outer},
		{in: "inner", want: Inner},
		{in: "left", want: Left},
		{in: "right", want: Right},
		{in: "cross", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseKind(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseKind(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseKind(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestDedupColumnsNoDuplicates(t *testing.T) {
	in := build("a", []string{"Escola", "A"}, []string{"1", "x"})

	out, dropped := DedupColumns(in)
	if out != in {
		t.Error("DedupColumns() should return the input table when nothing is dropped")
	}
	if dropped != nil {
		t.Errorf("dropped = %v, want nil", dropped)
	}
}
