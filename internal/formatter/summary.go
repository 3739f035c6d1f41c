package formatter

// Summary describes a finished merge for reporting
type Summary struct {
	OutputPath string
	Key        string
	Kind       string
	Rows       int
	Columns    []ColumnSummary
	Inputs     []InputSummary
	Matched    int
	LeftOnly   int
	RightOnly  int
	Dropped    []string // duplicate column names removed after the join
}

// InputSummary describes one input dataset
type InputSummary struct {
	Path    string
	Rows    int
	Columns int
}

// ColumnSummary describes one output column
type ColumnSummary struct {
	Name    string
	NonNull int
}
