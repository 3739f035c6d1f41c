package formatter

import (
	"fmt"
	"io"
	"strings"
)

// MarkdownFormatter formats a merge summary as a markdown report
type MarkdownFormatter struct {
	writer io.Writer
}

// NewMarkdownFormatter creates a new markdown formatter
func NewMarkdownFormatter(w io.Writer) *MarkdownFormatter {
	return &MarkdownFormatter{writer: w}
}

// Format writes the report
func (f *MarkdownFormatter) Format(s *Summary) error {
	_, _ = fmt.Fprintln(f.writer, "# Merge Report")
	_, _ = fmt.Fprintln(f.writer)
	_, _ = fmt.Fprintf(f.writer, "- **Output:** %s\n", s.OutputPath)
	_, _ = fmt.Fprintf(f.writer, "- **Key:** %s (%s join)\n", s.Key, s.Kind)
	_, _ = fmt.Fprintf(f.writer, "- **Rows:** %d\n", s.Rows)
	_, _ = fmt.Fprintf(f.writer, "- **Columns:** %d\n", len(s.Columns))
	_, _ = fmt.Fprintln(f.writer)

	if len(s.Inputs) > 0 {
		_, _ = fmt.Fprintln(f.writer, "## Inputs")
		_, _ = fmt.Fprintln(f.writer)
		for _, in := range s.Inputs {
			_, _ = fmt.Fprintf(f.writer, "- %s: %d rows, %d columns\n", in.Path, in.Rows, in.Columns)
		}
		_, _ = fmt.Fprintln(f.writer)
	}

	_, _ = fmt.Fprintln(f.writer, "## Matching")
	_, _ = fmt.Fprintln(f.writer)
	_, _ = fmt.Fprintf(f.writer, "- matched rows: %d\n", s.Matched)
	_, _ = fmt.Fprintf(f.writer, "- left only: %d\n", s.LeftOnly)
	_, _ = fmt.Fprintf(f.writer, "- right only: %d\n", s.RightOnly)
	_, _ = fmt.Fprintln(f.writer)

	// Kept values come from the left input
	if len(s.Dropped) > 0 {
		_, _ = fmt.Fprintln(f.writer, "## Dropped Duplicate Columns")
		_, _ = fmt.Fprintln(f.writer)
		_, _ = fmt.Fprintf(f.writer, "%s\n", strings.Join(s.Dropped, ", "))
		_, _ = fmt.Fprintln(f.writer)
	}

	_, _ = fmt.Fprintln(f.writer, "## Columns")
	_, _ = fmt.Fprintln(f.writer)
	_, _ = fmt.Fprintln(f.writer, "| Column | Filled |")
	_, _ = fmt.Fprintln(f.writer, "| --- | --- |")
	for _, col := range s.Columns {
		_, err := fmt.Fprintf(f.writer, "| %s | %s |\n", escapeCell(col.Name), fill(col.NonNull, s.Rows))
		if err != nil {
			return err
		}
	}

	return nil
}

func fill(n, total int) string {
	if total == 0 {
		return "0/0"
	}
	return fmt.Sprintf("%d/%d (%.1f%%)", n, total, float64(n)*100/float64(total))
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}
