package formatter

import (
	"fmt"
	"io"
)

// TextFormatter writes the plain confirmation summary
type TextFormatter struct {
	writer io.Writer
}

// NewTextFormatter creates a new text formatter
func NewTextFormatter(w io.Writer) *TextFormatter {
	return &TextFormatter{writer: w}
}

// Format writes the output path, row count and column count, one per line
func (f *TextFormatter) Format(s *Summary) error {
	if _, err := fmt.Fprintf(f.writer, "Successfully merged files. Output saved to '%s'\n", s.OutputPath); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(f.writer, "Number of rows in merged file: %d\n", s.Rows); err != nil {
		return err
	}
	_, err := fmt.Fprintf(f.writer, "Number of columns in merged file: %d\n", len(s.Columns))
	return err
}
