package formatter

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

const (
	FormatMarkdown = "markdown"
	FormatText     = "text"
)

// Formatter writes a merge summary
type Formatter interface {
	Format(s *Summary) error
}

// New returns the formatter for the named format
func New(format string, w io.Writer) (Formatter, error) {
	switch format {
	case FormatText:
		return NewTextFormatter(w), nil
	case FormatMarkdown:
		return NewMarkdownFormatter(w), nil
	default:
		return nil, fmt.Errorf("invalid format: %s (must be 'text' or 'markdown')", format)
	}
}

// WriteReport writes the summary to path, creating parent directories.
// The format is taken from the file extension: .md is markdown, anything else text.
func WriteReport(path string, s *Summary) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create report directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	f, err := New(formatFromExtension(path), file)
	if err != nil {
		return err
	}
	return f.Format(s)
}

func formatFromExtension(path string) string {
	switch filepath.Ext(path) {
	case ".md", ".markdown":
		return FormatMarkdown
	default:
		return FormatText
	}
}
