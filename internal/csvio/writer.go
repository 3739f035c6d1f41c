package csvio

import (
	"bufio"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/tordrt/escolamerge/internal/table"
)

// Write serializes t to the file at path, replacing any existing file.
// The destination directory must already exist.
func Write(ctx context.Context, path string, t *table.Table) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close output file: %w", cerr)
		}
	}()

	buf := bufio.NewWriter(f)
	if err := encode(ctx, buf, t); err != nil {
		return err
	}
	return buf.Flush()
}

// Encode writes t as CSV: a header row, then one record per row with
// missing values as empty fields. No index column is written.
func Encode(w io.Writer, t *table.Table) error {
	return encode(context.Background(), w, t)
}

func encode(ctx context.Context, w io.Writer, t *table.Table) error {
	if err := t.Validate(); err != nil {
		return err
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(t.Columns); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	record := make([]string, len(t.Columns))
	for i, row := range t.Rows {
		if err := ctx.Err(); err != nil {
			return err
		}
		for j, cell := range row {
			if cell.Valid {
				record[j] = cell.String
			} else {
				record[j] = ""
			}
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i, err)
		}
	}

	writer.Flush()
	return writer.Error()
}
