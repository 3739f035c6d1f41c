package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/tordrt/escolamerge/internal/table"
)

// Exporter loads a table into a database
type Exporter interface {
	// Export creates tableName with one TEXT column per table column and
	// inserts every row. With replace, an existing table is dropped first;
	// otherwise rows are appended. It returns the number of rows written.
	Export(ctx context.Context, t *table.Table, tableName string, replace bool) (int, error)
	Close(ctx context.Context) error
}

// Open connects to the database named by url.
//
// Supported URL schemes:
//   - postgres:// or postgresql://
//   - mysql:// (the rest is a go-sql-driver DSN)
//   - sqlite:// (the rest is a file path)
func Open(ctx context.Context, url string) (Exporter, error) {
	dbType, connStr, err := ParseDatabaseURL(url)
	if err != nil {
		return nil, err
	}

	switch dbType {
	case "postgres":
		client, err := NewPostgresClient(ctx, connStr)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
		}
		return client, nil
	case "mysql":
		client, err := NewMySQLClient(ctx, connStr)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to MySQL: %w", err)
		}
		return client, nil
	default:
		client, err := NewSQLiteClient(ctx, connStr)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to SQLite: %w", err)
		}
		return client, nil
	}
}

// ParseDatabaseURL detects database type and returns connection string
func ParseDatabaseURL(url string) (dbType, connectionStr string, err error) {
	if url == "" {
		return "", "", fmt.Errorf("database URL is required")
	}

	if strings.HasPrefix(url, "postgres://") || strings.HasPrefix(url, "postgresql://") {
		return "postgres", url, nil
	}

	if strings.HasPrefix(url, "mysql://") {
		// Strip mysql:// prefix for the Go MySQL driver
		return "mysql", strings.TrimPrefix(url, "mysql://"), nil
	}

	if strings.HasPrefix(url, "sqlite://") {
		return "sqlite", strings.TrimPrefix(url, "sqlite://"), nil
	}

	return "", "", fmt.Errorf("invalid database URL scheme (must start with postgres://, mysql://, or sqlite://)")
}

// dialect holds the per-database SQL differences
type dialect struct {
	quote       func(string) string
	placeholder func(n int) string
}

var (
	sqliteDialect = dialect{quote: doubleQuote, placeholder: questionMark}
	mysqlDialect  = dialect{quote: backtick, placeholder: questionMark}
)

func doubleQuote(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func backtick(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

func questionMark(int) string { return "?" }

// tableName quotes a possibly qualified name part by part, so
// "school.escolas" names table escolas in schema or database school.
func (d dialect) tableName(name string) string {
	parts := strings.Split(name, ".")
	for i, p := range parts {
		parts[i] = d.quote(p)
	}
	return strings.Join(parts, ".")
}

// checkExportable rejects tables a database cannot hold as-is
func checkExportable(t *table.Table, tableName string) error {
	if tableName == "" {
		return fmt.Errorf("table name is required")
	}
	if len(t.Columns) == 0 {
		return fmt.Errorf("table %s has no columns", t.Name)
	}
	seen := make(map[string]bool, len(t.Columns))
	for _, c := range t.Columns {
		if c == "" {
			return fmt.Errorf("table %s has an unnamed column", t.Name)
		}
		if seen[c] {
			return fmt.Errorf("table %s has duplicate column %q", t.Name, c)
		}
		seen[c] = true
	}
	return t.Validate()
}

func createTableSQL(d dialect, tableName string, columns []string) string {
	defs := make([]string, len(columns))
	for i, c := range columns {
		defs[i] = d.quote(c) + " TEXT"
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", d.tableName(tableName), strings.Join(defs, ", "))
}

func insertSQL(d dialect, tableName string, columns []string) string {
	names := make([]string, len(columns))
	marks := make([]string, len(columns))
	for i, c := range columns {
		names[i] = d.quote(c)
		marks[i] = d.placeholder(i + 1)
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", d.tableName(tableName), strings.Join(names, ", "), strings.Join(marks, ", "))
}

// rowValues converts cells to driver arguments, missing values as NULL
func rowValues(row []table.Cell) []any {
	values := make([]any, len(row))
	for i, cell := range row {
		if cell.Valid {
			values[i] = cell.String
		}
	}
	return values
}

// exportSQL writes t through database/sql inside one transaction
func exportSQL(ctx context.Context, db *sql.DB, d dialect, t *table.Table, tableName string, replace bool) (written int, err error) {
	if err := checkExportable(t, tableName); err != nil {
		return 0, err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if replace {
		if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+d.tableName(tableName)); err != nil {
			return 0, fmt.Errorf("failed to drop table %s: %w", tableName, err)
		}
	}
	if _, err := tx.ExecContext(ctx, createTableSQL(d, tableName, t.Columns)); err != nil {
		return 0, fmt.Errorf("failed to create table %s: %w", tableName, err)
	}

	stmt, err := tx.PrepareContext(ctx, insertSQL(d, tableName, t.Columns))
	if err != nil {
		return 0, fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i, row := range t.Rows {
		if _, err := stmt.ExecContext(ctx, rowValues(row)...); err != nil {
			return 0, fmt.Errorf("failed to insert row %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit: %w", err)
	}
	return len(t.Rows), nil
}
