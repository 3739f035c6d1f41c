package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/tordrt/escolamerge/internal/table"
)

// PostgresClient manages the connection to PostgreSQL
type PostgresClient struct {
	conn *pgx.Conn
}

// NewPostgresClient creates a new PostgreSQL client
func NewPostgresClient(ctx context.Context, connString string) (*PostgresClient, error) {
	conn, err := pgx.Connect(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Test the connection
	if err := conn.Ping(ctx); err != nil {
		_ = conn.Close(ctx)
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresClient{conn: conn}, nil
}

// Export writes t into tableName with COPY. A dotted name such as
// "staging.escolas" is schema-qualified.
func (c *PostgresClient) Export(ctx context.Context, t *table.Table, tableName string, replace bool) (written int, err error) {
	if err := checkExportable(t, tableName); err != nil {
		return 0, err
	}

	ident := pgx.Identifier(strings.Split(tableName, "."))

	tx, err := c.conn.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	if replace {
		if _, err := tx.Exec(ctx, "DROP TABLE IF EXISTS "+ident.Sanitize()); err != nil {
			return 0, fmt.Errorf("failed to drop table %s: %w", tableName, err)
		}
	}

	defs := make([]string, len(t.Columns))
	for i, col := range t.Columns {
		defs[i] = pgx.Identifier{col}.Sanitize() + " TEXT"
	}
	create := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", ident.Sanitize(), strings.Join(defs, ", "))
	if _, err := tx.Exec(ctx, create); err != nil {
		return 0, fmt.Errorf("failed to create table %s: %w", tableName, err)
	}

	rows := make([][]any, len(t.Rows))
	for i, row := range t.Rows {
		rows[i] = rowValues(row)
	}

	n, err := tx.CopyFrom(ctx, ident, t.Columns, pgx.CopyFromRows(rows))
	if err != nil {
		return 0, fmt.Errorf("failed to copy rows: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit: %w", err)
	}
	return int(n), nil
}

// Close closes the database connection
func (c *PostgresClient) Close(ctx context.Context) error {
	return c.conn.Close(ctx)
}

// GetConnection returns the underlying connection
func (c *PostgresClient) GetConnection() *pgx.Conn {
	return c.conn
}
