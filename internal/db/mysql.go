package db

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql"

	"github.com/tordrt/escolamerge/internal/table"
)

// MySQLClient manages the connection to MySQL
type MySQLClient struct {
	db *sql.DB
}

// NewMySQLClient creates a new MySQL client
func NewMySQLClient(ctx context.Context, connString string) (*MySQLClient, error) {
	db, err := sql.Open("mysql", connString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Test the connection
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &MySQLClient{db: db}, nil
}

// Export writes t into tableName. MySQL commits DDL implicitly, so a
// failed insert can leave an empty or partly filled table behind.
func (c *MySQLClient) Export(ctx context.Context, t *table.Table, tableName string, replace bool) (int, error) {
	return exportSQL(ctx, c.db, mysqlDialect, t, tableName, replace)
}

// Close closes the database connection
func (c *MySQLClient) Close(context.Context) error {
	return c.db.Close()
}

// GetDB returns the underlying database connection
func (c *MySQLClient) GetDB() *sql.DB {
	return c.db
}
