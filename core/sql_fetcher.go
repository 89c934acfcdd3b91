package core

import (
	"context"
	"fmt"
	"regexp"

	"github.com/jmoiron/sqlx"
)

var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_.]*$`)

// SQLRecordFetcher implements RecordFetcher using a SQL database (MySQL, PostgreSQL, SQLite).
// Query wins over Table; with only Table set, every column of the table is read.
type SQLRecordFetcher struct {
	DB    *sqlx.DB
	Table string
	Query string
}

// NewSQLRecordFetcher creates a new fetcher.
func NewSQLRecordFetcher(db *sqlx.DB, table, query string) *SQLRecordFetcher {
	return &SQLRecordFetcher{DB: db, Table: table, Query: query}
}

// Fetch runs the query and returns every row keyed by column name.
func (f *SQLRecordFetcher) Fetch(ctx context.Context) (*Table, error) {
	query := f.Query
	if query == "" {
		if !tableNamePattern.MatchString(f.Table) {
			return nil, fmt.Errorf("invalid table name: %q", f.Table)
		}
		query = fmt.Sprintf("SELECT * FROM %s", f.Table)
	}

	rows, err := f.DB.QueryxContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to get columns: %w", err)
	}

	table := &Table{Columns: columns}
	for rows.Next() {
		entry := make(map[string]interface{}, len(columns))
		if err := rows.MapScan(entry); err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		item := make(map[string]string, len(entry))
		for col, val := range entry {
			// MySQL returns text columns as []byte.
			item[col] = cellString(val)
		}
		table.Rows = append(table.Rows, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return table, nil
}
