package core

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"bom-gen/config"
)

// Table is the raw row set a RecordFetcher returns: the column names it saw and
// one map per data row keyed by those names.
type Table struct {
	Columns []string
	Rows    []map[string]string
}

// RecordFetcher loads the source table that style records are built from.
type RecordFetcher interface {
	Fetch(ctx context.Context) (*Table, error)
}

// StyleRecord holds the attributes of one style as recorded in the source.
type StyleRecord struct {
	StyleCode string
	Wave      string
	Category  string
	DevColors string
}

// StyleIndex is the immutable, loaded source table keyed by style code.
type StyleIndex struct {
	records map[string]StyleRecord
	codes   []string
}

// LoadStyleIndex fetches the source table and indexes it.
func LoadStyleIndex(ctx context.Context, fetcher RecordFetcher, cols config.ColumnConfig) (*StyleIndex, error) {
	table, err := fetcher.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	return NewStyleIndex(table, cols)
}

// NewStyleIndex validates that every required column is present and indexes the rows.
// Duplicate style codes keep their first row.
func NewStyleIndex(table *Table, cols config.ColumnConfig) (*StyleIndex, error) {
	var missing []string
	for _, name := range cols.Required() {
		if !slices.Contains(table.Columns, name) {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, &MissingColumnError{Columns: missing}
	}

	idx := &StyleIndex{records: make(map[string]StyleRecord)}
	for _, row := range table.Rows {
		code := strings.TrimSpace(row[cols.StyleCode])
		if code == "" {
			continue
		}
		if _, exists := idx.records[code]; exists {
			continue
		}
		idx.records[code] = StyleRecord{
			StyleCode: code,
			Wave:      strings.TrimSpace(row[cols.Wave]),
			Category:  strings.TrimSpace(row[cols.Category]),
			DevColors: strings.TrimSpace(row[cols.DevColors]),
		}
		idx.codes = append(idx.codes, code)
	}

	slog.Debug("Source indexed", "rows", len(table.Rows), "styles", len(idx.codes))
	return idx, nil
}

// Lookup returns the record for styleCode.
func (x *StyleIndex) Lookup(styleCode string) (StyleRecord, error) {
	rec, ok := x.records[strings.TrimSpace(styleCode)]
	if !ok {
		return StyleRecord{}, &StyleNotFoundError{StyleCode: styleCode}
	}
	return rec, nil
}

// AllStyleCodes returns the unique, non-empty style codes in first-seen order.
func (x *StyleIndex) AllStyleCodes() []string {
	return slices.Clone(x.codes)
}

// Len returns the number of distinct styles.
func (x *StyleIndex) Len() int {
	return len(x.codes)
}

// cellString renders a fetched value the way it reads in a spreadsheet cell.
func cellString(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case []byte:
		return string(val)
	default:
		return fmt.Sprintf("%v", val)
	}
}
