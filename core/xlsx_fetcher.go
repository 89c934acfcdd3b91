package core

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strings"
)

// XlsxRecordFetcher implements RecordFetcher over a worksheet of a workbook.
// Rows above HeaderRow are titles and are discarded; the header row names the columns.
type XlsxRecordFetcher struct {
	Path      string
	Reader    io.Reader // used instead of Path when set, e.g. for uploads
	Sheet     string
	HeaderRow int // 1-based
}

func NewXlsxRecordFetcher(path, sheet string, headerRow int) *XlsxRecordFetcher {
	return &XlsxRecordFetcher{Path: path, Sheet: sheet, HeaderRow: headerRow}
}

func NewXlsxReaderFetcher(r io.Reader, sheet string, headerRow int) *XlsxRecordFetcher {
	return &XlsxRecordFetcher{Reader: r, Sheet: sheet, HeaderRow: headerRow}
}

func (f *XlsxRecordFetcher) Fetch(_ context.Context) (table *Table, err error) {
	var wb ExcelFile
	if f.Reader != nil {
		wb, err = openExcelReader(f.Reader)
	} else {
		wb, err = openExcelFile(f.Path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open source workbook: %w", err)
	}
	defer func() {
		if closeErr := wb.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close source workbook: %w", closeErr)
		}
	}()

	if !slices.Contains(wb.GetSheetList(), f.Sheet) {
		return nil, &SheetNotFoundError{Sheet: f.Sheet}
	}

	rows, err := wb.GetRows(f.Sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", f.Sheet, err)
	}

	headerIdx := f.HeaderRow - 1
	if headerIdx < 0 || headerIdx >= len(rows) {
		// No header: every required column is missing.
		return &Table{}, nil
	}

	header := make([]string, len(rows[headerIdx]))
	for i, h := range rows[headerIdx] {
		header[i] = strings.TrimSpace(h)
	}

	table = &Table{Columns: header}
	for _, row := range rows[headerIdx+1:] {
		item := make(map[string]string, len(header))
		blank := true
		for j, val := range row {
			if j >= len(header) || header[j] == "" {
				continue
			}
			if _, seen := item[header[j]]; seen {
				continue // duplicate header text: first column wins
			}
			item[header[j]] = val
			if strings.TrimSpace(val) != "" {
				blank = false
			}
		}
		if !blank {
			table.Rows = append(table.Rows, item)
		}
	}
	return table, nil
}
