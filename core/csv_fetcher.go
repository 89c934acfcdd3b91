package core

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/transform"
)

// CsvRecordFetcher implements RecordFetcher using a CSV export of the source sheet.
// The first record is the header. Encoding "gbk" or "gb18030" decodes files
// saved by Chinese-locale Excel.
type CsvRecordFetcher struct {
	Path     string
	Reader   io.Reader // read instead of Path when set
	Encoding string
}

func NewCsvRecordFetcher(path, encoding string) *CsvRecordFetcher {
	return &CsvRecordFetcher{Path: path, Encoding: encoding}
}

// NewCsvReaderFetcher reads an uploaded csv export.
func NewCsvReaderFetcher(r io.Reader, encoding string) *CsvRecordFetcher {
	return &CsvRecordFetcher{Reader: r, Encoding: encoding}
}

func (f *CsvRecordFetcher) Fetch(_ context.Context) (*Table, error) {
	in := f.Reader
	if in == nil {
		file, err := os.Open(f.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to open csv file %s: %w", f.Path, err)
		}
		defer file.Close()
		in = file
	}

	src := in
	switch strings.ToLower(f.Encoding) {
	case "gbk":
		src = transform.NewReader(in, simplifiedchinese.GBK.NewDecoder())
	case "gb18030":
		src = transform.NewReader(in, simplifiedchinese.GB18030.NewDecoder())
	}

	reader := csv.NewReader(src)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv content: %w", err)
	}

	if len(records) < 1 {
		return &Table{}, nil
	}

	header := make([]string, len(records[0]))
	for i, h := range records[0] {
		// Excel writes a UTF-8 BOM in front of the first header cell.
		header[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}

	table := &Table{Columns: header}
	for _, row := range records[1:] {
		item := make(map[string]string, len(header))
		for j, col := range row {
			if j < len(header) {
				item[header[j]] = col
			}
		}
		table.Rows = append(table.Rows, item)
	}
	return table, nil
}
