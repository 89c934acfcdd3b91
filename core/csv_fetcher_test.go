package core

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"bom-gen/config"

	"golang.org/x/text/encoding/simplifiedchinese"
)

func TestCsvRecordFetcher_Fetch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "source.csv")
	content := "\ufeff款式编码,波段,品类,开发颜色\nH5A413492,春一波,长袖T恤,灰色/黑色\nH5A413493,春一波,卫衣\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write csv: %v", err)
	}

	index, err := LoadStyleIndex(context.Background(), NewCsvRecordFetcher(path, ""), config.Default().Source.Columns)
	if err != nil {
		t.Fatalf("LoadStyleIndex error: %v", err)
	}
	if index.Len() != 2 {
		t.Fatalf("styles = %d, want 2", index.Len())
	}
	rec, _ := index.Lookup("H5A413492")
	if rec.DevColors != "灰色/黑色" {
		t.Errorf("dev colors = %q, want 灰色/黑色", rec.DevColors)
	}
	// Short rows leave trailing columns empty.
	rec, _ = index.Lookup("H5A413493")
	if rec.DevColors != "" {
		t.Errorf("dev colors = %q, want empty", rec.DevColors)
	}
}

func TestCsvRecordFetcher_GBK(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "source.csv")
	content, err := simplifiedchinese.GBK.NewEncoder().String("款式编码,波段,品类,开发颜色\nH5A413492,春一波,长袖T恤,灰色\n")
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write csv: %v", err)
	}

	table, err := NewCsvRecordFetcher(path, "gbk").Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}
	if len(table.Rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(table.Rows))
	}
	if table.Rows[0]["品类"] != "长袖T恤" {
		t.Errorf("category = %q, want 长袖T恤", table.Rows[0]["品类"])
	}
}

func TestCsvRecordFetcher_MissingFile(t *testing.T) {
	_, err := NewCsvRecordFetcher(filepath.Join(t.TempDir(), "nope.csv"), "").Fetch(context.Background())
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}

func TestCsvRecordFetcher_Reader(t *testing.T) {
	content, err := simplifiedchinese.GB18030.NewEncoder().String("款式编码,波段,品类,开发颜色\nH5A413492,春一波,长袖T恤,灰色\n")
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	table, err := NewCsvReaderFetcher(strings.NewReader(content), "gb18030").Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}
	if len(table.Rows) != 1 || table.Rows[0]["开发颜色"] != "灰色" {
		t.Errorf("rows = %v", table.Rows)
	}
}
