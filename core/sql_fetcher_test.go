package core

import (
	"context"
	"path/filepath"
	"testing"

	"bom-gen/config"

	"github.com/jmoiron/sqlx"
)

func newStyleDB(t *testing.T) string {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "styles.db")
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer db.Close()

	db.MustExec(`CREATE TABLE styles (款式编码 TEXT, 波段 TEXT, 品类 TEXT, 开发颜色 TEXT, 数量 INTEGER)`)
	db.MustExec(`INSERT INTO styles VALUES (?, ?, ?, ?, ?)`, "H5A413492", "春一波", "长袖T恤", "灰色/黑色", 120)
	db.MustExec(`INSERT INTO styles VALUES (?, ?, ?, ?, ?)`, "H5A413493", "春二波", "卫衣", "白色", nil)
	return dsn
}

func TestSQLRecordFetcher_Fetch(t *testing.T) {
	dsn := newStyleDB(t)
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer db.Close()

	table, err := NewSQLRecordFetcher(db, "styles", "").Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}
	if len(table.Columns) != 5 {
		t.Errorf("columns = %v, want 5", table.Columns)
	}
	if len(table.Rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(table.Rows))
	}
	if table.Rows[0]["数量"] != "120" {
		t.Errorf("数量 = %q, want 120", table.Rows[0]["数量"])
	}
	if table.Rows[1]["数量"] != "" {
		t.Errorf("NULL should read as empty, got %q", table.Rows[1]["数量"])
	}

	table, err = NewSQLRecordFetcher(db, "", `SELECT 款式编码, 波段, 品类, 开发颜色 FROM styles WHERE 波段 = '春二波'`).Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch with query error: %v", err)
	}
	if len(table.Rows) != 1 || table.Rows[0]["款式编码"] != "H5A413493" {
		t.Errorf("unexpected rows %v", table.Rows)
	}
}

func TestSQLRecordFetcher_RejectsTableName(t *testing.T) {
	dsn := newStyleDB(t)
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer db.Close()

	if _, err := NewSQLRecordFetcher(db, "styles; DROP TABLE styles", "").Fetch(context.Background()); err == nil {
		t.Fatal("expected invalid table name error")
	}
}

func TestLoadSource_SQLite(t *testing.T) {
	dsn := newStyleDB(t)
	src := config.Default().Source
	src.Driver = config.DriverSQLite
	src.Table = "styles"

	index, err := LoadSource(context.Background(), src, dsn)
	if err != nil {
		t.Fatalf("LoadSource error: %v", err)
	}
	rec, err := index.Lookup("H5A413492")
	if err != nil {
		t.Fatalf("Lookup error: %v", err)
	}
	if rec.Category != "长袖T恤" {
		t.Errorf("category = %q, want 长袖T恤", rec.Category)
	}
}

func TestOpenSource_Errors(t *testing.T) {
	tests := []struct {
		name     string
		driver   config.SourceDriver
		location string
	}{
		{"xlsx without path", config.DriverXlsx, ""},
		{"csv without path", config.DriverCsv, ""},
		{"mysql without dsn", config.DriverMySQL, ""},
		{"unknown driver", "oracle", "x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := config.Default().Source
			src.Driver = tt.driver
			if _, _, err := OpenSource(context.Background(), src, tt.location); err == nil {
				t.Error("expected error")
			}
		})
	}
}
