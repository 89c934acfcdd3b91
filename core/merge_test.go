package core

import (
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestMergeIndex_RedirectsToAnchor(t *testing.T) {
	f := &ExcelizeFile{file: excelize.NewFile()}
	defer f.Close()

	sheet := "Sheet1"
	if err := f.MergeCell(sheet, "B3", "D3"); err != nil {
		t.Fatalf("MergeCell failed: %v", err)
	}
	if err := f.MergeCell(sheet, "A6", "A7"); err != nil {
		t.Fatalf("MergeCell failed: %v", err)
	}

	idx, err := buildMergeIndex(f, sheet)
	if err != nil {
		t.Fatalf("buildMergeIndex failed: %v", err)
	}

	tests := []struct {
		cell string
		want string
	}{
		{"B3", "B3"},
		{"C3", "B3"},
		{"D3", "B3"},
		{"E3", "E3"},
		{"A7", "A6"},
		{"A8", "A8"},
	}
	for _, tt := range tests {
		got, err := idx.resolve(tt.cell)
		if err != nil {
			t.Fatalf("resolve(%s) error: %v", tt.cell, err)
		}
		if got != tt.want {
			t.Errorf("resolve(%s) = %s, want %s", tt.cell, got, tt.want)
		}
	}

	if err := idx.setCell(f, sheet, "D3", "H5A413492"); err != nil {
		t.Fatalf("setCell failed: %v", err)
	}
	if got, _ := f.GetCellValue(sheet, "B3"); got != "H5A413492" {
		t.Errorf("B3 = %q, want H5A413492", got)
	}

	if _, err := idx.resolve("not-a-cell"); err == nil {
		t.Error("expected error for invalid cell")
	}
}
