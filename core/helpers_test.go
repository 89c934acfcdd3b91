package core

import (
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"bom-gen/config"

	"github.com/xuri/excelize/v2"
)

var sourceHeader = []string{"款式编码", "波段", "品类", "开发颜色", "备注"}

// writeSourceWorkbook saves a development sheet: a title row, a subtitle row,
// the header on row 3 and one data row per entry.
func writeSourceWorkbook(t *testing.T, dir string, header []string, rows [][]string) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	sheet := config.DefaultSheet
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		t.Fatalf("rename sheet: %v", err)
	}
	f.SetCellValue(sheet, "A1", "产品开发明细表")
	f.SetCellValue(sheet, "A2", "2025 春夏")
	all := append([][]string{header}, rows...)
	for i, row := range all {
		for j, val := range row {
			cell, _ := excelize.CoordinatesToCellName(j+1, i+3)
			f.SetCellValue(sheet, cell, val)
		}
	}

	path := filepath.Join(dir, "source.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save source: %v", err)
	}
	return path
}

// templateInfo describes a saved template: SkuStyle and RowHeight are set on the last preset block.
type templateInfo struct {
	Path      string
	SkuStyle  int
	RowHeight float64
}

// writeTemplate saves a BOM template with the stock layout: labels on rows 2-5,
// three colour blocks of two rows at rows 6-11 with the name cells merged, and a
// footer on row 12.
func writeTemplate(t *testing.T, dir, name string) templateInfo {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Sheet1"
	f.SetCellValue(sheet, "I2", "制单时间")
	f.SetCellValue(sheet, "A3", "款号")
	f.SetCellValue(sheet, "E3", "订单类型")
	f.SetCellValue(sheet, "A4", "品名")
	f.SetCellValue(sheet, "E4", "波段")
	f.SetCellValue(sheet, "I4", "品类")
	f.SetCellValue(sheet, "A5", "颜色")
	for i, size := range []string{"S", "M", "L", "XL"} {
		cell, _ := excelize.CoordinatesToCellName(i+2, 5)
		f.SetCellValue(sheet, cell, size)
	}
	style, err := f.NewStyle(&excelize.Style{
		Border: []excelize.Border{{Type: "bottom", Color: "000000", Style: 1}},
	})
	if err != nil {
		t.Fatalf("new style: %v", err)
	}
	for _, row := range []int{6, 8, 10} {
		start, _ := excelize.CoordinatesToCellName(1, row)
		end, _ := excelize.CoordinatesToCellName(1, row+1)
		if err := f.MergeCell(sheet, start, end); err != nil {
			t.Fatalf("merge: %v", err)
		}
		f.SetCellValue(sheet, "F"+strconv.Itoa(row+1), "用量")
	}
	if err := f.SetCellStyle(sheet, "B10", "E11", style); err != nil {
		t.Fatalf("set style: %v", err)
	}
	if err := f.SetRowHeight(sheet, 10, 24); err != nil {
		t.Fatalf("row height: %v", err)
	}
	f.SetCellValue(sheet, "A12", "合计")

	path := filepath.Join(dir, name)
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save template: %v", err)
	}
	return templateInfo{Path: path, SkuStyle: style, RowHeight: 24}
}

var fixedNow = time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC)

// newTestContext loads the source rows and returns a context whose templates live in dir.
func newTestContext(t *testing.T, dir string, b *config.Bundle, rows [][]string) *GenerationContext {
	t.Helper()
	table := &Table{Columns: sourceHeader}
	for _, r := range rows {
		item := make(map[string]string, len(r))
		for i, v := range r {
			item[sourceHeader[i]] = v
		}
		table.Rows = append(table.Rows, item)
	}
	index, err := NewStyleIndex(table, b.Source.Columns)
	if err != nil {
		t.Fatalf("index: %v", err)
	}
	ctx, err := NewGenerationContext(b, index, dir, nil)
	if err != nil {
		t.Fatalf("context: %v", err)
	}
	ctx.Now = func() time.Time { return fixedNow }
	return ctx
}

func openResult(t *testing.T, path string) *excelize.File {
	t.Helper()
	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("open result %s: %v", path, err)
	}
	t.Cleanup(func() { f.Close() })
	return f
}

func cellValue(t *testing.T, f *excelize.File, sheet, cell string) string {
	t.Helper()
	v, err := f.GetCellValue(sheet, cell)
	if err != nil {
		t.Fatalf("read %s: %v", cell, err)
	}
	return v
}
