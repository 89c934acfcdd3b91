package main

import (
	"archive/zip"
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"bom-gen/config"
	"bom-gen/core"

	"github.com/xuri/excelize/v2"
)

func writeFixtures(t *testing.T, dir string, rows [][]string) (source, templates string) {
	t.Helper()
	templates = filepath.Join(dir, "templates")
	if err := os.MkdirAll(templates, 0755); err != nil {
		t.Fatalf("mkdir templates: %v", err)
	}
	tpl := excelize.NewFile()
	tpl.SetCellValue("Sheet1", "A3", "款号")
	if err := tpl.SaveAs(filepath.Join(templates, "bom_template.xlsx")); err != nil {
		t.Fatalf("save template: %v", err)
	}
	tpl.Close()

	src := excelize.NewFile()
	src.SetSheetName("Sheet1", "明细表")
	src.SetCellValue("明细表", "A1", "产品开发明细表")
	src.SetSheetRow("明细表", "A3", &[]interface{}{"款式编码", "波段", "品类", "开发颜色"})
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+4)
		vals := make([]interface{}, len(row))
		for j, v := range row {
			vals[j] = v
		}
		src.SetSheetRow("明细表", cell, &vals)
	}
	source = filepath.Join(dir, "source.xlsx")
	if err := src.SaveAs(source); err != nil {
		t.Fatalf("save source: %v", err)
	}
	src.Close()
	return source, templates
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	source, templates := writeFixtures(t, dir, [][]string{
		{"H5A413492", "春一波", "长袖T恤", "灰色/黑色"},
		{"H5A413493", "春一波", "卫衣", "白色"},
	})
	outputDir := filepath.Join(dir, "output")

	var logs bytes.Buffer
	if err := run(&logs, []string{
		"-source", source,
		"-templates", templates,
		"-output", outputDir,
	}); err != nil {
		t.Fatalf("run error: %v\n%s", err, logs.String())
	}

	for _, code := range []string{"H5A413492", "H5A413493"} {
		outputPath := filepath.Join(outputDir, code+".xlsx")
		if _, err := os.Stat(outputPath); err != nil {
			t.Fatalf("expected output file, got error: %v", err)
		}
	}
	if !strings.Contains(logs.String(), "Generated 2 BOM files") {
		t.Errorf("summary missing from output:\n%s", logs.String())
	}
}

func TestRun_PartialFailure(t *testing.T) {
	dir := t.TempDir()
	source, templates := writeFixtures(t, dir, [][]string{
		{"H5A413492", "春一波", "长袖T恤", "灰色"},
		{"H5A413493", "春一波", "卫衣", "荧光粉"},
	})
	outputDir := filepath.Join(dir, "output")

	var logs bytes.Buffer
	err := run(&logs, []string{
		"-source", source,
		"-templates", templates,
		"-output", outputDir,
		"-codes", "H5A413492, H5A413493",
	})
	if err == nil {
		t.Fatal("expected error when a style fails")
	}
	if _, err := os.Stat(filepath.Join(outputDir, "H5A413492.xlsx")); err != nil {
		t.Errorf("successful style should still be written: %v", err)
	}
	if _, err := os.Stat(filepath.Join(outputDir, "H5A413493.xlsx")); !os.IsNotExist(err) {
		t.Errorf("failed style should leave no file, stat err = %v", err)
	}
}

func TestRun_Zip(t *testing.T) {
	dir := t.TempDir()
	source, templates := writeFixtures(t, dir, [][]string{
		{"H5A413492", "春一波", "长袖T恤", "灰色"},
	})
	zipPath := filepath.Join(dir, "out", "BOM_files.zip")

	var logs bytes.Buffer
	if err := run(&logs, []string{
		"-source", source,
		"-templates", templates,
		"-zip", zipPath,
		"-log-level", "debug",
	}); err != nil {
		t.Fatalf("run error: %v\n%s", err, logs.String())
	}

	zr, err := zip.OpenReader(zipPath)
	if err != nil {
		t.Fatalf("open zip: %v", err)
	}
	defer zr.Close()
	if len(zr.File) != 1 || zr.File[0].Name != "H5A413492.xlsx" {
		t.Errorf("unexpected entries %v", zr.File)
	}
}

func TestWriteZip(t *testing.T) {
	dir := t.TempDir()
	source, templates := writeFixtures(t, dir, [][]string{
		{"A1", "春一波", "卫衣", "灰色"},
		{"A2", "春一波", "卫衣", "未知色"},
	})
	bundle := config.Default()
	index, err := core.LoadSource(context.Background(), bundle.Source, source)
	if err != nil {
		t.Fatalf("LoadSource error: %v", err)
	}
	genCtx, err := core.NewGenerationContext(bundle, index, templates, nil)
	if err != nil {
		t.Fatalf("NewGenerationContext error: %v", err)
	}

	outDir := filepath.Join(dir, "out")
	zipPath := filepath.Join(outDir, "boms.zip")
	sum, data, err := writeZip(core.NewBatch(genCtx), zipPath, index.AllStyleCodes())
	if err != nil {
		t.Fatalf("writeZip error: %v", err)
	}
	if sum.Succeeded != 1 || len(sum.Failures) != 1 {
		t.Errorf("unexpected summary %+v", sum)
	}

	saved, err := os.ReadFile(zipPath)
	if err != nil {
		t.Fatalf("read archive: %v", err)
	}
	if !bytes.Equal(saved, data) {
		t.Error("returned archive bytes differ from the saved file")
	}
	entries, _ := os.ReadDir(outDir)
	if len(entries) != 1 {
		t.Errorf("output dir holds %d entries, want only the archive", len(entries))
	}
}

func TestRun_Errors(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name string
		args []string
	}{
		{"bad log level", []string{"-log-level", "loud"}},
		{"missing config", []string{"-config", filepath.Join(dir, "nope.yaml")}},
		{"missing source", []string{"-source", filepath.Join(dir, "nope.xlsx")}},
		{"sql without dsn", []string{"-driver", "mysql"}},
		{"unknown flag", []string{"-nope"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var logs bytes.Buffer
			if err := run(&logs, tt.args); err == nil {
				t.Error("expected error")
			}
		})
	}
}
