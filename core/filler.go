package core

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"bom-gen/config"

	"github.com/xuri/excelize/v2"
)

// Filler writes one style's BOM into its template workbook.
type Filler struct {
	Context *GenerationContext
}

func NewFiller(ctx *GenerationContext) *Filler {
	return &Filler{Context: ctx}
}

// fillPlan is everything resolved before a template is opened.
type fillPlan struct {
	record       StyleRecord
	entries      []SkuEntry
	template     *config.TemplateConfig
	templatePath string
	templateData []byte
}

func (g *Filler) prepare(styleCode string) (*fillPlan, error) {
	ctx := g.Context
	rec, err := ctx.Index.Lookup(styleCode)
	if err != nil {
		return nil, err
	}

	entries, err := ctx.Colors.Derive(rec.StyleCode, rec.DevColors, ctx.Bundle.Generator.Sizes)
	if err != nil {
		return nil, err
	}

	tpl, err := ctx.ConfigProvider.GetTemplateConfig(rec.Category)
	if err != nil {
		return nil, err
	}

	plan := &fillPlan{record: rec, entries: entries, template: tpl}
	switch {
	case ctx.Override != nil && ctx.Override.Data != nil:
		plan.templateData = ctx.Override.Data
	case ctx.Override != nil && ctx.Override.Path != "":
		plan.templatePath = ctx.Override.Path
	case filepath.IsAbs(tpl.File):
		plan.templatePath = tpl.File
	default:
		plan.templatePath = filepath.Join(ctx.TemplateRoot, tpl.File)
	}
	return plan, nil
}

func (g *Filler) openTemplate(plan *fillPlan) (ExcelFile, error) {
	if plan.templateData != nil {
		f, err := openExcelReader(bytes.NewReader(plan.templateData))
		if err != nil {
			return nil, fmt.Errorf("failed to open template: %w", err)
		}
		return f, nil
	}
	if _, err := os.Stat(plan.templatePath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &TemplateNotFoundError{Path: plan.templatePath}
		}
		return nil, fmt.Errorf("failed to stat template: %w", err)
	}
	f, err := openExcelFile(plan.templatePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open template: %w", err)
	}
	return f, nil
}

// fill opens the template and writes every value. The caller closes the returned file.
func (g *Filler) fill(plan *fillPlan) (ExcelFile, error) {
	f, err := g.openTemplate(plan)
	if err != nil {
		return nil, err
	}
	if err := g.fillOpened(f, plan); err != nil {
		if closeErr := f.Close(); closeErr != nil {
			err = fmt.Errorf("%w; (cleanup error: %v)", err, closeErr)
		}
		return nil, err
	}
	return f, nil
}

func (g *Filler) fillOpened(f ExcelFile, plan *fillPlan) error {
	ctx := g.Context
	layout := &plan.template.Layout
	rec := plan.record

	sheet := plan.template.Sheet
	if sheet == "" {
		sheet = f.GetSheetName(f.GetActiveSheetIndex())
	}
	sheetIdx := -1
	for i, name := range f.GetSheetList() {
		if name == sheet {
			sheetIdx = i
		}
	}
	if sheetIdx < 0 {
		return fmt.Errorf("template %s has no sheet %s", plan.template.Name, sheet)
	}

	inserted, err := g.expandColorBlocks(f, sheet, &layout.Colors, len(plan.entries))
	if err != nil {
		return fmt.Errorf("expanding color blocks: %w", err)
	}

	// Merges shift with inserted rows, so the index is built afterwards.
	merges, err := buildMergeIndex(f, sheet)
	if err != nil {
		return err
	}

	gen := ctx.Bundle.Generator
	static := []struct {
		cell  string
		value string
	}{
		{layout.Cells.Timestamp, ctx.Now().Format(gen.TimestampFormat)},
		{layout.Cells.StyleCode, rec.StyleCode},
		{layout.Cells.OrderType, gen.OrderType},
		{layout.Cells.ProductName, ctx.ProductName(rec)},
		{layout.Cells.Wave, rec.Wave},
		{layout.Cells.Category, rec.Category},
	}
	if parent, ok := ctx.ConfigProvider.GetParentCategory(rec.Category); ok {
		static = append(static, struct {
			cell  string
			value string
		}{layout.Cells.ParentCategory, parent})
	}
	for _, s := range static {
		if s.cell == "" {
			continue
		}
		cell, err := shiftCell(s.cell, layout.Colors.Anchor(), inserted)
		if err != nil {
			return err
		}
		if err := merges.setCell(f, sheet, cell, s.value); err != nil {
			return err
		}
	}

	colors := &layout.Colors
	for i, entry := range plan.entries {
		row := colorRow(colors, i)
		nameCell, err := excelize.JoinCellName(colors.ColorColumn, row+colors.ColorRowOffset)
		if err != nil {
			return err
		}
		if err := merges.setCell(f, sheet, nameCell, entry.Color); err != nil {
			return err
		}
		for j, sku := range entry.SKUs {
			if j >= len(colors.SkuColumns) {
				break
			}
			cell, err := excelize.JoinCellName(colors.SkuColumns[j], row)
			if err != nil {
				return err
			}
			if err := merges.setCell(f, sheet, cell, sku.Code); err != nil {
				return err
			}
		}
	}

	// Open the result on its first cell.
	if err := f.SetSelection(sheet, "A1"); err != nil {
		slog.Debug("Failed to reset selection", "style", rec.StyleCode, "error", err)
	}
	f.SetActiveSheet(sheetIdx)

	slog.Debug("Template filled",
		"style", rec.StyleCode,
		"template", plan.template.Name,
		"colors", len(plan.entries),
		"insertedRows", inserted,
	)
	return nil
}

// shiftCell moves a cell at or below anchor down by inserted rows.
func shiftCell(cell string, anchor, inserted int) (string, error) {
	if inserted == 0 {
		return cell, nil
	}
	col, row, err := excelize.CellNameToCoordinates(cell)
	if err != nil {
		return "", err
	}
	if row < anchor {
		return cell, nil
	}
	return excelize.CoordinatesToCellName(col, row+inserted)
}

// colorRow returns the SKU row of colour i. Colours past the preset capacity
// live in the blocks inserted at the anchor row.
func colorRow(c *config.ColorBlockConfig, i int) int {
	if i < c.Capacity {
		return c.FirstRow + i*c.RowsPerColor
	}
	return c.Anchor() + (i-c.Capacity)*c.RowsPerColor
}

// expandColorBlocks inserts RowsPerColor rows per colour beyond capacity before the
// anchor row and replicates the last preset block into them. It returns the rows inserted.
func (g *Filler) expandColorBlocks(f ExcelFile, sheet string, c *config.ColorBlockConfig, colors int) (int, error) {
	extra := colors - c.Capacity
	if extra <= 0 {
		return 0, nil
	}
	insertCount := extra * c.RowsPerColor
	anchor := c.Anchor()
	if err := f.InsertRows(sheet, anchor, insertCount); err != nil {
		return 0, fmt.Errorf("failed to insert rows: %w", err)
	}

	srcStart := c.FirstRow + (c.Capacity-1)*c.RowsPerColor
	srcEnd := srcStart + c.RowsPerColor - 1
	minWidth, err := layoutWidth(c)
	if err != nil {
		return 0, err
	}
	if err := g.copyRows(f, sheet, srcStart, srcEnd, anchor, insertCount, minWidth); err != nil {
		return 0, fmt.Errorf("failed to copy color block: %w", err)
	}
	return insertCount, nil
}

// copyRows replicates rows srcStart..srcEnd (values, styles, heights and fully
// contained merges) into count rows starting at destStart.
func (g *Filler) copyRows(f ExcelFile, sheet string, srcStart, srcEnd, destStart, count, minWidth int) error {
	srcSize := srcEnd - srcStart + 1
	type cellData struct {
		val   string
		style int
	}

	var blockMerges []mergeRegion
	merged, err := f.GetMergeCells(sheet)
	if err != nil {
		return err
	}
	for _, mc := range merged {
		r, err := parseMergeCell(mc)
		if err != nil {
			continue
		}
		if r.StartRow >= srcStart && r.EndRow <= srcEnd {
			blockMerges = append(blockMerges, r)
		}
	}

	width, err := blockWidth(f, sheet, srcStart, srcEnd, blockMerges)
	if err != nil {
		return err
	}
	width = max(width, minWidth)

	// 1. Read Source
	src := make([][]cellData, srcSize)
	heights := make([]float64, srcSize)
	for p := 0; p < srcSize; p++ {
		src[p] = make([]cellData, width)
		for c := 1; c <= width; c++ {
			cn, _ := excelize.CoordinatesToCellName(c, srcStart+p)
			val, _ := f.GetCellValue(sheet, cn)
			style, _ := f.GetCellStyle(sheet, cn)
			src[p][c-1] = cellData{val, style}
		}
		heights[p], _ = f.GetRowHeight(sheet, srcStart+p)
	}

	// 2. Write to Dest
	for i := range count {
		p := i % srcSize
		destRow := destStart + i
		for c := 1; c <= width; c++ {
			data := src[p][c-1]
			cn, _ := excelize.CoordinatesToCellName(c, destRow)
			if data.val != "" {
				if err := f.SetCellValue(sheet, cn, data.val); err != nil {
					return err
				}
			}
			if data.style != 0 {
				if err := f.SetCellStyle(sheet, cn, cn, data.style); err != nil {
					return err
				}
			}
		}
		if heights[p] > 0 {
			if err := f.SetRowHeight(sheet, destRow, heights[p]); err != nil {
				return err
			}
		}
	}

	// 3. Apply Merged Cells, once per copied block
	for b := 0; b*srcSize < count; b++ {
		offset := destStart + b*srcSize - srcStart
		for _, r := range blockMerges {
			start, err := excelize.CoordinatesToCellName(r.StartCol, r.StartRow+offset)
			if err != nil {
				return err
			}
			end, err := excelize.CoordinatesToCellName(r.EndCol, r.EndRow+offset)
			if err != nil {
				return err
			}
			if err := f.MergeCell(sheet, start, end); err != nil {
				return err
			}
		}
	}
	return nil
}

// blockWidth is the right-most column used by rows start..end. Stored sheet
// dimensions are unreliable (excelize writes "A1"), so the rows are scanned.
func blockWidth(f ExcelFile, sheet string, start, end int, merges []mergeRegion) (int, error) {
	width := 0
	if dim, err := f.GetSheetDimension(sheet); err == nil {
		if _, _, maxC, _, err := parseRange(dim); err == nil {
			width = maxC
		}
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return 0, err
	}
	for r := start; r <= end && r <= len(rows); r++ {
		width = max(width, len(rows[r-1]))
	}
	for _, m := range merges {
		width = max(width, m.EndCol)
	}
	return width, nil
}

// layoutWidth is the right-most column the colour block writes to.
func layoutWidth(c *config.ColorBlockConfig) (int, error) {
	width, err := excelize.ColumnNameToNumber(c.ColorColumn)
	if err != nil {
		return 0, err
	}
	for _, col := range c.SkuColumns {
		n, err := excelize.ColumnNameToNumber(col)
		if err != nil {
			return 0, err
		}
		width = max(width, n)
	}
	return width, nil
}

// WriteBuffer fills the template for styleCode and returns the workbook bytes.
func (g *Filler) WriteBuffer(styleCode string) ([]byte, error) {
	plan, err := g.prepare(styleCode)
	if err != nil {
		return nil, err
	}
	f, err := g.fill(plan)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteFile fills the template for styleCode and saves it as {style_code}.xlsx under
// outputRoot (and the configured subdirectory). The file appears only once complete.
func (g *Filler) WriteFile(styleCode, outputRoot string) (path string, err error) {
	plan, err := g.prepare(styleCode)
	if err != nil {
		return "", err
	}

	dir := outputRoot
	if sub := g.Context.Bundle.Output.Subdir; sub != "" {
		dir = filepath.Join(outputRoot, replacePlaceholders(sub, g.Context.styleParams(plan.record)))
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	f, err := g.fill(plan)
	if err != nil {
		return "", err
	}
	defer func(f ExcelFile) {
		if closeErr := f.Close(); closeErr != nil {
			if err == nil {
				err = fmt.Errorf("failed to close template file: %w", closeErr)
			} else {
				err = fmt.Errorf("%w; (cleanup error: %v)", err, closeErr)
			}
		}
	}(f)

	path = filepath.Join(dir, OutputFileName(plan.record.StyleCode))
	if err := saveAtomic(f, path); err != nil {
		return "", err
	}
	slog.Info("BOM written", "style", plan.record.StyleCode, "path", path)
	return path, nil
}

// OutputFileName is the file name a style's BOM is saved under.
func OutputFileName(styleCode string) string {
	return safeName(styleCode) + ".xlsx"
}

// saveAtomic saves into a temp file next to path and renames it into place.
func saveAtomic(f ExcelFile, path string) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".bom-*.xlsx")
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	tmpName := tmp.Name()
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to create output file: %w", err)
	}

	if err := f.SaveAs(tmpName); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to save output: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to save output: %w", err)
	}
	return nil
}

// Helper to parse "A1:B2"; a single cell "A1" is the range A1:A1.
func parseRange(ref string) (int, int, int, int, error) {
	parts := strings.Split(ref, ":")
	if len(parts) == 1 {
		parts = append(parts, parts[0])
	}
	if len(parts) != 2 {
		return 0, 0, 0, 0, fmt.Errorf("invalid range: %s", ref)
	}
	c1, r1, err := excelize.CellNameToCoordinates(parts[0])
	if err != nil {
		return 0, 0, 0, 0, err
	}
	c2, r2, err := excelize.CellNameToCoordinates(parts[1])
	if err != nil {
		return 0, 0, 0, 0, err
	}
	return c1, r1, c2, r2, nil
}
