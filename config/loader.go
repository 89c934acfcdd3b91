package config

import (
	_ "embed"
	"fmt"
	"maps"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

//go:embed color_codes.yaml
var defaultColorCodes []byte

const (
	DefaultSheet        = "明细表"
	DefaultHeaderRow    = 3
	DefaultArchiveName  = "BOM_files.zip"
	DefaultTemplateFile = "bom_template.xlsx"
)

// DefaultLayout is the cell layout of the stock BOM template.
func DefaultLayout() LayoutConfig {
	return LayoutConfig{
		Cells: CellsConfig{
			Timestamp:      "J2",
			StyleCode:      "B3",
			OrderType:      "F3",
			ProductName:    "B4",
			Wave:           "F4",
			Category:       "J4",
			ParentCategory: "K4",
		},
		Colors: ColorBlockConfig{
			ColorColumn:  "A",
			SkuColumns:   []string{"B", "C", "D", "E"},
			FirstRow:     6,
			RowsPerColor: 2,
			Capacity:     3,
		},
	}
}

// Default returns a bundle that works with the stock template and source workbook.
func Default() *Bundle {
	codes, err := ParseColorCodes(defaultColorCodes)
	if err != nil {
		panic(fmt.Sprintf("embedded color codes: %v", err))
	}
	return &Bundle{
		Source: SourceConfig{
			Driver:    DriverXlsx,
			Sheet:     DefaultSheet,
			HeaderRow: DefaultHeaderRow,
			Columns: ColumnConfig{
				StyleCode: "款式编码",
				Wave:      "波段",
				Category:  "品类",
				DevColors: "开发颜色",
			},
		},
		Generator: GeneratorConfig{
			BrandPrefix:     "HECO",
			OrderType:       "首单",
			Sizes:           []string{"S", "M", "L", "XL"},
			TimestampFormat: "2006/01/02 15:04",
		},
		ColorCodes: codes,
		Categories: map[string]string{},
		Output:     OutputConfig{ArchiveName: DefaultArchiveName},
		Parameters: map[string]string{},
		Templates: []TemplateConfig{
			{
				Name:    "default",
				File:    DefaultTemplateFile,
				Default: true,
				Layout:  DefaultLayout(),
			},
		},
	}
}

// ParseColorCodes parses a colour table. JSON input is accepted too.
func ParseColorCodes(data []byte) (map[string]string, error) {
	codes := make(map[string]string)
	if err := yaml.Unmarshal(data, &codes); err != nil {
		return nil, fmt.Errorf("failed to parse color codes: %w", err)
	}
	return codes, nil
}

// LoadColorCodes loads a colour table from a YAML or JSON file.
func LoadColorCodes(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read color codes file: %w", err)
	}
	return ParseColorCodes(data)
}

// LoadConfigBundle loads a bundle from a YAML file and fills unset fields with defaults.
// A relative colorCodesFile is resolved against the bundle's directory.
func LoadConfigBundle(path string) (*Bundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config bundle: %w", err)
	}

	var b Bundle
	if err := yaml.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("failed to parse config bundle: %w", err)
	}

	if err := b.resolveColorCodes(filepath.Dir(path)); err != nil {
		return nil, err
	}
	b.applyDefaults()

	if err := NewValidator().ValidateBundle(&b); err != nil {
		return nil, fmt.Errorf("invalid config bundle %s: %w", path, err)
	}
	return &b, nil
}

// resolveColorCodes layers inline codes over the file table (or the embedded one).
func (b *Bundle) resolveColorCodes(baseDir string) error {
	var base map[string]string
	if b.Generator.ColorCodesFile != "" {
		p := b.Generator.ColorCodesFile
		if !filepath.IsAbs(p) {
			p = filepath.Join(baseDir, p)
		}
		codes, err := LoadColorCodes(p)
		if err != nil {
			return err
		}
		base = codes
	} else {
		base = Default().ColorCodes
	}
	maps.Copy(base, b.ColorCodes)
	b.ColorCodes = base
	return nil
}

func (b *Bundle) applyDefaults() {
	def := Default()

	if b.Source.Driver == "" {
		b.Source.Driver = def.Source.Driver
	}
	if b.Source.Sheet == "" {
		b.Source.Sheet = def.Source.Sheet
	}
	if b.Source.HeaderRow == 0 {
		b.Source.HeaderRow = def.Source.HeaderRow
	}
	cols := &b.Source.Columns
	if cols.StyleCode == "" {
		cols.StyleCode = def.Source.Columns.StyleCode
	}
	if cols.Wave == "" {
		cols.Wave = def.Source.Columns.Wave
	}
	if cols.Category == "" {
		cols.Category = def.Source.Columns.Category
	}
	if cols.DevColors == "" {
		cols.DevColors = def.Source.Columns.DevColors
	}

	gen := &b.Generator
	if gen.BrandPrefix == "" {
		gen.BrandPrefix = def.Generator.BrandPrefix
	}
	if gen.OrderType == "" {
		gen.OrderType = def.Generator.OrderType
	}
	if len(gen.Sizes) == 0 {
		gen.Sizes = def.Generator.Sizes
	}
	if gen.TimestampFormat == "" {
		gen.TimestampFormat = def.Generator.TimestampFormat
	}

	if b.Categories == nil {
		b.Categories = map[string]string{}
	}
	if b.Parameters == nil {
		b.Parameters = map[string]string{}
	}
	if b.Output.ArchiveName == "" {
		b.Output.ArchiveName = def.Output.ArchiveName
	}

	if len(b.Templates) == 0 {
		b.Templates = def.Templates
	}
	for i := range b.Templates {
		applyLayoutDefaults(&b.Templates[i].Layout)
	}
}

func applyLayoutDefaults(l *LayoutConfig) {
	def := DefaultLayout()
	if l.Cells == (CellsConfig{}) {
		l.Cells = def.Cells
	}
	c := &l.Colors
	if c.ColorColumn == "" {
		c.ColorColumn = def.Colors.ColorColumn
	}
	if len(c.SkuColumns) == 0 {
		c.SkuColumns = def.Colors.SkuColumns
	}
	if c.FirstRow == 0 {
		c.FirstRow = def.Colors.FirstRow
	}
	if c.RowsPerColor == 0 {
		c.RowsPerColor = def.Colors.RowsPerColor
	}
	if c.Capacity == 0 {
		c.Capacity = def.Colors.Capacity
	}
}
