package config

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/xuri/excelize/v2"
)

// Validator validates the configuration objects.
// Field rules live in struct tags; cross-field rules are checked here.
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a new Validator.
func NewValidator() *Validator {
	return &Validator{validate: validator.New(validator.WithRequiredStructEnabled())}
}

// ValidateBundle validates the Bundle.
func (v *Validator) ValidateBundle(b *Bundle) error {
	if err := v.structErr(b); err != nil {
		return err
	}

	defaults := 0
	owner := make(map[string]string)
	for i := range b.Templates {
		tpl := &b.Templates[i]
		if tpl.Default {
			defaults++
		}
		for _, cat := range tpl.Categories {
			if prev, ok := owner[cat]; ok {
				return fmt.Errorf("category '%s' is claimed by templates '%s' and '%s'", cat, prev, tpl.Name)
			}
			owner[cat] = tpl.Name
		}
		if err := v.ValidateLayout(&tpl.Layout, len(b.Generator.Sizes)); err != nil {
			return fmt.Errorf("template '%s' layout error: %w", tpl.Name, err)
		}
	}
	if defaults > 1 {
		return fmt.Errorf("only one template may be marked default, found %d", defaults)
	}

	for child, parent := range b.Categories {
		if child == parent {
			return fmt.Errorf("category '%s' cannot be its own parent", child)
		}
	}
	return nil
}

// ValidateLayout validates cell addresses and the colour block geometry.
func (v *Validator) ValidateLayout(l *LayoutConfig, sizes int) error {
	cells := map[string]string{
		"timestamp":      l.Cells.Timestamp,
		"styleCode":      l.Cells.StyleCode,
		"orderType":      l.Cells.OrderType,
		"productName":    l.Cells.ProductName,
		"wave":           l.Cells.Wave,
		"category":       l.Cells.Category,
		"parentCategory": l.Cells.ParentCategory,
	}
	type coords struct{ col, row int }
	static := make(map[string]coords, len(cells))
	for name, ref := range cells {
		if ref == "" {
			continue
		}
		col, row, err := excelize.CellNameToCoordinates(ref)
		if err != nil {
			return fmt.Errorf("cell '%s' has invalid address '%s'", name, ref)
		}
		static[name] = coords{col, row}
	}

	c := &l.Colors
	colorCol, err := excelize.ColumnNameToNumber(c.ColorColumn)
	if err != nil {
		return fmt.Errorf("invalid color column '%s'", c.ColorColumn)
	}
	blockCols := map[int]bool{colorCol: true}
	for _, col := range c.SkuColumns {
		n, err := excelize.ColumnNameToNumber(col)
		if err != nil {
			return fmt.Errorf("invalid sku column '%s'", col)
		}
		blockCols[n] = true
	}
	if len(c.SkuColumns) != sizes {
		return fmt.Errorf("%d sku columns configured for %d sizes", len(c.SkuColumns), sizes)
	}
	if c.ColorRowOffset < 0 || c.ColorRowOffset >= c.RowsPerColor {
		return fmt.Errorf("color row offset %d outside a %d-row block", c.ColorRowOffset, c.RowsPerColor)
	}
	if c.Anchor() < c.FirstRow+c.Capacity*c.RowsPerColor {
		return fmt.Errorf("anchor row %d overlaps the preset color blocks", c.Anchor())
	}
	// Cells at or below the anchor move down with inserted blocks; cells in the
	// preset block rows must stay clear of the colour and SKU columns.
	for name, at := range static {
		if at.row >= c.FirstRow && at.row < c.Anchor() && blockCols[at.col] {
			return fmt.Errorf("cell '%s' at %s is inside the color blocks", name, cells[name])
		}
	}
	return nil
}

// ValidateSource validates the record source once CLI/env overrides are applied.
func (v *Validator) ValidateSource(s *SourceConfig) error {
	if err := v.structErr(s); err != nil {
		return err
	}
	switch s.Driver {
	case DriverXlsx:
		if s.Sheet == "" {
			return fmt.Errorf("xlsx source requires a sheet name")
		}
		if s.HeaderRow < 1 {
			return fmt.Errorf("xlsx source header row must be >= 1, got %d", s.HeaderRow)
		}
	case DriverMySQL, DriverPostgres, DriverSQLite:
		if s.DSN == "" {
			return fmt.Errorf("%s source requires a DSN", s.Driver)
		}
		if s.Table == "" && s.Query == "" {
			return fmt.Errorf("%s source requires a table or a query", s.Driver)
		}
	case DriverDynamoDB:
		if s.Table == "" {
			return fmt.Errorf("dynamodb source requires a table")
		}
	case DriverCsv:
		switch s.Encoding {
		case "", "utf-8", "utf8", "gbk", "gb18030":
		default:
			return fmt.Errorf("unsupported csv encoding '%s'", s.Encoding)
		}
	}
	return nil
}

func (v *Validator) structErr(s any) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		if fe.Param() != "" {
			return fmt.Errorf("%s failed '%s=%s' rule", fe.Namespace(), fe.Tag(), fe.Param())
		}
		return fmt.Errorf("%s failed '%s' rule", fe.Namespace(), fe.Tag())
	}
	return err
}
