package config

type SourceDriver string

const (
	DriverXlsx     SourceDriver = "xlsx"
	DriverCsv      SourceDriver = "csv"
	DriverMySQL    SourceDriver = "mysql"
	DriverPostgres SourceDriver = "postgres"
	DriverSQLite   SourceDriver = "sqlite"
	DriverDynamoDB SourceDriver = "dynamodb"
)

// ColumnConfig：header text of the four required source columns
type ColumnConfig struct {
	StyleCode string `json:"styleCode" yaml:"styleCode" validate:"required"` // 款式编码
	Wave      string `json:"wave"      yaml:"wave"      validate:"required"` // 波段
	Category  string `json:"category"  yaml:"category"  validate:"required"` // 品类
	DevColors string `json:"devColors" yaml:"devColors" validate:"required"` // 开发颜色
}

// Required returns the column names in the order they are reported when missing.
func (c ColumnConfig) Required() []string {
	return []string{c.StyleCode, c.Wave, c.Category, c.DevColors}
}

// SourceConfig：where style records come from
type SourceConfig struct {
	Driver    SourceDriver `json:"driver"              yaml:"driver"              validate:"oneof=xlsx csv mysql postgres sqlite dynamodb"`
	Sheet     string       `json:"sheet,omitempty"     yaml:"sheet,omitempty"`     // xlsx worksheet name
	HeaderRow int          `json:"headerRow,omitempty" yaml:"headerRow,omitempty"` // 1-based, xlsx only
	Table     string       `json:"table,omitempty"     yaml:"table,omitempty"`     // sql / dynamodb
	Query     string       `json:"query,omitempty"     yaml:"query,omitempty"`     // sql, overrides table
	DSN       string       `json:"dsn,omitempty"       yaml:"dsn,omitempty"`
	Encoding  string       `json:"encoding,omitempty"  yaml:"encoding,omitempty"` // csv: utf-8, gbk, gb18030
	Columns   ColumnConfig `json:"columns"             yaml:"columns"`
}

// GeneratorConfig：boilerplate written into every BOM
type GeneratorConfig struct {
	BrandPrefix     string   `json:"brandPrefix"              yaml:"brandPrefix"`
	OrderType       string   `json:"orderType"                yaml:"orderType"`
	Sizes           []string `json:"sizes"                    yaml:"sizes"           validate:"min=1,dive,required"`
	TimestampFormat string   `json:"timestampFormat"          yaml:"timestampFormat" validate:"required"`
	ColorCodesFile  string   `json:"colorCodesFile,omitempty" yaml:"colorCodesFile,omitempty"`
}

// CellsConfig：static cell addresses, empty means "not written"
type CellsConfig struct {
	Timestamp      string `json:"timestamp,omitempty"      yaml:"timestamp,omitempty"`
	StyleCode      string `json:"styleCode,omitempty"      yaml:"styleCode,omitempty"`
	OrderType      string `json:"orderType,omitempty"      yaml:"orderType,omitempty"`
	ProductName    string `json:"productName,omitempty"    yaml:"productName,omitempty"`
	Wave           string `json:"wave,omitempty"           yaml:"wave,omitempty"`
	Category       string `json:"category,omitempty"       yaml:"category,omitempty"`
	ParentCategory string `json:"parentCategory,omitempty" yaml:"parentCategory,omitempty"`
}

// ColorBlockConfig：where colour names and their SKUs go.
// Colour i is written on row FirstRow + i*RowsPerColor.
type ColorBlockConfig struct {
	ColorColumn    string   `json:"colorColumn"              yaml:"colorColumn"    validate:"required"`
	ColorRowOffset int      `json:"colorRowOffset,omitempty" yaml:"colorRowOffset,omitempty"`
	SkuColumns     []string `json:"skuColumns"               yaml:"skuColumns"     validate:"min=1,dive,required"`
	FirstRow       int      `json:"firstRow"                 yaml:"firstRow"       validate:"min=1"`
	RowsPerColor   int      `json:"rowsPerColor"             yaml:"rowsPerColor"   validate:"min=1"`
	Capacity       int      `json:"capacity"                 yaml:"capacity"       validate:"min=1"`
	AnchorRow      int      `json:"anchorRow,omitempty"      yaml:"anchorRow,omitempty"` // insert extra blocks before this row
}

// Anchor returns the configured anchor row, or the row right after the preset blocks.
func (c ColorBlockConfig) Anchor() int {
	if c.AnchorRow > 0 {
		return c.AnchorRow
	}
	return c.FirstRow + c.Capacity*c.RowsPerColor
}

// LayoutConfig：cell layout of one template variant
type LayoutConfig struct {
	Cells  CellsConfig      `json:"cells"  yaml:"cells"`
	Colors ColorBlockConfig `json:"colors" yaml:"colors"`
}

// TemplateConfig：one template workbook and the categories it serves
type TemplateConfig struct {
	Name       string       `json:"name"                 yaml:"name"       validate:"required"`
	File       string       `json:"file"                 yaml:"file"       validate:"required"`
	Default    bool         `json:"default,omitempty"    yaml:"default,omitempty"`
	Categories []string     `json:"categories,omitempty" yaml:"categories,omitempty"`
	Sheet      string       `json:"sheet,omitempty"      yaml:"sheet,omitempty"` // empty: active sheet
	Layout     LayoutConfig `json:"layout"               yaml:"layout"`
}

// OutputConfig：naming of generated files
type OutputConfig struct {
	Subdir      string `json:"subdir,omitempty"      yaml:"subdir,omitempty"` // e.g. "${wave}/${date}"
	ArchiveName string `json:"archiveName,omitempty" yaml:"archiveName,omitempty"`
}

// Bundle：the whole configuration of a generator run
type Bundle struct {
	Source     SourceConfig      `json:"source"               yaml:"source"`
	Generator  GeneratorConfig   `json:"generator"            yaml:"generator"`
	ColorCodes map[string]string `json:"colorCodes,omitempty" yaml:"colorCodes,omitempty" validate:"min=1,dive,keys,required,endkeys,len=2,numeric"`
	Categories map[string]string `json:"categories,omitempty" yaml:"categories,omitempty"` // child -> parent
	Output     OutputConfig      `json:"output"               yaml:"output"`
	Parameters map[string]string `json:"parameters,omitempty" yaml:"parameters,omitempty"`
	Templates  []TemplateConfig  `json:"templates"            yaml:"templates"            validate:"min=1,dive"`
}
