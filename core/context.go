package core

import (
	"fmt"
	"maps"
	"strings"
	"time"

	"bom-gen/config"
)

// TemplateOverride replaces the template file of every dispatched variant.
// Data wins over Path; the variant's layout is kept.
type TemplateOverride struct {
	Path string
	Data []byte
}

// GenerationContext holds the read-only state of one generator instance:
// configuration, the loaded source index and the colour table.
type GenerationContext struct {
	Bundle         *config.Bundle
	ConfigProvider config.Provider
	Index          *StyleIndex
	Colors         *ColorCodeTable
	TemplateRoot   string
	Override       *TemplateOverride
	Parameters     map[string]string
	Now            func() time.Time
}

// NewGenerationContext creates a new context. params override the bundle's parameters
// and both may use "$date:" expressions.
func NewGenerationContext(b *config.Bundle, index *StyleIndex, templateRoot string, params map[string]string) (*GenerationContext, error) {
	merged := make(map[string]string, len(b.Parameters)+len(params))
	maps.Copy(merged, b.Parameters)
	maps.Copy(merged, params)

	now := time.Now
	resolved, err := resolveParameters(merged, now())
	if err != nil {
		return nil, fmt.Errorf("resolve parameters: %w", err)
	}

	return &GenerationContext{
		Bundle:         b,
		ConfigProvider: config.NewMemoryConfigRegistry(b),
		Index:          index,
		Colors:         NewColorCodeTable(b.ColorCodes),
		TemplateRoot:   templateRoot,
		Parameters:     resolved,
		Now:            now,
	}, nil
}

// ProductName is brand prefix + wave + category + style code.
func (ctx *GenerationContext) ProductName(rec StyleRecord) string {
	return ctx.Bundle.Generator.BrandPrefix + rec.Wave + rec.Category + rec.StyleCode
}

// styleParams returns the placeholder values available to output naming for rec.
func (ctx *GenerationContext) styleParams(rec StyleRecord) map[string]string {
	params := maps.Clone(ctx.Parameters)
	if params == nil {
		params = make(map[string]string)
	}
	params["style_code"] = safeName(rec.StyleCode)
	params["wave"] = safeName(rec.Wave)
	params["category"] = safeName(rec.Category)
	return params
}

var pathSeparators = strings.NewReplacer("/", "_", `\`, "_")

// safeName turns a record value into a single path segment.
func safeName(v string) string {
	v = pathSeparators.Replace(v)
	if v == "." || v == ".." {
		return strings.Repeat("_", len(v))
	}
	return v
}
