package config

import "fmt"

// Provider resolves the template variant and parent category for a style's category.
type Provider interface {
	GetTemplateConfig(category string) (*TemplateConfig, error)
	GetParentCategory(category string) (string, bool)
}

// MemoryConfigRegistry implements Provider over a loaded bundle.
type MemoryConfigRegistry struct {
	byCategory map[string]*TemplateConfig
	fallback   *TemplateConfig
	parents    map[string]string
}

// NewMemoryConfigRegistry indexes the bundle's templates by category.
// The template marked default serves unlisted categories; without one, the first template does.
func NewMemoryConfigRegistry(b *Bundle) *MemoryConfigRegistry {
	r := &MemoryConfigRegistry{
		byCategory: make(map[string]*TemplateConfig),
		parents:    b.Categories,
	}
	for i := range b.Templates {
		tpl := &b.Templates[i]
		for _, cat := range tpl.Categories {
			r.byCategory[cat] = tpl
		}
		if tpl.Default && r.fallback == nil {
			r.fallback = tpl
		}
	}
	if r.fallback == nil && len(b.Templates) > 0 {
		r.fallback = &b.Templates[0]
	}
	return r
}

// GetTemplateConfig returns the template serving category.
func (r *MemoryConfigRegistry) GetTemplateConfig(category string) (*TemplateConfig, error) {
	if tpl, ok := r.byCategory[category]; ok {
		return tpl, nil
	}
	if r.fallback != nil {
		return r.fallback, nil
	}
	return nil, fmt.Errorf("no template configured for category: %s", category)
}

// GetParentCategory returns the parent of category in the category tree.
func (r *MemoryConfigRegistry) GetParentCategory(category string) (string, bool) {
	parent, ok := r.parents[category]
	return parent, ok && parent != ""
}
