package domain

import "strings"

// ProductFilter narrows a product list by free text and category.
type ProductFilter struct {
	Query      string
	CategoryID *int
}

// Match reports whether p satisfies the filter. The query is trimmed and
// matched case-insensitively against name and description.
func (f ProductFilter) Match(p Product) bool {
	if q := strings.ToLower(strings.TrimSpace(f.Query)); q != "" {
		if !strings.Contains(strings.ToLower(p.Name), q) &&
			!strings.Contains(strings.ToLower(p.DescriptionText()), q) {
			return false
		}
	}
	if f.CategoryID != nil {
		id, ok := p.EffectiveCategoryID()
		if !ok || id != *f.CategoryID {
			return false
		}
	}
	return true
}

// FilterProducts returns the products matching f, preserving order.
func FilterProducts(products []Product, f ProductFilter) []Product {
	out := make([]Product, 0, len(products))
	for _, p := range products {
		if f.Match(p) {
			out = append(out, p)
		}
	}
	return out
}
