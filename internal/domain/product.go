package domain

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Category groups products in the catalog.
type Category struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Product is a catalog entry. It is owned by the catalog service and
// treated as read-only here.
type Product struct {
	ID          int             `json:"id" validate:"required,gt=0"`
	Name        string          `json:"name"`
	Description *string         `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price" validate:"gte=0"`
	CategoryID  *int            `json:"category_id,omitempty"`
	Category    *Category       `json:"category,omitempty"`
}

// MarshalJSON writes price as a JSON number, the shape the catalog API sends
// and the stored cart keeps.
func (p Product) MarshalJSON() ([]byte, error) {
	type plain Product
	return json.Marshal(struct {
		plain
		Price json.Number `json:"price"`
	}{plain: plain(p), Price: AmountJSON(p.Price)})
}

// AmountJSON renders a decimal as a JSON number without float rounding.
func AmountJSON(d decimal.Decimal) json.Number {
	return json.Number(d.String())
}

// EffectiveCategoryID returns category_id when set, otherwise the id of the
// embedded category.
func (p Product) EffectiveCategoryID() (int, bool) {
	if p.CategoryID != nil {
		return *p.CategoryID, true
	}
	if p.Category != nil {
		return p.Category.ID, true
	}
	return 0, false
}

// DescriptionText returns the description or "" when absent.
func (p Product) DescriptionText() string {
	if p.Description == nil {
		return ""
	}
	return *p.Description
}
