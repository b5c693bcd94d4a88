package service

import (
	"slices"

	"github.com/carson-networks/hermes/internal/tables"
)

// UnknownCategory is the category of merchants absent from the table.
const UnknownCategory = tables.UnknownCategory

// CategoryProvider supplies the category table in its defined order.
type CategoryProvider interface {
	CategoryList() []tables.Category
}

// MerchantCategorizer maps merchant names to categories.
type MerchantCategorizer struct {
	categories CategoryProvider
}

// NewMerchantCategorizer creates a MerchantCategorizer over the given table.
func NewMerchantCategorizer(categories CategoryProvider) *MerchantCategorizer {
	return &MerchantCategorizer{categories: categories}
}

// Categorize returns the first category, in table order, listing merchant.
// Matching is exact and case-sensitive.
func (m *MerchantCategorizer) Categorize(merchant string) string {
	for _, category := range m.categories.CategoryList() {
		if slices.Contains(category.Merchants, merchant) {
			return category.Name
		}
	}
	return UnknownCategory
}
