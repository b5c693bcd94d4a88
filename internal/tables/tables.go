// Package tables holds the static lookup configuration used by the enrichment
// pipeline: currency rates, the ordered merchant category table, and the
// risk tier sets.
package tables

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// UnknownCategory is returned for merchants that no category lists.
const UnknownCategory = "Unknown"

// Category is one entry of the ordered category table.
type Category struct {
	Name      string
	Merchants []string
}

// Tables is an immutable snapshot of the lookup configuration. A Tables value
// must not be modified after it has been handed to a Store.
type Tables struct {
	ReferenceCurrency string
	Rates             map[string]decimal.Decimal
	Categories        []Category
	HighRisk          []string
	MediumRisk        []string
}

// Default returns the sample configuration with SAR as reference currency.
func Default() *Tables {
	return &Tables{
		ReferenceCurrency: "SAR",
		Rates: map[string]decimal.Decimal{
			"USD": decimal.RequireFromString("3.75"),
			"EUR": decimal.RequireFromString("4.35"),
			"GBP": decimal.RequireFromString("5.0"),
			"SAR": decimal.RequireFromString("1.0"),
		},
		Categories: []Category{
			{Name: "Electronics", Merchants: []string{"Extra", "Jarir", "Sony"}},
			{Name: "Groceries", Merchants: []string{"Panda", "AlOthaim", "Tamimi"}},
			{Name: "Clothing", Merchants: []string{"Zara", "H&M", "Nike"}},
			{Name: "E-commerce", Merchants: []string{"Amazon", "SHEIN", "AliExpress"}},
			{Name: "Jewelry", Merchants: []string{"goldenPalace", "AlFardan", "Tiffany"}},
		},
		HighRisk:   []string{"Electronics", "Jewelry"},
		MediumRisk: []string{"E-commerce"},
	}
}

// Validate checks that the tables are internally consistent.
func (t *Tables) Validate() error {
	if t == nil {
		return errors.New("tables: nil tables")
	}
	if !isCurrencyCode(t.ReferenceCurrency) {
		return fmt.Errorf("tables: invalid reference currency %q", t.ReferenceCurrency)
	}

	for code, rate := range t.Rates {
		if !isCurrencyCode(code) || code != strings.ToUpper(code) {
			return fmt.Errorf("tables: invalid currency code %q", code)
		}
		if !rate.IsPositive() {
			return fmt.Errorf("tables: rate for %s must be positive, got %s", code, rate)
		}
	}
	if rate, ok := t.Rates[t.ReferenceCurrency]; ok && !rate.Equal(decimal.NewFromInt(1)) {
		return fmt.Errorf("tables: reference currency %s must have rate 1, got %s", t.ReferenceCurrency, rate)
	}

	seen := make(map[string]struct{}, len(t.Categories))
	for i, category := range t.Categories {
		if category.Name == "" {
			return fmt.Errorf("tables: category %d has no name", i)
		}
		if category.Name == UnknownCategory {
			return fmt.Errorf("tables: category name %q is reserved", UnknownCategory)
		}
		if _, dup := seen[category.Name]; dup {
			return fmt.Errorf("tables: duplicate category %q", category.Name)
		}
		seen[category.Name] = struct{}{}
	}

	return nil
}

// Rate returns the multiplier for an uppercase currency code.
func (t *Tables) Rate(code string) (decimal.Decimal, bool) {
	rate, ok := t.Rates[code]
	return rate, ok
}

// CategoryList returns the categories in table order.
func (t *Tables) CategoryList() []Category {
	return t.Categories
}

// HighRiskCategories returns the categories scored as high risk.
func (t *Tables) HighRiskCategories() []string {
	return t.HighRisk
}

// MediumRiskCategories returns the categories scored as medium risk.
func (t *Tables) MediumRiskCategories() []string {
	return t.MediumRisk
}

// Reference returns the reference currency code.
func (t *Tables) Reference() string {
	return t.ReferenceCurrency
}

func isCurrencyCode(code string) bool {
	if len(code) != 3 {
		return false
	}
	for _, r := range code {
		if (r < 'A' || r > 'Z') && (r < 'a' || r > 'z') {
			return false
		}
	}
	return true
}
