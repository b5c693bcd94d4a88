package tables

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// fileCategory is the YAML form of a category entry. Categories are a list
// rather than a mapping so that file order is table order.
type fileCategory struct {
	Name      string   `yaml:"name"`
	Merchants []string `yaml:"merchants"`
}

type fileRiskTiers struct {
	High   []string `yaml:"high"`
	Medium []string `yaml:"medium"`
}

type fileTables struct {
	ReferenceCurrency string            `yaml:"reference_currency"`
	Rates             map[string]string `yaml:"rates"`
	Categories        []fileCategory    `yaml:"categories"`
	RiskTiers         fileRiskTiers     `yaml:"risk_tiers"`
}

// LoadFile reads and validates tables from a YAML file.
func LoadFile(path string) (*Tables, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("tables: read %s: %w", path, err)
	}

	t, err := Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("tables: %s: %w", path, err)
	}
	return t, nil
}

// Decode parses YAML tables from r. Rates are written as strings or numbers
// and parsed as exact decimals.
func Decode(r io.Reader) (*Tables, error) {
	var ft fileTables
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&ft); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}

	t := &Tables{
		ReferenceCurrency: strings.ToUpper(ft.ReferenceCurrency),
		Rates:             make(map[string]decimal.Decimal, len(ft.Rates)),
		Categories:        make([]Category, 0, len(ft.Categories)),
		HighRisk:          ft.RiskTiers.High,
		MediumRisk:        ft.RiskTiers.Medium,
	}

	for code, value := range ft.Rates {
		rate, err := decimal.NewFromString(value)
		if err != nil {
			return nil, fmt.Errorf("rate for %s: %w", code, err)
		}
		upper := strings.ToUpper(code)
		if _, dup := t.Rates[upper]; dup {
			return nil, fmt.Errorf("duplicate rate for %s", upper)
		}
		t.Rates[upper] = rate
	}

	for _, fc := range ft.Categories {
		t.Categories = append(t.Categories, Category{Name: fc.Name, Merchants: fc.Merchants})
	}

	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}
