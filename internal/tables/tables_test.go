package tables

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
reference_currency: sar
rates:
  usd: "3.75"
  EUR: 4.35
  SAR: 1
categories:
  - name: Electronics
    merchants: [Extra, Jarir]
  - name: Gadgets
    merchants: [Jarir, Sony]
risk_tiers:
  high: [Electronics]
  medium: [Gadgets]
`

func TestDefault_IsValid(t *testing.T) {
	assert.NoError(t, Default().Validate())
}

func TestDefault_CategoryOrder(t *testing.T) {
	var names []string
	for _, c := range Default().CategoryList() {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"Electronics", "Groceries", "Clothing", "E-commerce", "Jewelry"}, names)
}

func TestValidate_RejectsNonPositiveRate(t *testing.T) {
	tbl := Default()
	tbl.Rates = map[string]decimal.Decimal{"USD": decimal.Zero}
	assert.Error(t, tbl.Validate())
}

func TestValidate_RejectsLowercaseCode(t *testing.T) {
	tbl := Default()
	tbl.Rates = map[string]decimal.Decimal{"usd": decimal.NewFromInt(3)}
	assert.Error(t, tbl.Validate())
}

func TestValidate_RejectsReferenceRateOtherThanOne(t *testing.T) {
	tbl := Default()
	tbl.Rates = map[string]decimal.Decimal{"SAR": decimal.NewFromInt(2)}
	assert.Error(t, tbl.Validate())
}

func TestValidate_RejectsDuplicateCategory(t *testing.T) {
	tbl := Default()
	tbl.Categories = append(tbl.Categories, Category{Name: "Clothing"})
	assert.Error(t, tbl.Validate())
}

func TestValidate_RejectsReservedCategory(t *testing.T) {
	tbl := Default()
	tbl.Categories = []Category{{Name: UnknownCategory, Merchants: []string{"X"}}}
	assert.Error(t, tbl.Validate())
}

func TestDecode_PreservesOrderAndNormalisesCodes(t *testing.T) {
	tbl, err := Decode(strings.NewReader(sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, "SAR", tbl.Reference())
	rate, ok := tbl.Rate("USD")
	require.True(t, ok)
	assert.True(t, rate.Equal(decimal.RequireFromString("3.75")))
	rate, ok = tbl.Rate("EUR")
	require.True(t, ok)
	assert.True(t, rate.Equal(decimal.RequireFromString("4.35")))

	require.Len(t, tbl.Categories, 2)
	assert.Equal(t, "Electronics", tbl.Categories[0].Name)
	assert.Equal(t, "Gadgets", tbl.Categories[1].Name)
	assert.Equal(t, []string{"Electronics"}, tbl.HighRiskCategories())
	assert.Equal(t, []string{"Gadgets"}, tbl.MediumRiskCategories())
}

func TestDecode_UnknownField(t *testing.T) {
	_, err := Decode(strings.NewReader("reference_currency: SAR\nbogus: 1\n"))
	assert.Error(t, err)
}

func TestDecode_BadRate(t *testing.T) {
	_, err := Decode(strings.NewReader("reference_currency: SAR\nrates:\n  USD: abc\n"))
	assert.Error(t, err)
}

func TestDecode_DuplicateRateAfterUppercasing(t *testing.T) {
	_, err := Decode(strings.NewReader("reference_currency: SAR\nrates:\n  USD: 1\n  usd: 2\n"))
	assert.Error(t, err)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tables.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleYAML), 0o600))

	tbl, err := LoadFile(path)
	require.NoError(t, err)
	assert.Len(t, tbl.Categories, 2)
}

func TestLoadFile_ShippedTablesMatchDefault(t *testing.T) {
	tbl, err := LoadFile(filepath.Join("..", "..", "config", "tables.yaml"))
	require.NoError(t, err)

	want := Default()
	assert.Equal(t, want.ReferenceCurrency, tbl.ReferenceCurrency)
	assert.Equal(t, want.Categories, tbl.Categories)
	assert.Equal(t, want.HighRisk, tbl.HighRisk)
	assert.Equal(t, want.MediumRisk, tbl.MediumRisk)
	require.Len(t, tbl.Rates, len(want.Rates))
	for code, rate := range want.Rates {
		assert.True(t, rate.Equal(tbl.Rates[code]), code)
	}
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestStore_SwapReplacesWholeSnapshot(t *testing.T) {
	store, err := NewStore(Default())
	require.NoError(t, err)

	before := store.Snapshot()
	next, err := Decode(strings.NewReader(sampleYAML))
	require.NoError(t, err)

	prev, err := store.Swap(next)
	require.NoError(t, err)
	assert.Same(t, before, prev)
	assert.Same(t, next, store.Snapshot())
	// the old snapshot is untouched
	assert.Len(t, before.Categories, 5)
}

func TestStore_SwapRejectsInvalid(t *testing.T) {
	store, err := NewStore(Default())
	require.NoError(t, err)
	before := store.Snapshot()

	_, err = store.Swap(&Tables{ReferenceCurrency: "??"})
	assert.Error(t, err)
	assert.Same(t, before, store.Snapshot())

	_, err = store.Swap(nil)
	assert.Error(t, err)
}

func TestNewStore_RejectsInvalid(t *testing.T) {
	_, err := NewStore(&Tables{})
	assert.Error(t, err)
}
