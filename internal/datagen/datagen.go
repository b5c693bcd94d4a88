// Package datagen writes synthetic per-bank transaction files for exercising
// the ingest and batch paths. Each bank uses its own CSV layout:
//
//	fixed  - the same column order in every file, no extra columns
//	random - shuffled columns, each transaction carries a random subset of extras
//	custom - a bank-specific leading column order, every extra always present
//
// Odd-numbered batches are written as JSON, even-numbered ones as CSV.
package datagen

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/carson-networks/hermes/internal/ingest"
)

// Format is a bank's CSV layout.
type Format int

const (
	FormatFixed Format = iota
	FormatRandom
	FormatCustom
)

// Bank describes how one bank lays out its files.
type Bank struct {
	Name   string
	Format Format
	// Columns is the leading column order for FormatCustom.
	Columns []string
	Extras  []string
}

var baseColumns = []string{
	ingest.FieldTxnID,
	ingest.FieldUserID,
	ingest.FieldAmount,
	ingest.FieldCurrency,
	ingest.FieldTimestamp,
	ingest.FieldMerchant,
}

// DefaultBanks mirrors the three sample banks.
func DefaultBanks() []Bank {
	return []Bank{
		{Name: "bank_A", Format: FormatFixed},
		{Name: "bank_B", Format: FormatRandom, Extras: []string{"location", "branch_code"}},
		{
			Name:   "bank_C",
			Format: FormatCustom,
			Columns: []string{
				ingest.FieldUserID, ingest.FieldTxnID, ingest.FieldMerchant,
				ingest.FieldAmount, ingest.FieldCurrency, ingest.FieldTimestamp,
			},
			Extras: []string{"location", "branch_code", "channel"},
		},
	}
}

// Options controls what Generate writes.
type Options struct {
	OutputDir            string
	Banks                []Bank
	StartDate            time.Time
	Days                 int
	BatchesPerDay        int
	TransactionsPerBatch int
	Merchants            []string
	Currencies           []string
	FirstTxnNumber       int
	Seed                 uint64
}

// DefaultOptions returns the sample generation settings.
func DefaultOptions(outputDir string) Options {
	return Options{
		OutputDir:            outputDir,
		Banks:                DefaultBanks(),
		StartDate:            time.Date(2025, 6, 25, 0, 0, 0, 0, time.UTC),
		Days:                 7,
		BatchesPerDay:        3,
		TransactionsPerBatch: 5,
		Merchants:            []string{"Amazon", "Walmart", "Noon", "eBay", "Apple Store", "Carrefour", "Zara", "Jarir", "Tiffany", "Panda"},
		Currencies:           []string{"USD", "EUR", "SAR", "GBP"},
		FirstTxnNumber:       1000,
		Seed:                 1,
	}
}

// Generator writes sample files. The same Options always produce the same files.
type Generator struct {
	opts   Options
	rng    *rand.Rand
	logger *logrus.Logger
}

func NewGenerator(opts Options, logger *logrus.Logger) (*Generator, error) {
	if opts.OutputDir == "" {
		return nil, fmt.Errorf("datagen: output directory required")
	}
	if len(opts.Merchants) == 0 || len(opts.Currencies) == 0 {
		return nil, fmt.Errorf("datagen: merchants and currencies required")
	}
	if opts.Days < 1 || opts.BatchesPerDay < 1 || opts.TransactionsPerBatch < 1 {
		return nil, fmt.Errorf("datagen: days, batches and transactions must be positive")
	}
	return &Generator{
		opts:   opts,
		rng:    rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15)),
		logger: logger,
	}, nil
}

// Generate writes every file and returns their paths.
func (g *Generator) Generate() ([]string, error) {
	var written []string
	txnNumber := g.opts.FirstTxnNumber

	for _, bank := range g.opts.Banks {
		for d := 0; d < g.opts.Days; d++ {
			day := g.opts.StartDate.AddDate(0, 0, d)
			dayDir := filepath.Join(g.opts.OutputDir, bank.Name, day.Format("2006-01-02"))
			if err := os.MkdirAll(dayDir, 0o755); err != nil {
				return written, err
			}

			for b := 1; b <= g.opts.BatchesPerDay; b++ {
				records := make([]map[string]string, 0, g.opts.TransactionsPerBatch)
				for i := 0; i < g.opts.TransactionsPerBatch; i++ {
					records = append(records, g.record(txnNumber, bank, day))
					txnNumber++
				}

				var path string
				var err error
				if b%2 == 1 {
					path = filepath.Join(dayDir, fmt.Sprintf("txn_batch_%03d.json", b))
					err = writeJSON(path, records)
				} else {
					path = filepath.Join(dayDir, fmt.Sprintf("txn_batch_%03d.csv", b))
					err = writeCSV(path, g.columns(bank, records), records)
				}
				if err != nil {
					return written, err
				}
				written = append(written, path)
			}
		}
	}

	g.logger.WithField("files", len(written)).WithField("dir", g.opts.OutputDir).Info("DataGen.Generate.complete")
	return written, nil
}

func (g *Generator) record(n int, bank Bank, day time.Time) map[string]string {
	// amounts between 10.00 and 1000.00
	cents := 1000 + g.rng.IntN(99001)
	ts := day.Add(time.Duration(g.rng.IntN(24*60*60)) * time.Second)

	record := map[string]string{
		ingest.FieldTxnID:     fmt.Sprintf("TXN%d", n),
		ingest.FieldUserID:    fmt.Sprintf("U%d", 100+g.rng.IntN(900)),
		ingest.FieldAmount:    decimal.New(int64(cents), -2).StringFixed(2),
		ingest.FieldCurrency:  g.opts.Currencies[g.rng.IntN(len(g.opts.Currencies))],
		ingest.FieldTimestamp: ts.UTC().Format("2006-01-02T15:04:05Z"),
		ingest.FieldMerchant:  g.opts.Merchants[g.rng.IntN(len(g.opts.Merchants))],
	}

	extras := bank.Extras
	if bank.Format == FormatRandom {
		extras = g.subset(bank.Extras)
	}
	for _, field := range extras {
		record[field] = fmt.Sprintf("%s_%d", strings.ToUpper(field), 1+g.rng.IntN(50))
	}
	return record
}

func (g *Generator) subset(fields []string) []string {
	shuffled := slices.Clone(fields)
	g.rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
	return shuffled[:g.rng.IntN(len(shuffled)+1)]
}

// columns returns the CSV header for one batch of records.
func (g *Generator) columns(bank Bank, records []map[string]string) []string {
	var extras []string
	for _, record := range records {
		for key := range record {
			if !slices.Contains(baseColumns, key) && !slices.Contains(extras, key) {
				extras = append(extras, key)
			}
		}
	}
	slices.Sort(extras)

	switch bank.Format {
	case FormatRandom:
		columns := append(slices.Clone(baseColumns), extras...)
		g.rng.Shuffle(len(columns), func(i, j int) { columns[i], columns[j] = columns[j], columns[i] })
		return columns
	case FormatCustom:
		columns := slices.Clone(bank.Columns)
		for _, c := range append(slices.Clone(baseColumns), extras...) {
			if !slices.Contains(columns, c) {
				columns = append(columns, c)
			}
		}
		return columns
	default:
		return append(slices.Clone(baseColumns), extras...)
	}
}

func writeJSON(path string, records []map[string]string) error {
	out := make([]map[string]interface{}, 0, len(records))
	for _, record := range records {
		obj := make(map[string]interface{}, len(record))
		for key, value := range record {
			if key == ingest.FieldAmount {
				obj[key] = json.Number(value)
				continue
			}
			obj[key] = value
		}
		out = append(out, obj)
	}

	raw, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0o644)
}

func writeCSV(path string, columns []string, records []map[string]string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(columns); err != nil {
		return err
	}
	for _, record := range records {
		row := make([]string, len(columns))
		for i, column := range columns {
			row[i] = record[column]
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return f.Close()
}
