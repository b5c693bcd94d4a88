// Package ingest reads bank transaction files. Banks disagree on column order
// and on which extra columns they send, so records are matched by field name
// and anything beyond the core fields is kept in Extras.
package ingest

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// Field names every record must carry.
const (
	FieldTxnID     = "txn_id"
	FieldUserID    = "user_id"
	FieldMerchant  = "merchant"
	FieldAmount    = "amount"
	FieldCurrency  = "currency"
	FieldTimestamp = "timestamp"
)

var requiredFields = []string{FieldTxnID, FieldMerchant, FieldAmount, FieldCurrency, FieldTimestamp}

// ErrUnsupportedFormat is returned for files that are neither JSON nor CSV.
var ErrUnsupportedFormat = errors.New("ingest: unsupported file format")

// RawTransaction is a transaction as it appears in a bank file. Amount is
// kept as text so no precision is lost before it is parsed as a decimal.
// Err is set when the record itself is unusable; the rest of the file is
// still read.
type RawTransaction struct {
	TxnID     string
	UserID    string
	Merchant  string
	Amount    string
	Currency  string
	Timestamp string
	Extras    map[string]string
	Err       error
}

// ReadFile reads a .json or .csv bank file.
func ReadFile(path string) ([]RawTransaction, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var txns []RawTransaction
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		txns, err = DecodeJSON(f)
	case ".csv":
		txns, err = DecodeCSV(f)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
	if err != nil {
		return nil, fmt.Errorf("ingest: %s: %w", path, err)
	}
	return txns, nil
}

// DecodeJSON decodes a JSON array of transaction objects.
func DecodeJSON(r io.Reader) ([]RawTransaction, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var records []map[string]interface{}
	if err := dec.Decode(&records); err != nil {
		return nil, err
	}

	txns := make([]RawTransaction, 0, len(records))
	for i, record := range records {
		fields := make(map[string]string, len(record))
		for key, value := range record {
			if value == nil {
				continue
			}
			fields[key] = fmt.Sprint(value)
		}
		txn := fromFields(fields)
		if txn.Err != nil {
			txn.Err = fmt.Errorf("record %d: %w", i, txn.Err)
		}
		txns = append(txns, txn)
	}
	return txns, nil
}

// DecodeCSV decodes a CSV file whose first row names the columns.
func DecodeCSV(r io.Reader) ([]RawTransaction, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	// short and long rows are reported per record
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("missing header row")
		}
		return nil, err
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}
	for _, field := range requiredFields {
		if !slices.Contains(header, field) {
			return nil, fmt.Errorf("missing column %q", field)
		}
	}

	var txns []RawTransaction
	for line := 2; ; line++ {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		fields := make(map[string]string, len(header))
		for i, name := range header {
			if i < len(row) && row[i] != "" {
				fields[name] = row[i]
			}
		}
		txn := fromFields(fields)
		if txn.Err == nil && len(row) != len(header) {
			txn.Err = fmt.Errorf("expected %d fields, got %d", len(header), len(row))
		}
		if txn.Err != nil {
			txn.Err = fmt.Errorf("line %d: %w", line, txn.Err)
		}
		txns = append(txns, txn)
	}
	return txns, nil
}

// Walk reads every supported file under root in lexical order and calls fn
// with its transactions. A file that cannot be read at all is passed to fn
// with its error, so fn decides whether to stop. Other files are skipped.
func Walk(root string, fn func(path string, txns []RawTransaction, err error) error) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !Supported(path) {
			return nil
		}

		txns, err := ReadFile(path)
		return fn(path, txns, err)
	})
}

// Supported reports whether path has a readable extension.
func Supported(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".csv":
		return true
	default:
		return false
	}
}

func fromFields(fields map[string]string) RawTransaction {
	txn := RawTransaction{
		TxnID:     fields[FieldTxnID],
		UserID:    fields[FieldUserID],
		Merchant:  fields[FieldMerchant],
		Amount:    fields[FieldAmount],
		Currency:  fields[FieldCurrency],
		Timestamp: fields[FieldTimestamp],
	}

	for key, value := range fields {
		switch key {
		case FieldTxnID, FieldUserID, FieldMerchant, FieldAmount, FieldCurrency, FieldTimestamp:
			continue
		}
		if txn.Extras == nil {
			txn.Extras = make(map[string]string)
		}
		txn.Extras[key] = value
	}

	for _, field := range requiredFields {
		if strings.TrimSpace(fields[field]) == "" {
			txn.Err = fmt.Errorf("missing field %q", field)
			break
		}
	}
	return txn
}
