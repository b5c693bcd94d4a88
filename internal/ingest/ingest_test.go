package ingest

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeJSON(t *testing.T) {
	txns, err := DecodeJSON(strings.NewReader(`[
		{"txn_id": "TXN1000", "user_id": "U123", "amount": 10.50, "currency": "USD",
		 "timestamp": "2025-06-25T02:00:00Z", "merchant": "Amazon", "channel": "CHANNEL_3"},
		{"txn_id": "TXN1001", "amount": 999.99, "currency": "sar",
		 "timestamp": "2025-06-25T14:00:00Z", "merchant": "Noon", "location": null}
	]`))
	require.NoError(t, err)
	require.Len(t, txns, 2)

	assert.Equal(t, RawTransaction{
		TxnID:     "TXN1000",
		UserID:    "U123",
		Merchant:  "Amazon",
		Amount:    "10.50",
		Currency:  "USD",
		Timestamp: "2025-06-25T02:00:00Z",
		Extras:    map[string]string{"channel": "CHANNEL_3"},
	}, txns[0])
	assert.Equal(t, "999.99", txns[1].Amount)
	assert.Empty(t, txns[1].UserID)
	assert.Nil(t, txns[1].Extras)
}

func TestDecodeJSON_MissingFieldFailsOnlyThatRecord(t *testing.T) {
	txns, err := DecodeJSON(strings.NewReader(`[
		{"txn_id": "T1", "amount": 1, "currency": "USD", "timestamp": "2025-06-25T02:00:00Z"},
		{"txn_id": "T2", "merchant": "Zara", "amount": 1, "currency": "USD", "timestamp": "2025-06-25T02:00:00Z"}
	]`))
	require.NoError(t, err)
	require.Len(t, txns, 2)

	assert.Equal(t, "T1", txns[0].TxnID)
	assert.ErrorContains(t, txns[0].Err, "merchant")
	assert.ErrorContains(t, txns[0].Err, "record 0")
	assert.NoError(t, txns[1].Err)
}

func TestDecodeJSON_NotAnArray(t *testing.T) {
	_, err := DecodeJSON(strings.NewReader(`{"txn_id": "T"}`))
	assert.Error(t, err)
}

func TestDecodeCSV_AnyColumnOrder(t *testing.T) {
	csvText := "merchant,branch_code,timestamp,currency,txn_id,amount,user_id\n" +
		"Zara,BRANCH_CODE_7,2025-06-25T02:00:00Z,usd,TXN1,100.00,U555\n" +
		"Sony,,2025-06-25T03:00:00Z,EUR,TXN2,5,U556\n"

	txns, err := DecodeCSV(strings.NewReader(csvText))
	require.NoError(t, err)
	require.Len(t, txns, 2)

	assert.Equal(t, "TXN1", txns[0].TxnID)
	assert.Equal(t, "Zara", txns[0].Merchant)
	assert.Equal(t, "100.00", txns[0].Amount)
	assert.Equal(t, "usd", txns[0].Currency)
	assert.Equal(t, "U555", txns[0].UserID)
	assert.Equal(t, map[string]string{"branch_code": "BRANCH_CODE_7"}, txns[0].Extras)
	assert.Nil(t, txns[1].Extras)
}

func TestDecodeCSV_MissingColumn(t *testing.T) {
	_, err := DecodeCSV(strings.NewReader("txn_id,amount,currency,timestamp\nT,1,USD,2025-06-25T02:00:00Z\n"))
	assert.ErrorContains(t, err, "merchant")
}

func TestDecodeCSV_Empty(t *testing.T) {
	_, err := DecodeCSV(strings.NewReader(""))
	assert.Error(t, err)
}

func TestDecodeCSV_BadRowsFailOnlyThemselves(t *testing.T) {
	txns, err := DecodeCSV(strings.NewReader("txn_id,merchant,amount,currency,timestamp\n" +
		"T1,,1,USD,2025-06-25T02:00:00Z\n" +
		"T2,Zara,1,USD\n" +
		"T3,Zara,1,USD,2025-06-25T02:00:00Z\n"))
	require.NoError(t, err)
	require.Len(t, txns, 3)

	assert.ErrorContains(t, txns[0].Err, "line 2")
	assert.ErrorContains(t, txns[0].Err, "merchant")
	assert.ErrorContains(t, txns[1].Err, "line 3")
	assert.NoError(t, txns[2].Err)
	assert.Equal(t, "T3", txns[2].TxnID)
}

func TestDecodeCSV_LongRow(t *testing.T) {
	txns, err := DecodeCSV(strings.NewReader("txn_id,merchant,amount,currency,timestamp\n" +
		"T1,Zara,1,USD,2025-06-25T02:00:00Z,surplus\n"))
	require.NoError(t, err)
	require.Len(t, txns, 1)
	assert.ErrorContains(t, txns[0].Err, "expected 5 fields, got 6")
}

func TestReadFile_UnsupportedExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0o600))

	_, err := ReadFile(path)
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))
}

func TestWalk_LexicalOrderSkipsOtherFiles(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "bank_A", "2025-06-25")
	require.NoError(t, os.MkdirAll(dir, 0o755))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "txn_batch_002.csv"),
		[]byte("txn_id,merchant,amount,currency,timestamp\nT2,Zara,1,USD,2025-06-25T02:00:00Z\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "txn_batch_001.json"),
		[]byte(`[{"txn_id":"T1","merchant":"Zara","amount":1,"currency":"USD","timestamp":"2025-06-25T02:00:00Z"}]`), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("skip"), 0o600))

	var seen []string
	err := Walk(root, func(path string, txns []RawTransaction, err error) error {
		require.NoError(t, err)
		require.Len(t, txns, 1)
		seen = append(seen, txns[0].TxnID)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"T1", "T2"}, seen)
}

func TestWalk_PropagatesCallbackError(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.json"),
		[]byte(`[{"txn_id":"T1","merchant":"Zara","amount":1,"currency":"USD","timestamp":"2025-06-25T02:00:00Z"}]`), 0o600))

	err := Walk(root, func(path string, txns []RawTransaction, err error) error {
		return errors.New("stop")
	})
	assert.EqualError(t, err, "stop")
}

func TestWalk_UnreadableFileIsHandedToCallback(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.json"), []byte(`{not json`), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(root, "b.json"),
		[]byte(`[{"txn_id":"T1","merchant":"Zara","amount":1,"currency":"USD","timestamp":"2025-06-25T02:00:00Z"}]`), 0o600))

	var failed, read []string
	err := Walk(root, func(path string, txns []RawTransaction, err error) error {
		if err != nil {
			failed = append(failed, filepath.Base(path))
			return nil
		}
		read = append(read, filepath.Base(path))
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a.json"}, failed)
	assert.Equal(t, []string{"b.json"}, read)
}
