package service

import (
	"github.com/shopspring/decimal"
)

// Transaction is a raw payment transaction as handed to Stage A.
type Transaction struct {
	TxnID    string
	Merchant string
	Amount   decimal.Decimal
	Currency string
}

// EnrichedTransaction is the Stage A result.
type EnrichedTransaction struct {
	TxnID string
	// AmountRef is the amount in the reference currency.
	AmountRef         decimal.Decimal
	ReferenceCurrency string
	Category          string
	// RateAssumed is set when the currency was missing from the rate table
	// and a rate of 1 was used instead.
	RateAssumed bool
}

// ScoreRequest is the Stage B input. Merchant and Currency are carried
// through for the caller's benefit and do not affect the score.
type ScoreRequest struct {
	TxnID     string
	Merchant  string
	AmountRef decimal.Decimal
	Currency  string
	Category  string
	Timestamp string
}

// ScoreRequest builds the Stage B input from an enriched record. Stage A and
// Stage B share no state, so this is how callers carry the record forward.
func (e EnrichedTransaction) ScoreRequest(merchant, currency, timestamp string) ScoreRequest {
	return ScoreRequest{
		TxnID:     e.TxnID,
		Merchant:  merchant,
		AmountRef: e.AmountRef,
		Currency:  currency,
		Category:  e.Category,
		Timestamp: timestamp,
	}
}

// ScoreBreakdown holds the contribution of each scoring factor.
type ScoreBreakdown struct {
	Amount   int
	Category int
	Time     int
}

// Total is the suspicion score.
func (b ScoreBreakdown) Total() int {
	return b.Amount + b.Category + b.Time
}

// ScoredTransaction is the Stage B result.
type ScoredTransaction struct {
	TxnID          string
	SuspicionScore int
	Hour           int
	Breakdown      ScoreBreakdown
}
