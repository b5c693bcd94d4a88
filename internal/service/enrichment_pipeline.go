package service

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/carson-networks/hermes/internal/tables"
)

// TableSource hands out the lookup tables in effect for one call.
type TableSource interface {
	Snapshot() *tables.Tables
}

// timestampLayouts are the ISO-8601 forms accepted by Score, tried in order.
// Fractional seconds are accepted by every layout that has a seconds field.
var timestampLayouts = []string{
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02T15:04:05-0700",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// EnrichmentPipeline runs the two independent stages: Enrich turns a raw
// transaction into an enriched record, Score turns enriched fields into a
// suspicion score. The pipeline keeps no state between calls.
type EnrichmentPipeline struct {
	source TableSource
}

// NewEnrichmentPipeline creates a pipeline reading its tables from source.
func NewEnrichmentPipeline(source TableSource) *EnrichmentPipeline {
	return &EnrichmentPipeline{source: source}
}

// Enrich converts the amount into the reference currency and categorizes the
// merchant. Unknown currencies and merchants are not errors.
func (p *EnrichmentPipeline) Enrich(ctx context.Context, txn Transaction) (EnrichedTransaction, error) {
	if err := ctx.Err(); err != nil {
		return EnrichedTransaction{}, err
	}
	if err := validateAmount(txn.Amount); err != nil {
		return EnrichedTransaction{}, err
	}

	// one snapshot per call, so a concurrent reload cannot mix tables
	snapshot := p.source.Snapshot()
	converter := NewCurrencyConverter(snapshot)
	categorizer := NewMerchantCategorizer(snapshot)

	amountRef, rateAssumed := converter.Convert(txn.Amount, txn.Currency)
	if err := checkReportable(amountRef); err != nil {
		return EnrichedTransaction{}, err
	}

	return EnrichedTransaction{
		TxnID:             txn.TxnID,
		AmountRef:         amountRef,
		ReferenceCurrency: converter.ReferenceCurrency(),
		Category:          categorizer.Categorize(txn.Merchant),
		RateAssumed:       rateAssumed,
	}, nil
}

// Score parses the timestamp, takes its hour in the timestamp's own offset
// and scores the enriched fields.
func (p *EnrichmentPipeline) Score(ctx context.Context, req ScoreRequest) (ScoredTransaction, error) {
	if err := ctx.Err(); err != nil {
		return ScoredTransaction{}, err
	}
	// stricter than the scorer needs: amounts up to 100 would just score 0
	if err := validateAmount(req.AmountRef); err != nil {
		return ScoredTransaction{}, err
	}

	ts, err := ParseTimestamp(req.Timestamp)
	if err != nil {
		return ScoredTransaction{}, err
	}
	hour := ts.Hour()

	scorer := NewSuspicionScorer(p.source.Snapshot())
	breakdown := scorer.Breakdown(req.AmountRef, req.Category, hour)

	return ScoredTransaction{
		TxnID:          req.TxnID,
		SuspicionScore: breakdown.Total(),
		Hour:           hour,
		Breakdown:      breakdown,
	}, nil
}

// ParseTimestamp parses an ISO-8601 timestamp. A trailing "Z" means UTC.
// Timestamps without an offset keep their wall clock and are returned in UTC.
func ParseTimestamp(raw string) (time.Time, error) {
	value := strings.TrimSpace(raw)
	if strings.HasSuffix(value, "Z") {
		value = strings.TrimSuffix(value, "Z") + "+00:00"
	}

	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q is not ISO-8601", ErrInvalidTimestamp, raw)
}

// ParseAmount parses a decimal amount and checks that it is positive and
// representable as a float64 in responses.
func ParseAmount(raw string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: %q is not a number", ErrInvalidAmount, raw)
	}
	if err := validateAmount(amount); err != nil {
		return decimal.Decimal{}, err
	}
	if err := checkReportable(amount); err != nil {
		return decimal.Decimal{}, err
	}
	return amount, nil
}

func validateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("%w: %s must be greater than zero", ErrInvalidAmount, amount)
	}
	return nil
}

// checkReportable rejects amounts that overflow to infinity or underflow to
// zero as a float64. JSON cannot carry infinities.
func checkReportable(amount decimal.Decimal) error {
	f := amount.InexactFloat64()
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return fmt.Errorf("%w: %s is too large", ErrInvalidAmount, amount)
	}
	if f == 0 && !amount.IsZero() {
		return fmt.Errorf("%w: %s is too small", ErrInvalidAmount, amount)
	}
	return nil
}
