package operator

import (
	"context"

	"github.com/carson-networks/hermes/internal/operator/actions"
	"github.com/carson-networks/hermes/internal/service"
)

// BatchItem is one raw transaction for RunBatch. An item with Err set is
// reported as failed without being processed.
type BatchItem struct {
	TxnID     string
	Merchant  string
	Amount    string
	Currency  string
	Timestamp string
	Err       error
}

// BatchResult is the outcome for one BatchItem. Enriched and Scored are only
// meaningful when Err is nil.
type BatchResult struct {
	TxnID    string
	Enriched service.EnrichedTransaction
	Scored   service.ScoredTransaction
	Err      error
}

// Processor runs actions concurrently, returning one error per action in order.
type Processor interface {
	ProcessAll(ctx context.Context, acts []actions.IAction) []error
}

// RunBatch enriches and scores every item through processor. Results are in
// item order and failures are reported per item.
func RunBatch(ctx context.Context, processor Processor, items []BatchItem) []BatchResult {
	results := make([]BatchResult, len(items))
	var pending []actions.IAction
	var pendingIdx []int

	for i, item := range items {
		results[i].TxnID = item.TxnID
		if item.Err != nil {
			results[i].Err = item.Err
			continue
		}
		amount, err := service.ParseAmount(item.Amount)
		if err != nil {
			results[i].Err = err
			continue
		}
		pending = append(pending, &actions.EnrichAndScore{
			Transaction: service.Transaction{
				TxnID:    item.TxnID,
				Merchant: item.Merchant,
				Amount:   amount,
				Currency: item.Currency,
			},
			Timestamp: item.Timestamp,
		})
		pendingIdx = append(pendingIdx, i)
	}

	if len(pending) == 0 {
		return results
	}

	errs := processor.ProcessAll(ctx, pending)
	for j, action := range pending {
		i := pendingIdx[j]
		if errs[j] != nil {
			results[i].Err = errs[j]
			continue
		}
		a := action.(*actions.EnrichAndScore)
		results[i].Enriched = a.Enriched
		results[i].Scored = a.Scored
	}
	return results
}

// Failed counts results carrying an error.
func Failed(results []BatchResult) int {
	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	return failed
}
