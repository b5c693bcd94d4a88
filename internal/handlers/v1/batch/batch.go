package batch

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/carson-networks/hermes/internal/logging"
	"github.com/carson-networks/hermes/internal/operator"
)

// BatchTransaction is one raw transaction in a batch request.
type BatchTransaction struct {
	TxnID     string `json:"txn_id" minLength:"1" doc:"Transaction identifier"`
	Merchant  string `json:"merchant" doc:"Merchant name"`
	Amount    string `json:"amount" doc:"Positive decimal amount in the transaction currency"`
	Currency  string `json:"currency" minLength:"3" maxLength:"3" doc:"Three-letter currency code, any case"`
	Timestamp string `json:"timestamp" doc:"ISO-8601 timestamp; a trailing Z means UTC"`
}

// BatchBody is the request body for processing a batch.
type BatchBody struct {
	Transactions []BatchTransaction `json:"transactions" minItems:"1" maxItems:"1000" doc:"Transactions to enrich and score"`
}

// BatchInput is the Huma input for processing a batch.
type BatchInput struct {
	Body BatchBody
}

// BatchResult is the outcome for one transaction. Error is set instead of the
// enrichment and score fields when that transaction failed.
type BatchResult struct {
	TxnID          string  `json:"txn_id"`
	AmountSAR      float64 `json:"amount_sar,omitempty"`
	Category       string  `json:"category,omitempty"`
	RateWasAssumed bool    `json:"rate_was_assumed,omitempty"`
	SuspicionScore *int    `json:"suspicion_score,omitempty"`
	Error          string  `json:"error,omitempty"`
}

// BatchData holds the results in request order.
type BatchData struct {
	Results []BatchResult `json:"results"`
	Failed  int           `json:"failed" doc:"Number of transactions that could not be processed"`
}

// BatchResponse is the response envelope.
type BatchResponse struct {
	Status string    `json:"status"`
	Data   BatchData `json:"data"`
}

// BatchOutput is the Huma output for processing a batch.
type BatchOutput struct {
	Body BatchResponse
}

// BatchHandler handles POST /batch.
type BatchHandler struct {
	Processor operator.Processor
}

// NewBatchHandler creates a new BatchHandler.
func NewBatchHandler(processor operator.Processor) *BatchHandler {
	return &BatchHandler{Processor: processor}
}

// Register registers the batch endpoint with the Huma API.
func (h *BatchHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "batch",
		Method:      http.MethodPost,
		Path:        "/batch",
		Summary:     "Enrich and score a batch",
		Description: "Runs both pipeline stages for every transaction. Failures are reported per transaction.",
		Tags:        []string{"Pipeline"},
	}, h.handle)
}

func (h *BatchHandler) handle(ctx context.Context, input *BatchInput) (*BatchOutput, error) {
	logData := logging.GetLogData(ctx)

	items := make([]operator.BatchItem, len(input.Body.Transactions))
	for i, txn := range input.Body.Transactions {
		items[i] = operator.BatchItem{
			TxnID:     txn.TxnID,
			Merchant:  txn.Merchant,
			Amount:    txn.Amount,
			Currency:  txn.Currency,
			Timestamp: txn.Timestamp,
		}
	}

	var stopTimer func()
	if logData != nil {
		stopTimer = logData.AddTiming("batchMs")
	}
	outcomes := operator.RunBatch(ctx, h.Processor, items)
	if stopTimer != nil {
		stopTimer()
	}
	if err := ctx.Err(); err != nil {
		return nil, huma.NewError(http.StatusServiceUnavailable, "batch abandoned", err)
	}

	results := make([]BatchResult, len(outcomes))
	for i, outcome := range outcomes {
		results[i].TxnID = outcome.TxnID
		if outcome.Err != nil {
			results[i].Error = outcome.Err.Error()
			continue
		}
		score := outcome.Scored.SuspicionScore
		results[i].AmountSAR = outcome.Enriched.AmountRef.InexactFloat64()
		results[i].Category = outcome.Enriched.Category
		results[i].RateWasAssumed = outcome.Enriched.RateAssumed
		results[i].SuspicionScore = &score
	}
	failed := operator.Failed(outcomes)

	if logData != nil {
		logData.AddData("batchSize", len(results))
		logData.AddData("batchFailed", failed)
	}

	return &BatchOutput{
		Body: BatchResponse{
			Status: "success",
			Data:   BatchData{Results: results, Failed: failed},
		},
	}, nil
}
