package enrich

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/carson-networks/hermes/internal/logging"
	"github.com/carson-networks/hermes/internal/service"
)

// EnrichInput is the Huma input for enriching a transaction.
type EnrichInput struct {
	TxnID    string `query:"txn_id" required:"true" doc:"Transaction identifier"`
	Merchant string `query:"merchant" required:"true" doc:"Merchant name, matched exactly against the category table"`
	Amount   string `query:"amount" required:"true" doc:"Positive decimal amount in the transaction currency"`
	Currency string `query:"currency" required:"true" minLength:"3" maxLength:"3" doc:"Three-letter currency code, any case"`
}

// EnrichData is the enriched transaction.
type EnrichData struct {
	TxnID          string  `json:"txn_id" doc:"Transaction identifier"`
	AmountSAR      float64 `json:"amount_sar" doc:"Amount in the reference currency"`
	Category       string  `json:"category" doc:"Merchant category, or Unknown"`
	RateWasAssumed bool    `json:"rate_was_assumed" doc:"True when the currency was not in the rate table and a rate of 1 was used"`
}

// EnrichResponse is the response envelope.
type EnrichResponse struct {
	Status string     `json:"status" doc:"Always success"`
	Data   EnrichData `json:"data"`
}

// EnrichOutput is the Huma output for enriching a transaction.
type EnrichOutput struct {
	Body EnrichResponse
}

// enricher is the interface for Stage A of the pipeline.
type enricher interface {
	Enrich(ctx context.Context, txn service.Transaction) (service.EnrichedTransaction, error)
}

// EnrichHandler handles GET /enrich.
type EnrichHandler struct {
	Pipeline enricher
}

// NewEnrichHandler creates a new EnrichHandler.
func NewEnrichHandler(pipeline enricher) *EnrichHandler {
	return &EnrichHandler{Pipeline: pipeline}
}

// Register registers the enrich endpoint with the Huma API.
func (h *EnrichHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "enrich",
		Method:      http.MethodGet,
		Path:        "/enrich",
		Summary:     "Enrich a transaction",
		Description: "Converts the amount into the reference currency and categorizes the merchant.",
		Tags:        []string{"Pipeline"},
	}, h.handle)
}

func parseEnrichInput(input *EnrichInput) (service.Transaction, error) {
	amount, err := service.ParseAmount(input.Amount)
	if err != nil {
		return service.Transaction{}, huma.NewError(http.StatusBadRequest, "invalid amount", err)
	}

	return service.Transaction{
		TxnID:    input.TxnID,
		Merchant: input.Merchant,
		Amount:   amount,
		Currency: input.Currency,
	}, nil
}

func (h *EnrichHandler) handle(ctx context.Context, input *EnrichInput) (*EnrichOutput, error) {
	logData := logging.GetLogData(ctx)

	txn, err := parseEnrichInput(input)
	if err != nil {
		return nil, err
	}

	var stopTimer func()
	if logData != nil {
		logData.AddData("txnID", txn.TxnID)
		stopTimer = logData.AddTiming("enrichMs")
	}
	enriched, err := h.Pipeline.Enrich(ctx, txn)
	if stopTimer != nil {
		stopTimer()
	}
	if err != nil {
		if errors.Is(err, service.ErrInvalidAmount) {
			return nil, huma.NewError(http.StatusBadRequest, "invalid amount", err)
		}
		return nil, huma.NewError(http.StatusInternalServerError, "failed to enrich transaction", err)
	}

	if logData != nil {
		logData.AddData("category", enriched.Category)
		logData.AddData("rateAssumed", enriched.RateAssumed)
	}

	return &EnrichOutput{
		Body: EnrichResponse{
			Status: "success",
			Data: EnrichData{
				TxnID:          enriched.TxnID,
				AmountSAR:      enriched.AmountRef.InexactFloat64(),
				Category:       enriched.Category,
				RateWasAssumed: enriched.RateAssumed,
			},
		},
	}, nil
}
