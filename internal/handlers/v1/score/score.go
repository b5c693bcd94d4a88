package score

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/carson-networks/hermes/internal/logging"
	"github.com/carson-networks/hermes/internal/service"
)

// ScoreInput is the Huma input for scoring an enriched transaction. Merchant
// and currency are accepted so callers can pass the enriched record through
// unchanged; they do not affect the score.
type ScoreInput struct {
	TxnID     string `query:"txn_id" required:"true" doc:"Transaction identifier"`
	Merchant  string `query:"merchant" doc:"Merchant name, passed through"`
	AmountSAR string `query:"amount_sar" required:"true" doc:"Amount already converted to the reference currency"`
	Currency  string `query:"currency" doc:"Original currency code, passed through"`
	Category  string `query:"category" required:"true" doc:"Category from the enrich call, or Unknown"`
	Timestamp string `query:"timestamp" required:"true" doc:"ISO-8601 timestamp; a trailing Z means UTC"`
}

// ScoreData is the scored transaction.
type ScoreData struct {
	TxnID          string `json:"txn_id" doc:"Transaction identifier"`
	SuspicionScore int    `json:"suspicion_score" minimum:"0" maximum:"75" doc:"Additive risk score"`
}

// ScoreResponse is the response envelope.
type ScoreResponse struct {
	Status string    `json:"status" doc:"Always success"`
	Data   ScoreData `json:"data"`
}

// ScoreOutput is the Huma output for scoring a transaction.
type ScoreOutput struct {
	Body ScoreResponse
}

// scorer is the interface for Stage B of the pipeline.
type scorer interface {
	Score(ctx context.Context, req service.ScoreRequest) (service.ScoredTransaction, error)
}

// ScoreHandler handles GET /score.
type ScoreHandler struct {
	Pipeline scorer
}

// NewScoreHandler creates a new ScoreHandler.
func NewScoreHandler(pipeline scorer) *ScoreHandler {
	return &ScoreHandler{Pipeline: pipeline}
}

// Register registers the score endpoint with the Huma API.
func (h *ScoreHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "score",
		Method:      http.MethodGet,
		Path:        "/score",
		Summary:     "Score an enriched transaction",
		Description: "Computes the suspicion score from the reference-currency amount, category and hour of day.",
		Tags:        []string{"Pipeline"},
	}, h.handle)
}

func parseScoreInput(input *ScoreInput) (service.ScoreRequest, error) {
	amount, err := service.ParseAmount(input.AmountSAR)
	if err != nil {
		return service.ScoreRequest{}, huma.NewError(http.StatusBadRequest, "invalid amount_sar", err)
	}

	return service.ScoreRequest{
		TxnID:     input.TxnID,
		Merchant:  input.Merchant,
		AmountRef: amount,
		Currency:  input.Currency,
		Category:  input.Category,
		Timestamp: input.Timestamp,
	}, nil
}

func (h *ScoreHandler) handle(ctx context.Context, input *ScoreInput) (*ScoreOutput, error) {
	logData := logging.GetLogData(ctx)

	req, err := parseScoreInput(input)
	if err != nil {
		return nil, err
	}

	var stopTimer func()
	if logData != nil {
		logData.AddData("txnID", req.TxnID)
		stopTimer = logData.AddTiming("scoreMs")
	}
	scored, err := h.Pipeline.Score(ctx, req)
	if stopTimer != nil {
		stopTimer()
	}
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidTimestamp):
			return nil, huma.NewError(http.StatusBadRequest, "invalid timestamp", err)
		case errors.Is(err, service.ErrInvalidAmount):
			return nil, huma.NewError(http.StatusBadRequest, "invalid amount_sar", err)
		default:
			return nil, huma.NewError(http.StatusInternalServerError, "failed to score transaction", err)
		}
	}

	if logData != nil {
		logData.AddData("suspicionScore", scored.SuspicionScore)
		logData.AddData("amountPoints", scored.Breakdown.Amount)
		logData.AddData("categoryPoints", scored.Breakdown.Category)
		logData.AddData("timePoints", scored.Breakdown.Time)
	}

	return &ScoreOutput{
		Body: ScoreResponse{
			Status: "success",
			Data: ScoreData{
				TxnID:          scored.TxnID,
				SuspicionScore: scored.SuspicionScore,
			},
		},
	}, nil
}
