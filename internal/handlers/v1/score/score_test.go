package score

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"testing"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/carson-networks/hermes/internal/service"
	"github.com/carson-networks/hermes/internal/tables"
)

type mockScorer struct {
	mock.Mock
}

func (m *mockScorer) Score(ctx context.Context, req service.ScoreRequest) (service.ScoredTransaction, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(service.ScoredTransaction), args.Error(1)
}

func newTestAPI(t *testing.T, pipeline scorer) humatest.TestAPI {
	t.Helper()
	_, api := humatest.New(t)
	NewScoreHandler(pipeline).Register(api)
	return api
}

func newRealPipeline(t *testing.T) *service.EnrichmentPipeline {
	t.Helper()
	store, err := tables.NewStore(tables.Default())
	require.NoError(t, err)
	return service.NewEnrichmentPipeline(store)
}

func scorePath(params map[string]string) string {
	q := url.Values{}
	for k, v := range params {
		q.Set(k, v)
	}
	return "/score?" + q.Encode()
}

func validParams() map[string]string {
	return map[string]string{
		"txn_id":     "T1",
		"merchant":   "Zara",
		"amount_sar": "375.0",
		"currency":   "usd",
		"category":   "Clothing",
		"timestamp":  "2025-06-25T02:00:00Z",
	}
}

// -- parseScoreInput unit tests --

func TestParseScoreInput_Valid(t *testing.T) {
	req, err := parseScoreInput(&ScoreInput{
		TxnID: "T1", Merchant: "Zara", AmountSAR: "375.0", Currency: "usd", Category: "Clothing", Timestamp: "2025-06-25T02:00:00Z",
	})
	require.NoError(t, err)

	assert.Equal(t, "T1", req.TxnID)
	assert.True(t, req.AmountRef.Equal(decimal.RequireFromString("375")))
	assert.Equal(t, "Clothing", req.Category)
	assert.Equal(t, "2025-06-25T02:00:00Z", req.Timestamp)
}

func TestParseScoreInput_InvalidAmount(t *testing.T) {
	_, err := parseScoreInput(&ScoreInput{TxnID: "T1", AmountSAR: "lots", Category: "Unknown", Timestamp: "2025-06-25T02:00:00Z"})
	assert.Error(t, err)
}

// -- HTTP tests (full Huma stack via humatest) --

func TestHTTP_Score_EndToEnd(t *testing.T) {
	resp := newTestAPI(t, newRealPipeline(t)).Get(scorePath(validParams()))

	require.Equal(t, http.StatusOK, resp.Code)
	var body ScoreResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))

	assert.Equal(t, "success", body.Status)
	assert.Equal(t, "T1", body.Data.TxnID)
	// (100, 500] amount band + non-risky category + hour 2 before 06:00
	assert.Equal(t, 10+0+20, body.Data.SuspicionScore)
}

func TestHTTP_Score_MerchantAndCurrencyOptional(t *testing.T) {
	params := validParams()
	delete(params, "merchant")
	delete(params, "currency")

	resp := newTestAPI(t, newRealPipeline(t)).Get(scorePath(params))
	assert.Equal(t, http.StatusOK, resp.Code)
}

func TestHTTP_Score_PassesRequestThrough(t *testing.T) {
	pipeline := new(mockScorer)
	pipeline.On("Score", mock.Anything, mock.MatchedBy(func(req service.ScoreRequest) bool {
		return req.TxnID == "T1" &&
			req.Merchant == "Zara" &&
			req.Currency == "usd" &&
			req.AmountRef.Equal(decimal.RequireFromString("375")) &&
			req.Category == "Clothing" &&
			req.Timestamp == "2025-06-25T02:00:00Z"
	})).Return(service.ScoredTransaction{TxnID: "T1", SuspicionScore: 30}, nil)

	resp := newTestAPI(t, pipeline).Get(scorePath(validParams()))

	assert.Equal(t, http.StatusOK, resp.Code)
	pipeline.AssertExpectations(t)
}

func TestHTTP_Score_InvalidTimestamp(t *testing.T) {
	params := validParams()
	params["timestamp"] = "25/06/2025"

	resp := newTestAPI(t, newRealPipeline(t)).Get(scorePath(params))

	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Contains(t, resp.Body.String(), "invalid timestamp")
}

func TestHTTP_Score_InvalidAmount(t *testing.T) {
	pipeline := new(mockScorer)
	params := validParams()
	params["amount_sar"] = "-1"

	resp := newTestAPI(t, pipeline).Get(scorePath(params))

	assert.Equal(t, http.StatusBadRequest, resp.Code)
	pipeline.AssertNotCalled(t, "Score", mock.Anything, mock.Anything)
}

func TestHTTP_Score_MissingTimestamp(t *testing.T) {
	pipeline := new(mockScorer)
	params := validParams()
	delete(params, "timestamp")

	resp := newTestAPI(t, pipeline).Get(scorePath(params))

	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
	pipeline.AssertNotCalled(t, "Score", mock.Anything, mock.Anything)
}

func TestHTTP_Score_PipelineError(t *testing.T) {
	pipeline := new(mockScorer)
	pipeline.On("Score", mock.Anything, mock.Anything).
		Return(service.ScoredTransaction{}, errors.New("unexpected"))

	resp := newTestAPI(t, pipeline).Get(scorePath(validParams()))

	assert.Equal(t, http.StatusInternalServerError, resp.Code)
}
