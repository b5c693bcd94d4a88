package actions

import (
	"context"

	"github.com/carson-networks/hermes/internal/service"
)

// EnrichAndScore runs both stages for one transaction, feeding the enriched
// record into the scoring stage. Results are set on success.
type EnrichAndScore struct {
	Transaction service.Transaction
	Timestamp   string

	Enriched service.EnrichedTransaction
	Scored   service.ScoredTransaction
}

func (a *EnrichAndScore) Perform(ctx context.Context, pipeline Pipeline) error {
	enriched, err := pipeline.Enrich(ctx, a.Transaction)
	if err != nil {
		return err
	}

	scored, err := pipeline.Score(ctx, enriched.ScoreRequest(a.Transaction.Merchant, a.Transaction.Currency, a.Timestamp))
	if err != nil {
		return err
	}

	a.Enriched = enriched
	a.Scored = scored
	return nil
}
