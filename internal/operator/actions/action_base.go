package actions

import (
	"context"

	"github.com/carson-networks/hermes/internal/service"
)

// Pipeline is the part of the enrichment pipeline actions run against.
type Pipeline interface {
	Enrich(ctx context.Context, txn service.Transaction) (service.EnrichedTransaction, error)
	Score(ctx context.Context, req service.ScoreRequest) (service.ScoredTransaction, error)
}

type IAction interface {
	Perform(ctx context.Context, pipeline Pipeline) error
}
