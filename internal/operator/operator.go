package operator

import (
	"context"

	"github.com/carson-networks/hermes/internal/operator/actions"
)

// Operator is the worker that processes items from the queue.
type Operator struct {
	pipeline actions.Pipeline
	queue    <-chan ActionItem
	done     <-chan struct{}
}

func NewOperator(pipeline actions.Pipeline, queue <-chan ActionItem, done <-chan struct{}) *Operator {
	return &Operator{
		pipeline: pipeline,
		queue:    queue,
		done:     done,
	}
}

// Run processes queued items until done is closed.
func (o *Operator) Run() {
	for {
		select {
		case <-o.done:
			return
		case item := <-o.queue:
			o.processItem(item)
		}
	}
}

func (o *Operator) processItem(item ActionItem) {
	if err := item.ctx.Err(); err != nil {
		item.response <- ActionItemResponse{err: err}
		return
	}

	err := item.action.Perform(item.ctx, o.pipeline)
	item.response <- ActionItemResponse{err: err}
}

type ActionItem struct {
	ctx      context.Context
	action   actions.IAction
	response chan ActionItemResponse
}

type ActionItemResponse struct {
	err error
}
