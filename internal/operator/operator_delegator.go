package operator

import (
	"context"
	"errors"
	"sync"

	"github.com/carson-networks/hermes/internal/operator/actions"
)

const queueSize = 1000

// ErrStopped is returned by Process once the delegator has been stopped.
var ErrStopped = errors.New("operator: delegator stopped")

// OperatorDelegator manages the queue, starts/stops Operators (workers), and enqueues items.
type OperatorDelegator struct {
	pipeline   actions.Pipeline
	queue      chan ActionItem
	done       chan struct{}
	numWorkers int
	wg         sync.WaitGroup
	startOnce  sync.Once
	stopOnce   sync.Once
}

func NewOperatorDelegator(pipeline actions.Pipeline, numWorkers int) *OperatorDelegator {
	if numWorkers < 1 {
		numWorkers = 1
	}
	return &OperatorDelegator{
		pipeline:   pipeline,
		queue:      make(chan ActionItem, queueSize),
		done:       make(chan struct{}),
		numWorkers: numWorkers,
	}
}

func (d *OperatorDelegator) Start() {
	d.startOnce.Do(func() {
		for i := 0; i < d.numWorkers; i++ {
			d.wg.Add(1)
			op := NewOperator(d.pipeline, d.queue, d.done)
			go func() {
				defer d.wg.Done()
				op.Run()
			}()
		}
	})
}

// Stop signals the workers to exit and waits for them. Items still queued
// are abandoned and their callers receive ErrStopped.
func (d *OperatorDelegator) Stop() {
	d.stopOnce.Do(func() {
		close(d.done)
		d.wg.Wait()
	})
}

// Process enqueues action and waits for a worker to perform it.
func (d *OperatorDelegator) Process(ctx context.Context, action actions.IAction) error {
	respCh := make(chan ActionItemResponse, 1)
	item := ActionItem{
		ctx:      ctx,
		action:   action,
		response: respCh,
	}

	select {
	case d.queue <- item:
	case <-ctx.Done():
		return ctx.Err()
	case <-d.done:
		return ErrStopped
	}

	select {
	case resp := <-respCh:
		return resp.err
	case <-ctx.Done():
		return ctx.Err()
	case <-d.done:
		// the worker may have finished just before stopping
		select {
		case resp := <-respCh:
			return resp.err
		default:
			return ErrStopped
		}
	}
}

// ProcessAll performs every action concurrently through the worker pool and
// returns one error slot per action, in input order.
func (d *OperatorDelegator) ProcessAll(ctx context.Context, acts []actions.IAction) []error {
	errs := make([]error, len(acts))

	var wg sync.WaitGroup
	for i, action := range acts {
		i, action := i, action
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = d.Process(ctx, action)
		}()
	}
	wg.Wait()

	return errs
}
