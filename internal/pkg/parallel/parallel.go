// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package parallel provides a bounded parallel map over independent items.
package parallel

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Result is the outcome of applying a function to a single item.
//
// Exactly one of Value and Err is meaningful: if Err is nil, Value holds the result.
type Result[T any] struct {
	// Value is the result of the function.
	Value T
	// Err is the error returned by the function, if any.
	Err error
}

// DefaultMaxWorkers returns the default worker count, the available CPU parallelism.
func DefaultMaxWorkers() int {
	return runtime.GOMAXPROCS(0)
}

// Map applies f to every item with at most maxWorkers concurrent calls, and
// blocks until every call has returned.
//
// Results are returned in the same order as items. A failing item does not stop
// the others: its error is recorded in its Result. If ctx is done before an item
// is started, the item's Result holds the context error.
//
// If maxWorkers is less than 1, DefaultMaxWorkers is used.
func Map[I any, O any](
	ctx context.Context,
	items []I,
	maxWorkers int,
	f func(ctx context.Context, item I) (O, error),
) []Result[O] {
	if maxWorkers < 1 {
		maxWorkers = DefaultMaxWorkers()
	}
	results := make([]Result[O], len(items))
	var group errgroup.Group
	group.SetLimit(maxWorkers)
	for i, item := range items {
		group.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i] = Result[O]{Err: err}
				return nil
			}
			value, err := f(ctx, item)
			results[i] = Result[O]{Value: value, Err: err}
			// Errors are carried in results so one failure never cancels the batch.
			return nil
		})
	}
	_ = group.Wait()
	return results
}
