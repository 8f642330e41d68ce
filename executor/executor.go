// Package executor provides the bounded-concurrency machinery shared by the
// network-facing pipeline stages: a worker-pool Map that fans work out under
// a fixed in-flight cap, and a retry policy for individual remote calls.
package executor

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// Result pairs one work item's outcome with its input position.
type Result[T any] struct {
	Value T
	Err   error
}

// Map runs fn over every item with at most limit in flight, returning a
// result slice positionally matching items. Completion order is unspecified;
// a failure (or panic) in one item never prevents the others from running.
// The reporter is ticked exactly once per item regardless of outcome.
func Map[In, Out any](ctx context.Context, items []In, limit int, reporter ProgressReporter, fn func(context.Context, In) (Out, error)) []Result[Out] {
	if limit <= 0 {
		limit = 1
	}
	if reporter == nil {
		reporter = Silent{}
	}

	results := make([]Result[Out], len(items))
	sem := make(chan struct{}, limit)
	var wg sync.WaitGroup

	for i, item := range items {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, item In) {
			defer wg.Done()
			defer func() { <-sem }()
			defer reporter.Record()

			value, err := runOne(ctx, item, fn)
			results[i] = Result[Out]{Value: value, Err: err}
		}(i, item)
	}

	wg.Wait()
	return results
}

// runOne contains the per-item panic boundary: an unexpected programming
// error inside one task is converted into that item's failure and logged,
// never propagated to the batch.
func runOne[In, Out any](ctx context.Context, item In, fn func(context.Context, In) (Out, error)) (value Out, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task panic: %v", r)
			slog.Error("work item panicked", "panic", r)
		}
	}()
	return fn(ctx, item)
}
