// Package pool runs independent tasks on a bounded set of workers and
// returns their results in input order.
package pool

import (
	"context"
	"sync"
)

// Task processes one item. Tasks report failures in their result; the pool
// itself never fails.
type Task[TItem, TResult any] func(ctx context.Context, item TItem) TResult

type indexedItem[TItem any] struct {
	index int
	item  TItem
}

// Map runs task over items with the given number of workers and returns
// results in item order. Items not started before ctx is done keep the zero
// TResult; callers check ctx.Err() to tell them apart.
func Map[TItem, TResult any](ctx context.Context, workers int, items []TItem, task Task[TItem, TResult]) []TResult {
	results := make([]TResult, len(items))
	if len(items) == 0 {
		return results
	}
	workers = min(max(workers, 1), len(items))

	queue := make(chan indexedItem[TItem], len(items))
	for i, item := range items {
		queue <- indexedItem[TItem]{index: i, item: item}
	}
	close(queue)

	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case work, ok := <-queue:
					if !ok || ctx.Err() != nil {
						return
					}
					// Each index is written by exactly one worker.
					results[work.index] = task(ctx, work.item)
				}
			}
		}()
	}
	wg.Wait()

	return results
}
