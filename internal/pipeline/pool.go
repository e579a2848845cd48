package pipeline

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Map runs task for every index in [0, n) with at most limit tasks active at
// once and returns their results by index: result i is always task i's value.
// A panicking task does not affect its siblings; its slot is filled by
// recovered instead. Map never cancels a started task.
func Map[R any](ctx context.Context, n, limit int, task func(ctx context.Context, i int) R, recovered func(i int, p any) R) []R {
	if limit < 1 {
		limit = 1
	}
	results := make([]R, n)

	var g errgroup.Group
	g.SetLimit(limit)
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			defer func() {
				if p := recover(); p != nil {
					results[i] = recovered(i, p)
				}
			}()
			results[i] = task(ctx, i)
			return nil
		})
	}
	_ = g.Wait()
	return results
}
