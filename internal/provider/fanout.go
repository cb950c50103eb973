package provider

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// ForEach runs fn for every item with at most limit calls in flight. The
// first error cancels the context passed to the remaining calls and is
// returned once all started calls have finished.
func ForEach[T any](ctx context.Context, limit int, items []T, fn func(ctx context.Context, i int, item T) error) error {
	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, item := range items {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return fn(gctx, i, item)
		})
	}
	return g.Wait()
}

// Map runs fn for every item with at most limit calls in flight and returns
// the results in input order together with the per-item errors. It never
// cancels sibling calls; callers decide how to treat failures.
func Map[T, R any](ctx context.Context, limit int, items []T, fn func(ctx context.Context, i int, item T) (R, error)) ([]R, []error) {
	results := make([]R, len(items))
	errs := make([]error, len(items))

	var g errgroup.Group
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, item := range items {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				errs[i] = err
				return nil
			}
			results[i], errs[i] = fn(ctx, i, item)
			return nil
		})
	}
	_ = g.Wait()
	return results, errs
}
