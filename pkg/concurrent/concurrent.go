package concurrent

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Map applies fn to every element of in with at most workers goroutines,
// preserving order. The first error cancels ctx for the remaining calls and
// is returned alongside whatever results were already produced.
func Map[T any, R any](ctx context.Context, in []T, workers int, fn func(context.Context, int, T) (R, error)) ([]R, error) {
	out := make([]R, len(in))
	if workers < 1 {
		workers = 1
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for idx, val := range in {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			r, err := fn(gctx, idx, val)
			if err != nil {
				return err
			}
			out[idx] = r
			return nil
		})
	}
	return out, g.Wait()
}
