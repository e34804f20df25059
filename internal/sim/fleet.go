package sim

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// RunFleet runs independent simulators concurrently and returns their
// results in input order. Simulators must not share a Vessel or Tracker.
// The first failure cancels the remaining runs.
func RunFleet(ctx context.Context, sims []*Simulator) ([]*Result, error) {
	results := make([]*Result, len(sims))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, s := range sims {
		g.Go(func() error {
			res, err := s.Run(ctx)
			if err != nil {
				return fmt.Errorf("vessel %d: %w", i, err)
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
