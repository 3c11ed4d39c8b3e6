package app

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

const defaultBatchConcurrency = 4

// FetchAll runs every input through Fetch with at most concurrency requests in flight.
// Reports come back in input order; a failed request is reported in its slot and does not
// stop the others.
func (r *Runner) FetchAll(ctx context.Context, inputs []FetchInput, concurrency int) ([]Report, error) {
	if r == nil || r.executor == nil {
		return nil, fmt.Errorf("runner is not initialized")
	}
	if len(inputs) == 0 {
		return nil, fmt.Errorf("no requests to fetch")
	}
	if concurrency <= 0 {
		concurrency = defaultBatchConcurrency
	}

	reports := make([]Report, len(inputs))
	var g errgroup.Group
	g.SetLimit(concurrency)
	for i, in := range inputs {
		i, in := i, in
		g.Go(func() error {
			reports[i] = r.Fetch(ctx, in)
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for _, rep := range reports {
		if rep.Err != nil {
			failed++
			r.log.WarnObj("batch request failed", "request_result", map[string]any{
				"url":     rep.URL,
				"outcome": rep.Outcome,
			})
		}
	}

	r.log.InfoObj("batch fetch completed", "batch_result", map[string]any{
		"requests":    len(inputs),
		"failed":      failed,
		"concurrency": concurrency,
	})
	return reports, nil
}
