// Package worker runs independent per-party jobs on a bounded pool.
package worker

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/okian/partyrisk/pkg/logger"
	"github.com/okian/partyrisk/pkg/metrics"
)

// Pool bounds how many jobs run at once. A Pool holds no per-run state and
// can be shared by concurrent runs.
type Pool struct {
	size   int
	name   string
	logger logger.Logger
}

// NewPool creates a pool. Without WithSize it runs runtime.NumCPU() jobs at
// once.
func NewPool(opts ...Option) *Pool {
	p := &Pool{
		size:   runtime.NumCPU(),
		name:   "worker-pool",
		logger: logger.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	metrics.UpdateWorkerPoolSize(p.size)
	return p
}

// Size returns the concurrency limit.
func (p *Pool) Size() int { return p.size }

// Job processes item i. A returned error aborts the whole run; per-item
// failures that should not abort belong in Out.
type Job[In, Out any] func(ctx context.Context, i int, item In) (Out, error)

// Map runs job over items and returns outputs in input order, regardless of
// completion order. It stops early when ctx is cancelled or a job fails.
func Map[In, Out any](ctx context.Context, p *Pool, items []In, job Job[In, Out]) ([]Out, error) {
	out := make([]Out, len(items))
	if len(items) == 0 {
		return out, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.size)
	for i := range items {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() (err error) {
			if err := gctx.Err(); err != nil {
				return err
			}
			metrics.AddWorkerActive(1)
			defer metrics.AddWorkerActive(-1)
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("%s: job %d panicked: %v", p.name, i, r)
				}
			}()

			res, err := job(gctx, i, items[i])
			if err != nil {
				return err
			}
			out[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		p.logger.Warn(ctx, "run aborted", logger.String("pool", p.name), logger.Error(err))
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
