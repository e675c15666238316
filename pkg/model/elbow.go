package model

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"segkit/internal/logging"
)

// ElbowPoint is the KMeans inertia for one cluster count.
type ElbowPoint struct {
	K       int
	Inertia float64
}

// ElbowOptions configure an Elbow sweep.
type ElbowOptions struct {
	MaxIter     int
	Seed        int64
	Concurrency int          // <= 0 means one goroutine per k
	Logger      *slog.Logger // defaults to logging.L()
}

// Elbow fits one KMeans per k concurrently and returns the inertia for each,
// in the order of ks. The first failing fit cancels the rest.
func Elbow(ctx context.Context, X [][]float64, ks []int, opts ElbowOptions) ([]ElbowPoint, error) {
	if len(ks) == 0 {
		return nil, fmt.Errorf("%w: no cluster counts", ErrParam)
	}
	if opts.MaxIter <= 0 {
		opts.MaxIter = 100
	}
	log := opts.Logger
	if log == nil {
		log = logging.L()
	}

	out := make([]ElbowPoint, len(ks))
	g, ctx := errgroup.WithContext(ctx)
	if opts.Concurrency > 0 {
		g.SetLimit(opts.Concurrency)
	}
	for i, k := range ks {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			km := NewKMeans(k, opts.MaxIter, opts.Seed)
			if err := km.Fit(X); err != nil {
				return fmt.Errorf("k=%d: %w", k, err)
			}
			log.Debug("elbow fit", "k", k, "inertia", km.Inertia, "iterations", km.Iterations)
			out[i] = ElbowPoint{K: k, Inertia: km.Inertia}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
