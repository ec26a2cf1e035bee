package finitediff

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/contactkeval/option-fd/internal/pricing"
)

// Request is one independent pricing problem.
type Request[T pricing.Instrument] struct {
	Instrument    T
	Asset         pricing.Asset
	TimeRemaining float64
	Spot          float64
	Params        Params
}

// PriceBatch prices every request with scheme m, at most limit at a time
// (limit <= 0 means unbounded). Results are in request order. The first
// failure cancels requests that have not started yet.
//
// Each Price call owns its buffers, so the goroutines share nothing.
func PriceBatch[T pricing.Instrument](ctx context.Context, m Method, reqs []Request[T], limit int) ([]float64, error) {
	out := make([]float64, len(reqs))

	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}

	for i, req := range reqs {
		i, req := i, req
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			v, err := Price(m, req.Instrument, req.Asset, req.TimeRemaining, req.Spot, req.Params)
			if err != nil {
				return fmt.Errorf("request %d: %w", i, err)
			}
			out[i] = v
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
