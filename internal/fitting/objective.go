package fitting

import (
	"context"

	"github.com/m-mizutani/goerr/v2"

	"github.com/rcliao/recall-fit/internal/model"
)

// Objective scores a vector of free parameter values, aligned with the free
// names it was built with. Lower is better.
type Objective func(ctx context.Context, x []float64) (float64, error)

// NewLikelihoodObjective binds ds and the fixed parameters into an objective
// that returns the corpus negative log-likelihood.
func NewLikelihoodObjective(ds model.Dataset, fixed map[string]float64, free []string, opts ...Option) (Objective, error) {
	if err := ds.Validate(); err != nil {
		return nil, err
	}
	return bind(model.Partition{Fixed: fixed, Free: free}, opts, func(ctx context.Context, p model.Parameters, opts []Option) (float64, error) {
		return Likelihood(ctx, ds, p, opts...)
	})
}

// NewMSEObjective binds ds, the target curve and the fixed parameters into an
// objective that returns the simulated curve's mean squared error.
func NewMSEObjective(ds model.Dataset, target []float64, simulations int, fixed map[string]float64, free []string, opts ...Option) (Objective, error) {
	if err := ds.Validate(); err != nil {
		return nil, err
	}
	if simulations <= 0 {
		return nil, goerr.New("simulations must be positive", goerr.V("simulations", simulations))
	}
	if len(target) == 0 {
		return nil, goerr.New("target curve is empty")
	}
	return bind(model.Partition{Fixed: fixed, Free: free}, opts, func(ctx context.Context, p model.Parameters, opts []Option) (float64, error) {
		return SimulateMSE(ctx, ds, target, simulations, p, opts...)
	})
}

type scoreFunc func(ctx context.Context, p model.Parameters, opts []Option) (float64, error)

func bind(part model.Partition, opts []Option, score scoreFunc) (Objective, error) {
	if err := part.Validate(); err != nil {
		return nil, err
	}
	cfg := newConfig(opts)
	// the objective keeps one random source across calls
	opts = append(opts[:len(opts):len(opts)], WithRand(cfg.rng))

	return func(ctx context.Context, x []float64) (float64, error) {
		p, err := part.Merge(x)
		if err != nil {
			return 0, err
		}
		s, err := score(ctx, p, opts)
		if err != nil {
			return 0, err
		}
		if cfg.recorder != nil {
			if err := cfg.recorder.Record(ctx, x, p, s); err != nil {
				return s, goerr.Wrap(err, "record evaluation")
			}
		}
		return s, nil
	}, nil
}
