package fitting

import (
	"context"

	"github.com/m-mizutani/goerr/v2"

	"github.com/rcliao/recall-fit/internal/model"
	"github.com/rcliao/recall-fit/internal/organization"
)

// Simulate lets each trial's model free recall simulations times and returns
// the simulated corpus. Row trial*simulations+s holds identities shifted up by
// one, zero padded or truncated to the width of the trial's presentation.
func Simulate(ctx context.Context, ds model.Dataset, simulations int, p model.Parameters, opts ...Option) (organization.Corpus, error) {
	return simulate(ctx, newConfig(opts), ds, simulations, p)
}

func simulate(ctx context.Context, cfg *config, ds model.Dataset, simulations int, p model.Parameters) (organization.Corpus, error) {
	if err := ds.Validate(); err != nil {
		return nil, err
	}
	if simulations <= 0 {
		return nil, goerr.New("simulations must be positive", goerr.V("simulations", simulations))
	}

	cache := NewCache(cfg.build, ds.ListLength, p)
	corpus := make(organization.Corpus, ds.Len()*simulations)

	for i := 0; i < ds.Len(); i++ {
		if err := ctx.Err(); err != nil {
			return nil, goerr.Wrap(err, "simulation cancelled", goerr.V("trial", i))
		}
		m, _, err := modelFor(cache, cfg.build, ds, i, p)
		if err != nil {
			return nil, err
		}
		width := len(ds.Presentations[i])
		for s := 0; s < simulations; s++ {
			recalled, err := m.FreeRecall(cfg.rng)
			if err != nil {
				return nil, goerr.Wrap(err, "free recall", goerr.V("trial", i), goerr.V("simulation", s))
			}
			row := make([]int, width)
			for j, id := range recalled {
				if j >= width {
					break
				}
				row[j] = id + 1
			}
			corpus[i*simulations+s] = row
		}
	}

	cfg.logger.Debug("simulation pass",
		"trials", ds.Len(),
		"simulations", simulations,
		"cache_builds", cache.Builds(),
		"cache_hits", cache.Hits())
	return corpus, nil
}

// SimulatedCurves simulates ds and summarizes the corpus.
func SimulatedCurves(ctx context.Context, ds model.Dataset, simulations int, p model.Parameters, opts ...Option) ([][]float64, error) {
	cfg := newConfig(opts)
	corpus, err := simulate(ctx, cfg, ds, simulations, p)
	if err != nil {
		return nil, err
	}
	curves, err := cfg.summarize(ds.Presentations, corpus, simulations)
	if err != nil {
		return nil, goerr.Wrap(err, "summarize simulated corpus")
	}
	if len(curves) == 0 {
		return nil, goerr.New("summary produced no curves")
	}
	return curves, nil
}

// SimulateMSE returns the mean squared difference between the last simulated
// organizational curve and target.
func SimulateMSE(ctx context.Context, ds model.Dataset, target []float64, simulations int, p model.Parameters, opts ...Option) (float64, error) {
	curves, err := SimulatedCurves(ctx, ds, simulations, p, opts...)
	if err != nil {
		return 0, err
	}
	return MeanSquaredError(curves[len(curves)-1], target)
}

// MeanSquaredError compares two curves element-wise.
func MeanSquaredError(curve, target []float64) (float64, error) {
	if len(curve) != len(target) {
		return 0, goerr.New("curve length does not match target",
			goerr.V("curve", len(curve)), goerr.V("target", len(target)))
	}
	if len(curve) == 0 {
		return 0, goerr.New("empty curve")
	}
	var sum float64
	for i := range curve {
		d := curve[i] - target[i]
		sum += d * d
	}
	return sum / float64(len(curve)), nil
}
