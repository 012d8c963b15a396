package fitting

import (
	"context"
	"math"

	"github.com/m-mizutani/goerr/v2"

	"github.com/rcliao/recall-fit/internal/model"
)

// LikelihoodMatrix holds, per trial, the probability the model assigned to
// each observed choice up to and including the terminating stop.
type LikelihoodMatrix [][]float64

// NegativeLogSum returns -Σ log p over every recorded probability. A zero
// probability makes the result +Inf.
func (l LikelihoodMatrix) NegativeLogSum() float64 {
	var total float64
	for _, row := range l {
		for _, p := range row {
			total -= math.Log(p)
		}
	}
	return total
}

// TrialLikelihood replays one trial against m, which must already hold the
// trial's presentation, and returns the probability of every observed step.
// When fewer items were recalled than presented, the probability of stopping
// after the last recall is appended. m is returned to its post-encoding state
// even when replay fails.
func TrialLikelihood(m Model, trial model.Trial, p model.Presentation) ([]float64, error) {
	if err := m.BeginRecall(); err != nil {
		return nil, goerr.Wrap(err, "begin recall")
	}

	recalls := trial.Recalls()
	itemCount := p.ItemCount()
	probs := make([]float64, 0, len(recalls)+1)

	var err error
	for i := 0; i <= len(recalls); i++ {
		target := model.Stop
		if i == len(recalls) {
			if len(recalls) >= itemCount {
				break
			}
		} else {
			pos := recalls[i]
			if pos < 1 || pos > len(p) {
				err = goerr.New("recalled study position out of range",
					goerr.V("index", i), goerr.V("position", pos), goerr.V("list_length", len(p)))
				break
			}
			target = model.Item(p[pos-1])
		}

		probs = append(probs, m.Outcomes().P(target))
		if target.IsStop() {
			break
		}
		if err = m.ForceRecall(target); err != nil {
			err = goerr.Wrap(err, "force recall", goerr.V("index", i))
			break
		}
	}

	if stopErr := m.ForceRecall(model.Stop); err == nil && stopErr != nil {
		err = goerr.Wrap(stopErr, "reset after recall")
	}
	if err != nil {
		return nil, err
	}
	return probs, nil
}

// Likelihoods replays every trial of ds and returns the recorded
// probabilities. Pure and paired trials share one cached model per kind;
// other trials get a model encoded with their own presentation.
func Likelihoods(ctx context.Context, ds model.Dataset, p model.Parameters, opts ...Option) (LikelihoodMatrix, error) {
	cfg := newConfig(opts)
	if err := ds.Validate(); err != nil {
		return nil, err
	}
	if ds.Trials == nil && ds.Len() > 0 {
		return nil, goerr.New("dataset has no trials")
	}

	cache := NewCache(cfg.build, ds.ListLength, p)
	matrix := make(LikelihoodMatrix, ds.Len())
	adhoc := 0

	for i := range ds.Trials {
		if err := ctx.Err(); err != nil {
			return nil, goerr.Wrap(err, "likelihood cancelled", goerr.V("trial", i))
		}
		m, cached, err := modelFor(cache, cfg.build, ds, i, p)
		if err != nil {
			return nil, err
		}
		if !cached {
			adhoc++
		}
		row, err := TrialLikelihood(m, ds.Trials[i], ds.Presentations[i])
		if err != nil {
			return nil, goerr.Wrap(err, "trial likelihood", goerr.V("trial", i))
		}
		matrix[i] = row
	}

	cfg.logger.Debug("likelihood pass",
		"trials", ds.Len(),
		"cache_builds", cache.Builds(),
		"cache_hits", cache.Hits(),
		"adhoc", adhoc)
	return matrix, nil
}

// Likelihood returns the negative log-likelihood of ds under p. Lower is a
// better fit; +Inf means some observed choice had probability zero.
func Likelihood(ctx context.Context, ds model.Dataset, p model.Parameters, opts ...Option) (float64, error) {
	matrix, err := Likelihoods(ctx, ds, p, opts...)
	if err != nil {
		return 0, err
	}
	return matrix.NegativeLogSum(), nil
}
