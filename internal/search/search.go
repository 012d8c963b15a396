// Package search walks parameter space with a Nelder-Mead simplex over a
// fitting objective.
package search

import (
	"context"
	"math"

	"github.com/m-mizutani/goerr/v2"
	"gonum.org/v1/gonum/optimize"

	"github.com/rcliao/recall-fit/internal/fitting"
)

// Options bounds a search.
type Options struct {
	// InBounds rejects points outside the feasible region; they score +Inf
	// without calling the objective. Nil accepts every point.
	InBounds func(x []float64) bool
	// MaxEvaluations caps objective calls. Zero leaves the cap to the
	// convergence test.
	MaxEvaluations int
	// Tolerance is the absolute change in the best score below which the
	// search is considered converged.
	Tolerance float64
}

// Result is the best point found.
type Result struct {
	X           []float64 `json:"x"`
	Score       float64   `json:"-"`
	Evaluations int       `json:"evaluations"`
	Status      string    `json:"status"`
}

// Minimize searches for the x minimizing obj starting from initial. Errors
// returned by obj stop the search.
func Minimize(ctx context.Context, obj fitting.Objective, initial []float64, opts Options) (*Result, error) {
	if len(initial) == 0 {
		return nil, goerr.New("no free parameters to search")
	}
	if opts.InBounds != nil && !opts.InBounds(initial) {
		return nil, goerr.New("initial point outside bounds", goerr.V("x", initial))
	}
	tol := opts.Tolerance
	if tol <= 0 {
		tol = 1e-6
	}

	var objErr error
	evals := 0
	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			if objErr != nil {
				return math.Inf(1)
			}
			if opts.InBounds != nil && !opts.InBounds(x) {
				return math.Inf(1)
			}
			evals++
			v, err := obj(ctx, x)
			if err != nil {
				objErr = err
				return math.Inf(1)
			}
			if math.IsNaN(v) {
				return math.Inf(1)
			}
			return v
		},
		Status: func() (optimize.Status, error) {
			if objErr != nil {
				return optimize.Failure, objErr
			}
			if err := ctx.Err(); err != nil {
				return optimize.Failure, err
			}
			return optimize.NotTerminated, nil
		},
	}

	settings := &optimize.Settings{
		FuncEvaluations: opts.MaxEvaluations,
		Converger: &optimize.FunctionConverge{
			Absolute:   tol,
			Iterations: 20,
		},
	}

	res, err := optimize.Minimize(problem, initial, settings, &optimize.NelderMead{})
	if objErr != nil {
		return nil, goerr.Wrap(objErr, "objective failed during search")
	}
	if res == nil {
		return nil, goerr.Wrap(err, "search failed")
	}

	out := &Result{
		X:           append([]float64(nil), res.X...),
		Score:       res.F,
		Evaluations: evals,
		Status:      res.Status.String(),
	}
	if err != nil && res.Status != optimize.FunctionEvaluationLimit {
		return out, goerr.Wrap(err, "search stopped", goerr.V("status", out.Status))
	}
	return out, nil
}
