// Package store records fitting runs and their objective evaluations.
package store

import (
	"context"

	"github.com/rcliao/recall-fit/internal/model"
)

// CreateRunParams holds parameters for starting a run.
type CreateRunParams struct {
	Objective string
	Dataset   string
	Fixed     map[string]float64
	Free      []string
	Note      string
}

// RecordParams holds one objective evaluation.
type RecordParams struct {
	RunID  string
	X      []float64
	Params model.Parameters
	Score  float64
}

// ListParams holds parameters for listing runs.
type ListParams struct {
	Objective string
	Limit     int
}

// Store defines the run history interface.
type Store interface {
	// CreateRun starts a new run.
	CreateRun(ctx context.Context, p CreateRunParams) (*model.Run, error)

	// RecordEvaluation appends an evaluation to a run. Sequence numbers
	// start at 1 and increase per run.
	RecordEvaluation(ctx context.Context, p RecordParams) (*model.Evaluation, error)

	// GetRun retrieves a run by ID with its evaluation summary.
	GetRun(ctx context.Context, id string) (*model.Run, error)

	// ListRuns lists runs, newest first.
	ListRuns(ctx context.Context, p ListParams) ([]model.Run, error)

	// Evaluations lists a run's evaluations in sequence order. limit <= 0
	// returns all of them.
	Evaluations(ctx context.Context, runID string, limit int) ([]model.Evaluation, error)

	// Best returns the lowest finite scoring evaluation of a run.
	Best(ctx context.Context, runID string) (*model.Evaluation, error)

	// RmRun deletes a run and its evaluations.
	RmRun(ctx context.Context, id string) error

	// Close closes the store.
	Close() error
}

// Recorder appends every objective evaluation to one run.
type Recorder struct {
	store Store
	runID string
}

// NewRecorder returns a Recorder for runID.
func NewRecorder(s Store, runID string) *Recorder {
	return &Recorder{store: s, runID: runID}
}

func (r *Recorder) Record(ctx context.Context, x []float64, p model.Parameters, score float64) error {
	_, err := r.store.RecordEvaluation(ctx, RecordParams{
		RunID:  r.runID,
		X:      x,
		Params: p,
		Score:  score,
	})
	return err
}
