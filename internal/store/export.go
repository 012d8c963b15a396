package store

import (
	"context"

	"github.com/rcliao/recall-fit/internal/model"
)

// RunExport is a run together with every evaluation it recorded.
type RunExport struct {
	Run         model.Run          `json:"run"`
	Evaluations []model.Evaluation `json:"evaluations"`
}

// ExportRun returns a run and all of its evaluations.
func (s *SQLiteStore) ExportRun(ctx context.Context, id string) (*RunExport, error) {
	run, err := s.GetRun(ctx, id)
	if err != nil {
		return nil, err
	}
	evals, err := s.Evaluations(ctx, id, 0)
	if err != nil {
		return nil, err
	}
	if evals == nil {
		evals = []model.Evaluation{}
	}
	return &RunExport{Run: *run, Evaluations: evals}, nil
}
