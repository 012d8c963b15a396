package store

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/rcliao/recall-fit/internal/model"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dir := t.TempDir()
	s, err := NewSQLiteStore(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func newTestRun(t *testing.T, s *SQLiteStore, objective string) *model.Run {
	t.Helper()
	run, err := s.CreateRun(context.Background(), CreateRunParams{
		Objective: objective,
		Dataset:   "corpus.json",
		Fixed:     map[string]float64{"learning_rate": 0.3},
		Free:      []string{"encoding_drift_rate"},
	})
	if err != nil {
		t.Fatalf("create run: %v", err)
	}
	return run
}

func TestCreateAndGetRun(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	run := newTestRun(t, s, "likelihood")
	if run.ID == "" {
		t.Error("expected non-empty ID")
	}

	got, err := s.GetRun(ctx, run.ID)
	if err != nil {
		t.Fatalf("get run: %v", err)
	}
	if got.Objective != "likelihood" || got.Dataset != "corpus.json" {
		t.Errorf("unexpected run: %+v", got)
	}
	if got.Fixed["learning_rate"] != 0.3 {
		t.Errorf("expected fixed learning_rate 0.3, got %v", got.Fixed)
	}
	if len(got.Free) != 1 || got.Free[0] != "encoding_drift_rate" {
		t.Errorf("unexpected free names: %v", got.Free)
	}
	if got.Evaluations != 0 || got.BestScore != nil {
		t.Errorf("expected empty run, got %d evaluations", got.Evaluations)
	}

	if _, err := s.GetRun(ctx, "missing"); err == nil {
		t.Error("expected error for missing run")
	}
}

func TestCreateRunRequiresObjective(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.CreateRun(context.Background(), CreateRunParams{}); err == nil {
		t.Error("expected error without objective")
	}
}

func TestRecordEvaluationSequence(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	run := newTestRun(t, s, "likelihood")

	for i, score := range []float64{12.5, 9.25, math.Inf(1), 10} {
		e, err := s.RecordEvaluation(ctx, RecordParams{
			RunID:  run.ID,
			X:      []float64{float64(i) / 10},
			Params: model.Parameters{EncodingDriftRate: float64(i) / 10},
			Score:  score,
		})
		if err != nil {
			t.Fatalf("record: %v", err)
		}
		if e.Seq != i+1 {
			t.Errorf("expected seq %d, got %d", i+1, e.Seq)
		}
	}

	evals, err := s.Evaluations(ctx, run.ID, 0)
	if err != nil {
		t.Fatalf("evaluations: %v", err)
	}
	if len(evals) != 4 {
		t.Fatalf("expected 4 evaluations, got %d", len(evals))
	}
	if evals[2].Score != nil || !math.IsInf(evals[2].Value(), 1) {
		t.Errorf("expected non-finite score stored as null, got %v", evals[2].Score)
	}
	if evals[1].Params.EncodingDriftRate != 0.1 {
		t.Errorf("expected params round trip, got %+v", evals[1].Params)
	}

	limited, _ := s.Evaluations(ctx, run.ID, 2)
	if len(limited) != 2 {
		t.Errorf("expected 2 with limit, got %d", len(limited))
	}

	got, _ := s.GetRun(ctx, run.ID)
	if got.Evaluations != 4 {
		t.Errorf("expected 4 evaluations on run, got %d", got.Evaluations)
	}
	if got.BestScore == nil || *got.BestScore != 9.25 {
		t.Errorf("expected best score 9.25, got %v", got.BestScore)
	}
}

func TestRecordEvaluationUnknownRun(t *testing.T) {
	s := newTestStore(t)
	_, err := s.RecordEvaluation(context.Background(), RecordParams{RunID: "nope", X: []float64{1}, Score: 1})
	if err == nil {
		t.Error("expected error for unknown run")
	}
}

func TestBest(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	run := newTestRun(t, s, "mse")

	if _, err := s.Best(ctx, run.ID); err == nil {
		t.Error("expected error for run without evaluations")
	}

	s.RecordEvaluation(ctx, RecordParams{RunID: run.ID, X: []float64{0.1}, Score: math.Inf(1)})
	s.RecordEvaluation(ctx, RecordParams{RunID: run.ID, X: []float64{0.2}, Score: 0.04})
	s.RecordEvaluation(ctx, RecordParams{RunID: run.ID, X: []float64{0.3}, Score: 0.01})

	best, err := s.Best(ctx, run.ID)
	if err != nil {
		t.Fatalf("best: %v", err)
	}
	if best.Seq != 3 || best.X[0] != 0.3 {
		t.Errorf("expected third evaluation, got seq %d x %v", best.Seq, best.X)
	}
}

func TestListRuns(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	newTestRun(t, s, "likelihood")
	newTestRun(t, s, "mse")
	c := newTestRun(t, s, "likelihood")

	all, _ := s.ListRuns(ctx, ListParams{})
	if len(all) != 3 {
		t.Fatalf("expected 3, got %d", len(all))
	}
	if all[0].ID != c.ID {
		t.Errorf("expected newest run first, got %s", all[0].ID)
	}

	lik, _ := s.ListRuns(ctx, ListParams{Objective: "likelihood"})
	if len(lik) != 2 {
		t.Errorf("expected 2 likelihood runs, got %d", len(lik))
	}

	one, _ := s.ListRuns(ctx, ListParams{Limit: 1})
	if len(one) != 1 {
		t.Errorf("expected 1 with limit, got %d", len(one))
	}
}

func TestRmRun(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	run := newTestRun(t, s, "likelihood")
	s.RecordEvaluation(ctx, RecordParams{RunID: run.ID, X: []float64{0.5}, Score: 3})

	if err := s.RmRun(ctx, run.ID); err != nil {
		t.Fatalf("rm: %v", err)
	}
	if _, err := s.GetRun(ctx, run.ID); err == nil {
		t.Error("expected run to be gone")
	}
	evals, _ := s.Evaluations(ctx, run.ID, 0)
	if len(evals) != 0 {
		t.Errorf("expected evaluations removed, got %d", len(evals))
	}
	if err := s.RmRun(ctx, run.ID); err == nil {
		t.Error("expected error removing missing run")
	}
}

func TestRecorder(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	run := newTestRun(t, s, "likelihood")

	rec := NewRecorder(s, run.ID)
	if err := rec.Record(ctx, []float64{0.7}, model.Parameters{EncodingDriftRate: 0.7}, 4.5); err != nil {
		t.Fatalf("record: %v", err)
	}
	best, err := s.Best(ctx, run.ID)
	if err != nil {
		t.Fatalf("best: %v", err)
	}
	if best.Value() != 4.5 {
		t.Errorf("expected 4.5, got %v", best.Value())
	}
}

func TestStatsAndExport(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "stats.db")
	s, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	defer s.Close()

	run := newTestRun(t, s, "likelihood")
	newTestRun(t, s, "mse")
	s.RecordEvaluation(ctx, RecordParams{RunID: run.ID, X: []float64{0.1}, Score: 2})
	s.RecordEvaluation(ctx, RecordParams{RunID: run.ID, X: []float64{0.2}, Score: math.NaN()})

	st, err := s.Stats(ctx, dbPath)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if st.TotalRuns != 2 || st.TotalEvaluations != 2 || st.NonFinite != 1 {
		t.Errorf("unexpected stats: %+v", st)
	}
	if len(st.Objectives) != 2 {
		t.Errorf("expected 2 objectives, got %d", len(st.Objectives))
	}
	if _, err := os.Stat(dbPath); err != nil {
		t.Errorf("expected db file: %v", err)
	}

	exp, err := s.ExportRun(ctx, run.ID)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if exp.Run.ID != run.ID || len(exp.Evaluations) != 2 {
		t.Errorf("unexpected export: %+v", exp)
	}
}
