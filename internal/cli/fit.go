package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rcliao/recall-fit/internal/fitting"
	"github.com/rcliao/recall-fit/internal/logging"
	"github.com/rcliao/recall-fit/internal/search"
	"github.com/rcliao/recall-fit/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "fit",
		Short: "Search parameter space and record every evaluation",
		Long:  "Run a bounded Nelder-Mead search over the free parameters of the configuration, recording each evaluation as part of a new run.",
		Run:   runFit,
	}

	addInputFlags(cmd)
	cmd.Flags().Int("max-evals", 0, "Maximum objective evaluations (default from config)")
	cmd.Flags().Float64("tolerance", 1e-6, "Absolute score change treated as converged")
	cmd.Flags().String("note", "", "Free-text note stored with the run")

	RootCmd.AddCommand(cmd)
}

type fitResult struct {
	RunID       string             `json:"run_id"`
	Objective   string             `json:"objective"`
	Free        []string           `json:"free"`
	X           []float64          `json:"x"`
	Score       *float64           `json:"score"`
	Params      map[string]float64 `json:"params"`
	Evaluations int                `json:"evaluations"`
	Status      string             `json:"status"`
}

func runFit(cmd *cobra.Command, args []string) {
	in := loadInputs(cmd)
	maxEvals, _ := cmd.Flags().GetInt("max-evals")
	tolerance, _ := cmd.Flags().GetFloat64("tolerance")
	note, _ := cmd.Flags().GetString("note")
	if maxEvals <= 0 {
		maxEvals = in.cfg.MaxEvaluations
	}

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	run, err := s.CreateRun(cmd.Context(), store.CreateRunParams{
		Objective: in.cfg.Objective,
		Dataset:   in.dataPath,
		Fixed:     in.cfg.Fixed,
		Free:      in.cfg.FreeNames(),
		Note:      note,
	})
	if err != nil {
		exitErr("create run", err)
	}

	obj, err := in.objective(fitting.WithRecorder(store.NewRecorder(s, run.ID)))
	if err != nil {
		exitErr("build objective", err)
	}

	logger := logging.Default().With("run_id", run.ID)
	logger.Info("search started", "max_evaluations", maxEvals)

	res, err := search.Minimize(cmd.Context(), obj, in.cfg.Initial(), search.Options{
		InBounds:       in.cfg.InBounds,
		MaxEvaluations: maxEvals,
		Tolerance:      tolerance,
	})
	if err != nil {
		exitErr("fit", err)
	}
	logger.Info("search finished", "status", res.Status, "evaluations", res.Evaluations, "score", res.Score)

	params, err := in.cfg.Partition().Merge(res.X)
	if err != nil {
		exitErr("fit", err)
	}
	out := fitResult{
		RunID:       run.ID,
		Objective:   in.cfg.Objective,
		Free:        in.cfg.FreeNames(),
		X:           res.X,
		Score:       finite(res.Score),
		Params:      params.Map(),
		Evaluations: res.Evaluations,
		Status:      res.Status,
	}
	output(cmd, out, func() {
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "run %s: %s %g after %d evaluations (%s)\n",
			run.ID, in.cfg.Objective, res.Score, res.Evaluations, res.Status)
		for i, name := range out.Free {
			fmt.Fprintf(w, "  %-24s %g\n", name, res.X[i])
		}
	})
}
