package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rcliao/recall-fit/internal/model"
)

func init() {
	cmd := &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show a run and its best evaluation",
		Args:  cobra.ExactArgs(1),
		Run:   runShow,
	}

	RootCmd.AddCommand(cmd)
}

type showResult struct {
	Run  *model.Run        `json:"run"`
	Best *model.Evaluation `json:"best,omitempty"`
}

func runShow(cmd *cobra.Command, args []string) {
	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	run, err := s.GetRun(cmd.Context(), args[0])
	if err != nil {
		exitErr("show", err)
	}
	res := showResult{Run: run}
	if run.BestScore != nil {
		best, err := s.Best(cmd.Context(), run.ID)
		if err != nil {
			exitErr("best", err)
		}
		res.Best = best
	}

	output(cmd, res, func() {
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "run %s (%s) on %s, %d evaluations\n", run.ID, run.Objective, run.Dataset, run.Evaluations)
		if res.Best == nil {
			fmt.Fprintln(w, "no finite evaluation")
			return
		}
		fmt.Fprintf(w, "best #%d: %g\n", res.Best.Seq, res.Best.Value())
		for i, name := range run.Free {
			if i < len(res.Best.X) {
				fmt.Fprintf(w, "  %-24s %g\n", name, res.Best.X[i])
			}
		}
	})
}
