package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rcliao/recall-fit/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recorded runs",
		Run:   runRuns,
	}

	cmd.Flags().String("objective", "", "Filter by objective: likelihood or mse")
	cmd.Flags().IntP("limit", "l", 20, "Max results")

	RootCmd.AddCommand(cmd)
}

func runRuns(cmd *cobra.Command, args []string) {
	objective, _ := cmd.Flags().GetString("objective")
	limit, _ := cmd.Flags().GetInt("limit")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	runs, err := s.ListRuns(cmd.Context(), store.ListParams{
		Objective: objective,
		Limit:     limit,
	})
	if err != nil {
		exitErr("runs", err)
	}

	output(cmd, runs, func() {
		for _, r := range runs {
			best := "-"
			if r.BestScore != nil {
				best = fmt.Sprintf("%g", *r.BestScore)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s  %-10s  %5d evals  best %s  %s\n",
				r.ID, r.Objective, r.Evaluations, best, r.Dataset)
		}
	})
}
