package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show run history statistics",
		Run:   runStats,
	}

	RootCmd.AddCommand(cmd)
}

func runStats(cmd *cobra.Command, args []string) {
	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	stats, err := s.Stats(cmd.Context(), getDBPath())
	if err != nil {
		exitErr("stats", err)
	}

	output(cmd, stats, func() {
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "%s (%d bytes)\n", stats.DBPath, stats.DBSizeBytes)
		fmt.Fprintf(w, "runs: %d  evaluations: %d  non-finite: %d\n", stats.TotalRuns, stats.TotalEvaluations, stats.NonFinite)
		for _, o := range stats.Objectives {
			fmt.Fprintf(w, "  %-10s %5d runs %8d evals\n", o.Objective, o.Runs, o.Evaluations)
		}
	})
}
