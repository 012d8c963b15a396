package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rcliao/recall-fit/internal/fitting"
	"github.com/rcliao/recall-fit/internal/organization"
)

func init() {
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Simulate recall and print the lag curves",
		Long:  "Simulate free recall for every trial and print presentation counts, retrieval counts and recall probability by repetition lag.",
		Run:   runSimulate,
	}

	addInputFlags(cmd)
	cmd.Flags().String("x", "", "Comma-separated free parameter values")
	cmd.Flags().IntP("simulations", "s", 0, "Simulations per trial (default from config)")

	RootCmd.AddCommand(cmd)
}

type simulateResult struct {
	Bins        []string  `json:"bins"`
	Presented   []float64 `json:"presented"`
	Retrieved   []float64 `json:"retrieved"`
	Probability []float64 `json:"probability"`
	MSE         *float64  `json:"mse,omitempty"`
}

func runSimulate(cmd *cobra.Command, args []string) {
	in := loadInputs(cmd)
	x := in.point(cmd)
	if n, _ := cmd.Flags().GetInt("simulations"); n > 0 {
		in.cfg.Simulations = n
	}

	params, err := in.cfg.Partition().Merge(x)
	if err != nil {
		exitErr("parameters", err)
	}
	curves, err := fitting.SimulatedCurves(cmd.Context(), in.ds, in.cfg.Simulations, params, in.options()...)
	if err != nil {
		exitErr("simulate", err)
	}
	if len(curves) != 3 {
		exitErr("simulate", fmt.Errorf("expected 3 curves, got %d", len(curves)))
	}

	res := simulateResult{
		Bins:        organization.LagBins,
		Presented:   curves[0],
		Retrieved:   curves[1],
		Probability: curves[2],
	}
	if len(in.cfg.Target) > 0 {
		mse, err := fitting.MeanSquaredError(curves[2], in.cfg.Target)
		if err != nil {
			exitErr("compare target", err)
		}
		res.MSE = &mse
	}

	output(cmd, res, func() {
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "%-6s %10s %10s %8s\n", "lag", "presented", "retrieved", "p")
		for i, bin := range organization.LagBins {
			fmt.Fprintf(w, "%-6s %10.0f %10.0f %8.4f\n", bin, res.Presented[i], res.Retrieved[i], res.Probability[i])
		}
		if res.MSE != nil {
			fmt.Fprintf(w, "mse: %g\n", *res.MSE)
		}
	})
}
