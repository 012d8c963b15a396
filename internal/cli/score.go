package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "score",
		Short: "Evaluate the objective at one parameter point",
		Long:  "Evaluate the configured objective once, at --x or at the configured initial point.",
		Run:   runScore,
	}

	addInputFlags(cmd)
	cmd.Flags().String("x", "", "Comma-separated free parameter values")

	RootCmd.AddCommand(cmd)
}

type scoreResult struct {
	Objective string             `json:"objective"`
	Free      []string           `json:"free"`
	X         []float64          `json:"x"`
	Score     *float64           `json:"score"`
	Params    map[string]float64 `json:"params"`
}

func runScore(cmd *cobra.Command, args []string) {
	in := loadInputs(cmd)
	x := in.point(cmd)

	obj, err := in.objective()
	if err != nil {
		exitErr("build objective", err)
	}
	score, err := obj(cmd.Context(), x)
	if err != nil {
		exitErr("score", err)
	}

	params, err := in.cfg.Partition().Merge(x)
	if err != nil {
		exitErr("parameters", err)
	}
	res := scoreResult{
		Objective: in.cfg.Objective,
		Free:      in.cfg.FreeNames(),
		X:         x,
		Score:     finite(score),
		Params:    params.Map(),
	}
	output(cmd, res, func() {
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %g\n", in.cfg.Objective, score)
	})
}
