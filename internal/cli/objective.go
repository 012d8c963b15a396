package cli

import (
	"math/rand"
	"time"

	"github.com/spf13/cobra"

	"github.com/rcliao/recall-fit/internal/dataset"
	"github.com/rcliao/recall-fit/internal/fitting"
	"github.com/rcliao/recall-fit/internal/logging"
	"github.com/rcliao/recall-fit/internal/model"
)

func addInputFlags(cmd *cobra.Command) {
	cmd.Flags().String("data", "", "Corpus JSON file (required)")
	cmd.Flags().StringP("config", "c", "", "Fit configuration YAML file (required)")
	cmd.Flags().Int64("seed", 0, "Random seed for simulations (overrides config; 0 uses the clock)")

	cmd.MarkFlagRequired("data")
	cmd.MarkFlagRequired("config")
}

type inputs struct {
	dataPath string
	ds       model.Dataset
	cfg      *dataset.Config
}

func loadInputs(cmd *cobra.Command) inputs {
	dataPath, _ := cmd.Flags().GetString("data")
	configPath, _ := cmd.Flags().GetString("config")
	seed, _ := cmd.Flags().GetInt64("seed")

	ds, err := dataset.Load(dataPath)
	if err != nil {
		exitErr("load dataset", err)
	}
	cfg, err := dataset.LoadConfig(configPath)
	if err != nil {
		exitErr("load config", err)
	}
	if seed != 0 {
		cfg.Seed = seed
	}

	logging.Default().Info("inputs loaded",
		"dataset", dataPath,
		"trials", ds.Len(),
		"list_length", ds.ListLength,
		"objective", cfg.Objective,
		"free", cfg.FreeNames())
	return inputs{dataPath: dataPath, ds: ds, cfg: cfg}
}

func (in inputs) options(extra ...fitting.Option) []fitting.Option {
	seed := in.cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	opts := []fitting.Option{
		fitting.WithLogger(logging.Default()),
		fitting.WithRand(rand.New(rand.NewSource(seed))),
	}
	return append(opts, extra...)
}

func (in inputs) objective(extra ...fitting.Option) (fitting.Objective, error) {
	opts := in.options(extra...)
	if in.cfg.Objective == dataset.ObjectiveMSE {
		return fitting.NewMSEObjective(in.ds, in.cfg.Target, in.cfg.Simulations, in.cfg.Fixed, in.cfg.FreeNames(), opts...)
	}
	return fitting.NewLikelihoodObjective(in.ds, in.cfg.Fixed, in.cfg.FreeNames(), opts...)
}

// point returns the --x vector, or the configured initial point.
func (in inputs) point(cmd *cobra.Command) []float64 {
	xs, _ := cmd.Flags().GetString("x")
	if xs == "" {
		return in.cfg.Initial()
	}
	x, err := parseVector(xs)
	if err != nil {
		exitErr("parse --x", err)
	}
	return x
}
