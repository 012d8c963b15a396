// Package cli implements the recall-fit CLI commands.
package cli

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rcliao/recall-fit/internal/logging"
	"github.com/rcliao/recall-fit/internal/store"
)

var exit = os.Exit

var (
	dbPath     string
	formatFlag string
	logLevel   string
	logFormat  string
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "recall-fit",
	Short: "Fit memory-model parameters to free-recall data",
	Long: "Score CMR parameters against free-recall corpora by likelihood or simulated lag curves, " +
		"search parameter space and keep a SQLite history of every evaluation.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, err := logging.ParseLevel(logLevel)
		if err != nil {
			return err
		}
		format, err := logging.ParseFormat(logFormat)
		if err != nil {
			return err
		}
		logging.SetDefault(logging.New(os.Stderr, level, format))
		return nil
	},
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "Database path (default: $RECALL_FIT_DB or ~/.recall-fit/runs.db)")
	RootCmd.PersistentFlags().StringVarP(&formatFlag, "format", "f", "json", "Output format: json or text")
	RootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level: debug, info, warn, error")
	RootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "console", "Log format: console or json")
}

func getDBPath() string {
	if dbPath != "" {
		return dbPath
	}
	if env := os.Getenv("RECALL_FIT_DB"); env != "" {
		return env
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".recall-fit", "runs.db")
}

func openStore() (*store.SQLiteStore, error) {
	return store.NewSQLiteStore(getDBPath())
}

func exitErr(msg string, err error) {
	logging.Default().Error(msg, logging.ErrAttr(err))
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	exit(1)
}

// output prints v as indented JSON, or calls text when --format text.
func output(cmd *cobra.Command, v any, text func()) {
	if formatFlag == "text" && text != nil {
		text()
		return
	}
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Fprintln(cmd.OutOrStdout(), string(b))
}

// parseVector parses a comma-separated list of numbers.
func parseVector(s string) ([]float64, error) {
	var x []float64
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		v, err := strconv.ParseFloat(part, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q", part)
		}
		x = append(x, v)
	}
	return x, nil
}

// finite returns nil for infinite or NaN scores so they encode as JSON null.
func finite(v float64) *float64 {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return nil
	}
	return &v
}
