package cli

import (
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "export <run-id>",
		Short: "Export a run with every evaluation as JSON",
		Args:  cobra.ExactArgs(1),
		Run:   runExport,
	}

	RootCmd.AddCommand(cmd)
}

func runExport(cmd *cobra.Command, args []string) {
	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	exp, err := s.ExportRun(cmd.Context(), args[0])
	if err != nil {
		exitErr("export", err)
	}

	output(cmd, exp, nil)
}
