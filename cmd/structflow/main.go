// Command structflow runs drainage pipe simulations from the command line.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"StructFlow/internal/logging"
)

type app struct {
	verbose bool
	logger  *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{logger: zap.NewNop()}
	root := &cobra.Command{
		Use:   "structflow",
		Short: "Hydraulic and structural checks for buried drainage pipes",
		Long: `structflow merges parameter documents onto conservative defaults, validates
them, and runs the Manning flow and hoop stress checks.

Documents are JSON objects with optional "pipe", "load" and "environment"
blocks. Use "-" to read a document from standard input.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := "warn"
			if a.verbose {
				level = "debug"
			}
			logger, err := logging.New(level, true)
			if err != nil {
				return err
			}
			a.logger = logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = a.logger.Sync()
		},
	}
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable verbose logging")

	root.AddCommand(
		a.simulateCmd(),
		a.validateCmd(),
		a.mergeCmd(),
		a.reportCmd(),
		a.importCmd(),
	)
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
