// Package cmd defines and implements the CLI commands for the
// repec-harvester executable.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/economistry/repec-harvester/internal/config"
	"github.com/economistry/repec-harvester/internal/logging"
)

var (
	cfgFile string
	cfg     config.Config
	logger  *zap.Logger
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "repec-harvester",
		Short: "Harvests researcher profiles and publications from IDEAS/RePEc.",
		Long: `repec-harvester scrapes the IDEAS/RePEc economics directory into a
relational store: it indexes the author listing into a worklist, then
sequentially scrapes each profile's publications and personal details,
normalizes them into papers, authors, and authorships, and persists
them incrementally with insert-if-absent semantics.`,

		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			var err error
			cfg, err = config.Load(cfgFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			logger, err = logging.New(cfg.Logging.Development)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			return nil
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			if logger != nil {
				_ = logger.Sync()
			}
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: built-in defaults + REPEC_* env)")

	cmd.AddCommand(newIndexCmd())
	cmd.AddCommand(newHarvestCmd())
	cmd.AddCommand(newAbstractsCmd())
	cmd.AddCommand(newEnrichCmd())
	return cmd
}

// Execute is the main entry point.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
