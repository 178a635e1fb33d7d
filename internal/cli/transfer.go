package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"studioledger/internal/config"
	"studioledger/internal/log"
)

var importCmd = &cobra.Command{
	Use:   "import FILE",
	Short: "Import transactions from an interchange file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		if err := cfg.Validate(); err != nil {
			return err
		}
		logger := log.New(log.DefaultConfig())

		dashboard, err := buildDashboard(cfg, logger)
		if err != nil {
			return err
		}
		defer dashboard.Close()

		if err := dashboard.Hydrate(cmd.Context()); err != nil {
			return fmt.Errorf("hydrate store: %w", err)
		}

		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("open import file: %w", err)
		}
		defer f.Close()

		imported, skipped, err := dashboard.ImportCSV(cmd.Context(), f)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "imported %d rows, skipped %d\n", imported, skipped)
		return nil
	},
}

var exportCmd = &cobra.Command{
	Use:   "export FILE",
	Short: "Export the transaction log to an interchange file ('-' for stdout)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		if err := cfg.Validate(); err != nil {
			return err
		}
		logger := log.New(log.DefaultConfig())

		dashboard, err := buildDashboard(cfg, logger)
		if err != nil {
			return err
		}
		defer dashboard.Close()

		if err := dashboard.Hydrate(cmd.Context()); err != nil {
			return fmt.Errorf("hydrate store: %w", err)
		}

		out := cmd.OutOrStdout()
		if args[0] != "-" {
			f, err := os.Create(args[0])
			if err != nil {
				return fmt.Errorf("create export file: %w", err)
			}
			defer f.Close()
			out = f
		}
		return dashboard.ExportCSV(out)
	},
}
