// Package cli wires the studioledger commands.
package cli

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"studioledger/internal/amqp"
	"studioledger/internal/catalog"
	"studioledger/internal/config"
	"studioledger/internal/ledger"
	"studioledger/internal/log"
	"studioledger/internal/services"
	"studioledger/internal/storage"
)

var rootCmd = &cobra.Command{
	Use:   "studioledger",
	Short: "Transaction ledger and revenue forecasting for the studio dashboard",
	PersistentPreRun: func(*cobra.Command, []string) {
		// .env is for local development; absence is fine.
		_ = godotenv.Load()
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(serveCmd, importCmd, exportCmd, forecastCmd)
}

func Execute() error {
	return rootCmd.Execute()
}

// buildDashboard assembles the service stack shared by every command.
// The AMQP client is optional and only dialed when an URL is configured.
func buildDashboard(cfg *config.Config, logger *log.Logger) (*services.Dashboard, error) {
	cat, err := loadCatalog(cfg)
	if err != nil {
		return nil, err
	}

	snapshots, err := storage.Open(cfg.SQLiteDBPath, cat)
	if err != nil {
		return nil, fmt.Errorf("open snapshot store: %w", err)
	}

	var events *amqp.Client
	if cfg.AMQPURL != "" {
		events, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			snapshots.Close()
			return nil, fmt.Errorf("connect AMQP: %w", err)
		}
	}

	return services.NewDashboard(ledger.NewStore(), cat, snapshots, events, cfg.ForecastCacheTTL, logger), nil
}

func loadCatalog(cfg *config.Config) (*catalog.Catalog, error) {
	if cfg.CatalogPath == "" {
		return catalog.Default(), nil
	}
	cat, err := catalog.LoadFile(cfg.CatalogPath)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	return cat, nil
}
