package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"studioledger/internal/config"
	apphttp "studioledger/internal/http"
	"studioledger/internal/log"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the dashboard API server",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg := config.Load()
		if err := cfg.Validate(); err != nil {
			return err
		}

		logger := log.New(log.DefaultConfig())
		log.SetDefault(logger)

		dashboard, err := buildDashboard(cfg, logger)
		if err != nil {
			return err
		}
		defer dashboard.Close()

		if err := dashboard.Hydrate(cmd.Context()); err != nil {
			return fmt.Errorf("hydrate store: %w", err)
		}

		srv := apphttp.NewServer(":"+cfg.Port, dashboard, logger)

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		go func() {
			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
			sig := <-sigChan
			logger.Info("Shutdown signal received", "signal", sig.String())

			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer shutdownCancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Error("Server shutdown error", "error", err)
			}
			cancel()
		}()

		logger.Info("Starting studioledger server", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server: %w", err)
		}

		<-ctx.Done()
		return nil
	},
}
