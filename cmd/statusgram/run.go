package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/noopnet/statusgram"
	"github.com/noopnet/statusgram/config"
)

const shutdownTimeout = 10 * time.Second

// newLogger creates a JSON logger for CLI use.
func newLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}

// runCmd starts the bot.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the status bot",
	Long: `Start the statusgram bot.

The bot will:
  - Load configuration from the specified YAML file
  - Connect the Telegram sink and restore persisted message ids
  - Poll the backend and reconcile all surfaces, first immediately
    and then at the configured refresh interval
  - Serve a liveness endpoint for deployment probes

The bot runs until interrupted (Ctrl+C) or receives SIGTERM.

Example:
  statusgram run -c statusgram.yaml
  statusgram run --config /etc/statusgram/config.yaml`,
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringP("config", "c", "", "path to config file (required)")
	_ = runCmd.MarkFlagRequired("config")
}

func runRun(cmd *cobra.Command, args []string) error {
	logger := newLogger()

	configFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger.Info("config loaded",
		"backend", cfg.Backend.URL,
		"surfaces", len(cfg.Surfaces),
		"refresh_interval", cfg.RefreshInterval.Duration().String(),
	)

	surfaces, err := config.BuildSurfaces(cfg)
	if err != nil {
		return fmt.Errorf("failed to build surfaces: %w", err)
	}

	opts := []statusgram.Option{
		statusgram.WithBackend(cfg.Backend.URL, cfg.Backend.StatusPage),
		statusgram.WithSurfaces(surfaces...),
		statusgram.WithTelegramToken(cfg.TelegramToken),
		statusgram.WithRefreshInterval(cfg.RefreshInterval.Duration()),
		statusgram.WithHealthPort(*cfg.HealthPort),
		statusgram.WithLogger(logger),
		statusgram.WithVersion("statusgram " + version),
	}
	if cfg.Backend.APIKey != "" {
		opts = append(opts, statusgram.WithAPIKey(cfg.Backend.APIKey))
	}
	if cfg.StateFile != "" {
		opts = append(opts, statusgram.WithStateFile(cfg.StateFile))
	}

	sg, err := statusgram.New(opts...)
	if err != nil {
		return fmt.Errorf("failed to create statusgram: %w", err)
	}

	// cancel on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errChan := make(chan error, 1)
	go func() {
		errChan <- sg.Start(ctx)
	}()

	select {
	case err := <-errChan:
		if err != nil {
			return fmt.Errorf("engine error: %w", err)
		}
		logger.Info("shutdown complete")
		return nil

	case <-ctx.Done():
		// signal received, wait for graceful shutdown with timeout
		select {
		case err := <-errChan:
			if err != nil {
				return fmt.Errorf("engine error: %w", err)
			}
			logger.Info("shutdown complete")
			return nil
		case <-time.After(shutdownTimeout):
			logger.Warn("shutdown timed out",
				"timeout", shutdownTimeout.String(),
				"action", "forcing exit",
			)
			return nil
		}
	}
}
