package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/MJE43/pf-casino-engine/internal/config"
	"github.com/MJE43/pf-casino-engine/internal/daemon"
	"github.com/MJE43/pf-casino-engine/internal/logging"
	"github.com/MJE43/pf-casino-engine/internal/store"
)

// loadConfig reads the environment and applies flag overrides.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(func(c *config.Config) {
		if f := cmd.Flags().Lookup("addr"); f != nil && f.Changed {
			c.HTTPAddr = f.Value.String()
		}
		if f := cmd.Flags().Lookup("db"); f != nil && f.Changed {
			c.DBPath = f.Value.String()
		}
	})
	if err != nil {
		return config.Config{}, fmt.Errorf("load configuration: %w", err)
	}
	return cfg, nil
}

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the casino HTTP API and seed rotation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			logger, closeLog, err := logging.New(cfg.LoggingOptions())
			if err != nil {
				return err
			}
			defer func() { err = multierr.Append(err, closeLog()) }()

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			d, err := daemon.New(ctx, cfg, logger)
			if err != nil {
				return err
			}
			logger.Info("casinod started",
				"addr", d.Addr().String(),
				"db", cfg.DBPath,
				"seed_period", cfg.SeedPeriod,
				"disclosure", cfg.DisclosureMode(),
			)
			return d.Run(ctx)
		},
	}
	cmd.Flags().String("addr", "", "HTTP listen address (overrides CASINO_HTTP_ADDR)")
	cmd.Flags().String("db", "", "SQLite database path (overrides CASINO_DB_PATH)")
	return cmd
}

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			logger, closeLog, err := logging.New(cfg.LoggingOptions())
			if err != nil {
				return err
			}
			defer func() { err = multierr.Append(err, closeLog()) }()

			db, err := store.Open(cmd.Context(), cfg.DBPath, store.WithLogger(logger))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "database %s is up to date\n", cfg.DBPath)
			return db.Close()
		},
	}
	cmd.Flags().String("db", "", "SQLite database path (overrides CASINO_DB_PATH)")
	return cmd
}
