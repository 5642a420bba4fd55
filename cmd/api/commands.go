package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"hunttickets/internal/api"
	"hunttickets/internal/config"
	"hunttickets/internal/conformance"
	"hunttickets/internal/database"
	"hunttickets/internal/logger"
	"hunttickets/internal/metrics"

	"github.com/spf13/cobra"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

var (
	envFile   string
	logLevel  string
	logFormat string

	rootCmd = &cobra.Command{
		Use:           "hunttickets-api",
		Short:         "Hunt Tickets events, tickets and producer policies API",
		SilenceUsage:  true,
		SilenceErrors: true,
		// serve is the default command
		RunE: func(cmd *cobra.Command, args []string) error {
			return serveCmd.RunE(cmd, args)
		},
	}

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			metrics.Init(version, cfg.Environment)

			server, err := api.NewServer(cfg, version)
			if err != nil {
				return err
			}
			defer func() {
				if err := server.Cleanup(); err != nil {
					logger.Get().Error("Error during cleanup", "error", err)
				}
			}()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if err := server.Run(ctx); err != nil {
				return err
			}
			logger.Get().Info("Server stopped")
			return nil
		},
	}

	migrateCmd = &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back database migrations",
	}

	migrateUpCmd = &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(*cobra.Command, []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if err := database.RunMigrations(cfg.Database); err != nil {
				return err
			}
			logger.Get().Info("Migrations applied")
			return nil
		},
	}

	rollbackSteps int

	migrateDownCmd = &cobra.Command{
		Use:   "down",
		Short: "Roll back the latest migrations",
		RunE: func(*cobra.Command, []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if err := database.RollbackMigrations(cfg.Database, rollbackSteps); err != nil {
				return err
			}
			logger.Get().Info("Migrations rolled back", "steps", rollbackSteps)
			return nil
		},
	}

	validateURL      string
	validateAPIKey   string
	validateProducer string
	validateTimeout  time.Duration

	validateCmd = &cobra.Command{
		Use:   "validate",
		Short: "Check a running API against its documented behaviour",
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger.Init(flagOr(logLevel, "info"), flagOr(logFormat, "text"))

			ctx, cancel := context.WithTimeout(cmd.Context(), validateTimeout)
			defer cancel()

			report := conformance.NewChecker(validateURL,
				conformance.WithAPIKey(validateAPIKey),
				conformance.WithProducer(validateProducer),
			).CheckAll(ctx)

			if err := report.Err(); err != nil {
				return fmt.Errorf("validation failed: %w", err)
			}
			logger.Get().Info("All endpoints passed validation", "suites", len(report.Results))
			return nil
		},
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Println(version)
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before the environment")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error), overrides LOG_LEVEL")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format (json, text), overrides LOG_FORMAT")

	migrateDownCmd.Flags().IntVar(&rollbackSteps, "steps", 1, "number of migrations to roll back")

	validateCmd.Flags().StringVar(&validateURL, "url", "http://localhost:8081", "API base URL including BASE_PATH")
	validateCmd.Flags().StringVar(&validateAPIKey, "api-key", "", "API key sent in the apikey header")
	validateCmd.Flags().StringVar(&validateProducer, "producer", "", "existing producer id without policies, enables the policies lifecycle checks")
	validateCmd.Flags().DurationVar(&validateTimeout, "timeout", time.Minute, "overall timeout")

	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd)
	rootCmd.AddCommand(serveCmd, migrateCmd, validateCmd, versionCmd)
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, err
	}
	logger.Init(flagOr(logLevel, cfg.LogLevel), flagOr(logFormat, cfg.LogFormat))
	return cfg, nil
}

func flagOr(flag, fallback string) string {
	if flag != "" {
		return flag
	}
	return fallback
}
