package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/polychat-server/internal/app"
	"github.com/vovakirdan/polychat-server/internal/config"
	"github.com/vovakirdan/polychat-server/internal/log"
)

func newServeCmd() *cobra.Command {
	var (
		configPath string
		overrides  config.Config
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the chat relay server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, configPath, overrides)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&configPath, "config", "", "path to config.yaml")
	flags.StringVar(&overrides.Addr, "addr", "", "HTTP listen address")
	flags.DurationVar(&overrides.ReadHeaderTimeout, "read-header-timeout", 0, "HTTP read header timeout")
	flags.DurationVar(&overrides.ShutdownTimeout, "shutdown-timeout", 0, "graceful shutdown timeout")
	flags.StringVar(&overrides.LogLevel, "log-level", "", "log level (debug, info, warn, error)")
	flags.StringVar(&overrides.LogFormat, "log-format", "", "log format (console, json)")
	flags.StringVar(&overrides.DatabasePath, "db", "", "SQLite database path")
	flags.StringVar(&overrides.BaseLanguage, "base-language", "", "language for users without one")
	flags.StringVar(&overrides.Translation.Cache.Backend, "cache", "", "translation cache backend (memory, redis)")
	flags.StringVar(&overrides.Translation.Cache.RedisURL, "redis-url", "", "Redis URL for the redis cache backend")

	return cmd
}

func serve(ctx context.Context, configPath string, overrides config.Config) error {
	bootLogger := log.New("info", "console")

	cfg, resolved, err := config.Load(bootLogger, configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg.UpdateFrom(overrides)

	logger := log.New(cfg.LogLevel, cfg.LogFormat)
	logger.Info().Str("config", resolved).Msg("configuration loaded")

	application, err := app.New(ctx, &cfg, logger)
	if err != nil {
		return fmt.Errorf("init app: %w", err)
	}

	logger.Info().Str("addr", cfg.Addr).Str("base_language", cfg.BaseLanguage).Msg("starting polychat server")
	if err := application.Run(ctx); err != nil {
		return fmt.Errorf("server exited with error: %w", err)
	}
	logger.Info().Msg("server stopped")
	return nil
}
