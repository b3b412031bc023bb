// Package cli wires the worddee commands.
package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Thanat-Wut/worddee-api/internal/app"
	"github.com/Thanat-Wut/worddee-api/internal/config"
)

// Execute runs the root command; SIGINT and SIGTERM cancel its context.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return NewRootCommand().ExecuteContext(ctx)
}

// NewRootCommand builds the worddee command tree.
func NewRootCommand() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:          "worddee",
		Short:        "Worddee vocabulary API",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "",
		"path to YAML config (default $CONFIG_PATH or ./config.yaml)")

	root.AddCommand(
		newServeCommand(&configPath),
		newImportCommand(&configPath),
		newExportCommand(&configPath),
		newVersionCommand(),
	)
	return root
}

// bootstrap loads configuration, installs the logger and opens the app.
func bootstrap(ctx context.Context, configPath string) (*app.App, *slog.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}

	logger := app.NewLogger(cfg.Log)
	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	return a, logger, nil
}
