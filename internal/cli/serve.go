package cli

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Thanat-Wut/worddee-api/internal/app"
)

func newServeCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, logger, err := bootstrap(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			logger.Info("starting worddee", slog.String("version", app.BuildVersion()))
			return a.Serve(cmd.Context())
		},
	}
}
