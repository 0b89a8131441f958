package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/ppfmanagement/admin-dashboard/internal/app"
	"github.com/ppfmanagement/admin-dashboard/internal/pkg/config"
	"github.com/ppfmanagement/admin-dashboard/pkg/logger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the dashboard HTTP server",
	Long: `Start the dashboard. Configuration comes from the environment, optionally
seeded from a .env file in the working directory.

Example:
  API_BASE_URL=https://ppf.example.com/api/ REDIS_ADDR=localhost:6379 ppfadmin serve`,
	RunE: runServe,
}

var servePort string

func init() {
	serveCmd.Flags().StringVar(&servePort, "port", "", "port to listen on (overrides PORT)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}
	if servePort != "" {
		cfg.Port = servePort
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "ppfadmin",
	})

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Error().Err(err).Msg("startup failed")
		return err
	}
	defer a.Close(context.Background())

	return a.Run(ctx)
}
