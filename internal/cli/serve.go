package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wareledger/wareledger/internal/app/runtime"
	"github.com/wareledger/wareledger/internal/config"
	"github.com/wareledger/wareledger/internal/logging"
)

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Long: `Load the configuration, connect to the database and serve the site and
the JSON API until SIGINT or SIGTERM.

Example:
  wareledger serve --config /etc/wareledger/config.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), rootOpts)
		},
	}
}

func serve(ctx context.Context, opts *RootOptions) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	log := logging.NewFromConfig("wareledger", logging.LoggingConfig{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		Output:     cfg.Logging.Output,
		FilePrefix: cfg.Logging.FilePrefix,
	})

	application, err := runtime.NewApplication(cfg, log)
	if err != nil {
		return err
	}

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	runErr := application.Run(ctx)
	log.Info("shutting down")
	if err := application.Shutdown(context.Background()); err != nil {
		log.WithError(err).Warn("shutdown incomplete")
	}
	return runErr
}

func loadConfig(opts *RootOptions) (*config.Config, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	if opts.LogLevel != "" {
		cfg.Logging.Level = opts.LogLevel
	}
	if opts.LogFormat != "" {
		cfg.Logging.Format = opts.LogFormat
	}
	return cfg, nil
}
