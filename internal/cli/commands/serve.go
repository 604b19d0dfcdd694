package commands

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/travelease-dev/travelease/internal/logger"
	"github.com/travelease-dev/travelease/internal/web"
)

// NewServeCmd creates the serve command, which runs the web UI
func NewServeCmd(opts ...Option) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the TravelEase web UI",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), opts, "info", func(ctx context.Context, d *Deps) error {
				if addr != "" {
					d.Config.Web.Addr = addr
				}
				return Serve(ctx, d, resolve(opts).version)
			})
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (or set TRAVELEASE_WEB_ADDR)")

	return cmd
}

// Serve runs the web UI until an interrupt or termination signal arrives
func Serve(ctx context.Context, d *Deps, version string) error {
	srv, err := web.New(d.Manager, d.Client, d.Config.Web, logger.Component(d.Logger, "web"), version)
	if err != nil {
		return fmt.Errorf("failed to create web UI: %w", err)
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	d.Logger.Info().Str("version", version).Str("api", d.Config.API.URL).Msg("Starting TravelEase web UI...")
	return srv.Run(ctx)
}
