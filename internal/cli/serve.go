package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/roach88/stakeledger/internal/clock"
	"github.com/roach88/stakeledger/internal/metrics"
	"github.com/roach88/stakeledger/internal/server"
	"github.com/roach88/stakeledger/internal/service"
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	Listen string // overrides the config file's listen address
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the ledger over HTTP",
		Long: `Serve the stake operations as a JSON HTTP API until interrupted.

Callers identify themselves with the X-Stake-Caller header. When metrics
are enabled, Prometheus metrics are exposed on /metrics.

Examples:
  stakeledger serve --config ./stakeledger.yaml
  stakeledger serve --db ./stake.db --listen :9090`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Listen, "listen", "", "listen address (overrides config)")
	return cmd
}

func runServe(ctx context.Context, opts *ServeOptions, cmd *cobra.Command) error {
	var svcOpts []service.Option
	var srvOpts []server.Option

	cfg, err := opts.loadConfig()
	if err != nil {
		return err
	}
	if cfg.Metrics.Enabled {
		prom := metrics.NewPrometheus()
		svcOpts = append(svcOpts, service.WithMetrics(prom))
		srvOpts = append(srvOpts, server.WithMetricsHandler(prom.Handler()))
	}

	rt, err := newRuntime(cmd, opts.RootOptions, cfg, clock.NewSystem(), svcOpts...)
	if err != nil {
		return err
	}
	defer rt.Close()

	if cfg.NTP.Server != "" {
		check := &clock.DriftCheck{Server: cfg.NTP.Server, MaxOffset: cfg.NTP.MaxOffset, Logger: rt.logger}
		if _, err := check.Check(); err != nil {
			rt.logger.Warn("clock drift check failed", "error", err)
		}
	}

	if !opts.Verbose {
		gin.SetMode(gin.ReleaseMode)
	}

	listen := cfg.Listen
	if opts.Listen != "" {
		listen = opts.Listen
	}

	srvOpts = append(srvOpts, server.WithLogger(rt.logger))
	srv := server.New(rt.svc, srvOpts...)
	if err := srv.ListenAndServe(ctx, listen); err != nil {
		return WrapExitError(ExitCommandError, "server failed", err)
	}
	return nil
}
