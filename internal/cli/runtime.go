package cli

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/stakeledger/internal/clock"
	"github.com/roach88/stakeledger/internal/config"
	"github.com/roach88/stakeledger/internal/service"
	"github.com/roach88/stakeledger/internal/store"
	"github.com/roach88/stakeledger/internal/transfer"
)

// runtime is what a command needs to talk to the ledger.
type runtime struct {
	cfg    config.Config
	logger *slog.Logger
	store  *store.Store
	svc    *service.Service
	out    *OutputFormatter
}

// loadConfig reads the config file, if any, and applies flag overrides.
func (o *RootOptions) loadConfig() (config.Config, error) {
	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		return config.Config{}, WrapExitError(ExitCommandError, "failed to load config", err)
	}
	if o.Database != "" {
		cfg.Database = o.Database
	}
	return cfg, nil
}

func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
	}
}

// openRuntime loads config, opens the store and builds the service.
// The caller must Close the runtime.
func openRuntime(cmd *cobra.Command, opts *RootOptions, clk clock.Clock, svcOpts ...service.Option) (*runtime, error) {
	cfg, err := opts.loadConfig()
	if err != nil {
		return nil, err
	}
	return newRuntime(cmd, opts, cfg, clk, svcOpts...)
}

// newRuntime opens the store named by cfg and builds the service on it.
// Custody lives outside this process, so transfers are logged rather than
// executed.
func newRuntime(cmd *cobra.Command, opts *RootOptions, cfg config.Config, clk clock.Clock, svcOpts ...service.Option) (*runtime, error) {
	out := opts.formatter(cmd)
	logger := cfg.Logger(out.GetErrWriter(), opts.Verbose)

	st, err := store.Open(cfg.Database)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}
	out.VerboseLog("database: %s", cfg.Database)

	base := []service.Option{
		service.WithClock(clk),
		service.WithLogger(logger),
		service.WithIssuer(issuerFor(cfg, logger)),
	}
	svc := service.New(st, transfer.Log{Logger: logger}, append(base, svcOpts...)...)

	return &runtime{
		cfg:    cfg,
		logger: logger,
		store:  st,
		svc:    svc,
		out:    out,
	}, nil
}

func (r *runtime) Close() error {
	return r.store.Close()
}

func issuerFor(cfg config.Config, logger *slog.Logger) service.RewardIssuer {
	if cfg.Issuer.Kind == config.IssuerLog {
		return service.LogIssuer{Logger: logger}
	}
	return service.OutboxIssuer{}
}
