package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/roach88/stakeledger/internal/clock"
	"github.com/roach88/stakeledger/internal/ledger"
	"github.com/roach88/stakeledger/internal/service"
)

// OpOptions holds flags shared by the operation commands.
type OpOptions struct {
	*RootOptions
	Caller string // hex identity, defaults to the owner
	At     int64  // unix seconds, defaults to the system clock
}

func (o *OpOptions) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.Caller, "caller", "", "caller identity as 64 hex chars (default: the owner)")
	cmd.Flags().Int64Var(&o.At, "at", 0, "operation time in unix seconds (default: now)")
}

func (o *OpOptions) clock(cmd *cobra.Command) clock.Clock {
	if cmd.Flags().Changed("at") {
		return clock.Fixed(o.At)
	}
	return clock.NewSystem()
}

// identities parses the owner argument and the caller flag.
func (o *OpOptions) identities(ownerArg string) (caller, owner ledger.Identity, err error) {
	owner, err = ledger.ParseIdentity(ownerArg)
	if err != nil {
		return caller, owner, WrapExitError(ExitCommandError, "invalid owner", err)
	}
	if o.Caller == "" {
		return owner, owner, nil
	}
	caller, err = ledger.ParseIdentity(o.Caller)
	if err != nil {
		return caller, owner, WrapExitError(ExitCommandError, "invalid caller", err)
	}
	return caller, owner, nil
}

type opFunc func(ctx context.Context, svc *service.Service, caller, owner ledger.Identity, amount uint64) (service.Receipt, error)

// newOpCommand builds a command taking <owner> and, when withAmount is set,
// <amount>.
func newOpCommand(rootOpts *RootOptions, use, short, long string, withAmount bool, run opFunc) *cobra.Command {
	opts := &OpOptions{RootOptions: rootOpts}
	nargs := 1
	if withAmount {
		nargs = 2
	}

	cmd := &cobra.Command{
		Use:           use,
		Short:         short,
		Long:          long,
		Args:          cobra.ExactArgs(nargs),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			caller, owner, err := opts.identities(args[0])
			if err != nil {
				return err
			}
			var amount uint64
			if withAmount {
				if amount, err = parseAmount(args[1]); err != nil {
					return err
				}
			}

			rt, err := openRuntime(cmd, opts.RootOptions, opts.clock(cmd))
			if err != nil {
				return err
			}
			defer rt.Close()

			rcpt, err := run(cmd.Context(), rt.svc, caller, owner, amount)
			if err != nil {
				return rt.out.OperationError(err)
			}
			return rt.out.Success(receiptView(rcpt))
		},
	}
	opts.bind(cmd)
	return cmd
}

func parseAmount(s string) (uint64, error) {
	amount, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, WrapExitError(ExitCommandError, fmt.Sprintf("invalid amount %q", s), err)
	}
	return amount, nil
}

// NewOpenCommand creates the open command.
func NewOpenCommand(rootOpts *RootOptions) *cobra.Command {
	return newOpCommand(rootOpts, "open <owner>", "Create an empty stake record",
		`Create the stake record for owner at the current time.

Examples:
  stakeledger open a1b2...
  stakeledger open a1b2... --at 1700000000`,
		false,
		func(ctx context.Context, svc *service.Service, caller, owner ledger.Identity, _ uint64) (service.Receipt, error) {
			return svc.Open(ctx, caller, owner)
		})
}

// NewDepositCommand creates the deposit command.
func NewDepositCommand(rootOpts *RootOptions) *cobra.Command {
	return newOpCommand(rootOpts, "deposit <owner> <amount>", "Stake amount smallest units",
		`Settle owner's points and add amount to the stake.

Examples:
  stakeledger deposit a1b2... 1000000000`,
		true,
		func(ctx context.Context, svc *service.Service, caller, owner ledger.Identity, amount uint64) (service.Receipt, error) {
			return svc.Deposit(ctx, caller, owner, amount)
		})
}

// NewWithdrawCommand creates the withdraw command.
func NewWithdrawCommand(rootOpts *RootOptions) *cobra.Command {
	return newOpCommand(rootOpts, "withdraw <owner> <amount>", "Unstake amount smallest units",
		`Settle owner's points and remove amount from the stake.

Examples:
  stakeledger withdraw a1b2... 500000000`,
		true,
		func(ctx context.Context, svc *service.Service, caller, owner ledger.Identity, amount uint64) (service.Receipt, error) {
			return svc.Withdraw(ctx, caller, owner, amount)
		})
}

// NewClaimCommand creates the claim command.
func NewClaimCommand(rootOpts *RootOptions) *cobra.Command {
	return newOpCommand(rootOpts, "claim <owner>", "Claim whole points and reset the balance",
		`Settle owner's points, release the whole points to the reward issuer
and reset the balance to zero.

Examples:
  stakeledger claim a1b2...`,
		false,
		func(ctx context.Context, svc *service.Service, caller, owner ledger.Identity, _ uint64) (service.Receipt, error) {
			return svc.Claim(ctx, caller, owner)
		})
}

// PointsOptions holds flags for the points command.
type PointsOptions struct {
	OpOptions
	Project bool
}

// NewPointsCommand creates the points command.
func NewPointsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PointsOptions{OpOptions: OpOptions{RootOptions: rootOpts}}

	cmd := &cobra.Command{
		Use:   "points <owner>",
		Short: "Settle and report owner's points",
		Long: `Settle owner's points at the current time and persist the result.
Any caller may query any owner.

With --project the settlement is computed but not written.

Examples:
  stakeledger points a1b2...
  stakeledger points a1b2... --project --at 1700086400`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			caller, owner, err := opts.identities(args[0])
			if err != nil {
				return err
			}

			rt, err := openRuntime(cmd, opts.RootOptions, opts.clock(cmd))
			if err != nil {
				return err
			}
			defer rt.Close()

			if opts.Project {
				res, err := rt.svc.Projection(cmd.Context(), owner)
				if err != nil {
					return rt.out.OperationError(err)
				}
				return rt.out.Success(projectionView{Record: res.Record, Accrued: res.Accrued, Projected: true})
			}

			rcpt, err := rt.svc.Points(cmd.Context(), caller, owner)
			if err != nil {
				return rt.out.OperationError(err)
			}
			return rt.out.Success(receiptView(rcpt))
		},
	}
	opts.bind(cmd)
	cmd.Flags().BoolVar(&opts.Project, "project", false, "compute without persisting")
	return cmd
}
