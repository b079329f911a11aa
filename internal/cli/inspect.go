package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/stakeledger/internal/clock"
	"github.com/roach88/stakeledger/internal/ledger"
)

// NewShowCommand creates the show command.
func NewShowCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <owner>",
		Short: "Print owner's stored record",
		Long: `Print owner's record as last persisted. Points are not settled;
use points for an up-to-date balance.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			owner, rt, err := openForOwner(cmd, rootOpts, args[0])
			if err != nil {
				return err
			}
			defer rt.Close()

			rec, err := rt.svc.Get(cmd.Context(), owner)
			if err != nil {
				return rt.out.OperationError(err)
			}
			return rt.out.Success(recordView(rec))
		},
	}
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "history <owner>",
		Short:         "Print owner's journal",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			owner, rt, err := openForOwner(cmd, rootOpts, args[0])
			if err != nil {
				return err
			}
			defer rt.Close()

			entries, err := rt.svc.History(cmd.Context(), owner)
			if err != nil {
				return rt.out.OperationError(err)
			}
			return rt.out.Success(historyView{Entries: entries})
		},
	}
}

// NewClaimsCommand creates the claims command.
func NewClaimsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "claims",
		Short: "List claims waiting to be issued",
		Long: `List the reward claims recorded in the outbox that the rewards
system has not issued yet, in claim order.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(cmd, rootOpts, clock.NewSystem())
			if err != nil {
				return err
			}
			defer rt.Close()

			claims, err := rt.svc.PendingClaims(cmd.Context())
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to read claims", err)
			}
			return rt.out.Success(claimsView{Claims: claims})
		},
	}

	cmd.AddCommand(NewClaimsAckCommand(rootOpts))
	return cmd
}

// NewClaimsAckCommand creates the claims ack command.
func NewClaimsAckCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &OpOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "ack <op-id>",
		Short: "Mark a pending claim as issued",
		Long: `Record that the rewards system has issued the claim created by
operation <op-id>. The claim leaves the pending list.

Examples:
  stakeledger claims ack 5f0c6e9e-3c1a-4a8e-9d55-0b3f1f9e2a10
  stakeledger claims ack 5f0c6e9e-3c1a-4a8e-9d55-0b3f1f9e2a10 --at 1700000000`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(cmd, rootOpts, opts.clock(cmd))
			if err != nil {
				return err
			}
			defer rt.Close()

			issuedAt, err := rt.svc.MarkIssued(cmd.Context(), args[0])
			if err != nil {
				return rt.out.OperationError(err)
			}
			return rt.out.Success(issuedView{OpID: args[0], IssuedAt: issuedAt})
		},
	}

	cmd.Flags().Int64Var(&opts.At, "at", 0, "issue time in unix seconds (default: now)")
	return cmd
}

func openForOwner(cmd *cobra.Command, rootOpts *RootOptions, ownerArg string) (ledger.Identity, *runtime, error) {
	owner, err := ledger.ParseIdentity(ownerArg)
	if err != nil {
		return owner, nil, WrapExitError(ExitCommandError, "invalid owner", err)
	}
	rt, err := openRuntime(cmd, rootOpts, clock.NewSystem())
	if err != nil {
		return owner, nil, err
	}
	return owner, rt, nil
}
