package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/stakeledger/internal/clock"
	"github.com/roach88/stakeledger/internal/service"
)

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Replay the journal and verify stored state",
		Long: `Re-execute every journal entry in order against fresh records and
compare each recomputed state hash, and every final record, with what the
database holds. Nothing is written.

Exit codes:
  0 - Journal and records agree
  1 - Mismatches detected
  2 - Command error (database not found, etc.)

Examples:
  stakeledger replay --db ./stake.db
  stakeledger replay --db ./stake.db --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(rootOpts, cmd)
		},
	}
	return cmd
}

func runReplay(opts *RootOptions, cmd *cobra.Command) error {
	rt, err := openRuntime(cmd, opts, clock.NewSystem())
	if err != nil {
		return err
	}
	defer rt.Close()

	report, err := rt.svc.Replay(cmd.Context())
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to replay journal", err)
	}

	if opts.Format == "json" {
		return outputReplayJSON(cmd, report)
	}
	return outputReplayText(cmd, report, opts.Verbose)
}

// outputReplayJSON outputs the replay report as JSON.
func outputReplayJSON(cmd *cobra.Command, report service.ReplayReport) error {
	response := CLIResponse{
		Status: "ok",
		Data:   report,
	}

	if !report.OK() {
		response.Status = "error"
		response.Error = &CLIError{
			Code:    "E_REPLAY_MISMATCH",
			Message: fmt.Sprintf("%d mismatch(es) found", len(report.Mismatches)),
		}
	}

	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(response); err != nil {
		return err
	}

	if !report.OK() {
		return NewExitError(ExitFailure, "replay verification failed")
	}
	return nil
}

// outputReplayText outputs the replay report as text.
func outputReplayText(cmd *cobra.Command, report service.ReplayReport, verbose bool) error {
	w := cmd.OutOrStdout()

	fmt.Fprintf(w, "Replay Summary: %d entries, %d owner(s)\n", report.Entries, report.Owners)

	if report.OK() {
		fmt.Fprintln(w, "✓ Journal matches stored records")
		return nil
	}

	fmt.Fprintln(w)
	for _, m := range report.Mismatches {
		if m.Seq != 0 {
			fmt.Fprintf(w, "✗ seq %d (%s) owner %s: %s\n", m.Seq, m.OpID, m.Owner, m.Field)
		} else {
			fmt.Fprintf(w, "✗ owner %s: %s\n", m.Owner, m.Field)
		}
		if verbose {
			fmt.Fprintf(w, "  stored:   %s\n", m.Stored)
			fmt.Fprintf(w, "  replayed: %s\n", m.Replay)
		}
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "✗ Replay verification failed: %d mismatch(es)\n", len(report.Mismatches))
	return NewExitError(ExitFailure, "replay verification failed")
}
