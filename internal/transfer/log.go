package transfer

import (
	"context"
	"log/slog"

	"github.com/roach88/stakeledger/internal/ledger"
)

// Log is a transferer for deployments where custody is settled outside this
// process. It records each movement and always succeeds unless ctx is done.
type Log struct {
	Logger *slog.Logger
}

// ToStake logs a transfer into owner's stake.
func (l Log) ToStake(ctx context.Context, owner ledger.Identity, amount uint64) error {
	return l.record(ctx, "to_stake", owner, amount)
}

// FromStake logs a transfer out of owner's stake.
func (l Log) FromStake(ctx context.Context, owner ledger.Identity, amount uint64) error {
	return l.record(ctx, "from_stake", owner, amount)
}

func (l Log) record(ctx context.Context, direction string, owner ledger.Identity, amount uint64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.InfoContext(ctx, "transfer", "direction", direction, "owner", owner.String(), "amount", amount)
	return nil
}
