package service

import (
	"context"
	"log/slog"

	"github.com/roach88/stakeledger/internal/ledger"
	"github.com/roach88/stakeledger/internal/store"
)

// Store is the persistence the service needs. Implemented by *store.Store.
type Store interface {
	Update(ctx context.Context, fn func(ctx context.Context, tx *store.Tx) error) error
	Get(ctx context.Context, owner ledger.Identity) (ledger.Record, error)
	History(ctx context.Context, owner ledger.Identity) ([]store.Entry, error)
	Journal(ctx context.Context) ([]store.Entry, error)
	Owners(ctx context.Context) ([]ledger.Identity, error)
	PendingClaims(ctx context.Context) ([]store.Claim, error)
	MarkIssued(ctx context.Context, opID string, issuedAt int64) error
}

// Transferer moves value between an owner's external balance and the balance
// backing the owner's stake record. Each call either fully succeeds or has no
// effect. Implemented by *transfer.Bank and transfer.Log.
type Transferer interface {
	ToStake(ctx context.Context, owner ledger.Identity, amount uint64) error
	FromStake(ctx context.Context, owner ledger.Identity, amount uint64) error
}

// Authorizer decides whether caller may mutate rec.
type Authorizer interface {
	Authorize(caller ledger.Identity, rec ledger.Record) error
}

// OwnerOnly authorizes the record owner and nobody else.
type OwnerOnly struct{}

// Authorize returns an UNAUTHORIZED ledger error unless caller owns rec.
func (OwnerOnly) Authorize(caller ledger.Identity, rec ledger.Record) error {
	if caller != rec.Owner {
		return ledger.NewUnauthorizedError(caller, rec.Owner)
	}
	return nil
}

// RewardIssuer receives claimed whole points inside the claim transaction.
// An error aborts the claim and leaves the record's points untouched.
type RewardIssuer interface {
	Issue(ctx context.Context, tx *store.Tx, c store.Claim) error
}

// OutboxIssuer writes claims to the store's reward_claims table for an
// external issuance system to drain.
type OutboxIssuer struct{}

// Issue enqueues c in the same transaction as the claim.
func (OutboxIssuer) Issue(ctx context.Context, tx *store.Tx, c store.Claim) error {
	return tx.EnqueueClaim(ctx, c)
}

// LogIssuer only logs the claim; the claimed amount lives on in the journal.
type LogIssuer struct {
	Logger *slog.Logger
}

// Issue logs c at INFO.
func (l LogIssuer) Issue(ctx context.Context, _ *store.Tx, c store.Claim) error {
	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.InfoContext(ctx, "reward claimed",
		"op_id", c.OpID,
		"owner", c.Owner.String(),
		"claimable", c.Claimable,
		"at", c.ClaimedAt,
	)
	return nil
}
