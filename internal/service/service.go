package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/roach88/stakeledger/internal/clock"
	"github.com/roach88/stakeledger/internal/ledger"
	"github.com/roach88/stakeledger/internal/metrics"
	"github.com/roach88/stakeledger/internal/store"
)

// Service runs stake operations against a Store.
//
// Thread-safety: Service is safe for concurrent use. Operations on the same
// record are serialized by the store's single writer.
type Service struct {
	store     Store
	transfers Transferer
	auth      Authorizer
	issuer    RewardIssuer
	ids       IDGenerator
	clock     clock.Clock
	metrics   metrics.Recorder
	logger    *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithAuthorizer replaces the default OwnerOnly authorizer.
func WithAuthorizer(a Authorizer) Option {
	return func(s *Service) { s.auth = a }
}

// WithIssuer replaces the default OutboxIssuer.
func WithIssuer(i RewardIssuer) Option {
	return func(s *Service) { s.issuer = i }
}

// WithIDGenerator replaces the default UUIDv7Generator.
func WithIDGenerator(g IDGenerator) Option {
	return func(s *Service) { s.ids = g }
}

// WithClock replaces the default system clock.
func WithClock(c clock.Clock) Option {
	return func(s *Service) { s.clock = c }
}

// WithMetrics sets the operation recorder. Default: metrics.Noop.
func WithMetrics(r metrics.Recorder) Option {
	return func(s *Service) { s.metrics = r }
}

// WithLogger sets the logger. Default: discard.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// New creates a Service over st that moves value through transfers.
func New(st Store, transfers Transferer, opts ...Option) *Service {
	s := &Service{
		store:     st,
		transfers: transfers,
		auth:      OwnerOnly{},
		issuer:    OutboxIssuer{},
		ids:       UUIDv7Generator{},
		clock:     clock.NewSystem(),
		metrics:   metrics.Noop{},
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Receipt describes one committed operation.
type Receipt struct {
	OpID      string        `json:"op_id"`
	Seq       int64         `json:"seq"`
	Op        ledger.Op     `json:"op"`
	Record    ledger.Record `json:"record"`
	Accrued   uint64        `json:"accrued"`
	Claimable uint64        `json:"claimable"`
	StateHash string        `json:"state_hash"`
}

// Open creates owner's stake record at the current time. Only the owner may
// open it. Returns store.ErrExists if the record already exists.
func (s *Service) Open(ctx context.Context, caller, owner ledger.Identity) (Receipt, error) {
	start := time.Now()

	var (
		rcpt Receipt
		now  int64
	)
	err := s.store.Update(ctx, func(ctx context.Context, tx *store.Tx) error {
		// Read inside the transaction so clock order matches commit order.
		now = s.clock.Now()
		rec := ledger.NewRecord(owner, now, store.CanonicalBump)
		if err := s.auth.Authorize(caller, rec); err != nil {
			return err
		}
		if err := tx.CreateRecord(ctx, rec); err != nil {
			return err
		}
		var err error
		rcpt, err = s.journal(ctx, tx, ledger.OpOpen, caller, 0, now, ledger.Result{Record: rec})
		return err
	})
	return s.finish(ctx, ledger.OpOpen, owner, 0, now, start, rcpt, err)
}

// Deposit settles owner's record and moves amount from the owner's external
// balance into the stake.
func (s *Service) Deposit(ctx context.Context, caller, owner ledger.Identity, amount uint64) (Receipt, error) {
	return s.mutate(ctx, ledger.OpDeposit, caller, owner, amount)
}

// Withdraw settles owner's record and moves amount from the stake back to
// the owner's external balance.
func (s *Service) Withdraw(ctx context.Context, caller, owner ledger.Identity, amount uint64) (Receipt, error) {
	return s.mutate(ctx, ledger.OpWithdraw, caller, owner, amount)
}

// Claim settles owner's record, hands the whole points to the RewardIssuer
// and resets the points to zero.
func (s *Service) Claim(ctx context.Context, caller, owner ledger.Identity) (Receipt, error) {
	return s.mutate(ctx, ledger.OpClaim, caller, owner, 0)
}

// Points settles owner's record and persists the result. Any caller may
// query any owner.
func (s *Service) Points(ctx context.Context, caller, owner ledger.Identity) (Receipt, error) {
	return s.mutate(ctx, ledger.OpQuery, caller, owner, 0)
}

// Projection returns what Points would report now without persisting
// anything or touching the journal.
func (s *Service) Projection(ctx context.Context, owner ledger.Identity) (ledger.Result, error) {
	rec, err := s.store.Get(ctx, owner)
	if err != nil {
		return ledger.Result{}, err
	}
	return ledger.Query(rec, s.clock.Now())
}

// Get returns owner's persisted record as stored, without settlement.
func (s *Service) Get(ctx context.Context, owner ledger.Identity) (ledger.Record, error) {
	return s.store.Get(ctx, owner)
}

// History returns owner's journal in commit order.
func (s *Service) History(ctx context.Context, owner ledger.Identity) ([]store.Entry, error) {
	return s.store.History(ctx, owner)
}

// PendingClaims returns the outbox claims the rewards system has not
// acknowledged yet, in claim order.
func (s *Service) PendingClaims(ctx context.Context) ([]store.Claim, error) {
	return s.store.PendingClaims(ctx)
}

// MarkIssued acknowledges the outbox claim for opID at the current time and
// returns that time. Returns store.ErrNotFound if no pending claim has opID.
func (s *Service) MarkIssued(ctx context.Context, opID string) (int64, error) {
	start := time.Now()
	now := s.clock.Now()
	err := s.store.MarkIssued(ctx, opID, now)
	s.metrics.Observe("mark_issued", resultLabel(err), time.Since(start))
	if err != nil {
		s.logger.WarnContext(ctx, "mark issued failed", "op_id", opID, "error", err)
		return 0, err
	}
	s.logger.InfoContext(ctx, "claim issued", "op_id", opID, "issued_at", now)
	return now, nil
}

func (s *Service) mutate(ctx context.Context, op ledger.Op, caller, owner ledger.Identity, amount uint64) (Receipt, error) {
	start := time.Now()

	var (
		rcpt        Receipt
		now         int64
		transferred bool
	)
	err := s.store.Update(ctx, func(ctx context.Context, tx *store.Tx) error {
		transferred = false
		now = s.clock.Now()

		rec, err := tx.Record(ctx, owner)
		if err != nil {
			return err
		}
		if op != ledger.OpQuery {
			if err := s.auth.Authorize(caller, rec); err != nil {
				return err
			}
		}

		res, err := ledger.Apply(op, rec, now, amount)
		if err != nil {
			return err
		}
		if err := tx.SaveRecord(ctx, res.Record); err != nil {
			return err
		}
		rcpt, err = s.journal(ctx, tx, op, caller, amount, now, res)
		if err != nil {
			return err
		}

		if op == ledger.OpClaim && res.Claimable > 0 {
			claim := store.Claim{OpID: rcpt.OpID, Owner: owner, Claimable: res.Claimable, ClaimedAt: now}
			if err := s.issuer.Issue(ctx, tx, claim); err != nil {
				return fmt.Errorf("issue reward: %w", err)
			}
		}

		// Last fallible step before commit.
		switch op {
		case ledger.OpDeposit:
			err = s.transfers.ToStake(ctx, owner, amount)
		case ledger.OpWithdraw:
			err = s.transfers.FromStake(ctx, owner, amount)
		default:
			return nil
		}
		if err != nil {
			return err
		}
		transferred = true
		return nil
	})

	if err != nil && transferred {
		err = s.compensate(ctx, op, owner, amount, err)
	}
	return s.finish(ctx, op, owner, amount, now, start, rcpt, err)
}

// journal appends the entry for a successful ledger step and builds its receipt.
func (s *Service) journal(ctx context.Context, tx *store.Tx, op ledger.Op, caller ledger.Identity, amount uint64, now int64, res ledger.Result) (Receipt, error) {
	hash, err := res.Record.StateHash()
	if err != nil {
		return Receipt{}, fmt.Errorf("state hash: %w", err)
	}
	entry := store.Entry{
		OpID:      s.ids.Generate(),
		Op:        op,
		Owner:     res.Record.Owner,
		Caller:    caller,
		Amount:    amount,
		At:        now,
		Accrued:   res.Accrued,
		Claimable: res.Claimable,
		StateHash: hash,
	}
	seq, err := tx.AppendEntry(ctx, entry)
	if err != nil {
		return Receipt{}, err
	}
	return Receipt{
		OpID:      entry.OpID,
		Seq:       seq,
		Op:        op,
		Record:    res.Record,
		Accrued:   res.Accrued,
		Claimable: res.Claimable,
		StateHash: hash,
	}, nil
}

// compensate reverses a transfer whose transaction failed to commit.
// Returns commitErr, joined with the reversal error if the reversal failed.
func (s *Service) compensate(ctx context.Context, op ledger.Op, owner ledger.Identity, amount uint64, commitErr error) error {
	ctx = context.WithoutCancel(ctx)

	var err error
	switch op {
	case ledger.OpDeposit:
		err = s.transfers.FromStake(ctx, owner, amount)
	case ledger.OpWithdraw:
		err = s.transfers.ToStake(ctx, owner, amount)
	}
	if err == nil {
		s.logger.WarnContext(ctx, "transfer reversed after failed commit",
			"op", string(op), "owner", owner.String(), "amount", amount, "error", commitErr)
		return commitErr
	}

	joined := errors.Join(commitErr, fmt.Errorf("reverse transfer: %w", err))
	s.logger.ErrorContext(ctx, "transfer reversal failed",
		"op", string(op), "owner", owner.String(), "amount", amount, "error", joined)
	return joined
}

// finish logs and records metrics for a completed operation.
func (s *Service) finish(ctx context.Context, op ledger.Op, owner ledger.Identity, amount uint64, now int64, start time.Time, rcpt Receipt, err error) (Receipt, error) {
	s.metrics.Observe(string(op), resultLabel(err), time.Since(start))

	if err != nil {
		s.logger.WarnContext(ctx, "operation failed",
			"op", string(op), "owner", owner.String(), "amount", amount, "now", now,
			"kind", resultLabel(err), "error", err)
		return Receipt{}, err
	}

	s.logger.DebugContext(ctx, "operation committed",
		"op", string(op), "owner", owner.String(), "amount", amount, "now", now,
		"op_id", rcpt.OpID, "seq", rcpt.Seq)
	if op == ledger.OpClaim {
		s.logger.InfoContext(ctx, "points claimed",
			"owner", owner.String(), "claimable", rcpt.Claimable, "op_id", rcpt.OpID)
	}
	return rcpt, nil
}

// resultLabel maps err to a low-cardinality metrics label.
func resultLabel(err error) string {
	switch code := Code(err); code {
	case "":
		return metrics.ResultOK
	case CodeInternal:
		return metrics.ResultError
	default:
		return strings.ToLower(code)
	}
}
