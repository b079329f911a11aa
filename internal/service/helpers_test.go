package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/roach88/stakeledger/internal/clock"
	"github.com/roach88/stakeledger/internal/ledger"
	"github.com/roach88/stakeledger/internal/store"
	"github.com/roach88/stakeledger/internal/transfer"
)

const unit = ledger.UnitsPerWhole

var (
	alice = ledger.Identity{0xa1}
	bob   = ledger.Identity{0xb0}
)

type fixture struct {
	svc   *Service
	store *store.Store
	bank  *transfer.Bank
	clock *clock.Manual
	rec   *spyRecorder
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	st, err := store.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return newFixtureWithStore(t, st, st, opts...)
}

// newFixtureWithStore lets a test wrap the real store (e.g. to fail commits)
// while still reading through the unwrapped one.
func newFixtureWithStore(t *testing.T, raw *store.Store, svcStore Store, opts ...Option) *fixture {
	t.Helper()
	f := &fixture{
		store: raw,
		bank:  transfer.NewBank(),
		clock: clock.NewManual(0),
		rec:   &spyRecorder{},
	}
	base := []Option{
		WithClock(f.clock),
		WithIDGenerator(NewSequenceGenerator("op")),
		WithMetrics(f.rec),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	}
	f.svc = New(svcStore, f.bank, append(base, opts...)...)
	return f
}

// open funds owner with balance and opens the record at the current time.
func (f *fixture) open(t *testing.T, owner ledger.Identity, balance uint64) {
	t.Helper()
	if balance > 0 {
		require.NoError(t, f.bank.Fund(owner, balance))
	}
	_, err := f.svc.Open(context.Background(), owner, owner)
	require.NoError(t, err)
}

func (f *fixture) record(t *testing.T, owner ledger.Identity) ledger.Record {
	t.Helper()
	rec, err := f.store.Get(context.Background(), owner)
	require.NoError(t, err)
	return rec
}

func (f *fixture) history(t *testing.T, owner ledger.Identity) []store.Entry {
	t.Helper()
	entries, err := f.store.History(context.Background(), owner)
	require.NoError(t, err)
	return entries
}

func encode(t *testing.T, rec ledger.Record) []byte {
	t.Helper()
	b, err := rec.MarshalBinary()
	require.NoError(t, err)
	return b
}

type observation struct {
	op, result string
}

type spyRecorder struct {
	mu  sync.Mutex
	obs []observation
}

func (r *spyRecorder) Observe(op, result string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.obs = append(r.obs, observation{op, result})
}

func (r *spyRecorder) last() observation {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.obs[len(r.obs)-1]
}

// failingCommitStore runs fn to completion and then fails the transaction as
// if COMMIT had returned err.
type failingCommitStore struct {
	*store.Store
	err error
}

func (s failingCommitStore) Update(ctx context.Context, fn func(ctx context.Context, tx *store.Tx) error) error {
	return s.Store.Update(ctx, func(ctx context.Context, tx *store.Tx) error {
		if err := fn(ctx, tx); err != nil {
			return err
		}
		return s.err
	})
}

// brokenTransferer succeeds ToStake but always fails FromStake.
type brokenTransferer struct{}

var errFromStake = errors.New("vault unavailable")

func (brokenTransferer) ToStake(context.Context, ledger.Identity, uint64) error { return nil }

func (brokenTransferer) FromStake(context.Context, ledger.Identity, uint64) error {
	return errFromStake
}

type failingIssuer struct{}

var errIssuer = errors.New("issuer down")

func (failingIssuer) Issue(context.Context, *store.Tx, store.Claim) error { return errIssuer }
