package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/stakeledger/internal/ledger"
)

// createTestStore creates a new in-memory store for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	require.NoError(t, err, "Open() failed")
	t.Cleanup(func() { s.Close() })
	return s
}

// testIdentity returns an identity whose first byte is b.
func testIdentity(b byte) ledger.Identity {
	return ledger.Identity{b}
}

// createTestRecord inserts rec in its own transaction.
func createTestRecord(t *testing.T, s *Store, rec ledger.Record) {
	t.Helper()
	require.NoError(t, s.Update(context.Background(), func(ctx context.Context, tx *Tx) error {
		return tx.CreateRecord(ctx, rec)
	}))
}

// appendTestEntry appends a journal entry for e.Owner in its own transaction.
func appendTestEntry(t *testing.T, s *Store, e Entry) int64 {
	t.Helper()
	var seq int64
	require.NoError(t, s.Update(context.Background(), func(ctx context.Context, tx *Tx) error {
		var err error
		seq, err = tx.AppendEntry(ctx, e)
		return err
	}))
	return seq
}
