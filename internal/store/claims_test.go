package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/stakeledger/internal/ledger"
)

func TestClaimsOutbox(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	owner := testIdentity(1)
	createTestRecord(t, s, ledger.NewRecord(owner, 0, CanonicalBump))

	for i, opID := range []string{"claim-a", "claim-b"} {
		e := testEntry(owner, i+1, ledger.OpClaim)
		e.OpID = opID
		require.NoError(t, s.Update(ctx, func(ctx context.Context, tx *Tx) error {
			if _, err := tx.AppendEntry(ctx, e); err != nil {
				return err
			}
			return tx.EnqueueClaim(ctx, Claim{OpID: opID, Owner: owner, Claimable: uint64(i + 5), ClaimedAt: int64(i)})
		}))
	}

	pending, err := s.PendingClaims(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, "claim-a", pending[0].OpID)
	assert.Equal(t, uint64(5), pending[0].Claimable)
	assert.Equal(t, owner, pending[0].Owner)

	require.NoError(t, s.MarkIssued(ctx, "claim-a", 100))

	pending, err = s.PendingClaims(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "claim-b", pending[0].OpID)

	assert.ErrorIs(t, s.MarkIssued(ctx, "claim-a", 101), ErrNotFound, "already issued")
	assert.ErrorIs(t, s.MarkIssued(ctx, "missing", 101), ErrNotFound)
}

func TestEnqueueClaim_RequiresJournalEntry(t *testing.T) {
	s := createTestStore(t)
	owner := testIdentity(1)
	createTestRecord(t, s, ledger.NewRecord(owner, 0, CanonicalBump))

	err := s.Update(context.Background(), func(ctx context.Context, tx *Tx) error {
		return tx.EnqueueClaim(ctx, Claim{OpID: "nope", Owner: owner, Claimable: 1})
	})
	assert.Error(t, err)
}

func TestEnqueueClaim_RejectsZero(t *testing.T) {
	s := createTestStore(t)
	owner := testIdentity(1)
	createTestRecord(t, s, ledger.NewRecord(owner, 0, CanonicalBump))
	appendTestEntry(t, s, testEntry(owner, 1, ledger.OpClaim))

	err := s.Update(context.Background(), func(ctx context.Context, tx *Tx) error {
		return tx.EnqueueClaim(ctx, Claim{OpID: "op-1", Owner: owner, Claimable: 0})
	})
	assert.Error(t, err)
}
