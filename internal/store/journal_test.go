package store

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/stakeledger/internal/ledger"
)

func testEntry(owner ledger.Identity, n int, op ledger.Op) Entry {
	return Entry{
		OpID:      fmt.Sprintf("op-%d", n),
		Op:        op,
		Owner:     owner,
		Caller:    owner,
		Amount:    uint64(n * 10),
		At:        int64(n),
		Accrued:   uint64(n),
		StateHash: fmt.Sprintf("hash-%d", n),
	}
}

func TestAppendEntry_AssignsIncreasingSeq(t *testing.T) {
	s := createTestStore(t)
	owner := testIdentity(1)
	createTestRecord(t, s, ledger.NewRecord(owner, 0, CanonicalBump))

	first := appendTestEntry(t, s, testEntry(owner, 1, ledger.OpOpen))
	second := appendTestEntry(t, s, testEntry(owner, 2, ledger.OpDeposit))
	assert.Greater(t, second, first)
}

func TestAppendEntry_RequiresRecord(t *testing.T) {
	s := createTestStore(t)

	err := s.Update(context.Background(), func(ctx context.Context, tx *Tx) error {
		_, err := tx.AppendEntry(ctx, testEntry(testIdentity(7), 1, ledger.OpDeposit))
		return err
	})
	assert.Error(t, err, "foreign key on owner should reject orphan entries")
}

func TestAppendEntry_DuplicateOpID(t *testing.T) {
	s := createTestStore(t)
	owner := testIdentity(1)
	createTestRecord(t, s, ledger.NewRecord(owner, 0, CanonicalBump))
	appendTestEntry(t, s, testEntry(owner, 1, ledger.OpOpen))

	err := s.Update(context.Background(), func(ctx context.Context, tx *Tx) error {
		_, err := tx.AppendEntry(ctx, testEntry(owner, 1, ledger.OpDeposit))
		return err
	})
	assert.Error(t, err)
}

func TestHistory_FiltersAndOrders(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	a, b := testIdentity(1), testIdentity(2)
	createTestRecord(t, s, ledger.NewRecord(a, 0, CanonicalBump))
	createTestRecord(t, s, ledger.NewRecord(b, 0, CanonicalBump))

	appendTestEntry(t, s, testEntry(a, 1, ledger.OpOpen))
	appendTestEntry(t, s, testEntry(b, 2, ledger.OpOpen))
	appendTestEntry(t, s, testEntry(a, 3, ledger.OpDeposit))

	history, err := s.History(ctx, a)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "op-1", history[0].OpID)
	assert.Equal(t, "op-3", history[1].OpID)
	assert.Equal(t, ledger.OpDeposit, history[1].Op)
	assert.Equal(t, uint64(30), history[1].Amount)
	assert.Equal(t, a, history[1].Caller)

	all, err := s.Journal(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	for i := 1; i < len(all); i++ {
		assert.Greater(t, all[i].Seq, all[i-1].Seq)
	}
}

func TestHistory_Empty(t *testing.T) {
	s := createTestStore(t)

	history, err := s.History(context.Background(), testIdentity(1))
	require.NoError(t, err)
	assert.NotNil(t, history)
	assert.Empty(t, history)
}
