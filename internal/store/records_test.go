package store

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/stakeledger/internal/ledger"
)

func TestCreateRecord_DuplicateOwner(t *testing.T) {
	s := createTestStore(t)
	owner := testIdentity(1)
	createTestRecord(t, s, ledger.NewRecord(owner, 0, CanonicalBump))

	err := s.Update(context.Background(), func(ctx context.Context, tx *Tx) error {
		return tx.CreateRecord(ctx, ledger.NewRecord(owner, 5, CanonicalBump))
	})
	assert.ErrorIs(t, err, ErrExists)
}

func TestSaveRecord_RoundTripsFullUint64Range(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	owner := testIdentity(2)
	createTestRecord(t, s, ledger.NewRecord(owner, 0, CanonicalBump))

	want := ledger.Record{
		Owner:           owner,
		StakedAmount:    math.MaxUint64,
		TotalPoints:     math.MaxUint64 - 1,
		LastUpdatedTime: math.MaxInt64,
		Bump:            CanonicalBump,
	}
	require.NoError(t, s.Update(ctx, func(ctx context.Context, tx *Tx) error {
		return tx.SaveRecord(ctx, want)
	}))

	got, err := s.Get(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestSaveRecord_Missing(t *testing.T) {
	s := createTestStore(t)

	err := s.Update(context.Background(), func(ctx context.Context, tx *Tx) error {
		return tx.SaveRecord(ctx, ledger.NewRecord(testIdentity(9), 0, CanonicalBump))
	})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGet_Missing(t *testing.T) {
	s := createTestStore(t)

	_, err := s.Get(context.Background(), testIdentity(1))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGet_DetectsAddressMismatch(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	owner := testIdentity(4)
	createTestRecord(t, s, ledger.NewRecord(owner, 0, CanonicalBump))

	_, err := s.db.Exec(`UPDATE stake_records SET bump = 254 WHERE owner = ?`, owner[:])
	require.NoError(t, err)

	_, err = s.Get(ctx, owner)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not match derivation")
}

func TestOwners_Sorted(t *testing.T) {
	s := createTestStore(t)
	for _, b := range []byte{3, 1, 2} {
		createTestRecord(t, s, ledger.NewRecord(testIdentity(b), 0, CanonicalBump))
	}

	owners, err := s.Owners(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []ledger.Identity{testIdentity(1), testIdentity(2), testIdentity(3)}, owners)
}

func TestOwners_Empty(t *testing.T) {
	s := createTestStore(t)

	owners, err := s.Owners(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, owners)
	assert.Empty(t, owners)
}
