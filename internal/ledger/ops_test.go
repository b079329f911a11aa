package ledger

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var alice = Identity{0xa1}

// encode returns the binary layout of rec so tests can compare byte-for-byte.
func encode(t *testing.T, rec Record) []byte {
	t.Helper()
	data, err := rec.MarshalBinary()
	require.NoError(t, err)
	return data
}

func TestSettle_SetsTimestampEvenWithoutAccrual(t *testing.T) {
	rec := NewRecord(alice, 100, 255)

	res, err := Settle(rec, 150)
	require.NoError(t, err)
	assert.Equal(t, int64(150), res.Record.LastUpdatedTime)
	assert.Equal(t, uint64(0), res.Accrued)
	assert.Equal(t, uint64(0), res.Record.TotalPoints)
}

func TestSettle_SameInstantIsIdempotent(t *testing.T) {
	rec := Record{Owner: alice, StakedAmount: 5_000_000_000, LastUpdatedTime: 0}

	first, err := Settle(rec, SecondsPerDay)
	require.NoError(t, err)
	second, err := Settle(first.Record, SecondsPerDay)
	require.NoError(t, err)

	assert.Equal(t, uint64(5_000_000), first.Record.TotalPoints)
	assert.Equal(t, first.Record, second.Record)
	assert.Equal(t, uint64(0), second.Accrued)
}

func TestSettle_BackwardTimeFails(t *testing.T) {
	rec := Record{Owner: alice, StakedAmount: 1, LastUpdatedTime: 1_000}

	_, err := Settle(rec, 999)
	require.Error(t, err)
	assert.True(t, IsKind(err, KindInvalidTimestamp))

	var le *Error
	require.ErrorAs(t, err, &le)
	assert.Equal(t, alice, le.Owner)
	assert.Equal(t, "999", le.Details["now"])
}

func TestSettle_SpansNegativeTimestamps(t *testing.T) {
	rec := Record{Owner: alice, StakedAmount: UnitsPerWhole, LastUpdatedTime: -SecondsPerDay / 2}

	res, err := Settle(rec, SecondsPerDay/2)
	require.NoError(t, err)
	assert.Equal(t, uint64(PointsPerUnitPerDay), res.Accrued)
}

func TestSettle_PointsOverflow(t *testing.T) {
	rec := Record{Owner: alice, StakedAmount: UnitsPerWhole, TotalPoints: math.MaxUint64, LastUpdatedTime: 0}

	_, err := Settle(rec, SecondsPerDay)
	require.Error(t, err)
	assert.True(t, IsKind(err, KindOverflow))

	var le *Error
	require.ErrorAs(t, err, &le)
	assert.Equal(t, alice, le.Owner, "owner should be stamped on helper errors")
}

func TestDeposit(t *testing.T) {
	rec := NewRecord(alice, 0, 255)

	res, err := Deposit(rec, 0, 5_000_000_000)
	require.NoError(t, err)
	assert.Equal(t, uint64(5_000_000_000), res.Record.StakedAmount)

	// Query one day later: 5 whole units for one day is exactly 5 whole points.
	q, err := Query(res.Record, SecondsPerDay)
	require.NoError(t, err)
	assert.Equal(t, uint64(5_000_000), q.Record.TotalPoints)
	assert.Equal(t, uint64(5_000_000), q.Accrued)
}

func TestDeposit_SettlesBeforeAddingStake(t *testing.T) {
	rec := NewRecord(alice, 0, 255)

	res, err := Deposit(rec, 0, UnitsPerWhole)
	require.NoError(t, err)

	// Second deposit half a day later accrues on the first deposit only.
	res, err = Deposit(res.Record, 43_200, UnitsPerWhole)
	require.NoError(t, err)
	assert.Equal(t, uint64(500_000), res.Accrued)
	assert.Equal(t, uint64(500_000), res.Record.TotalPoints)
	assert.Equal(t, uint64(2*UnitsPerWhole), res.Record.StakedAmount)

	// Another half day accrues on the combined amount.
	res, err = Query(res.Record, SecondsPerDay)
	require.NoError(t, err)
	assert.Equal(t, uint64(1_000_000), res.Accrued)
	assert.Equal(t, uint64(1_500_000), res.Record.TotalPoints)
}

func TestDeposit_StakeOverflow(t *testing.T) {
	rec := Record{Owner: alice, StakedAmount: math.MaxUint64}

	_, err := Deposit(rec, 0, 1)
	require.Error(t, err)
	assert.True(t, IsKind(err, KindOverflow))
}

func TestWithdraw(t *testing.T) {
	rec := Record{Owner: alice, StakedAmount: 3 * UnitsPerWhole}

	res, err := Withdraw(rec, SecondsPerDay, UnitsPerWhole)
	require.NoError(t, err)
	assert.Equal(t, uint64(2*UnitsPerWhole), res.Record.StakedAmount)
	// Accrual uses the pre-withdraw amount.
	assert.Equal(t, uint64(3_000_000), res.Record.TotalPoints)

	res, err = Withdraw(res.Record, SecondsPerDay, 2*UnitsPerWhole)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), res.Record.StakedAmount)
}

func TestWithdraw_InsufficientStakeLeavesRecordUnchanged(t *testing.T) {
	rec := Record{Owner: alice, StakedAmount: 10, TotalPoints: 7, LastUpdatedTime: 5, Bump: 255}
	before := encode(t, rec)

	_, err := Withdraw(rec, 10, 11)
	require.Error(t, err)
	assert.True(t, IsKind(err, KindInsufficientStake))
	assert.Equal(t, before, encode(t, rec))
}

func TestZeroAmountFails(t *testing.T) {
	rec := Record{Owner: alice, StakedAmount: 10, TotalPoints: 7, LastUpdatedTime: 5, Bump: 255}
	before := encode(t, rec)

	for _, op := range []Op{OpDeposit, OpWithdraw} {
		t.Run(string(op), func(t *testing.T) {
			_, err := Apply(op, rec, 10, 0)
			require.Error(t, err)
			assert.True(t, IsKind(err, KindInvalidAmount))
			assert.Equal(t, before, encode(t, rec))
		})
	}
}

func TestClaim(t *testing.T) {
	rec := Record{Owner: alice, StakedAmount: 0, TotalPoints: 5_999_999, LastUpdatedTime: 0}

	res, err := Claim(rec, 10)
	require.NoError(t, err)
	assert.Equal(t, uint64(5), res.Claimable)
	assert.Equal(t, uint64(0), res.Record.TotalPoints)
	assert.Equal(t, int64(10), res.Record.LastUpdatedTime)
}

func TestClaim_SettlesFirst(t *testing.T) {
	rec := Record{Owner: alice, StakedAmount: 2 * UnitsPerWhole, TotalPoints: 0, LastUpdatedTime: 0}

	res, err := Claim(rec, SecondsPerDay)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), res.Claimable)
	assert.Equal(t, uint64(2_000_000), res.Accrued)
	assert.Equal(t, uint64(0), res.Record.TotalPoints)
}

func TestInvalidTimestamp_AllOperations(t *testing.T) {
	rec := Record{Owner: alice, StakedAmount: 10, TotalPoints: 7, LastUpdatedTime: 500, Bump: 255}
	before := encode(t, rec)

	for _, op := range []Op{OpDeposit, OpWithdraw, OpClaim, OpQuery} {
		t.Run(string(op), func(t *testing.T) {
			_, err := Apply(op, rec, 499, 1)
			require.Error(t, err)
			assert.True(t, IsKind(err, KindInvalidTimestamp))
			assert.Equal(t, before, encode(t, rec))
		})
	}
}

func TestDepositWithdrawSequence_TracksNet(t *testing.T) {
	type step struct {
		op     Op
		amount uint64
	}
	steps := []step{
		{OpDeposit, 100}, {OpDeposit, 250}, {OpWithdraw, 50},
		{OpDeposit, 1}, {OpWithdraw, 301}, {OpDeposit, 7},
	}

	rec := NewRecord(alice, 0, 255)
	var deposited, withdrawn uint64
	for i, s := range steps {
		res, err := Apply(s.op, rec, int64(i*60), s.amount)
		require.NoError(t, err, "step %d", i)
		rec = res.Record
		if s.op == OpDeposit {
			deposited += s.amount
		} else {
			withdrawn += s.amount
		}
		assert.Equal(t, deposited-withdrawn, rec.StakedAmount, "step %d", i)
	}
	assert.Equal(t, uint64(7), rec.StakedAmount)
}

func TestApply_RejectsOpen(t *testing.T) {
	_, err := Apply(OpOpen, NewRecord(alice, 0, 255), 0, 0)
	assert.Error(t, err)
}

func TestParseOp(t *testing.T) {
	op, err := ParseOp("withdraw")
	require.NoError(t, err)
	assert.Equal(t, OpWithdraw, op)

	_, err = ParseOp("slash")
	assert.Error(t, err)
}
