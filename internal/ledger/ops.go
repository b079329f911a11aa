package ledger

import "fmt"

// Op names a ledger operation.
type Op string

const (
	OpOpen     Op = "open"
	OpDeposit  Op = "deposit"
	OpWithdraw Op = "withdraw"
	OpClaim    Op = "claim"
	OpQuery    Op = "query"
)

// ParseOp validates an operation name.
func ParseOp(s string) (Op, error) {
	switch op := Op(s); op {
	case OpOpen, OpDeposit, OpWithdraw, OpClaim, OpQuery:
		return op, nil
	}
	return "", fmt.Errorf("unknown operation %q", s)
}

// Result is the outcome of applying one operation to a record.
type Result struct {
	// Record is the settled and mutated record.
	Record Record

	// Accrued is the micro-points added by settlement.
	Accrued uint64

	// Claimable is the whole points released by a claim. Zero for other ops.
	Claimable uint64
}

// Settle brings rec's points up to date at now.
//
// Points for the elapsed interval are added with checked addition and
// LastUpdatedTime is set to now even when nothing accrued, so repeated
// settlement at the same instant is a no-op for points.
func Settle(rec Record, now int64) (Result, error) {
	if now < rec.LastUpdatedTime {
		return Result{}, invalidTimestampError(rec.Owner, now, rec.LastUpdatedTime)
	}
	// now >= last, so the unsigned difference is exact even across the int64 sign boundary.
	elapsed := uint64(now) - uint64(rec.LastUpdatedTime)

	var delta uint64
	if elapsed > 0 && rec.StakedAmount > 0 {
		var err error
		delta, err = Points(rec.StakedAmount, elapsed)
		if err != nil {
			return Result{}, withOwner(err, rec.Owner)
		}
		rec.TotalPoints, err = AddPoints(rec.TotalPoints, delta)
		if err != nil {
			return Result{}, withOwner(err, rec.Owner)
		}
	}
	rec.LastUpdatedTime = now

	return Result{Record: rec, Accrued: delta}, nil
}

// Deposit settles rec and adds amount to its stake.
//
// The caller must move amount into the record's backing balance before it
// persists the returned record; the checked addition has already succeeded by
// then, so a completed transfer is never followed by an arithmetic failure.
func Deposit(rec Record, now int64, amount uint64) (Result, error) {
	if amount == 0 {
		return Result{}, invalidAmountError(rec.Owner)
	}
	res, err := Settle(rec, now)
	if err != nil {
		return Result{}, err
	}
	res.Record.StakedAmount, err = AddStake(res.Record.StakedAmount, amount)
	if err != nil {
		return Result{}, withOwner(err, rec.Owner)
	}
	return res, nil
}

// Withdraw settles rec and removes amount from its stake.
func Withdraw(rec Record, now int64, amount uint64) (Result, error) {
	if amount == 0 {
		return Result{}, invalidAmountError(rec.Owner)
	}
	res, err := Settle(rec, now)
	if err != nil {
		return Result{}, err
	}
	if amount > res.Record.StakedAmount {
		return Result{}, insufficientStakeError(rec.Owner, amount, res.Record.StakedAmount)
	}
	res.Record.StakedAmount, err = SubStake(res.Record.StakedAmount, amount)
	if err != nil {
		return Result{}, withOwner(err, rec.Owner)
	}
	return res, nil
}

// Claim settles rec, reports its whole points and resets TotalPoints to 0.
//
// This is a destructive read. The sub-point remainder is discarded with the
// reset; the caller is responsible for issuing Result.Claimable.
func Claim(rec Record, now int64) (Result, error) {
	res, err := Settle(rec, now)
	if err != nil {
		return Result{}, err
	}
	res.Claimable = Claimable(res.Record.TotalPoints)
	res.Record.TotalPoints = 0
	return res, nil
}

// Query settles rec without any further effect.
func Query(rec Record, now int64) (Result, error) {
	return Settle(rec, now)
}

// Apply dispatches op against rec. OpOpen is not a mutation and is rejected.
func Apply(op Op, rec Record, now int64, amount uint64) (Result, error) {
	switch op {
	case OpDeposit:
		return Deposit(rec, now, amount)
	case OpWithdraw:
		return Withdraw(rec, now, amount)
	case OpClaim:
		return Claim(rec, now)
	case OpQuery:
		return Query(rec, now)
	}
	return Result{}, fmt.Errorf("apply: %q is not a record mutation", op)
}
