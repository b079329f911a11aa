package ledger

import (
	"errors"
	"fmt"
)

// Error is a failure raised by an accrual or mutation step.
//
// Error includes structured fields so callers (CLI, HTTP) can map the kind to
// an exit code or status without parsing the message.
type Error struct {
	// Kind identifies the error category.
	Kind ErrorKind

	// Message is a human-readable description.
	Message string

	// Owner identifies the affected record, if known.
	Owner Identity

	// Details contains additional context (amounts, timestamps).
	Details map[string]string
}

// ErrorKind categorizes ledger errors.
type ErrorKind string

const (
	// KindInvalidAmount indicates a deposit or withdraw of zero.
	KindInvalidAmount ErrorKind = "INVALID_AMOUNT"

	// KindInsufficientStake indicates a withdrawal larger than the staked amount.
	KindInsufficientStake ErrorKind = "INSUFFICIENT_STAKE"

	// KindUnauthorized indicates the caller does not own the record.
	KindUnauthorized ErrorKind = "UNAUTHORIZED"

	// KindOverflow indicates a checked addition or multiplication wrapped.
	KindOverflow ErrorKind = "OVERFLOW"

	// KindUnderflow indicates a checked subtraction went below zero.
	KindUnderflow ErrorKind = "UNDERFLOW"

	// KindInvalidTimestamp indicates the supplied time is before the record's last update.
	KindInvalidTimestamp ErrorKind = "INVALID_TIMESTAMP"
)

// Sentinels for errors.Is. They match any *Error of the same kind.
var (
	ErrInvalidAmount     = &Error{Kind: KindInvalidAmount}
	ErrInsufficientStake = &Error{Kind: KindInsufficientStake}
	ErrUnauthorized      = &Error{Kind: KindUnauthorized}
	ErrOverflow          = &Error{Kind: KindOverflow}
	ErrUnderflow         = &Error{Kind: KindUnderflow}
	ErrInvalidTimestamp  = &Error{Kind: KindInvalidTimestamp}
)

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Kind)
	}
	if !e.Owner.IsZero() {
		return fmt.Sprintf("%s: %s (owner=%s)", e.Kind, e.Message, e.Owner)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Is reports whether target is an *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// KindOf returns the kind of the first *Error in err's chain.
// Uses errors.As to handle wrapped errors.
func KindOf(err error) (ErrorKind, bool) {
	var le *Error
	if errors.As(err, &le) {
		return le.Kind, true
	}
	return "", false
}

// IsKind returns true if err wraps a ledger error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}

func newError(kind ErrorKind, owner Identity, msg string, details map[string]string) *Error {
	return &Error{Kind: kind, Message: msg, Owner: owner, Details: details}
}

// NewUnauthorizedError creates an Error for a caller that does not own the record.
func NewUnauthorizedError(caller, owner Identity) *Error {
	return newError(KindUnauthorized, owner, "caller is not the record owner", map[string]string{
		"caller": caller.String(),
	})
}

func invalidAmountError(owner Identity) *Error {
	return newError(KindInvalidAmount, owner, "amount must be positive", nil)
}

func invalidTimestampError(owner Identity, now, last int64) *Error {
	return newError(KindInvalidTimestamp, owner,
		fmt.Sprintf("time %d is before last update %d", now, last),
		map[string]string{
			"now":               fmt.Sprintf("%d", now),
			"last_updated_time": fmt.Sprintf("%d", last),
		})
}

func insufficientStakeError(owner Identity, amount, staked uint64) *Error {
	return newError(KindInsufficientStake, owner,
		fmt.Sprintf("withdraw %d exceeds staked %d", amount, staked),
		map[string]string{
			"amount": fmt.Sprintf("%d", amount),
			"staked": fmt.Sprintf("%d", staked),
		})
}

func overflowError(what string) *Error {
	return newError(KindOverflow, Identity{}, what+" overflows uint64", nil)
}

func underflowError(what string) *Error {
	return newError(KindUnderflow, Identity{}, what+" would go negative", nil)
}

// withOwner stamps owner on a ledger error raised by an owner-agnostic helper.
func withOwner(err error, owner Identity) error {
	var le *Error
	if errors.As(err, &le) && le.Owner.IsZero() {
		cp := *le
		cp.Owner = owner
		return &cp
	}
	return err
}
