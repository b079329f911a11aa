package service

import (
	"errors"

	"github.com/roach88/stakeledger/internal/ledger"
	"github.com/roach88/stakeledger/internal/store"
	"github.com/roach88/stakeledger/internal/transfer"
)

// Outcome codes for failures outside the ledger error kinds.
const (
	CodeNotFound          = "NOT_FOUND"
	CodeExists            = "EXISTS"
	CodeInsufficientFunds = "INSUFFICIENT_FUNDS"
	CodeBalanceOverflow   = "BALANCE_OVERFLOW"
	CodeInternal          = "INTERNAL"
)

// Code returns the stable outcome code for a failed operation: the ledger
// error kind when there is one, otherwise one of the Code constants.
// Code(nil) is "".
func Code(err error) string {
	if err == nil {
		return ""
	}
	if kind, ok := ledger.KindOf(err); ok {
		return string(kind)
	}
	switch {
	case errors.Is(err, store.ErrNotFound):
		return CodeNotFound
	case errors.Is(err, store.ErrExists):
		return CodeExists
	case errors.Is(err, transfer.ErrInsufficientFunds):
		return CodeInsufficientFunds
	case errors.Is(err, transfer.ErrBalanceOverflow):
		return CodeBalanceOverflow
	}
	return CodeInternal
}
