// Package transfer provides an in-process value-transfer service.
//
// Bank keeps two balances per identity: the external (spendable) balance and
// the vault that backs that identity's stake record. Each transfer moves value
// between the two atomically under a single mutex; it either fully happens or
// returns an error without touching either balance.
package transfer

import (
	"context"
	"errors"
	"fmt"
	"math/bits"
	"sync"

	"github.com/roach88/stakeledger/internal/ledger"
)

var (
	// ErrInsufficientFunds is returned when the source balance is too small.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrBalanceOverflow is returned when the destination balance would wrap.
	ErrBalanceOverflow = errors.New("balance overflow")
)

// Bank is an in-memory ledger of external and vault balances.
//
// Thread-safety: Bank is safe for concurrent use.
type Bank struct {
	mu       sync.Mutex
	balances map[ledger.Identity]uint64
	vaults   map[ledger.Identity]uint64
}

// NewBank creates an empty bank.
func NewBank() *Bank {
	return &Bank{
		balances: make(map[ledger.Identity]uint64),
		vaults:   make(map[ledger.Identity]uint64),
	}
}

// Fund credits amount to owner's external balance.
func (b *Bank) Fund(owner ledger.Identity, amount uint64) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	sum, carry := bits.Add64(b.balances[owner], amount, 0)
	if carry != 0 {
		return fmt.Errorf("fund %s: %w", owner, ErrBalanceOverflow)
	}
	b.balances[owner] = sum
	return nil
}

// Balance returns owner's external balance.
func (b *Bank) Balance(owner ledger.Identity) uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.balances[owner]
}

// Vault returns the balance backing owner's stake record.
func (b *Bank) Vault(owner ledger.Identity) uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.vaults[owner]
}

// ToStake moves amount from owner's external balance into owner's vault.
func (b *Bank) ToStake(ctx context.Context, owner ledger.Identity, amount uint64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := move(b.balances, b.vaults, owner, amount); err != nil {
		return fmt.Errorf("transfer to stake: %w", err)
	}
	return nil
}

// FromStake moves amount from owner's vault back to owner's external balance.
func (b *Bank) FromStake(ctx context.Context, owner ledger.Identity, amount uint64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := move(b.vaults, b.balances, owner, amount); err != nil {
		return fmt.Errorf("transfer from stake: %w", err)
	}
	return nil
}

// move debits from[owner] and credits to[owner]. Both checks run before
// either map is written. Caller holds b.mu.
func move(from, to map[ledger.Identity]uint64, owner ledger.Identity, amount uint64) error {
	src := from[owner]
	if src < amount {
		return fmt.Errorf("%w: have %d, need %d", ErrInsufficientFunds, src, amount)
	}
	dst, carry := bits.Add64(to[owner], amount, 0)
	if carry != 0 {
		return ErrBalanceOverflow
	}
	from[owner] = src - amount
	to[owner] = dst
	return nil
}
