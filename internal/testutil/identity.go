// Package testutil holds deterministic helpers shared by tests and the
// scenario harness.
package testutil

import (
	"golang.org/x/crypto/blake2b"

	"github.com/roach88/stakeledger/internal/ledger"
)

// identityDomain separates named test identities from any other blake2b use.
const identityDomain = "stakeledger/test-identity/v1:"

// Identity derives a stable identity from a human-readable name, so
// scenarios and golden traces can say "alice" instead of 64 hex characters.
//
// The same name always yields the same identity, in every process.
func Identity(name string) ledger.Identity {
	return ledger.Identity(blake2b.Sum256([]byte(identityDomain + name)))
}

// Identities maps each name to its Identity.
func Identities(names ...string) map[string]ledger.Identity {
	out := make(map[string]ledger.Identity, len(names))
	for _, n := range names {
		out[n] = Identity(n)
	}
	return out
}
