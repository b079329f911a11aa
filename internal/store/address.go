package store

import (
	"golang.org/x/crypto/blake2b"

	"github.com/roach88/stakeledger/internal/ledger"
)

// AddressNamespace is the fixed tag that scopes stake-record addresses.
const AddressNamespace = "stake"

// CanonicalBump is the bump byte assigned to every new record.
const CanonicalBump uint8 = 255

// Address is the derived storage location of a stake record.
type Address [32]byte

// DeriveAddress returns blake2b-256(AddressNamespace || owner || bump).
// The mapping is deterministic, so any party holding the owner identity and
// bump can recompute where the record lives.
func DeriveAddress(owner ledger.Identity, bump uint8) Address {
	buf := make([]byte, 0, len(AddressNamespace)+ledger.IdentitySize+1)
	buf = append(buf, AddressNamespace...)
	buf = append(buf, owner[:]...)
	buf = append(buf, bump)
	return blake2b.Sum256(buf)
}
