package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeriveAddress(t *testing.T) {
	a := DeriveAddress(testIdentity(1), CanonicalBump)

	assert.Equal(t, a, DeriveAddress(testIdentity(1), CanonicalBump), "derivation is deterministic")
	assert.NotEqual(t, a, DeriveAddress(testIdentity(2), CanonicalBump), "owner is part of the address")
	assert.NotEqual(t, a, DeriveAddress(testIdentity(1), CanonicalBump-1), "bump is part of the address")
}
