package ledger

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"strings"
)

// IdentitySize is the fixed width of an owner identity in bytes.
const IdentitySize = 32

// RecordSize is the length of a binary-encoded Record:
// owner(32) | staked(8) | points(8) | last_updated(8) | bump(1), little-endian.
const RecordSize = IdentitySize + 8 + 8 + 8 + 1

// Identity is the fixed-width identity of a record owner or caller.
type Identity [IdentitySize]byte

// ParseIdentity decodes a 64-character hex identity. A leading "0x" is accepted.
func ParseIdentity(s string) (Identity, error) {
	var id Identity
	s = strings.TrimPrefix(strings.TrimSpace(s), "0x")
	if len(s) != hex.EncodedLen(IdentitySize) {
		return id, fmt.Errorf("identity must be %d hex characters, got %d", hex.EncodedLen(IdentitySize), len(s))
	}
	if _, err := hex.Decode(id[:], []byte(s)); err != nil {
		return id, fmt.Errorf("identity: %w", err)
	}
	return id, nil
}

// String returns the lowercase hex encoding without prefix.
func (id Identity) String() string {
	return hex.EncodeToString(id[:])
}

// IsZero reports whether id is the all-zero identity.
func (id Identity) IsZero() bool {
	return id == Identity{}
}

// MarshalText implements encoding.TextMarshaler.
func (id Identity) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *Identity) UnmarshalText(text []byte) error {
	parsed, err := ParseIdentity(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// Record is the per-identity stake ledger entry.
type Record struct {
	// Owner controls the record. Immutable after creation.
	Owner Identity `json:"owner"`

	// StakedAmount is the net deposited balance in smallest units.
	StakedAmount uint64 `json:"staked_amount"`

	// TotalPoints is the accrued, unclaimed balance in micro-points.
	TotalPoints uint64 `json:"total_points"`

	// LastUpdatedTime is the unix second of the last settlement. Never decreases.
	LastUpdatedTime int64 `json:"last_updated_time"`

	// Bump is the address-derivation tag. Opaque to the accrual engine.
	Bump uint8 `json:"bump"`
}

// NewRecord returns an empty record for owner created at now.
func NewRecord(owner Identity, now int64, bump uint8) Record {
	return Record{
		Owner:           owner,
		LastUpdatedTime: now,
		Bump:            bump,
	}
}

// MarshalBinary encodes r into its fixed RecordSize layout.
func (r Record) MarshalBinary() ([]byte, error) {
	buf := make([]byte, RecordSize)
	copy(buf, r.Owner[:])
	off := IdentitySize
	binary.LittleEndian.PutUint64(buf[off:], r.StakedAmount)
	off += 8
	binary.LittleEndian.PutUint64(buf[off:], r.TotalPoints)
	off += 8
	binary.LittleEndian.PutUint64(buf[off:], uint64(r.LastUpdatedTime))
	off += 8
	buf[off] = r.Bump
	return buf, nil
}

// UnmarshalBinary decodes the layout written by MarshalBinary.
func (r *Record) UnmarshalBinary(data []byte) error {
	if len(data) != RecordSize {
		return fmt.Errorf("record: expected %d bytes, got %d", RecordSize, len(data))
	}
	copy(r.Owner[:], data[:IdentitySize])
	off := IdentitySize
	r.StakedAmount = binary.LittleEndian.Uint64(data[off:])
	off += 8
	r.TotalPoints = binary.LittleEndian.Uint64(data[off:])
	off += 8
	r.LastUpdatedTime = int64(binary.LittleEndian.Uint64(data[off:]))
	off += 8
	r.Bump = data[off]
	return nil
}
