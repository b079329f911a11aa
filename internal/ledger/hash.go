package ledger

import "github.com/roach88/stakeledger/internal/canonical"

// CanonicalMap returns r as a map suitable for canonical.Marshal.
func (r Record) CanonicalMap() map[string]any {
	return map[string]any{
		"owner":             r.Owner.String(),
		"staked_amount":     r.StakedAmount,
		"total_points":      r.TotalPoints,
		"last_updated_time": r.LastUpdatedTime,
		"bump":              r.Bump,
	}
}

// StateHash is the content hash of r. Equal records hash equally across processes.
func (r Record) StateHash() (string, error) {
	return canonical.Hash(canonical.DomainRecord, r.CanonicalMap())
}
