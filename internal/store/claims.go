package store

import (
	"context"
	"fmt"

	"github.com/roach88/stakeledger/internal/ledger"
)

// Claim is a claimed reward waiting to be issued by the rewards system.
type Claim struct {
	OpID      string          `json:"op_id"`
	Owner     ledger.Identity `json:"owner"`
	Claimable uint64          `json:"claimable"`
	ClaimedAt int64           `json:"claimed_at"`
}

// EnqueueClaim records c in the outbox. The journal entry for c.OpID must
// already exist in the same transaction.
func (t *Tx) EnqueueClaim(ctx context.Context, c Claim) error {
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO reward_claims (op_id, owner, claimable, claimed_at)
		VALUES (?, ?, ?, ?)
	`,
		c.OpID,
		c.Owner[:],
		int64(c.Claimable),
		c.ClaimedAt,
	)
	if err != nil {
		return fmt.Errorf("enqueue claim: %w", err)
	}
	return nil
}

// PendingClaims returns unissued claims in claim order.
func (s *Store) PendingClaims(ctx context.Context) ([]Claim, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.op_id, c.owner, c.claimable, c.claimed_at
		FROM reward_claims c
		JOIN journal j ON j.op_id = c.op_id
		WHERE c.issued_at IS NULL
		ORDER BY j.seq ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query pending claims: %w", err)
	}
	defer rows.Close()

	claims := []Claim{}
	for rows.Next() {
		var (
			c         Claim
			owner     []byte
			claimable int64
		)
		if err := rows.Scan(&c.OpID, &owner, &claimable, &c.ClaimedAt); err != nil {
			return nil, fmt.Errorf("scan claim: %w", err)
		}
		if c.Owner, err = identityFromBytes(owner); err != nil {
			return nil, fmt.Errorf("scan claim %s: %w", c.OpID, err)
		}
		c.Claimable = uint64(claimable)
		claims = append(claims, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate claims: %w", err)
	}
	return claims, nil
}

// MarkIssued flags the claim for opID as issued at the given time.
// Returns ErrNotFound if there is no pending claim for opID.
func (s *Store) MarkIssued(ctx context.Context, opID string, issuedAt int64) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE reward_claims SET issued_at = ?
		WHERE op_id = ? AND issued_at IS NULL
	`, issuedAt, opID)
	if err != nil {
		return fmt.Errorf("mark issued: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark issued: rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("mark issued %s: %w", opID, ErrNotFound)
	}
	return nil
}
