package cli

import (
	"fmt"
	"strings"

	"github.com/roach88/stakeledger/internal/ledger"
	"github.com/roach88/stakeledger/internal/service"
	"github.com/roach88/stakeledger/internal/store"
)

// receiptView renders a service.Receipt. Its JSON form is the receipt's.
type receiptView service.Receipt

func (v receiptView) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s committed (seq %d, op %s)\n", v.Op, v.Seq, v.OpID)
	writeRecord(&b, v.Record)
	fmt.Fprintf(&b, "  accrued:           %d\n", v.Accrued)
	if v.Op == ledger.OpClaim {
		fmt.Fprintf(&b, "  claimed:           %d\n", v.Claimable)
	}
	fmt.Fprintf(&b, "  state_hash:        %s", v.StateHash)
	return b.String()
}

// projectionView is the output of points --project.
type projectionView struct {
	Record    ledger.Record `json:"record"`
	Accrued   uint64        `json:"accrued"`
	Projected bool          `json:"projected"`
}

func (v projectionView) String() string {
	var b strings.Builder
	b.WriteString("projection (not persisted)\n")
	writeRecord(&b, v.Record)
	fmt.Fprintf(&b, "  accrued:           %d", v.Accrued)
	return b.String()
}

// recordView renders a stored record.
type recordView ledger.Record

func (v recordView) String() string {
	var b strings.Builder
	writeRecord(&b, ledger.Record(v))
	return strings.TrimSuffix(b.String(), "\n")
}

func writeRecord(b *strings.Builder, rec ledger.Record) {
	fmt.Fprintf(b, "  owner:             %s\n", rec.Owner)
	fmt.Fprintf(b, "  staked_amount:     %d\n", rec.StakedAmount)
	fmt.Fprintf(b, "  total_points:      %d (%d whole)\n", rec.TotalPoints, rec.TotalPoints/ledger.MicroPointsPerPoint)
	fmt.Fprintf(b, "  last_updated_time: %d\n", rec.LastUpdatedTime)
}

// historyView renders owner's journal.
type historyView struct {
	Entries []store.Entry `json:"entries"`
}

func (v historyView) String() string {
	if len(v.Entries) == 0 {
		return "No journal entries."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%-6s %-9s %-20s %-12s %-12s %s\n", "SEQ", "OP", "AMOUNT", "AT", "ACCRUED", "STATE")
	for _, e := range v.Entries {
		fmt.Fprintf(&b, "%-6d %-9s %-20d %-12d %-12d %s\n", e.Seq, e.Op, e.Amount, e.At, e.Accrued, shortHash(e.StateHash))
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// claimsView renders pending reward claims.
type claimsView struct {
	Claims []store.Claim `json:"claims"`
}

func (v claimsView) String() string {
	if len(v.Claims) == 0 {
		return "No pending claims."
	}
	var b strings.Builder
	for _, c := range v.Claims {
		fmt.Fprintf(&b, "%s  %s  %d points at %d\n", c.OpID, c.Owner, c.Claimable, c.ClaimedAt)
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// issuedView renders an acknowledged claim.
type issuedView struct {
	OpID     string `json:"op_id"`
	IssuedAt int64  `json:"issued_at"`
}

func (v issuedView) String() string {
	return fmt.Sprintf("claim %s marked issued at %d", v.OpID, v.IssuedAt)
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}
