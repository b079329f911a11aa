package service

import (
	"context"
	"fmt"

	"github.com/roach88/stakeledger/internal/ledger"
	"github.com/roach88/stakeledger/internal/store"
)

// Mismatch is one disagreement found by Replay.
type Mismatch struct {
	Seq    int64           `json:"seq,omitempty"`
	OpID   string          `json:"op_id,omitempty"`
	Owner  ledger.Identity `json:"owner"`
	Field  string          `json:"field"`
	Stored string          `json:"stored"`
	Replay string          `json:"replayed"`
}

// ReplayReport summarizes a journal replay.
type ReplayReport struct {
	Entries    int        `json:"entries"`
	Owners     int        `json:"owners"`
	Mismatches []Mismatch `json:"mismatches"`
}

// OK reports whether the replay found no mismatches.
func (r ReplayReport) OK() bool {
	return len(r.Mismatches) == 0
}

// Replay re-executes the whole journal in seq order against fresh records and
// compares each recomputed state hash, and every final record, with what the
// store holds. Nothing is written.
func (s *Service) Replay(ctx context.Context) (ReplayReport, error) {
	entries, err := s.store.Journal(ctx)
	if err != nil {
		return ReplayReport{}, err
	}
	records, report := ReplayEntries(entries)

	owners, err := s.store.Owners(ctx)
	if err != nil {
		return ReplayReport{}, err
	}
	report.Owners = len(owners)

	for _, owner := range owners {
		stored, err := s.store.Get(ctx, owner)
		if err != nil {
			return ReplayReport{}, err
		}
		replayed, ok := records[owner]
		if !ok {
			report.Mismatches = append(report.Mismatches, Mismatch{
				Owner: owner, Field: "record", Stored: "present", Replay: "missing",
			})
			continue
		}
		report.Mismatches = append(report.Mismatches, compareRecords(owner, stored, replayed)...)
	}
	return report, nil
}

// ReplayEntries applies entries in order and returns the resulting records.
// Entries must already be in seq order.
func ReplayEntries(entries []store.Entry) (map[ledger.Identity]ledger.Record, ReplayReport) {
	records := make(map[ledger.Identity]ledger.Record)
	report := ReplayReport{Entries: len(entries), Mismatches: []Mismatch{}}

	for _, e := range entries {
		mismatch := func(field, stored, replayed string) {
			report.Mismatches = append(report.Mismatches, Mismatch{
				Seq: e.Seq, OpID: e.OpID, Owner: e.Owner, Field: field, Stored: stored, Replay: replayed,
			})
		}

		var res ledger.Result
		if e.Op == ledger.OpOpen {
			if _, exists := records[e.Owner]; exists {
				mismatch("op", "open", "record already open")
				continue
			}
			res.Record = ledger.NewRecord(e.Owner, e.At, store.CanonicalBump)
		} else {
			rec, ok := records[e.Owner]
			if !ok {
				mismatch("op", string(e.Op), "no open record")
				continue
			}
			var err error
			res, err = ledger.Apply(e.Op, rec, e.At, e.Amount)
			if err != nil {
				mismatch("op", string(e.Op), err.Error())
				continue
			}
		}
		records[e.Owner] = res.Record

		if res.Accrued != e.Accrued {
			mismatch("accrued", fmt.Sprint(e.Accrued), fmt.Sprint(res.Accrued))
		}
		if res.Claimable != e.Claimable {
			mismatch("claimable", fmt.Sprint(e.Claimable), fmt.Sprint(res.Claimable))
		}
		hash, err := res.Record.StateHash()
		if err != nil {
			mismatch("state_hash", e.StateHash, err.Error())
			continue
		}
		if hash != e.StateHash {
			mismatch("state_hash", e.StateHash, hash)
		}
	}
	return records, report
}

func compareRecords(owner ledger.Identity, stored, replayed ledger.Record) []Mismatch {
	var out []Mismatch
	add := func(field string, a, b any) {
		out = append(out, Mismatch{Owner: owner, Field: field, Stored: fmt.Sprint(a), Replay: fmt.Sprint(b)})
	}
	if stored.StakedAmount != replayed.StakedAmount {
		add("staked_amount", stored.StakedAmount, replayed.StakedAmount)
	}
	if stored.TotalPoints != replayed.TotalPoints {
		add("total_points", stored.TotalPoints, replayed.TotalPoints)
	}
	if stored.LastUpdatedTime != replayed.LastUpdatedTime {
		add("last_updated_time", stored.LastUpdatedTime, replayed.LastUpdatedTime)
	}
	if stored.Bump != replayed.Bump {
		add("bump", stored.Bump, replayed.Bump)
	}
	return out
}
