package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/stakeledger/internal/canonical"
)

// Snapshot is the golden form of a scenario execution.
// Serialized with canonical JSON so equal runs are byte-identical.
type Snapshot struct {
	Scenario string
	Trace    []TraceEvent
	Final    FinalState
}

// toCanonicalMap converts a Snapshot to a map[string]any for canonical.Marshal.
func (s *Snapshot) toCanonicalMap() map[string]any {
	trace := make([]any, len(s.Trace))
	for i, e := range s.Trace {
		m := map[string]any{
			"seq":     e.Seq,
			"op":      e.Op,
			"owner":   e.Owner,
			"caller":  e.Caller,
			"at":      e.At,
			"outcome": e.Outcome,
		}
		if e.Op == OpDeposit || e.Op == OpWithdraw {
			m["amount"] = e.Amount
		}
		if e.Record != nil {
			m["record"] = e.Record.canonicalMap()
			m["accrued"] = e.Accrued
			m["claimable"] = e.Claimable
		}
		trace[i] = m
	}

	records := make(map[string]any, len(s.Final.Records))
	for name, rec := range s.Final.Records {
		records[name] = rec.canonicalMap()
	}
	balances := make(map[string]any, len(s.Final.Balances))
	for name, b := range s.Final.Balances {
		balances[name] = map[string]any{"external": b.External, "vault": b.Vault}
	}

	return map[string]any{
		"scenario": s.Scenario,
		"trace":    trace,
		"final": map[string]any{
			"records":        records,
			"balances":       balances,
			"pending_claims": s.Final.PendingClaims,
		},
	}
}

func (r RecordState) canonicalMap() map[string]any {
	return map[string]any{
		"staked_amount":     r.StakedAmount,
		"total_points":      r.TotalPoints,
		"last_updated_time": r.LastUpdatedTime,
	}
}

// MarshalSnapshot renders result as the canonical golden bytes for name.
func MarshalSnapshot(name string, result *Result) ([]byte, error) {
	snapshot := Snapshot{Scenario: name, Trace: result.Trace, Final: result.Final}
	return canonical.Marshal(snapshot.toCanonicalMap())
}

// RunWithGolden executes a scenario and compares the trace against a golden file.
// The golden file is stored in testdata/golden/{scenario.Name}.golden
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if the snapshot doesn't match the golden file.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result against its golden file.
func AssertGolden(t *testing.T, name string, result *Result) error {
	t.Helper()

	data, err := MarshalSnapshot(name, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, data)
	return nil
}
