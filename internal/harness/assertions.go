package harness

import (
	"context"
	"fmt"
)

// checkExpect compares a step's trace event with its expect clause.
// A nil clause requires success.
func checkExpect(event TraceEvent, expect *Expect) []string {
	if expect == nil {
		if event.Outcome != OutcomeOK {
			return []string{fmt.Sprintf("unexpected outcome %s", event.Outcome)}
		}
		return nil
	}

	if expect.Error != "" {
		if event.Outcome != expect.Error {
			return []string{fmt.Sprintf("expected outcome %s, got %s", expect.Error, event.Outcome)}
		}
		return nil
	}
	if event.Outcome != OutcomeOK {
		return []string{fmt.Sprintf("unexpected outcome %s", event.Outcome)}
	}

	var errs []string
	check := func(field string, want *uint64, got uint64) {
		if want != nil && *want != got {
			errs = append(errs, fmt.Sprintf("%s: expected %d, got %d", field, *want, got))
		}
	}
	check("staked_amount", expect.StakedAmount, event.Record.StakedAmount)
	check("total_points", expect.TotalPoints, event.Record.TotalPoints)
	check("accrued", expect.Accrued, event.Accrued)
	check("claimable", expect.Claimable, event.Claimable)
	if expect.LastUpdatedTime != nil && *expect.LastUpdatedTime != event.Record.LastUpdatedTime {
		errs = append(errs, fmt.Sprintf("last_updated_time: expected %d, got %d",
			*expect.LastUpdatedTime, event.Record.LastUpdatedTime))
	}
	return errs
}

// evaluateAssertions checks every assertion against the final state and store.
// Returns one message per failed assertion.
func (h *Harness) evaluateAssertions(ctx context.Context, assertions []Assertion, result *Result) []string {
	var errs []string
	for i, a := range assertions {
		if err := h.evaluate(ctx, a, result); err != nil {
			errs = append(errs, fmt.Sprintf("assertion %d (%s): %v", i, a.Type, err))
		}
	}
	return errs
}

func (h *Harness) evaluate(ctx context.Context, a Assertion, result *Result) error {
	switch a.Type {
	case AssertRecord:
		rec, ok := result.Final.Records[a.Owner]
		if !ok {
			return fmt.Errorf("no record for %s", a.Owner)
		}
		if a.StakedAmount != nil && *a.StakedAmount != rec.StakedAmount {
			return fmt.Errorf("staked_amount: expected %d, got %d", *a.StakedAmount, rec.StakedAmount)
		}
		if a.TotalPoints != nil && *a.TotalPoints != rec.TotalPoints {
			return fmt.Errorf("total_points: expected %d, got %d", *a.TotalPoints, rec.TotalPoints)
		}
		if a.LastUpdatedTime != nil && *a.LastUpdatedTime != rec.LastUpdatedTime {
			return fmt.Errorf("last_updated_time: expected %d, got %d", *a.LastUpdatedTime, rec.LastUpdatedTime)
		}

	case AssertBalance:
		id := h.identity(a.Account)
		if a.External != nil && *a.External != h.bank.Balance(id) {
			return fmt.Errorf("external: expected %d, got %d", *a.External, h.bank.Balance(id))
		}
		if a.Vault != nil && *a.Vault != h.bank.Vault(id) {
			return fmt.Errorf("vault: expected %d, got %d", *a.Vault, h.bank.Vault(id))
		}

	case AssertJournal:
		entries, err := h.store.History(ctx, h.identity(a.Owner))
		if err != nil {
			return err
		}
		if len(entries) != *a.Count {
			return fmt.Errorf("expected %d entries, got %d", *a.Count, len(entries))
		}

	case AssertPendingClaims:
		if result.Final.PendingClaims != *a.Count {
			return fmt.Errorf("expected %d pending claims, got %d", *a.Count, result.Final.PendingClaims)
		}

	case AssertReplay:
		report, err := h.svc.Replay(ctx)
		if err != nil {
			return err
		}
		if !report.OK() {
			return fmt.Errorf("%d replay mismatch(es), first: %+v", len(report.Mismatches), report.Mismatches[0])
		}

	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
	return nil
}
