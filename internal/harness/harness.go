package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"

	"github.com/roach88/stakeledger/internal/clock"
	"github.com/roach88/stakeledger/internal/ledger"
	"github.com/roach88/stakeledger/internal/service"
	"github.com/roach88/stakeledger/internal/store"
	"github.com/roach88/stakeledger/internal/testutil"
	"github.com/roach88/stakeledger/internal/transfer"
)

// Harness holds the per-scenario runtime.
type Harness struct {
	store *store.Store
	svc   *service.Service
	bank  *transfer.Bank
	clock *clock.Manual
	names map[string]ledger.Identity
}

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation.
// Execution flow:
//  1. Create fresh store, bank, clock and op ID sequence
//  2. Fund accounts
//  3. Execute steps, checking expect clauses
//  4. Capture final state and evaluate assertions
//
// The returned error is reserved for infrastructure failures; a failing
// expectation is reported through Result.Pass and Result.Errors.
func Run(scenario *Scenario) (*Result, error) {
	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	h := &Harness{
		store: st,
		bank:  transfer.NewBank(),
		clock: clock.NewManual(scenario.Start),
		names: make(map[string]ledger.Identity),
	}
	h.svc = service.New(st, h.bank,
		service.WithClock(h.clock),
		service.WithIDGenerator(service.NewSequenceGenerator("op")),
		service.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))), // Suppress logs in tests
	)

	for _, name := range sortedNames(scenario.Accounts) {
		if err := h.bank.Fund(h.identity(name), scenario.Accounts[name]); err != nil {
			return nil, fmt.Errorf("fund %s: %w", name, err)
		}
	}

	ctx := context.Background()
	result := NewResult()
	for i, step := range scenario.Steps {
		event, err := h.execute(ctx, i+1, step)
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i+1, err)
		}
		result.Trace = append(result.Trace, event)
		for _, msg := range checkExpect(event, step.Expect) {
			result.AddError(fmt.Sprintf("step %d (%s %s): %s", i+1, step.Op, step.Owner, msg))
		}
	}

	if err := h.captureFinal(ctx, scenario, result); err != nil {
		return nil, fmt.Errorf("capture final state: %w", err)
	}
	for _, msg := range h.evaluateAssertions(ctx, scenario.Assertions, result) {
		result.AddError(msg)
	}
	return result, nil
}

// execute runs one step and returns its trace event. Operation failures are
// outcomes, not errors.
func (h *Harness) execute(ctx context.Context, seq int, step Step) (TraceEvent, error) {
	if step.At != nil {
		h.clock.Set(*step.At)
	}
	callerName := step.Caller
	if callerName == "" {
		callerName = step.Owner
	}
	owner, caller := h.identity(step.Owner), h.identity(callerName)

	event := TraceEvent{
		Seq:    seq,
		Op:     step.Op,
		Owner:  step.Owner,
		Caller: callerName,
		At:     h.clock.Now(),
	}
	if step.Op == OpDeposit || step.Op == OpWithdraw {
		event.Amount = step.Amount
	}

	var (
		res ledger.Result
		err error
	)
	switch step.Op {
	case OpOpen:
		res, err = receiptResult(h.svc.Open(ctx, caller, owner))
	case OpDeposit:
		res, err = receiptResult(h.svc.Deposit(ctx, caller, owner, step.Amount))
	case OpWithdraw:
		res, err = receiptResult(h.svc.Withdraw(ctx, caller, owner, step.Amount))
	case OpClaim:
		res, err = receiptResult(h.svc.Claim(ctx, caller, owner))
	case OpQuery:
		res, err = receiptResult(h.svc.Points(ctx, caller, owner))
	case OpProject:
		res, err = h.svc.Projection(ctx, owner)
	default:
		return TraceEvent{}, fmt.Errorf("unknown op %q", step.Op)
	}

	event.Outcome = Outcome(err)
	if event.Outcome == OutcomeError {
		return TraceEvent{}, err
	}
	if err == nil {
		event.Record = recordState(res.Record)
		event.Accrued = res.Accrued
		event.Claimable = res.Claimable
	}
	return event, nil
}

// OutcomeError is reported for failures that are not part of the stake
// model (I/O, corruption). The harness aborts on these.
const OutcomeError = "ERROR"

// Outcome maps an operation error to its trace code.
func Outcome(err error) string {
	if err == nil {
		return OutcomeOK
	}
	if code := service.Code(err); code != service.CodeInternal {
		return code
	}
	return OutcomeError
}

func (h *Harness) captureFinal(ctx context.Context, scenario *Scenario, result *Result) error {
	for name, id := range h.names {
		rec, err := h.store.Get(ctx, id)
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			return err
		}
		result.Final.Records[name] = *recordState(rec)
	}
	for name := range scenario.Accounts {
		id := h.identity(name)
		result.Final.Balances[name] = Balance{External: h.bank.Balance(id), Vault: h.bank.Vault(id)}
	}
	pending, err := h.store.PendingClaims(ctx)
	if err != nil {
		return err
	}
	result.Final.PendingClaims = len(pending)
	return nil
}

func (h *Harness) identity(name string) ledger.Identity {
	id, ok := h.names[name]
	if !ok {
		id = testutil.Identity(name)
		h.names[name] = id
	}
	return id
}

func receiptResult(r service.Receipt, err error) (ledger.Result, error) {
	return ledger.Result{Record: r.Record, Accrued: r.Accrued, Claimable: r.Claimable}, err
}

func recordState(rec ledger.Record) *RecordState {
	return &RecordState{
		StakedAmount:    rec.StakedAmount,
		TotalPoints:     rec.TotalPoints,
		LastUpdatedTime: rec.LastUpdatedTime,
	}
}

func sortedNames[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for n := range m {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
