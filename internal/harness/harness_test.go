package harness

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func u64(v uint64) *uint64 { return &v }
func i64(v int64) *int64   { return &v }
func count(v int) *int     { return &v }

func TestRun_MinimalScenario(t *testing.T) {
	scenario := &Scenario{
		Name:        "minimal",
		Description: "Open a record",
		Steps:       []Step{{Op: OpOpen, Owner: "alice"}},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	require.Len(t, result.Trace, 1)
	assert.Equal(t, OutcomeOK, result.Trace[0].Outcome)
	assert.Equal(t, "alice", result.Trace[0].Caller, "caller defaults to owner")
	assert.Contains(t, result.Final.Records, "alice")
}

func TestRun_ExpectMismatchFails(t *testing.T) {
	scenario := &Scenario{
		Name:        "mismatch",
		Description: "Wrong expectation",
		Accounts:    map[string]uint64{"alice": 10},
		Steps: []Step{
			{Op: OpOpen, Owner: "alice"},
			{Op: OpDeposit, Owner: "alice", Amount: 10, Expect: &Expect{StakedAmount: u64(11)}},
			{Op: OpWithdraw, Owner: "alice", Amount: 1, Expect: &Expect{Error: "INSUFFICIENT_STAKE"}},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 2)
	assert.Contains(t, result.Errors[0], "staked_amount: expected 11, got 10")
	assert.Contains(t, result.Errors[1], "expected outcome INSUFFICIENT_STAKE, got ok")
}

func TestRun_UnexpectedFailure(t *testing.T) {
	scenario := &Scenario{
		Name:        "unexpected",
		Description: "Deposit without a record",
		Steps:       []Step{{Op: OpDeposit, Owner: "alice", Amount: 1}},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	assert.Equal(t, "NOT_FOUND", result.Trace[0].Outcome)
	assert.Nil(t, result.Trace[0].Record)
}

func TestRun_StartAndAt(t *testing.T) {
	scenario := &Scenario{
		Name:        "clock",
		Description: "Clock handling",
		Start:       1000,
		Steps: []Step{
			{Op: OpOpen, Owner: "alice"},
			{Op: OpQuery, Owner: "alice", At: i64(2000)},
			{Op: OpQuery, Owner: "alice"},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Equal(t, int64(1000), result.Trace[0].At)
	assert.Equal(t, int64(2000), result.Trace[1].At)
	assert.Equal(t, int64(2000), result.Trace[2].At, "at persists across steps")
}

func TestRun_Assertions(t *testing.T) {
	scenario := &Scenario{
		Name:        "assertions",
		Description: "Assertion evaluation",
		Accounts:    map[string]uint64{"alice": 100},
		Steps: []Step{
			{Op: OpOpen, Owner: "alice"},
			{Op: OpDeposit, Owner: "alice", Amount: 40},
		},
		Assertions: []Assertion{
			{Type: AssertRecord, Owner: "alice", StakedAmount: u64(40)},
			{Type: AssertBalance, Account: "alice", External: u64(60), Vault: u64(40)},
			{Type: AssertJournal, Owner: "alice", Count: count(2)},
			{Type: AssertPendingClaims, Count: count(0)},
			{Type: AssertReplay},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)

	scenario.Assertions = []Assertion{
		{Type: AssertRecord, Owner: "bob"},
		{Type: AssertBalance, Account: "alice", Vault: u64(41)},
		{Type: AssertJournal, Owner: "alice", Count: count(3)},
	}
	result, err = Run(scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	assert.Len(t, result.Errors, 3)
}

func TestScenarios_Golden(t *testing.T) {
	files, err := filepath.Glob("testdata/scenarios/*.yaml")
	require.NoError(t, err)
	require.NotEmpty(t, files)

	for _, file := range files {
		t.Run(filepath.Base(file), func(t *testing.T) {
			scenario, err := LoadScenario(file)
			require.NoError(t, err)

			result, err := RunWithGolden(t, scenario)
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
		})
	}
}

func TestRun_Deterministic(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/half_day_deposits.yaml")
	require.NoError(t, err)

	first, err := Run(scenario)
	require.NoError(t, err)
	second, err := Run(scenario)
	require.NoError(t, err)

	a, err := MarshalSnapshot(scenario.Name, first)
	require.NoError(t, err)
	b, err := MarshalSnapshot(scenario.Name, second)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}
