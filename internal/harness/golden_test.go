package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalSnapshot_OmitsResultOnFailure(t *testing.T) {
	result := NewResult()
	result.Trace = []TraceEvent{
		{Seq: 1, Op: OpClaim, Owner: "alice", Caller: "bob", At: 5, Outcome: "UNAUTHORIZED"},
	}

	data, err := MarshalSnapshot("s", result)
	require.NoError(t, err)
	assert.Equal(t,
		`{"final":{"balances":{},"pending_claims":0,"records":{}},"scenario":"s","trace":[{"at":5,"caller":"bob","op":"claim","outcome":"UNAUTHORIZED","owner":"alice","seq":1}]}`,
		string(data))
}

func TestMarshalSnapshot_AmountOnlyForTransfers(t *testing.T) {
	result := NewResult()
	rec := &RecordState{StakedAmount: 3, TotalPoints: 2, LastUpdatedTime: 1}
	result.Trace = []TraceEvent{
		{Seq: 1, Op: OpDeposit, Owner: "a", Caller: "a", Amount: 3, Outcome: OutcomeOK, Record: rec},
		{Seq: 2, Op: OpQuery, Owner: "a", Caller: "a", Outcome: OutcomeOK, Record: rec, Accrued: 2},
	}

	data, err := MarshalSnapshot("s", result)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"amount":3,"at":0`)
	assert.Contains(t, string(data), `{"accrued":2,"at":0,"caller":"a","claimable":0,"op":"query"`)
}
