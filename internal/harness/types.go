package harness

// RecordState is the observable part of a stake record.
type RecordState struct {
	StakedAmount    uint64 `json:"staked_amount"`
	TotalPoints     uint64 `json:"total_points"`
	LastUpdatedTime int64  `json:"last_updated_time"`
}

// Balance is an account's position in the bank.
type Balance struct {
	External uint64 `json:"external"`
	Vault    uint64 `json:"vault"`
}

// TraceEvent is the outcome of one step.
type TraceEvent struct {
	Seq     int    `json:"seq"`
	Op      string `json:"op"`
	Owner   string `json:"owner"`
	Caller  string `json:"caller"`
	At      int64  `json:"at"`
	Amount  uint64 `json:"amount,omitempty"`
	Outcome string `json:"outcome"`

	// Set only when Outcome is OutcomeOK.
	Record    *RecordState `json:"record,omitempty"`
	Accrued   uint64       `json:"accrued,omitempty"`
	Claimable uint64       `json:"claimable,omitempty"`
}

// FinalState is the state left after the last step.
type FinalState struct {
	Records       map[string]RecordState `json:"records"`
	Balances      map[string]Balance     `json:"balances"`
	PendingClaims int                    `json:"pending_claims"`
}

// OutcomeOK marks a successful step.
const OutcomeOK = "ok"

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true if every expect clause and assertion held.
	Pass bool `json:"pass"`

	// Trace has one event per step, in order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains validation error messages. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Final is the state after the last step.
	Final FinalState `json:"final"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
		Final: FinalState{
			Records:  make(map[string]RecordState),
			Balances: make(map[string]Balance),
		},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
