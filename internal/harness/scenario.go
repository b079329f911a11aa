package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario is a sequence of stake operations with expectations.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Start is the clock value before the first step.
	Start int64 `yaml:"start,omitempty"`

	// Accounts funds external balances by name before the first step.
	Accounts map[string]uint64 `yaml:"accounts,omitempty"`

	// Steps run in order.
	Steps []Step `yaml:"steps"`

	// Assertions are checked against final state after all steps.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Step is one operation.
type Step struct {
	// Op is open, deposit, withdraw, claim, query or project.
	Op string `yaml:"op"`

	// Owner names the record operated on.
	Owner string `yaml:"owner"`

	// Caller names the acting identity. Defaults to Owner.
	Caller string `yaml:"caller,omitempty"`

	// Amount is used by deposit and withdraw.
	Amount uint64 `yaml:"amount,omitempty"`

	// At sets the clock before the step. Nil keeps the current time.
	At *int64 `yaml:"at,omitempty"`

	// Expect validates the outcome. Nil requires success.
	Expect *Expect `yaml:"expect,omitempty"`
}

// Expect is either an error kind or a subset of result fields.
type Expect struct {
	// Error is the expected outcome code (e.g. "INSUFFICIENT_STAKE").
	Error string `yaml:"error,omitempty"`

	StakedAmount    *uint64 `yaml:"staked_amount,omitempty"`
	TotalPoints     *uint64 `yaml:"total_points,omitempty"`
	LastUpdatedTime *int64  `yaml:"last_updated_time,omitempty"`
	Accrued         *uint64 `yaml:"accrued,omitempty"`
	Claimable       *uint64 `yaml:"claimable,omitempty"`
}

// Assertion checks final state.
type Assertion struct {
	Type string `yaml:"type"`

	// Owner is used by record and journal.
	Owner string `yaml:"owner,omitempty"`

	// Account is used by balance.
	Account string `yaml:"account,omitempty"`

	StakedAmount    *uint64 `yaml:"staked_amount,omitempty"`
	TotalPoints     *uint64 `yaml:"total_points,omitempty"`
	LastUpdatedTime *int64  `yaml:"last_updated_time,omitempty"`

	External *uint64 `yaml:"external,omitempty"`
	Vault    *uint64 `yaml:"vault,omitempty"`

	// Count is used by journal and pending_claims.
	Count *int `yaml:"count,omitempty"`
}

// Step operations.
const (
	OpOpen     = "open"
	OpDeposit  = "deposit"
	OpWithdraw = "withdraw"
	OpClaim    = "claim"
	OpQuery    = "query"
	OpProject  = "project"
)

// Assertion types.
const (
	AssertRecord        = "record"
	AssertBalance       = "balance"
	AssertJournal       = "journal"
	AssertPendingClaims = "pending_claims"
	AssertReplay        = "replay"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	// Strict field validation catches typos like "assertion:" vs "assertions:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("at least one step is required")
	}

	for i, step := range s.Steps {
		switch step.Op {
		case OpOpen, OpDeposit, OpWithdraw, OpClaim, OpQuery, OpProject:
		case "":
			return fmt.Errorf("step %d: op is required", i)
		default:
			return fmt.Errorf("step %d: unknown op %q", i, step.Op)
		}
		if step.Owner == "" {
			return fmt.Errorf("step %d: owner is required", i)
		}
	}

	for i, a := range s.Assertions {
		switch a.Type {
		case AssertRecord, AssertJournal:
			if a.Owner == "" {
				return fmt.Errorf("assertion %d: %s requires owner", i, a.Type)
			}
		case AssertBalance:
			if a.Account == "" {
				return fmt.Errorf("assertion %d: balance requires account", i)
			}
		case AssertPendingClaims, AssertReplay:
		case "":
			return fmt.Errorf("assertion %d: type is required", i)
		default:
			return fmt.Errorf("assertion %d: unknown type %q", i, a.Type)
		}
		if (a.Type == AssertJournal || a.Type == AssertPendingClaims) && a.Count == nil {
			return fmt.Errorf("assertion %d: %s requires count", i, a.Type)
		}
	}
	return nil
}
