// Package harness runs YAML stake scenarios against the real service.
//
// # Scenario Format
//
//	name: one_day_accrual
//	description: "Five units staked for a day earn five points"
//	start: 0
//	accounts:
//	  alice: 10000000000
//	steps:
//	  - op: open
//	    owner: alice
//	  - op: deposit
//	    owner: alice
//	    amount: 5000000000
//	  - op: query
//	    owner: alice
//	    at: 86400
//	    expect:
//	      total_points: 5000000
//	  - op: withdraw
//	    owner: alice
//	    amount: 99999999999
//	    expect:
//	      error: INSUFFICIENT_STAKE
//	assertions:
//	  - type: record
//	    owner: alice
//	    staked_amount: 5000000000
//	  - type: balance
//	    account: alice
//	    external: 5000000000
//	    vault: 5000000000
//
// Names are mapped to identities with testutil.Identity. A step's caller
// defaults to its owner and its at defaults to the current clock.
//
// # Operations
//
// open, deposit, withdraw, claim and query go through service.Service and
// are journaled. project calls Service.Projection and persists nothing.
//
// # Assertion Types
//
//   - record: the persisted record's fields
//   - balance: an account's external and vault balances
//   - journal: the number of journal entries for an owner
//   - pending_claims: the number of unissued claims in the outbox
//   - replay: the journal replays with no mismatches
//
// # Deterministic Testing
//
// Every scenario gets a fresh in-memory store, a transfer.Bank funded from
// accounts, a clock.Manual starting at start, and sequential op IDs, so the
// same scenario always produces the same trace. RunWithGolden compares the
// trace against testdata/golden/{name}.golden.
package harness
