package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/stakeledger/internal/ledger"
)

// Entry is one committed operation in the journal.
type Entry struct {
	Seq       int64           `json:"seq"`
	OpID      string          `json:"op_id"`
	Op        ledger.Op       `json:"op"`
	Owner     ledger.Identity `json:"owner"`
	Caller    ledger.Identity `json:"caller"`
	Amount    uint64          `json:"amount"`
	At        int64           `json:"at"`
	Accrued   uint64          `json:"accrued"`
	Claimable uint64          `json:"claimable"`
	StateHash string          `json:"state_hash"`
}

// AppendEntry writes e to the journal and returns its assigned seq.
// e.Seq is ignored; seq is allocated by the database.
func (t *Tx) AppendEntry(ctx context.Context, e Entry) (int64, error) {
	result, err := t.tx.ExecContext(ctx, `
		INSERT INTO journal
		(op_id, op, owner, caller, amount, at, accrued, claimable, state_hash)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		e.OpID,
		string(e.Op),
		e.Owner[:],
		e.Caller[:],
		int64(e.Amount),
		e.At,
		int64(e.Accrued),
		int64(e.Claimable),
		e.StateHash,
	)
	if err != nil {
		return 0, fmt.Errorf("append entry: %w", err)
	}

	seq, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("append entry: last insert id: %w", err)
	}
	return seq, nil
}

// History returns owner's journal entries ordered by seq.
// Returns an empty slice (not nil) when the owner has no entries.
func (s *Store) History(ctx context.Context, owner ledger.Identity) ([]Entry, error) {
	return readEntries(ctx, s.db, `
		SELECT seq, op_id, op, owner, caller, amount, at, accrued, claimable, state_hash
		FROM journal
		WHERE owner = ?
		ORDER BY seq ASC
	`, owner[:])
}

// Journal returns every entry ordered by seq. Used for replay.
func (s *Store) Journal(ctx context.Context) ([]Entry, error) {
	return readEntries(ctx, s.db, `
		SELECT seq, op_id, op, owner, caller, amount, at, accrued, claimable, state_hash
		FROM journal
		ORDER BY seq ASC
	`)
}

func readEntries(ctx context.Context, q querier, query string, args ...any) ([]Entry, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query journal: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate journal: %w", err)
	}
	return entries, nil
}

func scanEntry(rows *sql.Rows) (Entry, error) {
	var (
		e                          Entry
		op                         string
		owner, caller              []byte
		amount, accrued, claimable int64
	)
	if err := rows.Scan(&e.Seq, &e.OpID, &op, &owner, &caller, &amount, &e.At, &accrued, &claimable, &e.StateHash); err != nil {
		return Entry{}, fmt.Errorf("scan entry: %w", err)
	}

	var err error
	if e.Op, err = ledger.ParseOp(op); err != nil {
		return Entry{}, fmt.Errorf("scan entry %d: %w", e.Seq, err)
	}
	if e.Owner, err = identityFromBytes(owner); err != nil {
		return Entry{}, fmt.Errorf("scan entry %d: owner: %w", e.Seq, err)
	}
	if e.Caller, err = identityFromBytes(caller); err != nil {
		return Entry{}, fmt.Errorf("scan entry %d: caller: %w", e.Seq, err)
	}
	e.Amount = uint64(amount)
	e.Accrued = uint64(accrued)
	e.Claimable = uint64(claimable)
	return e, nil
}
