package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sqlite3 "github.com/mattn/go-sqlite3"

	"github.com/roach88/stakeledger/internal/ledger"
)

// Get returns the persisted record for owner, or ErrNotFound.
func (s *Store) Get(ctx context.Context, owner ledger.Identity) (ledger.Record, error) {
	return readRecord(ctx, s.db, owner)
}

// Owners returns every record owner in ascending byte order.
func (s *Store) Owners(ctx context.Context) ([]ledger.Identity, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT owner FROM stake_records ORDER BY owner ASC`)
	if err != nil {
		return nil, fmt.Errorf("query owners: %w", err)
	}
	defer rows.Close()

	owners := []ledger.Identity{}
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan owner: %w", err)
		}
		id, err := identityFromBytes(raw)
		if err != nil {
			return nil, err
		}
		owners = append(owners, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate owners: %w", err)
	}
	return owners, nil
}

// Record loads owner's record inside the transaction.
func (t *Tx) Record(ctx context.Context, owner ledger.Identity) (ledger.Record, error) {
	return readRecord(ctx, t.tx, owner)
}

// CreateRecord inserts a new record. Returns ErrExists if owner already has one.
func (t *Tx) CreateRecord(ctx context.Context, rec ledger.Record) error {
	addr := DeriveAddress(rec.Owner, rec.Bump)
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO stake_records
		(owner, address, bump, staked_amount, total_points, last_updated_time, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		rec.Owner[:],
		addr[:],
		int64(rec.Bump),
		int64(rec.StakedAmount),
		int64(rec.TotalPoints),
		rec.LastUpdatedTime,
		rec.LastUpdatedTime,
	)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) &&
			(sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey || sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique) {
			return fmt.Errorf("create record %s: %w", rec.Owner, ErrExists)
		}
		return fmt.Errorf("create record: %w", err)
	}
	return nil
}

// SaveRecord overwrites the mutable fields of an existing record.
// Owner, address and bump never change after creation.
func (t *Tx) SaveRecord(ctx context.Context, rec ledger.Record) error {
	result, err := t.tx.ExecContext(ctx, `
		UPDATE stake_records
		SET staked_amount = ?, total_points = ?, last_updated_time = ?
		WHERE owner = ? AND bump = ?
	`,
		int64(rec.StakedAmount),
		int64(rec.TotalPoints),
		rec.LastUpdatedTime,
		rec.Owner[:],
		int64(rec.Bump),
	)
	if err != nil {
		return fmt.Errorf("save record: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("save record: rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("save record %s: %w", rec.Owner, ErrNotFound)
	}
	return nil
}

func readRecord(ctx context.Context, q querier, owner ledger.Identity) (ledger.Record, error) {
	var (
		addr                 []byte
		bump                 int64
		staked, points, last int64
	)
	err := q.QueryRowContext(ctx, `
		SELECT address, bump, staked_amount, total_points, last_updated_time
		FROM stake_records
		WHERE owner = ?
	`, owner[:]).Scan(&addr, &bump, &staked, &points, &last)
	if errors.Is(err, sql.ErrNoRows) {
		return ledger.Record{}, fmt.Errorf("read record %s: %w", owner, ErrNotFound)
	}
	if err != nil {
		return ledger.Record{}, fmt.Errorf("read record: %w", err)
	}

	rec := ledger.Record{
		Owner:           owner,
		StakedAmount:    uint64(staked),
		TotalPoints:     uint64(points),
		LastUpdatedTime: last,
		Bump:            uint8(bump),
	}

	want := DeriveAddress(owner, rec.Bump)
	if string(addr) != string(want[:]) {
		return ledger.Record{}, fmt.Errorf("read record %s: stored address does not match derivation", owner)
	}
	return rec, nil
}

func identityFromBytes(raw []byte) (ledger.Identity, error) {
	var id ledger.Identity
	if len(raw) != ledger.IdentitySize {
		return id, fmt.Errorf("identity column has %d bytes, want %d", len(raw), ledger.IdentitySize)
	}
	copy(id[:], raw)
	return id, nil
}
