// Package store provides the SQLite-backed Record Store for stake records.
//
// The store holds three tables:
//   - stake_records: one row per owner identity (the one-record-per-identity invariant
//     is the primary key)
//   - journal: append-only log of every committed operation, ordered by seq
//   - reward_claims: outbox of claimed points awaiting external issuance
//
// # Atomicity
//
// Every mutation runs inside Update, which wraps a single SQL transaction.
// The connection pool is limited to one connection, so transactions are
// serialized: a read-settle-write sequence on a record can never interleave
// with another writer. Returning an error from the Update callback rolls
// back every write made through the Tx.
//
// # Addressing
//
// Each record is stored under an address derived from a fixed namespace tag,
// the owner identity and a bump byte (see DeriveAddress). The address is
// re-derived and checked whenever a record is loaded.
//
// # Database Configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000: wait for locks up to 5 seconds
//   - foreign_keys=ON: journal and claim rows must reference an existing record
package store
