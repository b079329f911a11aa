// Package service is the dispatch layer for stake operations.
//
// Each mutating operation runs as one store transaction:
//
//	load record -> authorize -> ledger op -> save record -> journal entry
//	  -> reward issue (claim) -> value transfer (deposit, withdraw) -> commit
//
// The value transfer is the last fallible step inside the transaction. If it
// fails the transaction rolls back and the record is unchanged. If the commit
// fails after a successful transfer, the service issues the reverse transfer
// before returning the commit error.
//
// Query settles and persists like any other operation but needs no write
// authority. Projection computes the same result without persisting it.
package service
