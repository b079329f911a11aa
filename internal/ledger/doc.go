// Package ledger implements the accrual engine for per-identity stake records.
//
// Everything in this package is pure: functions take a Record by value and
// return a new Record, so a failed operation can never leave a half-mutated
// record behind. Persistence, authorization and value transfer live in the
// store and service packages.
//
// # Points
//
// Points accrue in micro-points at a fixed rate of 1,000,000 micro-points per
// whole staked unit per day:
//
//	points = staked * elapsed * PointsPerUnitPerDay / (UnitsPerWhole * SecondsPerDay)
//
// The product is formed in 256-bit integers and floor-divided before being
// narrowed back to uint64. Sub-micro-point remainders are dropped.
//
// # Settlement
//
// Every operation first settles the record at the supplied time: points for
// the elapsed interval are added to TotalPoints and LastUpdatedTime moves to
// the supplied time. A supplied time earlier than LastUpdatedTime fails with
// KindInvalidTimestamp.
//
// # Errors
//
// All failures are *Error values carrying a Kind. Use IsKind or errors.Is with
// the Err* sentinels to branch on them.
package ledger
