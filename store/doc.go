// Package store provides a Redis-backed principal store plus a ready-made
// record type for callers that do not bring their own data model.
//
// # Design
//
// Each principal is persisted as a JSON blob under a record key, with one
// index key per identifier field pointing at the record ID. Saves write the
// record and its index keys in a single MULTI/EXEC transaction. Lookup is a
// two-step index read then record read.
//
// # Architecture boundaries
//
// This package owns persistence only. Hashing, throttling, and
// authentication decisions belong to the engine; this store never inspects
// digests or failure counters beyond carrying them.
//
// # What this package must NOT do
//
//   - Verify or derive secrets.
//   - Enforce uniqueness beyond last-write-wins index keys. Callers needing
//     a hard guarantee under racing registrations add their own constraint.
//   - Log digest or salt values.
package store
