// Package session owns the unit of work of the analysis engine: a
// Session pairs one reference and one comparison video with their
// extracted landmark sequences and the latest alignment result.
//
// The Store is the only shared mutable state in the module. It keys
// every session by an opaque uuid, persists a SQLite index row plus a
// per-session artifact directory (the two source videos, the two
// serialized landmark sequences, and results.json), and enforces the
// engine's consistency rules:
//
//   - sequences attach exactly once; re-extraction with different
//     settings allocates a new session, never mutates an existing one
//   - at most one alignment is in flight per session: concurrent
//     Analyze calls for the same id coalesce onto the in-flight
//     computation and all receive its result
//   - result commits are ordered by completion time, so an older
//     completion never overwrites a newer one
//   - a failed analysis leaves the previous latest result untouched,
//     in memory and on disk
//   - operations on different sessions never serialize against each
//     other
//
// Landmark extraction is a capability behind the Extractor interface;
// production detectors live outside this module, and StubExtractor
// provides a deterministic stand-in for tests and demos.
package session
