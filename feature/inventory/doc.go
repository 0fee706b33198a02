// Package inventory owns the persistent stock records and exposes the
// Store port used by the reconciliation engine.
//
// Two Store implementations are provided: GormStore (MySQL) for
// production and MemStore for tests and local runs. The HTTP surface
// covers the manual operations that exist alongside stock counts:
// listing items, inspecting a record, and ad-hoc quantity edits. Those
// edits are the concurrent mutation source the reconciliation applier
// re-validates against.
package inventory
