// Package stockcount implements the stock count reconciliation engine.
//
// A stock count session collects barcode scans of the physical stock.
// Reconciliation compares those scans against the recorded inventory in
// three stages:
//
//  1. Classify partitions every scan and inventory record into
//     matched, found (scanned but not recorded at that location) and
//     missing (recorded but not scanned).
//  2. A Plan accumulates the operator's decisions: transfers and
//     new-item registrations for found items, dispositions for missing
//     items. VisibleMissing recomputes the remaining missing worklist
//     after every plan mutation.
//  3. The Applier executes the finished plan against the inventory
//     store inside one transaction, re-validating quantities at commit
//     time, and returns a ReconciliationSummary.
//
// Identity resolution follows a strict precedence: serial number (1:1,
// quantity ignored), then lot number + product (quantities accumulate),
// then bare product. Classify, the Plan and VisibleMissing are pure
// over their inputs; only the Applier touches the store.
package stockcount
