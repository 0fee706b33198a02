package stockcount

import (
	"fmt"

	"github.com/ValtisD/CardiacStockTracker-sub001/feature/inventory/models"
)

// InsufficientStockError reports a transfer whose source location no
// longer holds enough quantity at apply time.
type InsufficientStockError struct {
	ProductID    string
	FromLocation models.Location
	Requested    int
	Available    int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s at %s: requested %d, available %d",
		e.ProductID, e.FromLocation, e.Requested, e.Available)
}

// DuplicateSerialError reports an adjustment that would create two
// inventory records sharing one serial number.
type DuplicateSerialError struct {
	SerialNumber    string
	ScannedItemID   string
	InventoryItemID string
}

func (e *DuplicateSerialError) Error() string {
	return fmt.Sprintf("serial number %s already exists in inventory (item %s)",
		e.SerialNumber, e.InventoryItemID)
}

// ReconciliationError wraps the failure of a single adjustment during
// apply. It carries enough identity for the operator to locate and
// re-resolve the offending adjustment without discarding the rest of
// the plan.
type ReconciliationError struct {
	Kind            AdjustmentKind
	ScannedItemID   string
	InventoryItemID string
	Err             error
}

func (e *ReconciliationError) Error() string {
	id := e.ScannedItemID
	if id == "" {
		id = e.InventoryItemID
	}
	return fmt.Sprintf("reconciliation failed on %s adjustment %s: %v", e.Kind, id, e.Err)
}

func (e *ReconciliationError) Unwrap() error {
	return e.Err
}
