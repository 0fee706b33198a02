package stockcount

import (
	"context"
	"errors"
	"fmt"

	"github.com/ValtisD/CardiacStockTracker-sub001/feature/inventory"
	"github.com/ValtisD/CardiacStockTracker-sub001/feature/inventory/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Applier executes a finished adjustment plan against the inventory
// store.
//
// All adjustments run inside one store transaction, in a fixed order:
// transfers first (they only move existing stock), then new items, then
// missing dispositions, then investigated deletions. Quantities are
// re-validated at apply time instead of trusting the plan's snapshot,
// since the inventory can change between planning and submission.
//
// Every adjustment is keyed into a per-session ledger as it commits, so
// a retried apply skips work that already happened: no double-transfer,
// no double-insert, and an unchanged summary.
type Applier struct {
	store  inventory.Store
	logger *zap.Logger
}

// NewApplier creates a new applier on top of the store.
func NewApplier(store inventory.Store, logger *zap.Logger) *Applier {
	return &Applier{store: store, logger: logger}
}

// Apply executes the plan for a session and returns the summary.
// matched is the classifier's matched count, passed through for
// display only.
//
// Apply is valid from the reconciling state; it also accepts a
// completed session so that a retry after a partial failure can finish
// the remaining adjustments.
func (a *Applier) Apply(ctx context.Context, plan *Plan, matched int) (*ReconciliationSummary, error) {
	session, err := a.store.GetSession(ctx, plan.SessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load session %s: %w", plan.SessionID, err)
	}
	if session.Status == models.SessionInProgress {
		return nil, fmt.Errorf("session %s is still in progress; reconciliation has not started", plan.SessionID)
	}

	summary := &ReconciliationSummary{Matched: matched}

	err = a.store.Transact(ctx, func(tx inventory.Store) error {
		applied, err := tx.AppliedKeys(ctx, plan.SessionID)
		if err != nil {
			return err
		}

		for _, t := range plan.Transfers() {
			key := "transfer:" + t.ScannedItemID
			if _, done := applied[key]; !done {
				if err := a.applyTransfer(ctx, tx, t); err != nil {
					return &ReconciliationError{Kind: KindTransfer, ScannedItemID: t.ScannedItemID, Err: err}
				}
				if err := tx.RecordApplied(ctx, plan.SessionID, key, string(KindTransfer)); err != nil {
					return err
				}
			}
			summary.Transferred++
		}

		for _, n := range plan.NewItems() {
			key := "new_item:" + n.ScannedItemID
			if _, done := applied[key]; !done {
				if err := a.applyNewItem(ctx, tx, n); err != nil {
					return &ReconciliationError{Kind: KindNewItem, ScannedItemID: n.ScannedItemID, Err: err}
				}
				if err := tx.RecordApplied(ctx, plan.SessionID, key, string(KindNewItem)); err != nil {
					return err
				}
			}
			summary.NewItems++
		}

		for _, m := range plan.MissingDecisions() {
			key := "missing:" + m.InventoryItemID
			if _, done := applied[key]; !done {
				if err := a.applyMissing(ctx, tx, m); err != nil {
					return &ReconciliationError{Kind: KindMissing, InventoryItemID: m.InventoryItemID, Err: err}
				}
				if err := tx.RecordApplied(ctx, plan.SessionID, key, string(KindMissing)); err != nil {
					return err
				}
			}
			if m.Action == ActionMarkMissing {
				summary.MarkedMissing++
			} else {
				summary.Derecognized++
			}
		}

		for _, id := range plan.Deletes() {
			key := "delete:" + id
			if _, done := applied[key]; !done {
				if err := a.applyDelete(ctx, tx, id); err != nil {
					return &ReconciliationError{Kind: KindDeleteInvestigated, InventoryItemID: id, Err: err}
				}
				if err := tx.RecordApplied(ctx, plan.SessionID, key, string(KindDeleteInvestigated)); err != nil {
					return err
				}
			}
			summary.Derecognized++
		}

		return tx.UpdateSessionStatus(ctx, plan.SessionID, models.SessionCompleted)
	})
	if err != nil {
		return nil, err
	}

	a.logger.Info("Reconciliation applied",
		zap.String("session_id", plan.SessionID),
		zap.Int("matched", summary.Matched),
		zap.Int("transferred", summary.Transferred),
		zap.Int("new_items", summary.NewItems),
		zap.Int("marked_missing", summary.MarkedMissing),
		zap.Int("derecognized", summary.Derecognized),
	)

	return summary, nil
}

// applyTransfer moves stock from the transfer's source to its
// destination, re-validating the source balance first.
func (a *Applier) applyTransfer(ctx context.Context, tx inventory.Store, t TransferAdjustment) error {
	if t.SerialNumber != "" {
		return a.applySerialTransfer(ctx, tx, t)
	}

	// Only active records fund a transfer; stock flagged missing in a
	// prior session is not expected stock.
	sources, err := tx.FindItems(ctx, inventory.ItemQuery{
		ProductID: t.ProductID,
		Location:  t.FromLocation,
		LotNumber: t.LotNumber,
		Status:    models.ItemActive,
		Bare:      t.LotNumber == "",
	})
	if err != nil {
		return err
	}

	available := 0
	for _, src := range sources {
		available += src.Quantity
	}
	if available < t.Quantity {
		return &InsufficientStockError{
			ProductID:    t.ProductID,
			FromLocation: t.FromLocation,
			Requested:    t.Quantity,
			Available:    available,
		}
	}

	need := t.Quantity
	for _, src := range sources {
		if need == 0 {
			break
		}
		take := src.Quantity
		if take > need {
			take = need
		}
		if err := tx.AddQuantity(ctx, src.ID, -take); err != nil {
			return err
		}
		// Re-read rather than trusting the snapshot: a drained record
		// is removed from the store.
		cur, err := tx.GetInventoryItem(ctx, src.ID)
		if err != nil {
			return err
		}
		if cur.Quantity == 0 {
			if err := tx.DeleteInventoryItem(ctx, src.ID); err != nil {
				return err
			}
		}
		need -= take
	}

	return a.creditDestination(ctx, tx, t)
}

// applySerialTransfer relocates the single record carrying the serial.
func (a *Applier) applySerialTransfer(ctx context.Context, tx inventory.Store, t TransferAdjustment) error {
	sources, err := tx.FindItems(ctx, inventory.ItemQuery{
		ProductID:    t.ProductID,
		Location:     t.FromLocation,
		SerialNumber: t.SerialNumber,
		Status:       models.ItemActive,
	})
	if err != nil {
		return err
	}
	if len(sources) == 0 {
		return &InsufficientStockError{
			ProductID:    t.ProductID,
			FromLocation: t.FromLocation,
			Requested:    1,
			Available:    0,
		}
	}

	// A record with the same serial at the destination would violate
	// the unique-serial invariant.
	dest, err := tx.FindItems(ctx, inventory.ItemQuery{
		Location:     t.ToLocation,
		SerialNumber: t.SerialNumber,
	})
	if err != nil {
		return err
	}
	if len(dest) > 0 {
		return &DuplicateSerialError{
			SerialNumber:    t.SerialNumber,
			ScannedItemID:   t.ScannedItemID,
			InventoryItemID: dest[0].ID,
		}
	}

	return tx.UpdateItemLocation(ctx, sources[0].ID, t.ToLocation)
}

// creditDestination adds the transferred quantity to an existing record
// of the same identity at the destination, or creates one.
func (a *Applier) creditDestination(ctx context.Context, tx inventory.Store, t TransferAdjustment) error {
	dest, err := tx.FindItems(ctx, inventory.ItemQuery{
		ProductID: t.ProductID,
		Location:  t.ToLocation,
		LotNumber: t.LotNumber,
		Status:    models.ItemActive,
		Bare:      t.LotNumber == "",
	})
	if err != nil {
		return err
	}
	if len(dest) > 0 {
		return tx.AddQuantity(ctx, dest[0].ID, t.Quantity)
	}

	mode := models.TrackingNone
	if t.LotNumber != "" {
		mode = models.TrackingLot
	}
	return tx.CreateInventoryItem(ctx, &models.InventoryItem{
		ID:             uuid.NewString(),
		ProductID:      t.ProductID,
		Location:       t.ToLocation,
		Quantity:       t.Quantity,
		TrackingMode:   mode,
		LotNumber:      t.LotNumber,
		ExpirationDate: t.ExpirationDate,
		Status:         models.ItemActive,
	})
}

// applyNewItem registers previously unknown stock, defending the
// unique-serial invariant against the current store state.
func (a *Applier) applyNewItem(ctx context.Context, tx inventory.Store, n NewItemAdjustment) error {
	quantity := n.Quantity
	if n.SerialNumber != "" {
		existing, err := tx.FindBySerial(ctx, n.SerialNumber)
		if err != nil {
			return err
		}
		if len(existing) > 0 {
			return &DuplicateSerialError{
				SerialNumber:    n.SerialNumber,
				ScannedItemID:   n.ScannedItemID,
				InventoryItemID: existing[0].ID,
			}
		}
		quantity = 1
	}

	return tx.CreateInventoryItem(ctx, &models.InventoryItem{
		ID:             uuid.NewString(),
		ProductID:      n.ProductID,
		Location:       n.Location,
		Quantity:       quantity,
		TrackingMode:   n.TrackingMode,
		SerialNumber:   n.SerialNumber,
		LotNumber:      n.LotNumber,
		ExpirationDate: n.ExpirationDate,
		Status:         models.ItemActive,
	})
}

// applyMissing executes a missing disposition. A record that is
// already gone counts as resolved.
func (a *Applier) applyMissing(ctx context.Context, tx inventory.Store, m MissingAdjustment) error {
	var err error
	switch m.Action {
	case ActionMarkMissing:
		err = tx.SetItemStatus(ctx, m.InventoryItemID, models.ItemMissing)
	case ActionDerecognized:
		err = tx.DeleteInventoryItem(ctx, m.InventoryItemID)
	default:
		return fmt.Errorf("unknown missing action %q", m.Action)
	}
	if errors.Is(err, inventory.ErrNotFound) {
		return nil
	}
	return err
}

// applyDelete hard-deletes an investigated missing record.
func (a *Applier) applyDelete(ctx context.Context, tx inventory.Store, id string) error {
	err := tx.DeleteInventoryItem(ctx, id)
	if errors.Is(err, inventory.ErrNotFound) {
		return nil
	}
	return err
}
