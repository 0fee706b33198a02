package stockcount

import (
	"fmt"
	"sort"

	"github.com/ValtisD/CardiacStockTracker-sub001/feature/inventory/models"
)

// Plan accumulates the operator's decisions for one session. It is
// mutable until submitted to the Applier and discarded afterwards.
//
// One operator resolves one session at a time, so the Plan carries no
// locking of its own; the owning service serializes access.
type Plan struct {
	// SessionID ties the plan to its stock count session.
	SessionID string

	transfers map[string]TransferAdjustment // by scanned item ID
	newItems  map[string]NewItemAdjustment  // by scanned item ID
	missing   map[string]MissingAdjustment  // by inventory item ID
	deletes   map[string]struct{}           // by inventory item ID
}

// NewPlan creates an empty plan for a session.
func NewPlan(sessionID string) *Plan {
	return &Plan{
		SessionID: sessionID,
		transfers: make(map[string]TransferAdjustment),
		newItems:  make(map[string]NewItemAdjustment),
		missing:   make(map[string]MissingAdjustment),
		deletes:   make(map[string]struct{}),
	}
}

// SetTransfer records a transfer decision for a found item, replacing
// any prior new-item decision for the same scan. The source is always
// the opposite of the scanned location. A non-positive quantity
// defaults to the scanned quantity; serial-tracked stock always moves
// as a single unit.
func (p *Plan) SetTransfer(f FoundItem, quantity int) error {
	if err := resolvable(f); err != nil {
		return err
	}

	s := f.ScannedItem
	if quantity <= 0 {
		quantity = s.Quantity
	}
	if s.SerialNumber != "" {
		quantity = 1
	}

	delete(p.newItems, s.ID)
	p.transfers[s.ID] = TransferAdjustment{
		ScannedItemID:  s.ID,
		ProductID:      s.ProductID,
		SerialNumber:   s.SerialNumber,
		LotNumber:      s.LotNumber,
		ExpirationDate: s.ExpirationDate,
		FromLocation:   s.ScannedLocation.Opposite(),
		ToLocation:     s.ScannedLocation,
		Quantity:       quantity,
	}
	return nil
}

// SetNewItem records an add-new-stock decision for a found item,
// replacing any prior transfer decision for the same scan.
func (p *Plan) SetNewItem(f FoundItem, quantity int) error {
	if err := resolvable(f); err != nil {
		return err
	}

	s := f.ScannedItem
	if quantity <= 0 {
		quantity = s.Quantity
	}

	mode := models.TrackingNone
	switch {
	case s.SerialNumber != "":
		mode = models.TrackingSerial
		quantity = 1
	case s.LotNumber != "":
		mode = models.TrackingLot
	}

	// In-plan duplicate defense: two planned insertions must never
	// share a serial.
	if s.SerialNumber != "" {
		for id, n := range p.newItems {
			if id != s.ID && n.SerialNumber == s.SerialNumber {
				return &DuplicateSerialError{
					SerialNumber:  s.SerialNumber,
					ScannedItemID: s.ID,
				}
			}
		}
	}

	delete(p.transfers, s.ID)
	p.newItems[s.ID] = NewItemAdjustment{
		ScannedItemID:  s.ID,
		ProductID:      s.ProductID,
		SerialNumber:   s.SerialNumber,
		LotNumber:      s.LotNumber,
		ExpirationDate: s.ExpirationDate,
		Location:       s.ScannedLocation,
		Quantity:       quantity,
		TrackingMode:   mode,
	}
	return nil
}

// ClearDecision removes any transfer or new-item decision for a scan.
func (p *Plan) ClearDecision(scannedItemID string) {
	delete(p.transfers, scannedItemID)
	delete(p.newItems, scannedItemID)
}

// SetMissingAction records the disposition for a missing inventory
// item. Dispositions are independent of transfer suppression: a hidden
// missing item keeps its disposition if a transfer is later removed.
func (p *Plan) SetMissingAction(inventoryItemID string, action MissingAction) error {
	if !action.Valid() {
		return fmt.Errorf("unknown missing action %q", action)
	}
	if _, deleted := p.deletes[inventoryItemID]; deleted {
		return fmt.Errorf("item %s is already scheduled for deletion", inventoryItemID)
	}
	p.missing[inventoryItemID] = MissingAdjustment{
		InventoryItemID: inventoryItemID,
		Action:          action,
	}
	return nil
}

// DeleteInvestigated schedules the hard delete of a missing record the
// operator has investigated. Only valid after a mark_missing decision;
// it supersedes that decision and removes the item from the operator's
// view without restoring it to the missing worklist.
func (p *Plan) DeleteInvestigated(inventoryItemID string) error {
	m, ok := p.missing[inventoryItemID]
	if !ok || m.Action != ActionMarkMissing {
		return fmt.Errorf("item %s has no mark_missing decision to delete", inventoryItemID)
	}
	delete(p.missing, inventoryItemID)
	p.deletes[inventoryItemID] = struct{}{}
	return nil
}

// Transfers returns the planned transfers in stable order.
func (p *Plan) Transfers() []TransferAdjustment {
	out := make([]TransferAdjustment, 0, len(p.transfers))
	for _, t := range p.transfers {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ScannedItemID < out[j].ScannedItemID })
	return out
}

// NewItems returns the planned insertions in stable order.
func (p *Plan) NewItems() []NewItemAdjustment {
	out := make([]NewItemAdjustment, 0, len(p.newItems))
	for _, n := range p.newItems {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ScannedItemID < out[j].ScannedItemID })
	return out
}

// MissingDecisions returns the planned dispositions in stable order.
func (p *Plan) MissingDecisions() []MissingAdjustment {
	out := make([]MissingAdjustment, 0, len(p.missing))
	for _, m := range p.missing {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].InventoryItemID < out[j].InventoryItemID })
	return out
}

// Deletes returns the scheduled hard deletes in stable order.
func (p *Plan) Deletes() []string {
	out := make([]string, 0, len(p.deletes))
	for id := range p.deletes {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// VisibleMissing recomputes the missing worklist still requiring the
// operator's attention under the current plan. It is recomputed after
// every plan mutation rather than cached: removing a transfer
// re-surfaces the missing items it explained.
//
// A missing item is hidden when the planned transfers out of its
// location fully explain it: any single matching transfer for a
// serial-tracked item, or matching transfers summing to at least its
// quantity otherwise. Items scheduled for investigated deletion are
// hidden as well.
func VisibleMissing(missing []MissingItem, p *Plan) []MissingItem {
	if p == nil {
		return missing
	}

	visible := make([]MissingItem, 0, len(missing))
	for _, m := range missing {
		if _, deleted := p.deletes[m.InventoryItem.ID]; deleted {
			continue
		}
		if transfersExplain(m, p.transfers) {
			continue
		}
		visible = append(visible, m)
	}
	return visible
}

// transfersExplain reports whether the planned transfers account for a
// missing item.
func transfersExplain(m MissingItem, transfers map[string]TransferAdjustment) bool {
	identity := m.InventoryItem.Identity()
	serialTracked := m.InventoryItem.SerialNumber != ""

	explained := 0
	for _, t := range transfers {
		if t.FromLocation != m.InventoryItem.Location {
			continue
		}
		if t.Identity() != identity {
			continue
		}
		if serialTracked {
			// 1:1 regardless of the quantity field.
			return true
		}
		explained += t.Quantity
	}
	return !serialTracked && explained >= m.Quantity
}

// resolvable rejects found items that must not become adjustments.
func resolvable(f FoundItem) error {
	if f.DuplicateSerial {
		return &DuplicateSerialError{
			SerialNumber:  f.ScannedItem.SerialNumber,
			ScannedItemID: f.ScannedItem.ID,
		}
	}
	return nil
}
