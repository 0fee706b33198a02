package stockcount

import (
	"github.com/ValtisD/CardiacStockTracker-sub001/feature/inventory/models"
)

// MatchedItem records a scan fully accounted for by co-located
// inventory records.
type MatchedItem struct {
	// ScannedItemID is the scan that was matched.
	ScannedItemID string `json:"scanned_item_id"`

	// InventoryItemIDs are the records that jointly satisfy the scan.
	// A serial match always holds exactly one ID.
	InventoryItemIDs []string `json:"inventory_item_ids"`

	// ProductID of the matched identity.
	ProductID string `json:"product_id"`

	// Quantity accounted for by this match.
	Quantity int `json:"quantity"`
}

// FoundItem is a scan with no fully accounting inventory record at its
// scanned location.
type FoundItem struct {
	// ScannedItem is the underlying scan.
	ScannedItem models.ScannedItem `json:"scanned_item"`

	// ExistsInHome reports whether an equivalent record exists at the
	// other location, making a transfer the likely resolution.
	ExistsInHome bool `json:"exists_in_home"`

	// DuplicateSerial marks the second and later scans of one serial
	// number within the same session. Duplicates cannot be resolved
	// into adjustments.
	DuplicateSerial bool `json:"duplicate_serial,omitempty"`

	// Ambiguous marks a scan whose identity resolved to more than one
	// inventory candidate. Defensive: should not occur while the
	// unique-serial invariant holds.
	Ambiguous bool `json:"ambiguous,omitempty"`
}

// MissingItem is an inventory record (or remainder of one) that no scan
// accounted for at its own location.
type MissingItem struct {
	// InventoryItem is the unaccounted record.
	InventoryItem models.InventoryItem `json:"inventory_item"`

	// Quantity is the unaccounted remainder. For serial-tracked records
	// this is always the full quantity of 1.
	Quantity int `json:"quantity"`
}

// Classification is the partitioned output of Classify.
type Classification struct {
	Matched []MatchedItem `json:"matched"`
	Found   []FoundItem   `json:"found"`
	Missing []MissingItem `json:"missing"`
}

// FindFound returns the found entry for a scanned item ID.
func (c *Classification) FindFound(scannedItemID string) (FoundItem, bool) {
	for _, f := range c.Found {
		if f.ScannedItem.ID == scannedItemID {
			return f, true
		}
	}
	return FoundItem{}, false
}

// FindMissing returns the missing entry for an inventory item ID.
func (c *Classification) FindMissing(inventoryItemID string) (MissingItem, bool) {
	for _, m := range c.Missing {
		if m.InventoryItem.ID == inventoryItemID {
			return m, true
		}
	}
	return MissingItem{}, false
}

// AdjustmentKind identifies the category of a planned adjustment.
type AdjustmentKind string

const (
	KindTransfer           AdjustmentKind = "transfer"
	KindNewItem            AdjustmentKind = "new_item"
	KindMissing            AdjustmentKind = "missing"
	KindDeleteInvestigated AdjustmentKind = "delete_investigated"
)

// MissingAction is the operator's disposition for a missing item.
type MissingAction string

const (
	ActionMarkMissing  MissingAction = "mark_missing"
	ActionDerecognized MissingAction = "derecognized"
)

// Valid reports whether the action is a known disposition.
func (a MissingAction) Valid() bool {
	return a == ActionMarkMissing || a == ActionDerecognized
}

// TransferAdjustment moves stock between locations to explain a found
// item.
type TransferAdjustment struct {
	ScannedItemID  string          `json:"scanned_item_id"`
	ProductID      string          `json:"product_id"`
	SerialNumber   string          `json:"serial_number,omitempty"`
	LotNumber      string          `json:"lot_number,omitempty"`
	ExpirationDate string          `json:"expiration_date,omitempty"`
	FromLocation   models.Location `json:"from_location"`
	ToLocation     models.Location `json:"to_location"`
	Quantity       int             `json:"quantity"`
}

// Identity returns the matching key of the transferred stock.
func (t TransferAdjustment) Identity() string {
	return models.IdentityKey(t.ProductID, t.SerialNumber, t.LotNumber)
}

// NewItemAdjustment registers previously unknown stock.
type NewItemAdjustment struct {
	ScannedItemID  string              `json:"scanned_item_id"`
	ProductID      string              `json:"product_id"`
	SerialNumber   string              `json:"serial_number,omitempty"`
	LotNumber      string              `json:"lot_number,omitempty"`
	ExpirationDate string              `json:"expiration_date,omitempty"`
	Location       models.Location     `json:"location"`
	Quantity       int                 `json:"quantity"`
	TrackingMode   models.TrackingMode `json:"tracking_mode"`
}

// MissingAdjustment flags or removes an unaccounted inventory record.
type MissingAdjustment struct {
	InventoryItemID string        `json:"inventory_item_id"`
	Action          MissingAction `json:"action"`
}

// ReconciliationSummary reports the counts of each adjustment category
// executed by an apply, plus the matched count passed through from the
// classifier for display.
type ReconciliationSummary struct {
	Matched       int `json:"matched"`
	Transferred   int `json:"transferred"`
	NewItems      int `json:"new_items"`
	MarkedMissing int `json:"marked_missing"`
	Derecognized  int `json:"derecognized"`
}
