package models

import "time"

// Location is a physical stock location.
type Location string

const (
	LocationHome Location = "home"
	LocationCar  Location = "car"
)

// Valid reports whether the location is one of the known locations.
func (l Location) Valid() bool {
	return l == LocationHome || l == LocationCar
}

// Opposite returns the other stock location.
func (l Location) Opposite() Location {
	if l == LocationHome {
		return LocationCar
	}
	return LocationHome
}

// TrackingMode describes how an inventory item is identified.
type TrackingMode string

const (
	TrackingNone   TrackingMode = "none"
	TrackingSerial TrackingMode = "serial"
	TrackingLot    TrackingMode = "lot"
)

// ItemStatus is the lifecycle status of an inventory item.
type ItemStatus string

const (
	ItemActive  ItemStatus = "active"
	ItemMissing ItemStatus = "missing"
)

// CountType selects the scope of a stock count session.
type CountType string

const (
	CountCar   CountType = "car"
	CountTotal CountType = "total"
)

// Valid reports whether the count type is known.
func (c CountType) Valid() bool {
	return c == CountCar || c == CountTotal
}

// SessionStatus is the lifecycle status of a stock count session.
type SessionStatus string

const (
	SessionInProgress  SessionStatus = "in_progress"
	SessionReconciling SessionStatus = "reconciling"
	SessionCompleted   SessionStatus = "completed"
)

// Product is a thin lookup record mapping a GTIN to a product identity.
// Full product management lives outside this service; the reconciliation
// engine only needs GTIN resolution for scans.
type Product struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Name      string    `gorm:"size:255" json:"name"`
	GTIN      string    `gorm:"column:gtin;uniqueIndex;size:14" json:"gtin"`
	CreatedAt time.Time `json:"created_at"`
}

// InventoryItem is one physical stock record.
//
// Invariants enforced by the store and applier:
//   - serial-tracked items always have Quantity == 1
//   - a serial number appears at most once across the whole inventory
//   - Quantity never goes negative; a record at zero is deleted
type InventoryItem struct {
	ID             string       `gorm:"primaryKey;size:36" json:"id"`
	ProductID      string       `gorm:"size:36;index" json:"product_id"`
	Location       Location     `gorm:"size:8;index" json:"location"`
	Quantity       int          `json:"quantity"`
	TrackingMode   TrackingMode `gorm:"size:8" json:"tracking_mode"`
	SerialNumber   string       `gorm:"size:64;index" json:"serial_number,omitempty"`
	LotNumber      string       `gorm:"size:64;index" json:"lot_number,omitempty"`
	ExpirationDate string       `gorm:"size:10" json:"expiration_date,omitempty"`
	Status         ItemStatus   `gorm:"size:8;default:'active'" json:"status"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

// Identity returns the matching key of the item under the identity
// precedence rules (serial, then lot+product, then bare product).
func (i InventoryItem) Identity() string {
	return IdentityKey(i.ProductID, i.SerialNumber, i.LotNumber)
}

// StockCountSession is one physical counting exercise. It owns the
// ScannedItem records captured while counting and becomes terminal once
// reconciliation is applied.
type StockCountSession struct {
	ID          string        `gorm:"primaryKey;size:36" json:"id"`
	CountType   CountType     `gorm:"size:8" json:"count_type"`
	Status      SessionStatus `gorm:"size:16;index" json:"status"`
	CreatedAt   time.Time     `json:"created_at"`
	CompletedAt *time.Time    `json:"completed_at,omitempty"`
}

// ScannedItem is one barcode read captured during a session.
// Immutable once created.
type ScannedItem struct {
	ID              string    `gorm:"primaryKey;size:36" json:"id"`
	SessionID       string    `gorm:"size:36;index" json:"session_id"`
	ProductID       string    `gorm:"size:36;index" json:"product_id"`
	ScannedLocation Location  `gorm:"size:8" json:"scanned_location"`
	Quantity        int       `json:"quantity"`
	SerialNumber    string    `gorm:"size:64" json:"serial_number,omitempty"`
	LotNumber       string    `gorm:"size:64" json:"lot_number,omitempty"`
	ExpirationDate  string    `gorm:"size:10" json:"expiration_date,omitempty"`
	ExistsInHome    bool      `json:"exists_in_home"`
	CreatedAt       time.Time `json:"created_at"`
}

// Identity returns the matching key of the scan under the identity
// precedence rules.
func (s ScannedItem) Identity() string {
	return IdentityKey(s.ProductID, s.SerialNumber, s.LotNumber)
}

// ReconciliationEntry records one applied adjustment for a session.
// The (SessionID, AdjustmentKey) pair is unique, which makes a retried
// apply skip adjustments that already committed.
type ReconciliationEntry struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	SessionID     string    `gorm:"size:36;index:idx_session_key,unique" json:"session_id"`
	AdjustmentKey string    `gorm:"size:128;index:idx_session_key,unique" json:"adjustment_key"`
	Kind          string    `gorm:"size:24" json:"kind"`
	CreatedAt     time.Time `json:"created_at"`
}

// IdentityKey builds the matching key for a (product, serial, lot)
// triple. Serial wins over lot, lot over bare product.
func IdentityKey(productID, serialNumber, lotNumber string) string {
	switch {
	case serialNumber != "":
		return "serial|" + productID + "|" + serialNumber
	case lotNumber != "":
		return "lot|" + productID + "|" + lotNumber
	default:
		return "product|" + productID
	}
}
