package inventory

import (
	"context"
	"errors"

	"github.com/ValtisD/CardiacStockTracker-sub001/feature/inventory/models"
)

// ErrNotFound is returned when a referenced record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrInsufficientQuantity is returned by AddQuantity when the delta
// would drive a record's quantity negative.
var ErrInsufficientQuantity = errors.New("insufficient quantity")

// ItemQuery narrows an inventory lookup. Zero-valued fields are not
// filtered on, except Bare which restricts to records carrying neither
// serial nor lot.
type ItemQuery struct {
	ProductID    string
	Location     models.Location
	SerialNumber string
	LotNumber    string
	Status       models.ItemStatus
	Bare         bool
}

// Store is the persistence port shared by the inventory feature and the
// reconciliation engine. Implementations must provide at least
// read-committed isolation inside Transact; the applier relies on that
// instead of inventing its own locking.
type Store interface {
	// Products
	GetProductByGTIN(ctx context.Context, gtin string) (*models.Product, error)
	CreateProduct(ctx context.Context, p *models.Product) error

	// Sessions
	CreateSession(ctx context.Context, s *models.StockCountSession) error
	GetSession(ctx context.Context, id string) (*models.StockCountSession, error)
	UpdateSessionStatus(ctx context.Context, id string, status models.SessionStatus) error

	// Scans
	CreateScannedItem(ctx context.Context, s *models.ScannedItem) error
	ListScannedItems(ctx context.Context, sessionID string) ([]models.ScannedItem, error)

	// Inventory
	ListInventory(ctx context.Context, location models.Location) ([]models.InventoryItem, error)
	GetInventoryItem(ctx context.Context, id string) (*models.InventoryItem, error)
	FindItems(ctx context.Context, q ItemQuery) ([]models.InventoryItem, error)
	FindBySerial(ctx context.Context, serialNumber string) ([]models.InventoryItem, error)
	CreateInventoryItem(ctx context.Context, item *models.InventoryItem) error
	// AddQuantity atomically adds delta to a record's quantity, failing
	// with ErrInsufficientQuantity when the result would be negative.
	AddQuantity(ctx context.Context, id string, delta int) error
	UpdateItemLocation(ctx context.Context, id string, location models.Location) error
	SetItemStatus(ctx context.Context, id string, status models.ItemStatus) error
	DeleteInventoryItem(ctx context.Context, id string) error

	// Reconciliation ledger
	AppliedKeys(ctx context.Context, sessionID string) (map[string]string, error)
	RecordApplied(ctx context.Context, sessionID, adjustmentKey, kind string) error

	// Transact runs fn inside a transaction. Mutations made through the
	// Store passed to fn are committed together or not at all.
	Transact(ctx context.Context, fn func(Store) error) error
}
