package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ValtisD/CardiacStockTracker-sub001/feature/inventory/models"

	"gorm.io/gorm"
)

// GormStore is the MySQL-backed Store implementation.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore creates a Store backed by the given gorm connection.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// Migrate creates or updates the schema for all store-owned tables.
func (s *GormStore) Migrate() error {
	return s.db.AutoMigrate(
		&models.Product{},
		&models.InventoryItem{},
		&models.StockCountSession{},
		&models.ScannedItem{},
		&models.ReconciliationEntry{},
	)
}

func (s *GormStore) GetProductByGTIN(ctx context.Context, gtin string) (*models.Product, error) {
	var p models.Product
	err := s.db.WithContext(ctx).Where("gtin = ?", gtin).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up product by gtin: %w", err)
	}
	return &p, nil
}

func (s *GormStore) CreateProduct(ctx context.Context, p *models.Product) error {
	return s.db.WithContext(ctx).Create(p).Error
}

func (s *GormStore) CreateSession(ctx context.Context, sess *models.StockCountSession) error {
	return s.db.WithContext(ctx).Create(sess).Error
}

func (s *GormStore) GetSession(ctx context.Context, id string) (*models.StockCountSession, error) {
	var sess models.StockCountSession
	err := s.db.WithContext(ctx).First(&sess, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	return &sess, nil
}

func (s *GormStore) UpdateSessionStatus(ctx context.Context, id string, status models.SessionStatus) error {
	updates := map[string]any{"status": status}
	if status == models.SessionCompleted {
		now := time.Now()
		updates["completed_at"] = &now
	}
	result := s.db.WithContext(ctx).
		Model(&models.StockCountSession{}).
		Where("id = ?", id).
		Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to update session status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) CreateScannedItem(ctx context.Context, item *models.ScannedItem) error {
	return s.db.WithContext(ctx).Create(item).Error
}

func (s *GormStore) ListScannedItems(ctx context.Context, sessionID string) ([]models.ScannedItem, error) {
	var items []models.ScannedItem
	err := s.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at, id").
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list scanned items: %w", err)
	}
	return items, nil
}

func (s *GormStore) ListInventory(ctx context.Context, location models.Location) ([]models.InventoryItem, error) {
	q := s.db.WithContext(ctx).Order("created_at, id")
	if location != "" {
		q = q.Where("location = ?", location)
	}
	var items []models.InventoryItem
	if err := q.Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to list inventory: %w", err)
	}
	return items, nil
}

func (s *GormStore) GetInventoryItem(ctx context.Context, id string) (*models.InventoryItem, error) {
	var item models.InventoryItem
	err := s.db.WithContext(ctx).First(&item, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load inventory item: %w", err)
	}
	return &item, nil
}

func (s *GormStore) FindItems(ctx context.Context, q ItemQuery) ([]models.InventoryItem, error) {
	query := s.db.WithContext(ctx).Model(&models.InventoryItem{})
	if q.ProductID != "" {
		query = query.Where("product_id = ?", q.ProductID)
	}
	if q.Location != "" {
		query = query.Where("location = ?", q.Location)
	}
	if q.SerialNumber != "" {
		query = query.Where("serial_number = ?", q.SerialNumber)
	}
	if q.LotNumber != "" {
		query = query.Where("lot_number = ?", q.LotNumber)
	}
	if q.Status != "" {
		query = query.Where("status = ?", q.Status)
	}
	if q.Bare {
		query = query.Where("serial_number = '' AND lot_number = ''")
	}
	var items []models.InventoryItem
	if err := query.Order("created_at, id").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to find inventory items: %w", err)
	}
	return items, nil
}

func (s *GormStore) FindBySerial(ctx context.Context, serialNumber string) ([]models.InventoryItem, error) {
	var items []models.InventoryItem
	err := s.db.WithContext(ctx).
		Where("serial_number = ?", serialNumber).
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find items by serial: %w", err)
	}
	return items, nil
}

func (s *GormStore) CreateInventoryItem(ctx context.Context, item *models.InventoryItem) error {
	return s.db.WithContext(ctx).Create(item).Error
}

// AddQuantity applies the delta with a quantity guard in the WHERE
// clause so a concurrent mutation between planning and apply surfaces
// as ErrInsufficientQuantity instead of a negative balance.
func (s *GormStore) AddQuantity(ctx context.Context, id string, delta int) error {
	result := s.db.WithContext(ctx).
		Model(&models.InventoryItem{}).
		Where("id = ? AND quantity + ? >= 0", id, delta).
		Update("quantity", gorm.Expr("quantity + ?", delta))
	if result.Error != nil {
		return fmt.Errorf("failed to adjust quantity: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		// Distinguish a missing record from an underflow.
		if _, err := s.GetInventoryItem(ctx, id); err != nil {
			return err
		}
		return ErrInsufficientQuantity
	}
	return nil
}

func (s *GormStore) UpdateItemLocation(ctx context.Context, id string, location models.Location) error {
	result := s.db.WithContext(ctx).
		Model(&models.InventoryItem{}).
		Where("id = ?", id).
		Update("location", location)
	if result.Error != nil {
		return fmt.Errorf("failed to update item location: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) SetItemStatus(ctx context.Context, id string, status models.ItemStatus) error {
	result := s.db.WithContext(ctx).
		Model(&models.InventoryItem{}).
		Where("id = ?", id).
		Update("status", status)
	if result.Error != nil {
		return fmt.Errorf("failed to update item status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) DeleteInventoryItem(ctx context.Context, id string) error {
	result := s.db.WithContext(ctx).Delete(&models.InventoryItem{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete inventory item: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) AppliedKeys(ctx context.Context, sessionID string) (map[string]string, error) {
	var entries []models.ReconciliationEntry
	err := s.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load reconciliation ledger: %w", err)
	}
	keys := make(map[string]string, len(entries))
	for _, e := range entries {
		keys[e.AdjustmentKey] = e.Kind
	}
	return keys, nil
}

func (s *GormStore) RecordApplied(ctx context.Context, sessionID, adjustmentKey, kind string) error {
	entry := models.ReconciliationEntry{
		SessionID:     sessionID,
		AdjustmentKey: adjustmentKey,
		Kind:          kind,
	}
	return s.db.WithContext(ctx).Create(&entry).Error
}

func (s *GormStore) Transact(ctx context.Context, fn func(Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx})
	})
}
