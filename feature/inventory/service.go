package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/ValtisD/CardiacStockTracker-sub001/feature/inventory/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service handles inventory operations.
type Service struct {
	store  Store
	logger *zap.Logger
}

// NewService creates a new inventory service.
func NewService(store Store, logger *zap.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// Store exposes the underlying store port to collaborating features.
func (s *Service) Store() Store {
	return s.store
}

// ListItems returns all inventory items, optionally filtered by location.
func (s *Service) ListItems(ctx context.Context, location models.Location) ([]models.InventoryItem, error) {
	if location != "" && !location.Valid() {
		return nil, fmt.Errorf("unknown location %q", location)
	}
	return s.store.ListInventory(ctx, location)
}

// GetItem returns a single inventory item.
func (s *Service) GetItem(ctx context.Context, id string) (*models.InventoryItem, error) {
	return s.store.GetInventoryItem(ctx, id)
}

// AdjustQuantity applies a manual quantity edit. A record whose
// quantity reaches zero is removed from the store.
func (s *Service) AdjustQuantity(ctx context.Context, id string, delta int) (*models.InventoryItem, error) {
	if delta == 0 {
		return s.store.GetInventoryItem(ctx, id)
	}

	var result *models.InventoryItem
	err := s.store.Transact(ctx, func(tx Store) error {
		if err := tx.AddQuantity(ctx, id, delta); err != nil {
			return err
		}
		item, err := tx.GetInventoryItem(ctx, id)
		if err != nil {
			return err
		}
		if item.Quantity == 0 {
			if err := tx.DeleteInventoryItem(ctx, id); err != nil {
				return err
			}
			item.Quantity = 0
		}
		result = item
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// RegisterProduct creates a product lookup record for a GTIN so scans
// can resolve it. Full product management lives in another service.
func (s *Service) RegisterProduct(ctx context.Context, name, gtin string) (*models.Product, error) {
	if gtin == "" {
		return nil, errors.New("gtin is required")
	}
	if existing, err := s.store.GetProductByGTIN(ctx, gtin); err == nil {
		return existing, nil
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	p := &models.Product{
		ID:   uuid.NewString(),
		Name: name,
		GTIN: gtin,
	}
	if err := s.store.CreateProduct(ctx, p); err != nil {
		return nil, err
	}
	s.logger.Info("Registered product", zap.String("product_id", p.ID), zap.String("gtin", gtin))
	return p, nil
}
