package stockcount

import (
	"github.com/ValtisD/CardiacStockTracker-sub001/core/storage"
	"github.com/ValtisD/CardiacStockTracker-sub001/feature/inventory"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Feature implements the loader.Feature interface.
type Feature struct {
	service *Service
	handler *Handler
}

// NewFeature creates a new Stock Count feature. client may be nil to
// run without the audit archive.
func NewFeature(store inventory.Store, client storage.Client, auditBucket string, logger *zap.Logger) *Feature {
	var archiver *Archiver
	if client != nil {
		archiver = NewArchiver(client, auditBucket, logger)
	}
	svc := NewService(store, archiver, logger)
	h := NewHandler(svc)
	return &Feature{service: svc, handler: h}
}

// Service returns the feature's service for collaborating features.
func (f *Feature) Service() *Service {
	return f.service
}

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return "stockcount"
}

// IsEnabled checks if the feature is enabled.
func (f *Feature) IsEnabled() bool {
	return true
}

// Load registers the feature's routes.
func (f *Feature) Load(app fiber.Router) error {
	f.handler.RegisterRoutes(app)
	return nil
}
