package inventory

import (
	"errors"

	"github.com/ValtisD/CardiacStockTracker-sub001/core/logger"
	"github.com/ValtisD/CardiacStockTracker-sub001/feature/inventory/models"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for inventory.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the inventory routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/inventory")
	group.Get("/", h.HandleListItems)
	group.Get("/:id", h.HandleGetItem)
	group.Patch("/:id/quantity", h.HandleAdjustQuantity)

	app.Post("/products", h.HandleRegisterProduct)
}

// HandleListItems lists inventory items.
// @Summary List Inventory
// @Description List inventory items, optionally filtered by location.
// @Tags inventory
// @Produce json
// @Param location query string false "Location filter (home|car)"
// @Success 200 {array} models.InventoryItem
// @Failure 400 {object} map[string]string "Bad Request"
// @Router /inventory [get]
func (h *Handler) HandleListItems(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	items, err := h.service.ListItems(c.Context(), models.Location(c.Query("location")))
	if err != nil {
		l.Warn("Inventory list failed", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(items)
}

// HandleGetItem returns a single inventory item.
// @Summary Get Inventory Item
// @Tags inventory
// @Produce json
// @Param id path string true "Inventory item ID"
// @Success 200 {object} models.InventoryItem
// @Failure 404 {object} map[string]string "Not Found"
// @Router /inventory/{id} [get]
func (h *Handler) HandleGetItem(c *fiber.Ctx) error {
	item, err := h.service.GetItem(c.Context(), c.Params("id"))
	if errors.Is(err, ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "inventory item not found"})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(item)
}

// HandleAdjustQuantity applies a manual quantity edit.
// @Summary Adjust Quantity
// @Description Add or subtract stock on a record. A record at zero is removed.
// @Tags inventory
// @Accept json
// @Produce json
// @Param id path string true "Inventory item ID"
// @Param body body object true "{\"delta\": -1}"
// @Success 200 {object} models.InventoryItem
// @Failure 409 {object} map[string]string "Insufficient quantity"
// @Router /inventory/{id}/quantity [patch]
func (h *Handler) HandleAdjustQuantity(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	var req struct {
		Delta int `json:"delta"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}

	item, err := h.service.AdjustQuantity(c.Context(), c.Params("id"), req.Delta)
	switch {
	case errors.Is(err, ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "inventory item not found"})
	case errors.Is(err, ErrInsufficientQuantity):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "insufficient quantity"})
	case err != nil:
		l.Error("Quantity adjustment failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(item)
}

// HandleRegisterProduct creates a GTIN lookup record.
// @Summary Register Product
// @Tags inventory
// @Accept json
// @Produce json
// @Param body body object true "{\"name\": \"...\", \"gtin\": \"...\"}"
// @Success 201 {object} models.Product
// @Router /products [post]
func (h *Handler) HandleRegisterProduct(c *fiber.Ctx) error {
	var req struct {
		Name string `json:"name"`
		GTIN string `json:"gtin"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}

	p, err := h.service.RegisterProduct(c.Context(), req.Name, req.GTIN)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(p)
}
