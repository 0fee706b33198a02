package stockcount

import (
	"errors"

	"github.com/ValtisD/CardiacStockTracker-sub001/core/logger"
	"github.com/ValtisD/CardiacStockTracker-sub001/feature/inventory"
	"github.com/ValtisD/CardiacStockTracker-sub001/feature/inventory/models"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for stock count sessions.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the stock count routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/stock-counts")
	group.Post("/", h.HandleCreateSession)
	group.Get("/:id", h.HandleGetSession)
	group.Post("/:id/scans", h.HandleRecordScan)
	group.Post("/:id/reconcile", h.HandleBeginReconciliation)
	group.Get("/:id/discrepancies", h.HandleDiscrepancies)
	group.Put("/:id/plan/transfers/:scanId", h.HandleDecideTransfer)
	group.Put("/:id/plan/new-items/:scanId", h.HandleDecideNewItem)
	group.Delete("/:id/plan/decisions/:scanId", h.HandleClearDecision)
	group.Put("/:id/plan/missing/:itemId", h.HandleDecideMissing)
	group.Post("/:id/plan/missing/:itemId/delete", h.HandleDeleteInvestigated)
	group.Get("/:id/missing", h.HandleMissingWorklist)
	group.Post("/:id/apply", h.HandleApply)
}

// HandleCreateSession starts a new stock count session.
// @Summary Create Stock Count
// @Description Start a new stock count session of the given type.
// @Tags stock-counts
// @Accept json
// @Produce json
// @Param body body object true "{\"count_type\": \"car|total\"}"
// @Success 201 {object} models.StockCountSession
// @Failure 400 {object} map[string]string "Bad Request"
// @Router /stock-counts [post]
func (h *Handler) HandleCreateSession(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	var req struct {
		CountType models.CountType `json:"count_type"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}

	session, err := h.service.CreateSession(c.Context(), req.CountType)
	if err != nil {
		l.Warn("Session create failed", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(session)
}

// HandleGetSession returns a session's current state.
// @Summary Get Stock Count
// @Tags stock-counts
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} models.StockCountSession
// @Failure 404 {object} map[string]string "Not Found"
// @Router /stock-counts/{id} [get]
func (h *Handler) HandleGetSession(c *fiber.Ctx) error {
	session, err := h.service.GetSession(c.Context(), c.Params("id"))
	if errors.Is(err, inventory.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "session not found"})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(session)
}

// HandleRecordScan captures one barcode scan for the session.
// @Summary Record Scan
// @Description Decode a barcode and record the scan against the session.
// @Tags stock-counts
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param body body object true "{\"barcode\": \"...\", \"location\": \"home|car\", \"quantity\": 1}"
// @Success 201 {object} models.ScannedItem
// @Failure 400 {object} map[string]string "Bad Request"
// @Router /stock-counts/{id}/scans [post]
func (h *Handler) HandleRecordScan(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	var req struct {
		Barcode  string          `json:"barcode"`
		Location models.Location `json:"location"`
		Quantity int             `json:"quantity"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}

	item, err := h.service.RecordScan(c.Context(), c.Params("id"), req.Barcode, req.Location, req.Quantity)
	if errors.Is(err, inventory.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "session not found"})
	}
	if err != nil {
		l.Warn("Scan rejected", zap.String("session_id", c.Params("id")), zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(item)
}

// HandleBeginReconciliation moves the session into the reconciling
// state.
// @Summary Begin Reconciliation
// @Tags stock-counts
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} models.StockCountSession
// @Failure 409 {object} map[string]string "Invalid state"
// @Router /stock-counts/{id}/reconcile [post]
func (h *Handler) HandleBeginReconciliation(c *fiber.Ctx) error {
	session, err := h.service.BeginReconciliation(c.Context(), c.Params("id"))
	if errors.Is(err, inventory.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "session not found"})
	}
	if err != nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(session)
}

// HandleDiscrepancies classifies the session's scans.
// @Summary List Discrepancies
// @Description Classify scans against inventory into matched, found and missing.
// @Tags stock-counts
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} Classification
// @Router /stock-counts/{id}/discrepancies [get]
func (h *Handler) HandleDiscrepancies(c *fiber.Ctx) error {
	cls, err := h.service.Discrepancies(c.Context(), c.Params("id"))
	if errors.Is(err, inventory.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "session not found"})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(cls)
}

// HandleDecideTransfer records a transfer decision for a found scan.
// @Summary Decide Transfer
// @Tags stock-counts
// @Accept json
// @Param id path string true "Session ID"
// @Param scanId path string true "Scanned item ID"
// @Param body body object false "{\"quantity\": 2}"
// @Success 204
// @Failure 409 {object} map[string]string "Conflict"
// @Router /stock-counts/{id}/plan/transfers/{scanId} [put]
func (h *Handler) HandleDecideTransfer(c *fiber.Ctx) error {
	var req struct {
		Quantity int `json:"quantity"`
	}
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
		}
	}

	err := h.service.DecideTransfer(c.Context(), c.Params("id"), c.Params("scanId"), req.Quantity)
	return h.planDecisionResponse(c, err)
}

// HandleDecideNewItem records an add-new-stock decision for a found
// scan.
// @Summary Decide New Item
// @Tags stock-counts
// @Accept json
// @Param id path string true "Session ID"
// @Param scanId path string true "Scanned item ID"
// @Param body body object false "{\"quantity\": 2}"
// @Success 204
// @Failure 409 {object} map[string]string "Conflict"
// @Router /stock-counts/{id}/plan/new-items/{scanId} [put]
func (h *Handler) HandleDecideNewItem(c *fiber.Ctx) error {
	var req struct {
		Quantity int `json:"quantity"`
	}
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
		}
	}

	err := h.service.DecideNewItem(c.Context(), c.Params("id"), c.Params("scanId"), req.Quantity)
	return h.planDecisionResponse(c, err)
}

// HandleClearDecision removes a transfer or new-item decision.
// @Summary Clear Decision
// @Tags stock-counts
// @Param id path string true "Session ID"
// @Param scanId path string true "Scanned item ID"
// @Success 204
// @Router /stock-counts/{id}/plan/decisions/{scanId} [delete]
func (h *Handler) HandleClearDecision(c *fiber.Ctx) error {
	err := h.service.ClearDecision(c.Context(), c.Params("id"), c.Params("scanId"))
	return h.planDecisionResponse(c, err)
}

// HandleDecideMissing records a disposition for a missing item.
// @Summary Decide Missing Disposition
// @Tags stock-counts
// @Accept json
// @Param id path string true "Session ID"
// @Param itemId path string true "Inventory item ID"
// @Param body body object true "{\"action\": \"mark_missing|derecognized\"}"
// @Success 204
// @Failure 409 {object} map[string]string "Conflict"
// @Router /stock-counts/{id}/plan/missing/{itemId} [put]
func (h *Handler) HandleDecideMissing(c *fiber.Ctx) error {
	var req struct {
		Action MissingAction `json:"action"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}

	err := h.service.DecideMissing(c.Context(), c.Params("id"), c.Params("itemId"), req.Action)
	return h.planDecisionResponse(c, err)
}

// HandleDeleteInvestigated schedules the hard delete of an investigated
// missing record.
// @Summary Delete Investigated Item
// @Tags stock-counts
// @Param id path string true "Session ID"
// @Param itemId path string true "Inventory item ID"
// @Success 204
// @Failure 409 {object} map[string]string "Conflict"
// @Router /stock-counts/{id}/plan/missing/{itemId}/delete [post]
func (h *Handler) HandleDeleteInvestigated(c *fiber.Ctx) error {
	err := h.service.DeleteInvestigated(c.Context(), c.Params("id"), c.Params("itemId"))
	return h.planDecisionResponse(c, err)
}

// HandleMissingWorklist returns the missing items still requiring
// attention under the current plan.
// @Summary Missing Worklist
// @Tags stock-counts
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {array} MissingItem
// @Router /stock-counts/{id}/missing [get]
func (h *Handler) HandleMissingWorklist(c *fiber.Ctx) error {
	missing, err := h.service.MissingWorklist(c.Context(), c.Params("id"))
	if errors.Is(err, inventory.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "session not found"})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(missing)
}

// HandleApply submits the plan and completes the session.
// @Summary Apply Reconciliation
// @Description Execute all planned adjustments in one transaction. Safe to retry.
// @Tags stock-counts
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} ReconciliationSummary
// @Failure 409 {object} map[string]string "Conflict"
// @Router /stock-counts/{id}/apply [post]
func (h *Handler) HandleApply(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	summary, err := h.service.Apply(c.Context(), c.Params("id"))
	var recErr *ReconciliationError
	switch {
	case errors.Is(err, inventory.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "session not found"})
	case errors.As(err, &recErr):
		l.Warn("Apply rejected", zap.String("session_id", c.Params("id")), zap.Error(err))
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	case err != nil:
		l.Error("Apply failed", zap.String("session_id", c.Params("id")), zap.Error(err))
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(summary)
}

// planDecisionResponse maps plan mutation outcomes onto HTTP statuses.
func (h *Handler) planDecisionResponse(c *fiber.Ctx, err error) error {
	var dupErr *DuplicateSerialError
	switch {
	case err == nil:
		return c.SendStatus(fiber.StatusNoContent)
	case errors.Is(err, inventory.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "session not found"})
	case errors.As(err, &dupErr):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	default:
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	}
}
