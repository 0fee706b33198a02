package stockcount

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ValtisD/CardiacStockTracker-sub001/core/gs1"
	"github.com/ValtisD/CardiacStockTracker-sub001/feature/inventory"
	"github.com/ValtisD/CardiacStockTracker-sub001/feature/inventory/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service drives the stock count lifecycle: scanning, classification,
// interactive plan resolution and the final apply.
type Service struct {
	store    inventory.Store
	applier  *Applier
	archiver *Archiver // optional
	logger   *zap.Logger

	// Plans are ephemeral: they live in memory between the start of
	// reconciliation and a successful apply. One operator works one
	// session, so a single mutex over the registry is enough.
	mu    sync.Mutex
	plans map[string]*planEntry
}

// planEntry pins the matched count observed when reconciliation
// started, so a retried apply reports the same summary totals.
type planEntry struct {
	plan    *Plan
	matched int
}

// NewService creates a new stock count service. archiver may be nil to
// disable the audit archive.
func NewService(store inventory.Store, archiver *Archiver, logger *zap.Logger) *Service {
	return &Service{
		store:    store,
		applier:  NewApplier(store, logger),
		archiver: archiver,
		logger:   logger,
		plans:    make(map[string]*planEntry),
	}
}

// CreateSession starts a new stock count.
func (s *Service) CreateSession(ctx context.Context, countType models.CountType) (*models.StockCountSession, error) {
	if !countType.Valid() {
		return nil, fmt.Errorf("unknown count type %q", countType)
	}
	session := &models.StockCountSession{
		ID:        uuid.NewString(),
		CountType: countType,
		Status:    models.SessionInProgress,
		CreatedAt: time.Now(),
	}
	if err := s.store.CreateSession(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// GetSession loads a session.
func (s *Service) GetSession(ctx context.Context, id string) (*models.StockCountSession, error) {
	return s.store.GetSession(ctx, id)
}

// RecordScan decodes a raw barcode, resolves the product, and captures
// a ScannedItem for the session. Only valid while the session is in
// progress.
func (s *Service) RecordScan(ctx context.Context, sessionID, rawBarcode string, location models.Location, quantity int) (*models.ScannedItem, error) {
	session, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status != models.SessionInProgress {
		return nil, fmt.Errorf("session %s is not accepting scans (status %s)", sessionID, session.Status)
	}
	if !location.Valid() {
		return nil, fmt.Errorf("unknown location %q", location)
	}

	gtin := rawBarcode
	var serial, lot, expiration string
	if gs1.IsGS1Barcode(rawBarcode) {
		decoded, err := gs1.Decode(rawBarcode)
		if err != nil {
			return nil, err
		}
		gtin = decoded.GTIN
		serial = decoded.SerialNumber
		lot = decoded.LotNumber
		expiration = decoded.ExpirationDate
	} else {
		gtin = normalizeGTIN(rawBarcode)
	}
	if gtin == "" {
		return nil, fmt.Errorf("barcode %q carries no product code", rawBarcode)
	}

	product, err := s.store.GetProductByGTIN(ctx, gtin)
	if errors.Is(err, inventory.ErrNotFound) {
		return nil, fmt.Errorf("no product registered for GTIN %s", gtin)
	}
	if err != nil {
		return nil, err
	}

	if quantity <= 0 || serial != "" {
		quantity = 1
	}

	// The flag literally reports a counterpart at home, so it is only
	// derived for car scans.
	existsInHome := false
	if location == models.LocationCar {
		existsInHome, err = s.counterpartExists(ctx, product.ID, serial, lot, models.LocationHome)
		if err != nil {
			return nil, err
		}
	}

	item := &models.ScannedItem{
		ID:              uuid.NewString(),
		SessionID:       sessionID,
		ProductID:       product.ID,
		ScannedLocation: location,
		Quantity:        quantity,
		SerialNumber:    serial,
		LotNumber:       lot,
		ExpirationDate:  expiration,
		ExistsInHome:    existsInHome,
		CreatedAt:       time.Now(),
	}
	if err := s.store.CreateScannedItem(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// BeginReconciliation transitions a session from in_progress to
// reconciling. All other transitions are owned by Apply.
func (s *Service) BeginReconciliation(ctx context.Context, sessionID string) (*models.StockCountSession, error) {
	session, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status != models.SessionInProgress {
		return nil, fmt.Errorf("session %s cannot start reconciling from status %s", sessionID, session.Status)
	}
	if err := s.store.UpdateSessionStatus(ctx, sessionID, models.SessionReconciling); err != nil {
		return nil, err
	}
	session.Status = models.SessionReconciling
	return session, nil
}

// Discrepancies classifies the session's scans against the recorded
// inventory.
func (s *Service) Discrepancies(ctx context.Context, sessionID string) (*Classification, error) {
	cls, _, err := s.classify(ctx, sessionID)
	return cls, err
}

// DecideTransfer records a transfer decision for a found scan.
func (s *Service) DecideTransfer(ctx context.Context, sessionID, scannedItemID string, quantity int) error {
	cls, entry, err := s.classifyWithPlan(ctx, sessionID)
	if err != nil {
		return err
	}
	f, ok := cls.FindFound(scannedItemID)
	if !ok {
		return fmt.Errorf("scanned item %s is not an open discrepancy", scannedItemID)
	}
	return entry.plan.SetTransfer(f, quantity)
}

// DecideNewItem records an add-new-stock decision for a found scan.
func (s *Service) DecideNewItem(ctx context.Context, sessionID, scannedItemID string, quantity int) error {
	cls, entry, err := s.classifyWithPlan(ctx, sessionID)
	if err != nil {
		return err
	}
	f, ok := cls.FindFound(scannedItemID)
	if !ok {
		return fmt.Errorf("scanned item %s is not an open discrepancy", scannedItemID)
	}
	return entry.plan.SetNewItem(f, quantity)
}

// ClearDecision removes a transfer or new-item decision.
func (s *Service) ClearDecision(ctx context.Context, sessionID, scannedItemID string) error {
	_, entry, err := s.classifyWithPlan(ctx, sessionID)
	if err != nil {
		return err
	}
	entry.plan.ClearDecision(scannedItemID)
	return nil
}

// DecideMissing records a disposition for a missing inventory item.
func (s *Service) DecideMissing(ctx context.Context, sessionID, inventoryItemID string, action MissingAction) error {
	cls, entry, err := s.classifyWithPlan(ctx, sessionID)
	if err != nil {
		return err
	}
	if _, ok := cls.FindMissing(inventoryItemID); !ok {
		return fmt.Errorf("inventory item %s is not missing in this session", inventoryItemID)
	}
	return entry.plan.SetMissingAction(inventoryItemID, action)
}

// DeleteInvestigated schedules the hard delete of an investigated
// missing record.
func (s *Service) DeleteInvestigated(ctx context.Context, sessionID, inventoryItemID string) error {
	_, entry, err := s.classifyWithPlan(ctx, sessionID)
	if err != nil {
		return err
	}
	return entry.plan.DeleteInvestigated(inventoryItemID)
}

// MissingWorklist returns the missing items still requiring attention
// under the current plan. Recomputed on every call.
func (s *Service) MissingWorklist(ctx context.Context, sessionID string) ([]MissingItem, error) {
	cls, _, err := s.classify(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	entry := s.plans[sessionID]
	s.mu.Unlock()
	var plan *Plan
	if entry != nil {
		plan = entry.plan
	}
	return VisibleMissing(cls.Missing, plan), nil
}

// Apply submits the session's plan. On success the session is
// completed, the plan discarded, and the audit record archived.
func (s *Service) Apply(ctx context.Context, sessionID string) (*ReconciliationSummary, error) {
	session, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status == models.SessionInProgress {
		return nil, fmt.Errorf("session %s has not started reconciling", sessionID)
	}

	s.mu.Lock()
	entry := s.plans[sessionID]
	s.mu.Unlock()
	if entry == nil {
		// Once a session completes its plan is discarded. Rebuilding one
		// against the post-apply inventory would produce a different
		// summary, so a completed session without a plan is rejected.
		// Retries after a partial failure still work: the failed
		// transaction leaves the session reconciling and the plan in
		// place.
		if session.Status == models.SessionCompleted {
			return nil, fmt.Errorf("session %s is already completed", sessionID)
		}
		// An empty plan is legitimate: everything matched.
		_, entry, err = s.classifyWithPlan(ctx, sessionID)
		if err != nil {
			return nil, err
		}
	}

	summary, err := s.applier.Apply(ctx, entry.plan, entry.matched)
	if err != nil {
		return nil, err
	}

	if s.archiver != nil {
		rec := AuditRecord{
			SessionID:      sessionID,
			AppliedAt:      time.Now(),
			Summary:        *summary,
			AdjustmentKeys: appliedKeysOf(ctx, s.store, sessionID),
		}
		if err := s.archiver.Archive(ctx, rec); err != nil {
			// The reconciliation is committed; losing the archive copy
			// is reported but not fatal.
			s.logger.Warn("Failed to archive audit record",
				zap.String("session_id", sessionID), zap.Error(err))
		}
	}

	s.mu.Lock()
	delete(s.plans, sessionID)
	s.mu.Unlock()

	return summary, nil
}

// classify loads the session's scans and relevant inventory and runs
// the classifier. A car count only inspects car stock; a total count
// inspects both locations.
func (s *Service) classify(ctx context.Context, sessionID string) (*Classification, *models.StockCountSession, error) {
	session, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}

	scans, err := s.store.ListScannedItems(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}

	scope := models.Location("")
	if session.CountType == models.CountCar {
		scope = models.LocationCar
	}
	items, err := s.store.ListInventory(ctx, scope)
	if err != nil {
		return nil, nil, err
	}

	cls := Classify(session, scans, items)
	return &cls, session, nil
}

// classifyWithPlan classifies and returns the session's plan entry,
// creating it (and pinning the matched count) on first access.
func (s *Service) classifyWithPlan(ctx context.Context, sessionID string) (*Classification, *planEntry, error) {
	cls, session, err := s.classify(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}
	if session.Status == models.SessionInProgress {
		return nil, nil, fmt.Errorf("session %s has not started reconciling", sessionID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	entry := s.plans[sessionID]
	if entry == nil {
		entry = &planEntry{
			plan:    NewPlan(sessionID),
			matched: len(cls.Matched),
		}
		s.plans[sessionID] = entry
	}
	return cls, entry, nil
}

// counterpartExists reports whether an equivalent record exists at the
// given location.
func (s *Service) counterpartExists(ctx context.Context, productID, serial, lot string, location models.Location) (bool, error) {
	items, err := s.store.FindItems(ctx, inventory.ItemQuery{
		ProductID:    productID,
		Location:     location,
		SerialNumber: serial,
		LotNumber:    lot,
		Status:       models.ItemActive,
		Bare:         serial == "" && lot == "",
	})
	if err != nil {
		return false, err
	}
	return len(items) > 0, nil
}

// appliedKeysOf collects the ledger keys for the audit record, sorted
// by the store implementation's natural order.
func appliedKeysOf(ctx context.Context, store inventory.Store, sessionID string) []string {
	applied, err := store.AppliedKeys(ctx, sessionID)
	if err != nil {
		return nil
	}
	keys := make([]string, 0, len(applied))
	for k := range applied {
		keys = append(keys, k)
	}
	return keys
}

// normalizeGTIN pads a plain numeric product code to GTIN-14, matching
// how EAN-13 and shorter JAN codes are stored on the product record.
func normalizeGTIN(code string) string {
	if len(code) == 0 || len(code) > 14 {
		return ""
	}
	for i := 0; i < len(code); i++ {
		if code[i] < '0' || code[i] > '9' {
			return ""
		}
	}
	for len(code) < 14 {
		code = "0" + code
	}
	return code
}
