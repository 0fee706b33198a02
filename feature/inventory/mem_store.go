package inventory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/ValtisD/CardiacStockTracker-sub001/feature/inventory/models"
)

// MemStore is an in-memory Store implementation. It backs the unit
// tests and local runs without MySQL. Transact clones the state and
// swaps it in on success, which gives the same all-or-nothing behavior
// the applier expects from the SQL store.
type MemStore struct {
	mu    sync.Mutex
	state *memState
	// inTx marks a transactional view; views are confined to a single
	// goroutine and skip locking.
	inTx bool
}

type memState struct {
	products map[string]models.Product // by GTIN
	sessions map[string]models.StockCountSession
	scans    map[string][]models.ScannedItem // by session ID
	items    map[string]models.InventoryItem
	ledger   map[string]map[string]string // session ID -> key -> kind
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{state: newMemState()}
}

func newMemState() *memState {
	return &memState{
		products: make(map[string]models.Product),
		sessions: make(map[string]models.StockCountSession),
		scans:    make(map[string][]models.ScannedItem),
		items:    make(map[string]models.InventoryItem),
		ledger:   make(map[string]map[string]string),
	}
}

func (st *memState) clone() *memState {
	c := newMemState()
	for k, v := range st.products {
		c.products[k] = v
	}
	for k, v := range st.sessions {
		c.sessions[k] = v
	}
	for k, v := range st.scans {
		c.scans[k] = append([]models.ScannedItem(nil), v...)
	}
	for k, v := range st.items {
		c.items[k] = v
	}
	for k, v := range st.ledger {
		keys := make(map[string]string, len(v))
		for kk, vv := range v {
			keys[kk] = vv
		}
		c.ledger[k] = keys
	}
	return c
}

func (s *MemStore) lock() {
	if !s.inTx {
		s.mu.Lock()
	}
}

func (s *MemStore) unlock() {
	if !s.inTx {
		s.mu.Unlock()
	}
}

func (s *MemStore) GetProductByGTIN(_ context.Context, gtin string) (*models.Product, error) {
	s.lock()
	defer s.unlock()
	p, ok := s.state.products[gtin]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (s *MemStore) CreateProduct(_ context.Context, p *models.Product) error {
	s.lock()
	defer s.unlock()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	s.state.products[p.GTIN] = *p
	return nil
}

func (s *MemStore) CreateSession(_ context.Context, sess *models.StockCountSession) error {
	s.lock()
	defer s.unlock()
	if sess.CreatedAt.IsZero() {
		sess.CreatedAt = time.Now()
	}
	s.state.sessions[sess.ID] = *sess
	return nil
}

func (s *MemStore) GetSession(_ context.Context, id string) (*models.StockCountSession, error) {
	s.lock()
	defer s.unlock()
	sess, ok := s.state.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &sess, nil
}

func (s *MemStore) UpdateSessionStatus(_ context.Context, id string, status models.SessionStatus) error {
	s.lock()
	defer s.unlock()
	sess, ok := s.state.sessions[id]
	if !ok {
		return ErrNotFound
	}
	sess.Status = status
	if status == models.SessionCompleted {
		now := time.Now()
		sess.CompletedAt = &now
	}
	s.state.sessions[id] = sess
	return nil
}

func (s *MemStore) CreateScannedItem(_ context.Context, item *models.ScannedItem) error {
	s.lock()
	defer s.unlock()
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now()
	}
	s.state.scans[item.SessionID] = append(s.state.scans[item.SessionID], *item)
	return nil
}

func (s *MemStore) ListScannedItems(_ context.Context, sessionID string) ([]models.ScannedItem, error) {
	s.lock()
	defer s.unlock()
	return append([]models.ScannedItem(nil), s.state.scans[sessionID]...), nil
}

func (s *MemStore) ListInventory(_ context.Context, location models.Location) ([]models.InventoryItem, error) {
	s.lock()
	defer s.unlock()
	var items []models.InventoryItem
	for _, item := range s.state.items {
		if location == "" || item.Location == location {
			items = append(items, item)
		}
	}
	sortItems(items)
	return items, nil
}

func (s *MemStore) GetInventoryItem(_ context.Context, id string) (*models.InventoryItem, error) {
	s.lock()
	defer s.unlock()
	item, ok := s.state.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &item, nil
}

func (s *MemStore) FindItems(_ context.Context, q ItemQuery) ([]models.InventoryItem, error) {
	s.lock()
	defer s.unlock()
	var items []models.InventoryItem
	for _, item := range s.state.items {
		if q.ProductID != "" && item.ProductID != q.ProductID {
			continue
		}
		if q.Location != "" && item.Location != q.Location {
			continue
		}
		if q.SerialNumber != "" && item.SerialNumber != q.SerialNumber {
			continue
		}
		if q.LotNumber != "" && item.LotNumber != q.LotNumber {
			continue
		}
		if q.Status != "" && item.Status != q.Status {
			continue
		}
		if q.Bare && (item.SerialNumber != "" || item.LotNumber != "") {
			continue
		}
		items = append(items, item)
	}
	sortItems(items)
	return items, nil
}

func (s *MemStore) FindBySerial(_ context.Context, serialNumber string) ([]models.InventoryItem, error) {
	s.lock()
	defer s.unlock()
	var items []models.InventoryItem
	for _, item := range s.state.items {
		if item.SerialNumber == serialNumber && serialNumber != "" {
			items = append(items, item)
		}
	}
	sortItems(items)
	return items, nil
}

func (s *MemStore) CreateInventoryItem(_ context.Context, item *models.InventoryItem) error {
	s.lock()
	defer s.unlock()
	now := time.Now()
	if item.CreatedAt.IsZero() {
		item.CreatedAt = now
	}
	item.UpdatedAt = now
	if item.Status == "" {
		item.Status = models.ItemActive
	}
	s.state.items[item.ID] = *item
	return nil
}

func (s *MemStore) AddQuantity(_ context.Context, id string, delta int) error {
	s.lock()
	defer s.unlock()
	item, ok := s.state.items[id]
	if !ok {
		return ErrNotFound
	}
	if item.Quantity+delta < 0 {
		return ErrInsufficientQuantity
	}
	item.Quantity += delta
	item.UpdatedAt = time.Now()
	s.state.items[id] = item
	return nil
}

func (s *MemStore) UpdateItemLocation(_ context.Context, id string, location models.Location) error {
	s.lock()
	defer s.unlock()
	item, ok := s.state.items[id]
	if !ok {
		return ErrNotFound
	}
	item.Location = location
	item.UpdatedAt = time.Now()
	s.state.items[id] = item
	return nil
}

func (s *MemStore) SetItemStatus(_ context.Context, id string, status models.ItemStatus) error {
	s.lock()
	defer s.unlock()
	item, ok := s.state.items[id]
	if !ok {
		return ErrNotFound
	}
	item.Status = status
	item.UpdatedAt = time.Now()
	s.state.items[id] = item
	return nil
}

func (s *MemStore) DeleteInventoryItem(_ context.Context, id string) error {
	s.lock()
	defer s.unlock()
	if _, ok := s.state.items[id]; !ok {
		return ErrNotFound
	}
	delete(s.state.items, id)
	return nil
}

func (s *MemStore) AppliedKeys(_ context.Context, sessionID string) (map[string]string, error) {
	s.lock()
	defer s.unlock()
	keys := make(map[string]string, len(s.state.ledger[sessionID]))
	for k, v := range s.state.ledger[sessionID] {
		keys[k] = v
	}
	return keys, nil
}

func (s *MemStore) RecordApplied(_ context.Context, sessionID, adjustmentKey, kind string) error {
	s.lock()
	defer s.unlock()
	if s.state.ledger[sessionID] == nil {
		s.state.ledger[sessionID] = make(map[string]string)
	}
	s.state.ledger[sessionID][adjustmentKey] = kind
	return nil
}

// Transact clones the current state, runs fn against the clone, and
// swaps the clone in only when fn succeeds.
func (s *MemStore) Transact(_ context.Context, fn func(Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := s.state.clone()
	tx := &MemStore{state: clone, inTx: true}
	if err := fn(tx); err != nil {
		return err
	}
	s.state = clone
	return nil
}

func sortItems(items []models.InventoryItem) {
	sort.Slice(items, func(i, j int) bool {
		if items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].ID < items[j].ID
		}
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
}
