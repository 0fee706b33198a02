package stockcount

import (
	"context"
	"errors"
	"testing"

	"github.com/ValtisD/CardiacStockTracker-sub001/feature/inventory"
	"github.com/ValtisD/CardiacStockTracker-sub001/feature/inventory/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupApplyStore(t *testing.T) inventory.Store {
	t.Helper()
	store := inventory.NewMemStore()
	require.NoError(t, store.CreateSession(context.Background(), &models.StockCountSession{
		ID:        "sess-1",
		CountType: models.CountCar,
		Status:    models.SessionReconciling,
	}))
	return store
}

func TestApplier_Transfer(t *testing.T) {
	ctx := context.Background()
	store := setupApplyStore(t)
	src := lotItem("inv-1", "prod-1", "LOT-A", models.LocationHome, 5)
	require.NoError(t, store.CreateInventoryItem(ctx, &src))

	plan := NewPlan("sess-1")
	require.NoError(t, plan.SetTransfer(foundLot("scan-1", 2), 2))

	summary, err := NewApplier(store, zap.NewNop()).Apply(ctx, plan, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Matched)
	assert.Equal(t, 1, summary.Transferred)

	remaining, err := store.GetInventoryItem(ctx, "inv-1")
	require.NoError(t, err)
	assert.Equal(t, 3, remaining.Quantity)

	dest, err := store.FindItems(ctx, inventory.ItemQuery{ProductID: "prod-1", Location: models.LocationCar, LotNumber: "LOT-A"})
	require.NoError(t, err)
	require.Len(t, dest, 1)
	assert.Equal(t, 2, dest[0].Quantity)

	session, err := store.GetSession(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, models.SessionCompleted, session.Status)
	assert.NotNil(t, session.CompletedAt)
}

func TestApplier_TransferDrainsAndDeletesSource(t *testing.T) {
	ctx := context.Background()
	store := setupApplyStore(t)
	src := lotItem("inv-1", "prod-1", "LOT-A", models.LocationHome, 2)
	require.NoError(t, store.CreateInventoryItem(ctx, &src))

	plan := NewPlan("sess-1")
	require.NoError(t, plan.SetTransfer(foundLot("scan-1", 2), 2))

	_, err := NewApplier(store, zap.NewNop()).Apply(ctx, plan, 0)
	require.NoError(t, err)

	_, err = store.GetInventoryItem(ctx, "inv-1")
	assert.ErrorIs(t, err, inventory.ErrNotFound)
}

func TestApplier_TransferMergesIntoExistingDestination(t *testing.T) {
	ctx := context.Background()
	store := setupApplyStore(t)
	src := lotItem("inv-1", "prod-1", "LOT-A", models.LocationHome, 5)
	dst := lotItem("inv-2", "prod-1", "LOT-A", models.LocationCar, 1)
	require.NoError(t, store.CreateInventoryItem(ctx, &src))
	require.NoError(t, store.CreateInventoryItem(ctx, &dst))

	plan := NewPlan("sess-1")
	require.NoError(t, plan.SetTransfer(foundLot("scan-1", 2), 2))

	_, err := NewApplier(store, zap.NewNop()).Apply(ctx, plan, 0)
	require.NoError(t, err)

	merged, err := store.GetInventoryItem(ctx, "inv-2")
	require.NoError(t, err)
	assert.Equal(t, 3, merged.Quantity)
}

func TestApplier_SerialTransferRelocatesRecord(t *testing.T) {
	ctx := context.Background()
	store := setupApplyStore(t)
	src := serialItem("inv-1", "prod-1", "SN001", models.LocationHome)
	require.NoError(t, store.CreateInventoryItem(ctx, &src))

	plan := NewPlan("sess-1")
	require.NoError(t, plan.SetTransfer(foundSerial("scan-1", "SN001"), 0))

	_, err := NewApplier(store, zap.NewNop()).Apply(ctx, plan, 0)
	require.NoError(t, err)

	moved, err := store.GetInventoryItem(ctx, "inv-1")
	require.NoError(t, err)
	assert.Equal(t, models.LocationCar, moved.Location)
	assert.Equal(t, 1, moved.Quantity)
}

func TestApplier_InsufficientStockRollsBackEverything(t *testing.T) {
	ctx := context.Background()
	store := setupApplyStore(t)
	src := lotItem("inv-1", "prod-1", "LOT-A", models.LocationHome, 1)
	require.NoError(t, store.CreateInventoryItem(ctx, &src))

	plan := NewPlan("sess-1")
	require.NoError(t, plan.SetTransfer(foundLot("scan-1", 3), 3))
	require.NoError(t, plan.SetMissingAction("inv-1", ActionMarkMissing))

	_, err := NewApplier(store, zap.NewNop()).Apply(ctx, plan, 0)

	var recErr *ReconciliationError
	require.ErrorAs(t, err, &recErr)
	var insufficient *InsufficientStockError
	assert.ErrorAs(t, err, &insufficient)
	assert.Equal(t, 3, insufficient.Requested)
	assert.Equal(t, 1, insufficient.Available)

	// Nothing committed: quantity, status and session are untouched.
	item, err := store.GetInventoryItem(ctx, "inv-1")
	require.NoError(t, err)
	assert.Equal(t, 1, item.Quantity)
	assert.Equal(t, models.ItemActive, item.Status)

	session, err := store.GetSession(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, models.SessionReconciling, session.Status)
}

func TestApplier_TransferIgnoresMissingStatusStock(t *testing.T) {
	ctx := context.Background()
	store := setupApplyStore(t)
	active := lotItem("inv-1", "prod-1", "LOT-A", models.LocationHome, 1)
	flagged := lotItem("inv-2", "prod-1", "LOT-A", models.LocationHome, 5)
	flagged.Status = models.ItemMissing
	require.NoError(t, store.CreateInventoryItem(ctx, &active))
	require.NoError(t, store.CreateInventoryItem(ctx, &flagged))

	plan := NewPlan("sess-1")
	require.NoError(t, plan.SetTransfer(foundLot("scan-1", 3), 3))

	// The flagged record must not fund the transfer, so only 1 unit is
	// available against the requested 3.
	_, err := NewApplier(store, zap.NewNop()).Apply(ctx, plan, 0)

	var insufficient *InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, 3, insufficient.Requested)
	assert.Equal(t, 1, insufficient.Available)

	untouched, err := store.GetInventoryItem(ctx, "inv-2")
	require.NoError(t, err)
	assert.Equal(t, 5, untouched.Quantity)
	assert.Equal(t, models.ItemMissing, untouched.Status)
}

func TestApplier_NewItemDuplicateSerialRejected(t *testing.T) {
	ctx := context.Background()
	store := setupApplyStore(t)
	existing := serialItem("inv-1", "prod-1", "SN001", models.LocationHome)
	require.NoError(t, store.CreateInventoryItem(ctx, &existing))

	plan := NewPlan("sess-1")
	require.NoError(t, plan.SetNewItem(foundSerial("scan-1", "SN001"), 0))

	_, err := NewApplier(store, zap.NewNop()).Apply(ctx, plan, 0)

	var dup *DuplicateSerialError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "inv-1", dup.InventoryItemID)
}

func TestApplier_MissingDispositions(t *testing.T) {
	ctx := context.Background()
	store := setupApplyStore(t)
	marked := lotItem("inv-1", "prod-1", "LOT-A", models.LocationCar, 2)
	removed := lotItem("inv-2", "prod-1", "LOT-B", models.LocationCar, 1)
	investigated := lotItem("inv-3", "prod-1", "LOT-C", models.LocationCar, 1)
	require.NoError(t, store.CreateInventoryItem(ctx, &marked))
	require.NoError(t, store.CreateInventoryItem(ctx, &removed))
	require.NoError(t, store.CreateInventoryItem(ctx, &investigated))

	plan := NewPlan("sess-1")
	require.NoError(t, plan.SetMissingAction("inv-1", ActionMarkMissing))
	require.NoError(t, plan.SetMissingAction("inv-2", ActionDerecognized))
	require.NoError(t, plan.SetMissingAction("inv-3", ActionMarkMissing))
	require.NoError(t, plan.DeleteInvestigated("inv-3"))

	summary, err := NewApplier(store, zap.NewNop()).Apply(ctx, plan, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.MarkedMissing)
	assert.Equal(t, 2, summary.Derecognized)

	item, err := store.GetInventoryItem(ctx, "inv-1")
	require.NoError(t, err)
	assert.Equal(t, models.ItemMissing, item.Status)

	_, err = store.GetInventoryItem(ctx, "inv-2")
	assert.ErrorIs(t, err, inventory.ErrNotFound)
	_, err = store.GetInventoryItem(ctx, "inv-3")
	assert.ErrorIs(t, err, inventory.ErrNotFound)
}

func TestApplier_DoubleApplyIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := setupApplyStore(t)
	src := lotItem("inv-1", "prod-1", "LOT-A", models.LocationHome, 5)
	require.NoError(t, store.CreateInventoryItem(ctx, &src))

	plan := NewPlan("sess-1")
	require.NoError(t, plan.SetTransfer(foundLot("scan-1", 2), 2))
	require.NoError(t, plan.SetNewItem(FoundItem{
		ScannedItem: models.ScannedItem{ID: "scan-2", ProductID: "prod-2", ScannedLocation: models.LocationCar, Quantity: 1},
	}, 0))

	applier := NewApplier(store, zap.NewNop())
	first, err := applier.Apply(ctx, plan, 4)
	require.NoError(t, err)

	second, err := applier.Apply(ctx, plan, 4)
	require.NoError(t, err)

	// Identical summary, no double movement and no duplicate insert.
	assert.Equal(t, first, second)

	remaining, err := store.GetInventoryItem(ctx, "inv-1")
	require.NoError(t, err)
	assert.Equal(t, 3, remaining.Quantity)

	created, err := store.FindItems(ctx, inventory.ItemQuery{ProductID: "prod-2"})
	require.NoError(t, err)
	assert.Len(t, created, 1)
}

func TestApplier_RejectsInProgressSession(t *testing.T) {
	ctx := context.Background()
	store := inventory.NewMemStore()
	require.NoError(t, store.CreateSession(ctx, &models.StockCountSession{
		ID: "sess-1", CountType: models.CountCar, Status: models.SessionInProgress,
	}))

	_, err := NewApplier(store, zap.NewNop()).Apply(ctx, NewPlan("sess-1"), 0)
	assert.Error(t, err)
	assert.False(t, errors.Is(err, inventory.ErrNotFound))
}

func TestApplier_MissingRecordAlreadyGoneIsResolved(t *testing.T) {
	ctx := context.Background()
	store := setupApplyStore(t)

	plan := NewPlan("sess-1")
	require.NoError(t, plan.SetMissingAction("inv-404", ActionDerecognized))

	summary, err := NewApplier(store, zap.NewNop()).Apply(ctx, plan, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Derecognized)
}
