package inventory

import (
	"context"
	"errors"
	"testing"

	"github.com/ValtisD/CardiacStockTracker-sub001/feature/inventory/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemStore_AddQuantityGuard(t *testing.T) {
	ctx := context.Background()
	store := NewMemStore()
	require.NoError(t, store.CreateInventoryItem(ctx, &models.InventoryItem{
		ID: "inv-1", ProductID: "prod-1", Location: models.LocationHome, Quantity: 2,
	}))

	require.NoError(t, store.AddQuantity(ctx, "inv-1", -2))
	item, err := store.GetInventoryItem(ctx, "inv-1")
	require.NoError(t, err)
	assert.Zero(t, item.Quantity)

	assert.ErrorIs(t, store.AddQuantity(ctx, "inv-1", -1), ErrInsufficientQuantity)
	assert.ErrorIs(t, store.AddQuantity(ctx, "inv-404", 1), ErrNotFound)
}

func TestMemStore_FindItemsBare(t *testing.T) {
	ctx := context.Background()
	store := NewMemStore()
	require.NoError(t, store.CreateInventoryItem(ctx, &models.InventoryItem{
		ID: "inv-1", ProductID: "prod-1", Location: models.LocationHome, Quantity: 1,
	}))
	require.NoError(t, store.CreateInventoryItem(ctx, &models.InventoryItem{
		ID: "inv-2", ProductID: "prod-1", Location: models.LocationHome, Quantity: 1, LotNumber: "LOT-A",
	}))
	require.NoError(t, store.CreateInventoryItem(ctx, &models.InventoryItem{
		ID: "inv-3", ProductID: "prod-1", Location: models.LocationHome, Quantity: 1, SerialNumber: "SN001",
	}))

	bare, err := store.FindItems(ctx, ItemQuery{ProductID: "prod-1", Bare: true})
	require.NoError(t, err)
	require.Len(t, bare, 1)
	assert.Equal(t, "inv-1", bare[0].ID)

	lot, err := store.FindItems(ctx, ItemQuery{ProductID: "prod-1", LotNumber: "LOT-A"})
	require.NoError(t, err)
	require.Len(t, lot, 1)
	assert.Equal(t, "inv-2", lot[0].ID)

	serial, err := store.FindBySerial(ctx, "SN001")
	require.NoError(t, err)
	require.Len(t, serial, 1)
	assert.Equal(t, "inv-3", serial[0].ID)
}

func TestMemStore_FindItemsFiltersStatus(t *testing.T) {
	ctx := context.Background()
	store := NewMemStore()
	require.NoError(t, store.CreateInventoryItem(ctx, &models.InventoryItem{
		ID: "inv-1", ProductID: "prod-1", Location: models.LocationHome, Quantity: 1, LotNumber: "LOT-A",
	}))
	require.NoError(t, store.CreateInventoryItem(ctx, &models.InventoryItem{
		ID: "inv-2", ProductID: "prod-1", Location: models.LocationHome, Quantity: 1, LotNumber: "LOT-A",
		Status: models.ItemMissing,
	}))

	active, err := store.FindItems(ctx, ItemQuery{ProductID: "prod-1", Status: models.ItemActive})
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "inv-1", active[0].ID)

	all, err := store.FindItems(ctx, ItemQuery{ProductID: "prod-1"})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestMemStore_TransactRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	store := NewMemStore()
	require.NoError(t, store.CreateInventoryItem(ctx, &models.InventoryItem{
		ID: "inv-1", ProductID: "prod-1", Location: models.LocationHome, Quantity: 5,
	}))

	boom := errors.New("boom")
	err := store.Transact(ctx, func(tx Store) error {
		require.NoError(t, tx.AddQuantity(ctx, "inv-1", -3))
		require.NoError(t, tx.RecordApplied(ctx, "sess-1", "transfer:scan-1", "transfer"))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	item, err := store.GetInventoryItem(ctx, "inv-1")
	require.NoError(t, err)
	assert.Equal(t, 5, item.Quantity)

	keys, err := store.AppliedKeys(ctx, "sess-1")
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestMemStore_TransactCommits(t *testing.T) {
	ctx := context.Background()
	store := NewMemStore()
	require.NoError(t, store.CreateInventoryItem(ctx, &models.InventoryItem{
		ID: "inv-1", ProductID: "prod-1", Location: models.LocationHome, Quantity: 5,
	}))

	err := store.Transact(ctx, func(tx Store) error {
		if err := tx.AddQuantity(ctx, "inv-1", -3); err != nil {
			return err
		}
		return tx.RecordApplied(ctx, "sess-1", "transfer:scan-1", "transfer")
	})
	require.NoError(t, err)

	item, err := store.GetInventoryItem(ctx, "inv-1")
	require.NoError(t, err)
	assert.Equal(t, 2, item.Quantity)

	keys, err := store.AppliedKeys(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"transfer:scan-1": "transfer"}, keys)
}

func TestMemStore_SessionLifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewMemStore()

	_, err := store.GetSession(ctx, "sess-404")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.CreateSession(ctx, &models.StockCountSession{
		ID: "sess-1", CountType: models.CountCar, Status: models.SessionInProgress,
	}))
	require.NoError(t, store.UpdateSessionStatus(ctx, "sess-1", models.SessionCompleted))

	sess, err := store.GetSession(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, models.SessionCompleted, sess.Status)
	assert.NotNil(t, sess.CompletedAt)
}
