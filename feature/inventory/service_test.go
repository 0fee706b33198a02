package inventory

import (
	"context"
	"testing"

	"github.com/ValtisD/CardiacStockTracker-sub001/feature/inventory/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestService_AdjustQuantity(t *testing.T) {
	ctx := context.Background()
	store := NewMemStore()
	svc := NewService(store, zap.NewNop())

	require.NoError(t, store.CreateInventoryItem(ctx, &models.InventoryItem{
		ID: "inv-1", ProductID: "prod-1", Location: models.LocationHome, Quantity: 3,
	}))

	item, err := svc.AdjustQuantity(ctx, "inv-1", -1)
	require.NoError(t, err)
	assert.Equal(t, 2, item.Quantity)

	_, err = svc.AdjustQuantity(ctx, "inv-1", -5)
	assert.ErrorIs(t, err, ErrInsufficientQuantity)

	// Draining the record removes it.
	item, err = svc.AdjustQuantity(ctx, "inv-1", -2)
	require.NoError(t, err)
	assert.Zero(t, item.Quantity)

	_, err = svc.GetItem(ctx, "inv-1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestService_AdjustQuantityZeroDeltaIsARead(t *testing.T) {
	ctx := context.Background()
	store := NewMemStore()
	svc := NewService(store, zap.NewNop())

	require.NoError(t, store.CreateInventoryItem(ctx, &models.InventoryItem{
		ID: "inv-1", ProductID: "prod-1", Location: models.LocationHome, Quantity: 3,
	}))

	item, err := svc.AdjustQuantity(ctx, "inv-1", 0)
	require.NoError(t, err)
	assert.Equal(t, 3, item.Quantity)
}

func TestService_ListItemsValidatesLocation(t *testing.T) {
	svc := NewService(NewMemStore(), zap.NewNop())

	_, err := svc.ListItems(context.Background(), models.Location("garage"))
	assert.Error(t, err)

	_, err = svc.ListItems(context.Background(), "")
	assert.NoError(t, err)
}

func TestService_RegisterProductIsIdempotentByGTIN(t *testing.T) {
	ctx := context.Background()
	svc := NewService(NewMemStore(), zap.NewNop())

	first, err := svc.RegisterProduct(ctx, "Pacing Lead", "05012345678903")
	require.NoError(t, err)

	second, err := svc.RegisterProduct(ctx, "Renamed", "05012345678903")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "Pacing Lead", second.Name)

	_, err = svc.RegisterProduct(ctx, "No GTIN", "")
	assert.Error(t, err)
}
