package inventory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/sellerdeskhq/sellerdesk-backend/pkg/db/models"
	"github.com/sellerdeskhq/sellerdesk-backend/pkg/enums"
)

func setupRepoTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:inventory_repo_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.InventoryItem{}))

	reservations := `
CREATE TABLE IF NOT EXISTS reservations (
  id TEXT PRIMARY KEY,
  sku TEXT NOT NULL,
  warehouse_id TEXT NOT NULL,
  qty INTEGER NOT NULL,
  status TEXT NOT NULL DEFAULT 'held',
  created_at DATETIME,
  consumed_at DATETIME
);`
	require.NoError(t, db.Exec(reservations).Error)
	return db
}

func TestRepositoryItemRoundTrip(t *testing.T) {
	t.Parallel()

	db := setupRepoTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	warehouse := uuid.New()

	missing, err := repo.FindItem(ctx, "SKU-1", warehouse)
	require.NoError(t, err)
	assert.Nil(t, missing)

	item := &models.InventoryItem{SKU: "SKU-1", WarehouseID: warehouse, QuantityOnHand: 5}
	require.NoError(t, repo.CreateItem(ctx, item))

	item.QuantityOnHand = 8
	item.ReservedQty = 3
	require.NoError(t, repo.SaveItem(ctx, item))

	found, err := repo.FindItem(ctx, "SKU-1", warehouse)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, 8, found.QuantityOnHand)
	assert.Equal(t, 3, found.ReservedQty)
	assert.Equal(t, 5, found.Available())

	require.NoError(t, repo.DeleteItem(ctx, "SKU-1", warehouse))
	gone, err := repo.FindItem(ctx, "SKU-1", warehouse)
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestRepositoryListLowStock(t *testing.T) {
	t.Parallel()

	db := setupRepoTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	warehouse := uuid.New()

	threshold := 4
	low := &models.InventoryItem{SKU: "LOW-1", WarehouseID: warehouse, QuantityOnHand: 6, ReservedQty: 2, ReorderPoint: &threshold}
	healthy := &models.InventoryItem{SKU: "OK-1", WarehouseID: warehouse, QuantityOnHand: 20, ReorderPoint: &threshold}
	untracked := &models.InventoryItem{SKU: "NOPOINT-1", WarehouseID: warehouse, QuantityOnHand: 0}
	for _, item := range []*models.InventoryItem{low, healthy, untracked} {
		require.NoError(t, repo.CreateItem(ctx, item))
	}

	items, err := repo.ListLowStock(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "LOW-1", items[0].SKU)
}

func TestRepositoryReservationLifecycle(t *testing.T) {
	t.Parallel()

	db := setupRepoTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	reservation := &models.Reservation{
		ID:          uuid.New(),
		SKU:         "SKU-2",
		WarehouseID: uuid.New(),
		Qty:         3,
		Status:      enums.ReservationStatusHeld,
	}
	require.NoError(t, repo.CreateReservation(ctx, reservation))

	found, err := repo.FindReservation(ctx, reservation.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, enums.ReservationStatusHeld, found.Status)

	now := time.Now().UTC()
	reservation.Status = enums.ReservationStatusFulfilled
	reservation.ConsumedAt = &now
	require.NoError(t, repo.SaveReservation(ctx, reservation))

	consumed, err := repo.FindReservation(ctx, reservation.ID)
	require.NoError(t, err)
	require.NotNil(t, consumed)
	assert.Equal(t, enums.ReservationStatusFulfilled, consumed.Status)
	require.NotNil(t, consumed.ConsumedAt)

	unknown, err := repo.FindReservation(ctx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, unknown)
}
