package inventory

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/sellerdeskhq/sellerdesk-backend/internal/ledger"
	"github.com/sellerdeskhq/sellerdesk-backend/pkg/db/models"
	pkgerrors "github.com/sellerdeskhq/sellerdesk-backend/pkg/errors"
)

type testTxRunner struct {
	db *gorm.DB
}

func (r testTxRunner) WithTx(_ context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.Transaction(fn)
}

func newTestService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()

	dsn := "file:inventory_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.InventoryItem{}); err != nil {
		t.Fatalf("migrate inventory items: %v", err)
	}

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
	movements := `
CREATE TABLE IF NOT EXISTS stock_movements (
  id TEXT PRIMARY KEY,
  sku TEXT NOT NULL,
  warehouse_id TEXT NOT NULL,
  type TEXT NOT NULL,
  qty INTEGER NOT NULL,
  reservation_id TEXT,
  created_at DATETIME
);`
	for _, ddl := range []string{reservations, movements} {
		if err := db.Exec(ddl).Error; err != nil {
			t.Fatalf("create table: %v", err)
		}
	}

	movementSvc, err := ledger.NewService(ledger.NewRepository(db))
	if err != nil {
		t.Fatalf("ledger service: %v", err)
	}
	svc, err := NewService(NewRepository(db), testTxRunner{db: db}, movementSvc, nil)
	if err != nil {
		t.Fatalf("inventory service: %v", err)
	}
	return svc, db
}

func TestReceiveReserveFulfillFlow(t *testing.T) {
	t.Parallel()

	svc, db := newTestService(t)
	ctx := context.Background()
	warehouse := uuid.New()

	status, err := svc.Receive(ctx, ReceiveInput{SKU: "WIDGET-1", WarehouseID: warehouse, Qty: 10})
	if err != nil {
		t.Fatalf("receive: %v", err)
	}
	if status.Quantity != 10 || status.Reserved != 0 || status.Available != 10 || status.IsLowStock {
		t.Fatalf("unexpected status after receive: %+v", status)
	}

	handle, err := svc.Reserve(ctx, ReserveInput{SKU: "WIDGET-1", WarehouseID: warehouse, Qty: 7})
	if err != nil {
		t.Fatalf("reserve: %v", err)
	}
	if handle.ID == uuid.Nil || handle.Qty != 7 {
		t.Fatalf("unexpected handle: %+v", handle)
	}

	if _, err := svc.Reserve(ctx, ReserveInput{SKU: "WIDGET-1", WarehouseID: warehouse, Qty: 5}); !pkgerrors.HasCode(err, pkgerrors.CodeInsufficientStock) {
		t.Fatalf("expected insufficient stock, got %v", err)
	}

	status, err = svc.Status(ctx, "WIDGET-1", warehouse)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if status.Quantity != 10 || status.Reserved != 7 || status.Available != 3 {
		t.Fatalf("failed reserve mutated state: %+v", status)
	}

	if err := svc.Fulfill(ctx, handle.ID); err != nil {
		t.Fatalf("fulfill: %v", err)
	}
	status, err = svc.Status(ctx, "WIDGET-1", warehouse)
	if err != nil {
		t.Fatalf("status after fulfill: %v", err)
	}
	if status.Quantity != 3 || status.Reserved != 0 || status.Available != 3 {
		t.Fatalf("unexpected status after fulfill: %+v", status)
	}

	var audit []models.StockMovement
	if err := db.Where("sku = ?", "WIDGET-1").Order("created_at ASC").Find(&audit).Error; err != nil {
		t.Fatalf("load movements: %v", err)
	}
	if len(audit) != 3 {
		t.Fatalf("expected 3 movements, got %d", len(audit))
	}
}

func TestReleaseRestoresAvailability(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()
	warehouse := uuid.New()

	if _, err := svc.Receive(ctx, ReceiveInput{SKU: "GADGET-1", WarehouseID: warehouse, Qty: 5}); err != nil {
		t.Fatalf("receive: %v", err)
	}
	handle, err := svc.Reserve(ctx, ReserveInput{SKU: "GADGET-1", WarehouseID: warehouse, Qty: 5})
	if err != nil {
		t.Fatalf("reserve: %v", err)
	}

	if err := svc.Release(ctx, handle.ID); err != nil {
		t.Fatalf("release: %v", err)
	}

	status, err := svc.Status(ctx, "GADGET-1", warehouse)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if status.Quantity != 5 || status.Reserved != 0 || status.Available != 5 {
		t.Fatalf("release did not restore availability: %+v", status)
	}

	if _, err := svc.Reserve(ctx, ReserveInput{SKU: "GADGET-1", WarehouseID: warehouse, Qty: 5}); err != nil {
		t.Fatalf("re-reserve after release: %v", err)
	}
}

func TestHandleConsumedAtMostOnce(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()
	warehouse := uuid.New()

	if _, err := svc.Receive(ctx, ReceiveInput{SKU: "DOODAD-1", WarehouseID: warehouse, Qty: 4}); err != nil {
		t.Fatalf("receive: %v", err)
	}
	handle, err := svc.Reserve(ctx, ReserveInput{SKU: "DOODAD-1", WarehouseID: warehouse, Qty: 2})
	if err != nil {
		t.Fatalf("reserve: %v", err)
	}

	if err := svc.Release(ctx, handle.ID); err != nil {
		t.Fatalf("first release: %v", err)
	}
	if err := svc.Release(ctx, handle.ID); !pkgerrors.HasCode(err, pkgerrors.CodeInvalidHandle) {
		t.Fatalf("expected invalid handle on double release, got %v", err)
	}
	if err := svc.Fulfill(ctx, handle.ID); !pkgerrors.HasCode(err, pkgerrors.CodeInvalidHandle) {
		t.Fatalf("expected invalid handle on fulfill after release, got %v", err)
	}

	if err := svc.Fulfill(ctx, uuid.New()); !pkgerrors.HasCode(err, pkgerrors.CodeInvalidHandle) {
		t.Fatalf("expected invalid handle for unknown id, got %v", err)
	}
}

func TestReserveValidation(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()
	warehouse := uuid.New()

	if _, err := svc.Reserve(ctx, ReserveInput{SKU: "NOPE-1", WarehouseID: warehouse, Qty: 0}); !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for zero qty, got %v", err)
	}
	if _, err := svc.Reserve(ctx, ReserveInput{SKU: "NOPE-1", WarehouseID: uuid.Nil, Qty: 1}); !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for nil warehouse, got %v", err)
	}
	if _, err := svc.Reserve(ctx, ReserveInput{SKU: "NOPE-1", WarehouseID: warehouse, Qty: 1}); !pkgerrors.HasCode(err, pkgerrors.CodeInsufficientStock) {
		t.Fatalf("expected insufficient stock for missing row, got %v", err)
	}
	if _, err := svc.Receive(ctx, ReceiveInput{SKU: "NOPE-1", WarehouseID: warehouse, Qty: -1}); !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for negative receive, got %v", err)
	}
}

func TestLowStockThreshold(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()
	warehouse := uuid.New()

	if _, err := svc.Receive(ctx, ReceiveInput{SKU: "BOLT-1", WarehouseID: warehouse, Qty: 10}); err != nil {
		t.Fatalf("receive: %v", err)
	}
	threshold := 5
	status, err := svc.SetReorderPoint(ctx, ReorderPointInput{SKU: "BOLT-1", WarehouseID: warehouse, ReorderPoint: &threshold})
	if err != nil {
		t.Fatalf("set reorder point: %v", err)
	}
	if status.IsLowStock {
		t.Fatalf("available 10 with threshold 5 should not be low stock")
	}

	if _, err := svc.Reserve(ctx, ReserveInput{SKU: "BOLT-1", WarehouseID: warehouse, Qty: 5}); err != nil {
		t.Fatalf("reserve: %v", err)
	}
	status, err = svc.Status(ctx, "BOLT-1", warehouse)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if !status.IsLowStock {
		t.Fatalf("available 5 with threshold 5 should be low stock")
	}

	low, err := svc.LowStockItems(ctx)
	if err != nil {
		t.Fatalf("low stock items: %v", err)
	}
	if len(low) != 1 || low[0].SKU != "BOLT-1" {
		t.Fatalf("unexpected low stock list: %+v", low)
	}

	if _, err := svc.Receive(ctx, ReceiveInput{SKU: "BOLT-1", WarehouseID: warehouse, Qty: 1}); err != nil {
		t.Fatalf("top-up receive: %v", err)
	}
	status, err = svc.Status(ctx, "BOLT-1", warehouse)
	if err != nil {
		t.Fatalf("status after top-up: %v", err)
	}
	if status.IsLowStock {
		t.Fatalf("available 6 with threshold 5 should not be low stock")
	}
}

func TestDeleteItemGuard(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()
	warehouse := uuid.New()

	if _, err := svc.Receive(ctx, ReceiveInput{SKU: "CRATE-1", WarehouseID: warehouse, Qty: 2}); err != nil {
		t.Fatalf("receive: %v", err)
	}
	if err := svc.DeleteItem(ctx, "CRATE-1", warehouse); !pkgerrors.HasCode(err, pkgerrors.CodeStateConflict) {
		t.Fatalf("expected state conflict deleting stocked row, got %v", err)
	}

	handle, err := svc.Reserve(ctx, ReserveInput{SKU: "CRATE-1", WarehouseID: warehouse, Qty: 2})
	if err != nil {
		t.Fatalf("reserve: %v", err)
	}
	if err := svc.Fulfill(ctx, handle.ID); err != nil {
		t.Fatalf("fulfill: %v", err)
	}

	if err := svc.DeleteItem(ctx, "CRATE-1", warehouse); err != nil {
		t.Fatalf("delete empty row: %v", err)
	}
	if _, err := svc.Status(ctx, "CRATE-1", warehouse); !pkgerrors.HasCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
}

func TestConcurrentReservesNeverOversell(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()
	warehouse := uuid.New()

	if _, err := svc.Receive(ctx, ReceiveInput{SKU: "HOT-1", WarehouseID: warehouse, Qty: 10}); err != nil {
		t.Fatalf("receive: %v", err)
	}

	const workers = 20
	const qtyEach = 3
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Reserve(ctx, ReserveInput{SKU: "HOT-1", WarehouseID: warehouse, Qty: qtyEach})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	successes := 0
	for err := range errs {
		if err == nil {
			successes++
			continue
		}
		if !pkgerrors.HasCode(err, pkgerrors.CodeInsufficientStock) {
			t.Fatalf("unexpected reserve error: %v", err)
		}
	}

	if successes*qtyEach > 10 {
		t.Fatalf("oversold: %d reserves of %d succeeded against 10 on hand", successes, qtyEach)
	}

	status, err := svc.Status(ctx, "HOT-1", warehouse)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if status.Reserved != successes*qtyEach {
		t.Fatalf("expected reserved %d, got %d", successes*qtyEach, status.Reserved)
	}
	if status.Available < 0 {
		t.Fatalf("available went negative: %d", status.Available)
	}
	if status.Available != 10-successes*qtyEach {
		t.Fatalf("expected available %d, got %d", 10-successes*qtyEach, status.Available)
	}
}
