package ledger

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sellerdeskhq/sellerdesk-backend/pkg/db/models"
	"github.com/sellerdeskhq/sellerdesk-backend/pkg/enums"
)

type fakeRepository struct {
	createFn func(ctx context.Context, movement *models.StockMovement) error
	listFn   func(ctx context.Context, sku string, warehouseID uuid.UUID) ([]models.StockMovement, error)
}

func (f *fakeRepository) WithTx(tx *gorm.DB) Repository {
	return f
}

func (f *fakeRepository) Create(ctx context.Context, movement *models.StockMovement) error {
	if f.createFn != nil {
		return f.createFn(ctx, movement)
	}
	return nil
}

func (f *fakeRepository) ListByRow(ctx context.Context, sku string, warehouseID uuid.UUID) ([]models.StockMovement, error) {
	if f.listFn != nil {
		return f.listFn(ctx, sku, warehouseID)
	}
	return nil, nil
}

func TestService_RecordMovement(t *testing.T) {
	var captured *models.StockMovement
	repo := &fakeRepository{
		createFn: func(_ context.Context, movement *models.StockMovement) error {
			captured = movement
			return nil
		},
	}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}

	warehouse := uuid.New()
	reservation := uuid.New()
	movement, err := svc.RecordMovement(context.Background(), nil, RecordMovementInput{
		SKU:           "WIDGET-1",
		WarehouseID:   warehouse,
		Type:          enums.StockMovementReserved,
		Qty:           3,
		ReservationID: &reservation,
	})
	if err != nil {
		t.Fatalf("record movement: %v", err)
	}
	if captured == nil || captured != movement {
		t.Fatalf("repository did not receive the movement")
	}
	if movement.ID == uuid.Nil {
		t.Fatalf("movement id should be assigned")
	}
	if movement.SKU != "WIDGET-1" || movement.WarehouseID != warehouse || movement.Qty != 3 {
		t.Fatalf("unexpected movement: %+v", movement)
	}
	if movement.ReservationID == nil || *movement.ReservationID != reservation {
		t.Fatalf("reservation id not carried through")
	}
}

func TestService_RecordMovementValidation(t *testing.T) {
	svc, err := NewService(&fakeRepository{})
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}
	ctx := context.Background()
	warehouse := uuid.New()

	cases := []RecordMovementInput{
		{WarehouseID: warehouse, Type: enums.StockMovementReceived, Qty: 1},
		{SKU: "A", Type: enums.StockMovementReceived, Qty: 1},
		{SKU: "A", WarehouseID: warehouse, Type: "teleported", Qty: 1},
		{SKU: "A", WarehouseID: warehouse, Type: enums.StockMovementReceived, Qty: 0},
	}
	for i, input := range cases {
		if _, err := svc.RecordMovement(ctx, nil, input); err == nil {
			t.Fatalf("case %d: expected validation error", i)
		}
	}
}

func TestService_RecordMovementRepoError(t *testing.T) {
	boom := errors.New("insert failed")
	svc, err := NewService(&fakeRepository{
		createFn: func(context.Context, *models.StockMovement) error { return boom },
	})
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}

	_, err = svc.RecordMovement(context.Background(), nil, RecordMovementInput{
		SKU:         "WIDGET-1",
		WarehouseID: uuid.New(),
		Type:        enums.StockMovementReceived,
		Qty:         1,
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected repository error, got %v", err)
	}
}

func TestService_History(t *testing.T) {
	warehouse := uuid.New()
	want := []models.StockMovement{{SKU: "WIDGET-1", WarehouseID: warehouse, Type: enums.StockMovementReceived, Qty: 2}}
	svc, err := NewService(&fakeRepository{
		listFn: func(_ context.Context, sku string, id uuid.UUID) ([]models.StockMovement, error) {
			if sku != "WIDGET-1" || id != warehouse {
				t.Fatalf("unexpected query %s %s", sku, id)
			}
			return want, nil
		},
	})
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}

	got, err := svc.History(context.Background(), "WIDGET-1", warehouse)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(got) != 1 || got[0].Qty != 2 {
		t.Fatalf("unexpected history: %+v", got)
	}

	if _, err := svc.History(context.Background(), "", warehouse); err == nil {
		t.Fatalf("expected error for empty sku")
	}
}
