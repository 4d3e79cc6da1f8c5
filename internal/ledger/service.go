package ledger

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sellerdeskhq/sellerdesk-backend/pkg/db/models"
	"github.com/sellerdeskhq/sellerdesk-backend/pkg/enums"
)

// Service defines operations that record stock movements.
type Service interface {
	RecordMovement(ctx context.Context, tx *gorm.DB, input RecordMovementInput) (*models.StockMovement, error)
	History(ctx context.Context, sku string, warehouseID uuid.UUID) ([]models.StockMovement, error)
}

type service struct {
	repo Repository
}

// RecordMovementInput captures the immutable data a stock movement requires.
type RecordMovementInput struct {
	SKU           string                  `json:"sku"`
	WarehouseID   uuid.UUID               `json:"warehouse_id"`
	Type          enums.StockMovementType `json:"type"`
	Qty           int                     `json:"qty"`
	ReservationID *uuid.UUID              `json:"reservation_id,omitempty"`
}

// NewService wires a stock movement service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("ledger repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) RecordMovement(ctx context.Context, tx *gorm.DB, input RecordMovementInput) (*models.StockMovement, error) {
	if input.SKU == "" {
		return nil, fmt.Errorf("sku is required")
	}
	if input.WarehouseID == uuid.Nil {
		return nil, fmt.Errorf("warehouse id is required")
	}
	if !input.Type.IsValid() {
		return nil, fmt.Errorf("invalid stock movement type %q", input.Type)
	}
	if input.Qty <= 0 {
		return nil, fmt.Errorf("qty must be positive")
	}

	movement := &models.StockMovement{
		ID:            uuid.New(),
		SKU:           input.SKU,
		WarehouseID:   input.WarehouseID,
		Type:          input.Type,
		Qty:           input.Qty,
		ReservationID: input.ReservationID,
	}

	if err := s.repo.WithTx(tx).Create(ctx, movement); err != nil {
		return nil, err
	}
	return movement, nil
}

func (s *service) History(ctx context.Context, sku string, warehouseID uuid.UUID) ([]models.StockMovement, error) {
	if sku == "" {
		return nil, fmt.Errorf("sku is required")
	}
	if warehouseID == uuid.Nil {
		return nil, fmt.Errorf("warehouse id is required")
	}
	return s.repo.ListByRow(ctx, sku, warehouseID)
}
