package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sellerdeskhq/sellerdesk-backend/internal/ledger"
	"github.com/sellerdeskhq/sellerdesk-backend/pkg/db/models"
	"github.com/sellerdeskhq/sellerdesk-backend/pkg/enums"
	pkgerrors "github.com/sellerdeskhq/sellerdesk-backend/pkg/errors"
	"github.com/sellerdeskhq/sellerdesk-backend/pkg/metrics"
)

// Service exposes the inventory ledger operations. Mutations on the same
// (sku, warehouse) row are serialized so the availability check and the
// counter update commit as one atomic step; distinct rows never contend.
type Service interface {
	Receive(ctx context.Context, input ReceiveInput) (*StatusDTO, error)
	Reserve(ctx context.Context, input ReserveInput) (*ReservationDTO, error)
	Release(ctx context.Context, handleID uuid.UUID) error
	Fulfill(ctx context.Context, handleID uuid.UUID) error
	Status(ctx context.Context, sku string, warehouseID uuid.UUID) (*StatusDTO, error)
	LowStockItems(ctx context.Context) ([]StatusDTO, error)
	SetReorderPoint(ctx context.Context, input ReorderPointInput) (*StatusDTO, error)
	DeleteItem(ctx context.Context, sku string, warehouseID uuid.UUID) error
}

// ReceiveInput captures a stock receipt for a warehouse row.
type ReceiveInput struct {
	SKU         string
	WarehouseID uuid.UUID
	Qty         int
}

// ReserveInput captures a hold request against available stock.
type ReserveInput struct {
	SKU         string
	WarehouseID uuid.UUID
	Qty         int
}

// ReorderPointInput sets or clears the low-stock threshold on a row.
type ReorderPointInput struct {
	SKU          string
	WarehouseID  uuid.UUID
	ReorderPoint *int
}

// StatusDTO is the availability snapshot reported for a row.
type StatusDTO struct {
	SKU          string    `json:"sku"`
	WarehouseID  uuid.UUID `json:"warehouse_id"`
	Quantity     int       `json:"quantity"`
	Reserved     int       `json:"reserved"`
	Available    int       `json:"available"`
	ReorderPoint *int      `json:"reorder_point,omitempty"`
	IsLowStock   bool      `json:"is_low_stock"`
}

// ReservationDTO is the handle returned by a successful reserve call.
type ReservationDTO struct {
	ID          uuid.UUID `json:"id"`
	SKU         string    `json:"sku"`
	WarehouseID uuid.UUID `json:"warehouse_id"`
	Qty         int       `json:"qty"`
	CreatedAt   time.Time `json:"created_at"`
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	repo      Repository
	dbClient  txRunner
	movements ledger.Service
	metrics   *metrics.CommerceMetrics
	locks     *rowLocks
}

// NewService constructs an inventory service instance.
func NewService(repo Repository, dbClient txRunner, movements ledger.Service, commerceMetrics *metrics.CommerceMetrics) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("inventory repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	if movements == nil {
		return nil, fmt.Errorf("movement recorder required")
	}
	return &service{
		repo:      repo,
		dbClient:  dbClient,
		movements: movements,
		metrics:   commerceMetrics,
		locks:     newRowLocks(),
	}, nil
}

func (s *service) Receive(ctx context.Context, input ReceiveInput) (*StatusDTO, error) {
	if err := validateRow(input.SKU, input.WarehouseID); err != nil {
		return nil, err
	}
	if input.Qty <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "qty must be positive")
	}

	unlock := s.locks.lock(input.SKU, input.WarehouseID)
	defer unlock()

	var status *StatusDTO
	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		item, err := repo.FindItem(ctx, input.SKU, input.WarehouseID)
		if err != nil {
			return err
		}
		if item == nil {
			item = &models.InventoryItem{
				SKU:            input.SKU,
				WarehouseID:    input.WarehouseID,
				QuantityOnHand: input.Qty,
			}
			if err := repo.CreateItem(ctx, item); err != nil {
				return err
			}
		} else {
			item.QuantityOnHand += input.Qty
			if err := repo.SaveItem(ctx, item); err != nil {
				return err
			}
		}

		if _, err := s.movements.RecordMovement(ctx, tx, ledger.RecordMovementInput{
			SKU:         input.SKU,
			WarehouseID: input.WarehouseID,
			Type:        enums.StockMovementReceived,
			Qty:         input.Qty,
		}); err != nil {
			return err
		}

		status = statusFromItem(*item)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return status, nil
}

func (s *service) Reserve(ctx context.Context, input ReserveInput) (*ReservationDTO, error) {
	if err := validateRow(input.SKU, input.WarehouseID); err != nil {
		return nil, err
	}
	if input.Qty <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "qty must be positive")
	}

	unlock := s.locks.lock(input.SKU, input.WarehouseID)
	defer unlock()

	var dto *ReservationDTO
	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		item, err := repo.FindItem(ctx, input.SKU, input.WarehouseID)
		if err != nil {
			return err
		}

		available := 0
		if item != nil {
			available = item.Available()
		}
		if available < input.Qty {
			return pkgerrors.New(pkgerrors.CodeInsufficientStock, "reservation exceeds available stock").
				WithDetails(map[string]any{"requested": input.Qty, "available": available})
		}

		item.ReservedQty += input.Qty
		if err := repo.SaveItem(ctx, item); err != nil {
			return err
		}

		reservation := &models.Reservation{
			ID:          uuid.New(),
			SKU:         input.SKU,
			WarehouseID: input.WarehouseID,
			Qty:         input.Qty,
			Status:      enums.ReservationStatusHeld,
		}
		if err := repo.CreateReservation(ctx, reservation); err != nil {
			return err
		}

		if _, err := s.movements.RecordMovement(ctx, tx, ledger.RecordMovementInput{
			SKU:           input.SKU,
			WarehouseID:   input.WarehouseID,
			Type:          enums.StockMovementReserved,
			Qty:           input.Qty,
			ReservationID: &reservation.ID,
		}); err != nil {
			return err
		}

		dto = &ReservationDTO{
			ID:          reservation.ID,
			SKU:         reservation.SKU,
			WarehouseID: reservation.WarehouseID,
			Qty:         reservation.Qty,
			CreatedAt:   reservation.CreatedAt,
		}
		return nil
	})
	if err != nil {
		if pkgerrors.HasCode(err, pkgerrors.CodeInsufficientStock) {
			s.metrics.IncReservation("insufficient_stock")
		} else {
			s.metrics.IncReservation("error")
		}
		return nil, err
	}

	s.metrics.IncReservation("reserved")
	return dto, nil
}

func (s *service) Release(ctx context.Context, handleID uuid.UUID) error {
	return s.consumeReservation(ctx, handleID, enums.ReservationStatusReleased)
}

func (s *service) Fulfill(ctx context.Context, handleID uuid.UUID) error {
	return s.consumeReservation(ctx, handleID, enums.ReservationStatusFulfilled)
}

// consumeReservation transitions a held handle to its terminal status and
// applies the matching counter updates. The row lock is taken before the
// transaction so the handle status check and the counter update cannot race
// with a concurrent reserve on the same row.
func (s *service) consumeReservation(ctx context.Context, handleID uuid.UUID, target enums.ReservationStatus) error {
	if handleID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "reservation id is required")
	}

	reservation, err := s.repo.FindReservation(ctx, handleID)
	if err != nil {
		return err
	}
	if reservation == nil {
		return pkgerrors.New(pkgerrors.CodeInvalidHandle, "reservation not found")
	}

	unlock := s.locks.lock(reservation.SKU, reservation.WarehouseID)
	defer unlock()

	return s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		current, err := repo.FindReservation(ctx, handleID)
		if err != nil {
			return err
		}
		if current == nil {
			return pkgerrors.New(pkgerrors.CodeInvalidHandle, "reservation not found")
		}
		if current.Status.IsConsumed() {
			return pkgerrors.New(pkgerrors.CodeInvalidHandle, "reservation already consumed").
				WithDetails(map[string]any{"status": string(current.Status)})
		}

		item, err := repo.FindItem(ctx, current.SKU, current.WarehouseID)
		if err != nil {
			return err
		}
		if item == nil || item.ReservedQty < current.Qty {
			return pkgerrors.New(pkgerrors.CodeInternal, "inventory row out of sync with reservation")
		}

		item.ReservedQty -= current.Qty
		movementType := enums.StockMovementReleased
		if target == enums.ReservationStatusFulfilled {
			item.QuantityOnHand -= current.Qty
			movementType = enums.StockMovementFulfilled
		}
		if err := repo.SaveItem(ctx, item); err != nil {
			return err
		}

		now := time.Now().UTC()
		current.Status = target
		current.ConsumedAt = &now
		if err := repo.SaveReservation(ctx, current); err != nil {
			return err
		}

		_, err = s.movements.RecordMovement(ctx, tx, ledger.RecordMovementInput{
			SKU:           current.SKU,
			WarehouseID:   current.WarehouseID,
			Type:          movementType,
			Qty:           current.Qty,
			ReservationID: &current.ID,
		})
		return err
	})
}

func (s *service) Status(ctx context.Context, sku string, warehouseID uuid.UUID) (*StatusDTO, error) {
	if err := validateRow(sku, warehouseID); err != nil {
		return nil, err
	}

	item, err := s.repo.FindItem(ctx, sku, warehouseID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "inventory row not found")
	}
	return statusFromItem(*item), nil
}

func (s *service) LowStockItems(ctx context.Context) ([]StatusDTO, error) {
	items, err := s.repo.ListLowStock(ctx)
	if err != nil {
		return nil, err
	}
	statuses := make([]StatusDTO, 0, len(items))
	for _, item := range items {
		statuses = append(statuses, *statusFromItem(item))
	}
	return statuses, nil
}

func (s *service) SetReorderPoint(ctx context.Context, input ReorderPointInput) (*StatusDTO, error) {
	if err := validateRow(input.SKU, input.WarehouseID); err != nil {
		return nil, err
	}
	if input.ReorderPoint != nil && *input.ReorderPoint < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "reorder point cannot be negative")
	}

	unlock := s.locks.lock(input.SKU, input.WarehouseID)
	defer unlock()

	var status *StatusDTO
	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		item, err := repo.FindItem(ctx, input.SKU, input.WarehouseID)
		if err != nil {
			return err
		}
		if item == nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, "inventory row not found")
		}
		item.ReorderPoint = input.ReorderPoint
		if err := repo.SaveItem(ctx, item); err != nil {
			return err
		}
		status = statusFromItem(*item)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return status, nil
}

func (s *service) DeleteItem(ctx context.Context, sku string, warehouseID uuid.UUID) error {
	if err := validateRow(sku, warehouseID); err != nil {
		return err
	}

	unlock := s.locks.lock(sku, warehouseID)
	defer unlock()

	return s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		item, err := repo.FindItem(ctx, sku, warehouseID)
		if err != nil {
			return err
		}
		if item == nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, "inventory row not found")
		}
		if item.QuantityOnHand > 0 || item.ReservedQty > 0 {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "row still holds stock or reservations").
				WithDetails(map[string]any{"quantity": item.QuantityOnHand, "reserved": item.ReservedQty})
		}
		return repo.DeleteItem(ctx, sku, warehouseID)
	})
}

func validateRow(sku string, warehouseID uuid.UUID) error {
	if sku == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "sku is required")
	}
	if warehouseID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "warehouse id is required")
	}
	return nil
}

func statusFromItem(item models.InventoryItem) *StatusDTO {
	return &StatusDTO{
		SKU:          item.SKU,
		WarehouseID:  item.WarehouseID,
		Quantity:     item.QuantityOnHand,
		Reserved:     item.ReservedQty,
		Available:    item.Available(),
		ReorderPoint: item.ReorderPoint,
		IsLowStock:   item.IsLowStock(),
	}
}
