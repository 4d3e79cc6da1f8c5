package inventory

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sellerdeskhq/sellerdesk-backend/internal/repo"
	"github.com/sellerdeskhq/sellerdesk-backend/pkg/db/models"
)

// Repository manages persistence for inventory rows and reservation handles.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindItem(ctx context.Context, sku string, warehouseID uuid.UUID) (*models.InventoryItem, error)
	CreateItem(ctx context.Context, item *models.InventoryItem) error
	SaveItem(ctx context.Context, item *models.InventoryItem) error
	DeleteItem(ctx context.Context, sku string, warehouseID uuid.UUID) error
	ListLowStock(ctx context.Context) ([]models.InventoryItem, error)
	FindReservation(ctx context.Context, id uuid.UUID) (*models.Reservation, error)
	CreateReservation(ctx context.Context, reservation *models.Reservation) error
	SaveReservation(ctx context.Context, reservation *models.Reservation) error
}

type repository struct {
	repo.Base
}

// NewRepository returns an inventory repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{Base: repo.NewBase(tx)}
}

func (r *repository) FindItem(ctx context.Context, sku string, warehouseID uuid.UUID) (*models.InventoryItem, error) {
	var item models.InventoryItem
	err := r.DB(ctx).
		Where("sku = ? AND warehouse_id = ?", sku, warehouseID).
		First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

func (r *repository) CreateItem(ctx context.Context, item *models.InventoryItem) error {
	return r.DB(ctx).Create(item).Error
}

func (r *repository) SaveItem(ctx context.Context, item *models.InventoryItem) error {
	return r.DB(ctx).
		Model(&models.InventoryItem{}).
		Where("sku = ? AND warehouse_id = ?", item.SKU, item.WarehouseID).
		Updates(map[string]any{
			"quantity_on_hand": item.QuantityOnHand,
			"reserved_qty":     item.ReservedQty,
			"reorder_point":    item.ReorderPoint,
		}).Error
}

func (r *repository) DeleteItem(ctx context.Context, sku string, warehouseID uuid.UUID) error {
	return r.DB(ctx).
		Where("sku = ? AND warehouse_id = ?", sku, warehouseID).
		Delete(&models.InventoryItem{}).Error
}

func (r *repository) ListLowStock(ctx context.Context) ([]models.InventoryItem, error) {
	var items []models.InventoryItem
	err := r.DB(ctx).
		Where("reorder_point IS NOT NULL AND quantity_on_hand - reserved_qty <= reorder_point").
		Order("sku ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repository) FindReservation(ctx context.Context, id uuid.UUID) (*models.Reservation, error) {
	var reservation models.Reservation
	err := r.DB(ctx).Where("id = ?", id).First(&reservation).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &reservation, nil
}

func (r *repository) CreateReservation(ctx context.Context, reservation *models.Reservation) error {
	return r.DB(ctx).Create(reservation).Error
}

func (r *repository) SaveReservation(ctx context.Context, reservation *models.Reservation) error {
	return r.DB(ctx).
		Model(&models.Reservation{}).
		Where("id = ?", reservation.ID).
		Updates(map[string]any{
			"status":      reservation.Status,
			"consumed_at": reservation.ConsumedAt,
		}).Error
}
