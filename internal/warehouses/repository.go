package warehouses

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sellerdeskhq/sellerdesk-backend/internal/repo"
	"github.com/sellerdeskhq/sellerdesk-backend/pkg/db/models"
)

// Repository manages persistence for warehouses.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, warehouse *models.Warehouse) error
	Save(ctx context.Context, warehouse *models.Warehouse) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Warehouse, error)
	List(ctx context.Context) ([]models.Warehouse, error)
	Delete(ctx context.Context, id uuid.UUID) error
	CountActiveInventory(ctx context.Context, id uuid.UUID) (int64, error)
}

type repository struct {
	repo.Base
}

// NewRepository returns a warehouse repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{Base: repo.NewBase(tx)}
}

func (r *repository) Create(ctx context.Context, warehouse *models.Warehouse) error {
	return r.DB(ctx).Create(warehouse).Error
}

func (r *repository) Save(ctx context.Context, warehouse *models.Warehouse) error {
	return r.DB(ctx).
		Model(&models.Warehouse{}).
		Where("id = ?", warehouse.ID).
		Update("name", warehouse.Name).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Warehouse, error) {
	var warehouse models.Warehouse
	err := r.DB(ctx).Where("id = ?", id).First(&warehouse).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &warehouse, nil
}

func (r *repository) List(ctx context.Context) ([]models.Warehouse, error) {
	var warehouses []models.Warehouse
	if err := r.DB(ctx).Order("name ASC").Find(&warehouses).Error; err != nil {
		return nil, err
	}
	return warehouses, nil
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.DB(ctx).Where("id = ?", id).Delete(&models.Warehouse{}).Error
}

// CountActiveInventory counts inventory rows in the warehouse that still hold
// stock or open reservations.
func (r *repository) CountActiveInventory(ctx context.Context, id uuid.UUID) (int64, error) {
	var count int64
	err := r.DB(ctx).
		Model(&models.InventoryItem{}).
		Where("warehouse_id = ?", id).
		Where("quantity_on_hand > 0 OR reserved_qty > 0").
		Count(&count).Error
	return count, err
}
