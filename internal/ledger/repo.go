package ledger

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sellerdeskhq/sellerdesk-backend/internal/repo"
	"github.com/sellerdeskhq/sellerdesk-backend/pkg/db/models"
)

// Repository manages persistence for stock movements.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, movement *models.StockMovement) error
	ListByRow(ctx context.Context, sku string, warehouseID uuid.UUID) ([]models.StockMovement, error)
}

type repository struct {
	repo.Base
}

// NewRepository returns a stock movement repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{Base: repo.NewBase(tx)}
}

func (r *repository) Create(ctx context.Context, movement *models.StockMovement) error {
	return r.DB(ctx).Create(movement).Error
}

func (r *repository) ListByRow(ctx context.Context, sku string, warehouseID uuid.UUID) ([]models.StockMovement, error) {
	var movements []models.StockMovement
	if err := r.DB(ctx).
		Where("sku = ? AND warehouse_id = ?", sku, warehouseID).
		Order("created_at ASC").
		Find(&movements).Error; err != nil {
		return nil, err
	}
	return movements, nil
}
