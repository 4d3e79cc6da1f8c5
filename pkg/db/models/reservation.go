package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/sellerdeskhq/sellerdesk-backend/pkg/enums"
)

// Reservation is the persisted handle returned by a successful reserve call.
// It must be presented to release or fulfill the held quantity, and it can be
// consumed at most once.
type Reservation struct {
	ID          uuid.UUID               `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SKU         string                  `gorm:"column:sku;not null"`
	WarehouseID uuid.UUID               `gorm:"column:warehouse_id;type:uuid;not null"`
	Qty         int                     `gorm:"column:qty;not null"`
	Status      enums.ReservationStatus `gorm:"column:status;not null;default:held"`
	CreatedAt   time.Time               `gorm:"column:created_at;autoCreateTime"`
	ConsumedAt  *time.Time              `gorm:"column:consumed_at"`
}
