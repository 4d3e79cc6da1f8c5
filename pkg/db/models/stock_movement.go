package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/sellerdeskhq/sellerdesk-backend/pkg/enums"
)

// StockMovement is an append-only audit record of a ledger mutation.
type StockMovement struct {
	ID            uuid.UUID               `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SKU           string                  `gorm:"column:sku;not null"`
	WarehouseID   uuid.UUID               `gorm:"column:warehouse_id;type:uuid;not null"`
	Type          enums.StockMovementType `gorm:"column:type;not null"`
	Qty           int                     `gorm:"column:qty;not null"`
	ReservationID *uuid.UUID              `gorm:"column:reservation_id;type:uuid"`
	CreatedAt     time.Time               `gorm:"column:created_at;autoCreateTime"`
}
