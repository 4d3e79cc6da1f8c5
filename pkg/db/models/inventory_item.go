package models

import (
	"time"

	"github.com/google/uuid"
)

// InventoryItem tracks on-hand and reserved counts per (sku, warehouse) pair.
// Available stock is always derived, never stored.
type InventoryItem struct {
	SKU            string    `gorm:"column:sku;primaryKey"`
	WarehouseID    uuid.UUID `gorm:"column:warehouse_id;type:uuid;primaryKey"`
	QuantityOnHand int       `gorm:"column:quantity_on_hand;not null;default:0"`
	ReservedQty    int       `gorm:"column:reserved_qty;not null;default:0"`
	ReorderPoint   *int      `gorm:"column:reorder_point"`
	UpdatedAt      time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// Available returns on-hand stock not held against open reservations.
func (i InventoryItem) Available() int {
	return i.QuantityOnHand - i.ReservedQty
}

// IsLowStock reports whether available stock has fallen to the reorder point.
func (i InventoryItem) IsLowStock() bool {
	return i.ReorderPoint != nil && i.Available() <= *i.ReorderPoint
}
