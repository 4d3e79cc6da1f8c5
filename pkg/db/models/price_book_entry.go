package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PriceBookEntry maps a product identifier to a unit amount in the book's
// currency. Keys are unique per book.
type PriceBookEntry struct {
	PriceBookID uuid.UUID       `gorm:"column:price_book_id;type:uuid;primaryKey"`
	ProductID   string          `gorm:"column:product_id;primaryKey"`
	UnitAmount  decimal.Decimal `gorm:"column:unit_amount;type:numeric(12,4);not null"`
}
