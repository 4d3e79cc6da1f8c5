package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/sellerdeskhq/sellerdesk-backend/pkg/enums"
)

// PriceBook is a currency-scoped collection of per-product prices with
// optional customer-group and validity-window scoping.
type PriceBook struct {
	ID              uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name            string           `gorm:"column:name;not null"`
	Currency        enums.Currency   `gorm:"column:currency;not null"`
	IsDefault       bool             `gorm:"column:is_default;not null;default:false"`
	CustomerGroupID *string          `gorm:"column:customer_group_id"`
	ValidFrom       *time.Time       `gorm:"column:valid_from"`
	ValidTo         *time.Time       `gorm:"column:valid_to"`
	Entries         []PriceBookEntry `gorm:"foreignKey:PriceBookID;constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

// AppliesTo reports whether the instant falls inside the validity window.
// A missing bound leaves that side unbounded.
func (p PriceBook) AppliesTo(asOf time.Time) bool {
	if p.ValidFrom != nil && asOf.Before(*p.ValidFrom) {
		return false
	}
	if p.ValidTo != nil && asOf.After(*p.ValidTo) {
		return false
	}
	return true
}

// IsGroupAgnostic reports whether the book applies to all customer groups.
func (p PriceBook) IsGroupAgnostic() bool {
	return p.CustomerGroupID == nil || *p.CustomerGroupID == ""
}

// IsUnbounded reports whether the validity window is open on both sides.
func (p PriceBook) IsUnbounded() bool {
	return p.ValidFrom == nil && p.ValidTo == nil
}
