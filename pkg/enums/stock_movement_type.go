package enums

import "fmt"

// StockMovementType describes the allowed values for the `type` column in stock_movements.
type StockMovementType string

const (
	StockMovementReceived  StockMovementType = "received"
	StockMovementReserved  StockMovementType = "reserved"
	StockMovementReleased  StockMovementType = "released"
	StockMovementFulfilled StockMovementType = "fulfilled"
)

var validStockMovementTypes = []StockMovementType{
	StockMovementReceived,
	StockMovementReserved,
	StockMovementReleased,
	StockMovementFulfilled,
}

// IsValid reports whether the value matches the canonical stock movement enum.
func (s StockMovementType) IsValid() bool {
	for _, candidate := range validStockMovementTypes {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseStockMovementType converts the raw string to StockMovementType.
func ParseStockMovementType(value string) (StockMovementType, error) {
	for _, candidate := range validStockMovementTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid stock movement type %q", value)
}
