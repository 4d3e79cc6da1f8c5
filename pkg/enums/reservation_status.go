package enums

import "fmt"

// ReservationStatus tracks the lifecycle of a stock reservation handle.
type ReservationStatus string

const (
	ReservationStatusHeld      ReservationStatus = "held"
	ReservationStatusReleased  ReservationStatus = "released"
	ReservationStatusFulfilled ReservationStatus = "fulfilled"
)

var validReservationStatuses = []ReservationStatus{
	ReservationStatusHeld,
	ReservationStatusReleased,
	ReservationStatusFulfilled,
}

// IsValid reports whether the value matches the canonical reservation status enum.
func (r ReservationStatus) IsValid() bool {
	for _, candidate := range validReservationStatuses {
		if candidate == r {
			return true
		}
	}
	return false
}

// IsConsumed reports whether the handle can no longer be released or fulfilled.
func (r ReservationStatus) IsConsumed() bool {
	return r == ReservationStatusReleased || r == ReservationStatusFulfilled
}

// ParseReservationStatus converts the raw string to ReservationStatus.
func ParseReservationStatus(value string) (ReservationStatus, error) {
	for _, candidate := range validReservationStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid reservation status %q", value)
}
