package enums

import "fmt"

// RentalStatus tracks the lifecycle of a billable workstation session.
// A station with no session row at all is idle.
type RentalStatus string

const (
	RentalStatusActive   RentalStatus = "active"
	RentalStatusSettling RentalStatus = "settling"
)

var validRentalStatuses = []RentalStatus{
	RentalStatusActive,
	RentalStatusSettling,
}

// IsValid reports whether the value matches the canonical rental status enum.
func (s RentalStatus) IsValid() bool {
	for _, candidate := range validRentalStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseRentalStatus converts raw input into RentalStatus.
func ParseRentalStatus(value string) (RentalStatus, error) {
	for _, candidate := range validRentalStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid rental status %q", value)
}
