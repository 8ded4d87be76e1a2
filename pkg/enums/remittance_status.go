package enums

import "fmt"

// RemittanceStatus tracks the two-leg unit-to-treasury transfer.
// A remittance stays pending until the treasury credit is durably written;
// compensated means the unit debit was explicitly reversed by an operator.
type RemittanceStatus string

const (
	RemittanceStatusPending     RemittanceStatus = "pending"
	RemittanceStatusCommitted   RemittanceStatus = "committed"
	RemittanceStatusCompensated RemittanceStatus = "compensated"
)

var validRemittanceStatuses = []RemittanceStatus{
	RemittanceStatusPending,
	RemittanceStatusCommitted,
	RemittanceStatusCompensated,
}

// IsValid reports whether the value matches the canonical remittance status enum.
func (s RemittanceStatus) IsValid() bool {
	for _, candidate := range validRemittanceStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseRemittanceStatus converts raw input into RemittanceStatus.
func ParseRemittanceStatus(value string) (RemittanceStatus, error) {
	for _, candidate := range validRemittanceStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid remittance status %q", value)
}
