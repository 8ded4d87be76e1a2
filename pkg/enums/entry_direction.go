package enums

import "fmt"

// EntryDirection maps to the entry_direction_enum enum in Postgres.
type EntryDirection string

const (
	EntryDirectionIncome  EntryDirection = "income"
	EntryDirectionExpense EntryDirection = "expense"
)

var validEntryDirections = []EntryDirection{
	EntryDirectionIncome,
	EntryDirectionExpense,
}

// IsValid reports whether the value matches the canonical direction enum.
func (d EntryDirection) IsValid() bool {
	for _, candidate := range validEntryDirections {
		if candidate == d {
			return true
		}
	}
	return false
}

// ParseEntryDirection converts raw input into EntryDirection.
func ParseEntryDirection(value string) (EntryDirection, error) {
	for _, candidate := range validEntryDirections {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid entry direction %q", value)
}
