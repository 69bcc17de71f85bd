package enums

import "fmt"

// MappingStatus is the lifecycle state of a product's asset mapping.
//
// unmapped is the initial state. The AI pipeline moves products to suggested,
// a human (or bulk action) moves them to confirmed, skip defers them. A
// confirmed product whose last link is removed falls back to unmapped.
type MappingStatus string

const (
	MappingStatusUnmapped  MappingStatus = "unmapped"
	MappingStatusSuggested MappingStatus = "suggested"
	MappingStatusConfirmed MappingStatus = "confirmed"
	MappingStatusSkipped   MappingStatus = "skipped"
)

var validMappingStatuses = []MappingStatus{
	MappingStatusUnmapped,
	MappingStatusSuggested,
	MappingStatusConfirmed,
	MappingStatusSkipped,
}

// String implements fmt.Stringer.
func (s MappingStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known MappingStatus.
func (s MappingStatus) IsValid() bool {
	for _, candidate := range validMappingStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseMappingStatus converts raw input into a MappingStatus.
func ParseMappingStatus(value string) (MappingStatus, error) {
	for _, candidate := range validMappingStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid mapping status %q", value)
}
