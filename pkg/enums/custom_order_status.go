package enums

import "fmt"

// CustomOrderStatus tracks the slower bespoke-order lifecycle.
type CustomOrderStatus string

const (
	CustomOrderStatusPending    CustomOrderStatus = "pending"
	CustomOrderStatusProcessing CustomOrderStatus = "processing"
	CustomOrderStatusCompleted  CustomOrderStatus = "completed"
	CustomOrderStatusCancelled  CustomOrderStatus = "cancelled"
)

var validCustomOrderStatuses = []CustomOrderStatus{
	CustomOrderStatusPending,
	CustomOrderStatusProcessing,
	CustomOrderStatusCompleted,
	CustomOrderStatusCancelled,
}

// String implements fmt.Stringer.
func (c CustomOrderStatus) String() string {
	return string(c)
}

// IsValid reports whether the value is a known CustomOrderStatus.
func (c CustomOrderStatus) IsValid() bool {
	for _, candidate := range validCustomOrderStatuses {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseCustomOrderStatus converts raw input into a CustomOrderStatus.
func ParseCustomOrderStatus(value string) (CustomOrderStatus, error) {
	for _, candidate := range validCustomOrderStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid custom order status %q", value)
}
