package enums

import "fmt"

// ReturnStatus tracks a return request. Progression is one-directional: a
// request only ever moves to a status with a higher rank.
type ReturnStatus string

const (
	ReturnStatusPending  ReturnStatus = "pending"
	ReturnStatusApproved ReturnStatus = "approved"
	ReturnStatusRejected ReturnStatus = "rejected"
	ReturnStatusShipped  ReturnStatus = "shipped"
	ReturnStatusReceived ReturnStatus = "received"
	ReturnStatusRefunded ReturnStatus = "refunded"
)

var returnStatusRank = map[ReturnStatus]int{
	ReturnStatusPending:  0,
	ReturnStatusApproved: 1,
	ReturnStatusRejected: 1,
	ReturnStatusShipped:  2,
	ReturnStatusReceived: 3,
	ReturnStatusRefunded: 4,
}

// String implements fmt.Stringer.
func (r ReturnStatus) String() string {
	return string(r)
}

// IsValid reports whether the value is a known ReturnStatus.
func (r ReturnStatus) IsValid() bool {
	_, ok := returnStatusRank[r]
	return ok
}

// CanProgressTo reports whether next is a legal forward move from r.
// Rejected is terminal; shipped and later are only reachable through approved.
func (r ReturnStatus) CanProgressTo(next ReturnStatus) bool {
	if !r.IsValid() || !next.IsValid() {
		return false
	}
	if r == ReturnStatusRejected {
		return false
	}
	if next == ReturnStatusRejected {
		return r == ReturnStatusPending
	}
	return returnStatusRank[next] > returnStatusRank[r]
}

// ParseReturnStatus converts raw input into a ReturnStatus.
func ParseReturnStatus(value string) (ReturnStatus, error) {
	candidate := ReturnStatus(value)
	if candidate.IsValid() {
		return candidate, nil
	}
	return "", fmt.Errorf("invalid return status %q", value)
}
