package lifecycle

import (
	"github.com/kmensah/boutique-backend/pkg/enums"
	pkgerrors "github.com/kmensah/boutique-backend/pkg/errors"
)

// Machine validates order status transitions against a fixed table.
type Machine struct {
	transitions map[enums.OrderStatus][]enums.OrderStatus
}

func NewMachine() *Machine {
	return &Machine{
		transitions: map[enums.OrderStatus][]enums.OrderStatus{
			enums.OrderStatusPending:    {enums.OrderStatusConfirmed, enums.OrderStatusProcessing, enums.OrderStatusCancelled},
			enums.OrderStatusConfirmed:  {enums.OrderStatusProcessing, enums.OrderStatusCancelled},
			enums.OrderStatusProcessing: {enums.OrderStatusShipped, enums.OrderStatusCancelled},
			enums.OrderStatusShipped:    {enums.OrderStatusDelivered, enums.OrderStatusCancelled},
			enums.OrderStatusDelivered:  {},
			enums.OrderStatusCancelled:  {},
		},
	}
}

func (m *Machine) CanTransition(from, to enums.OrderStatus) bool {
	allowed, ok := m.transitions[from]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

func (m *Machine) Transition(from, to enums.OrderStatus) error {
	if !m.CanTransition(from, to) {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "cannot transition from "+from.String()+" to "+to.String())
	}
	return nil
}
