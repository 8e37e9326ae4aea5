package notifications

// Kind identifies the customer-facing event a message announces.
type Kind string

const (
	KindPaymentConfirmed    Kind = "payment_confirmed"
	KindPaymentFailed       Kind = "payment_failed"
	KindOrderShipped        Kind = "order_shipped"
	KindOrderDelivered      Kind = "order_delivered"
	KindOrderCancelled      Kind = "order_cancelled"
	KindCustomFinalization  Kind = "custom_finalization"
	KindCustomCompleted     Kind = "custom_completed"
	KindReturnStatusChanged Kind = "return_status_changed"
)

// Message is a channel-agnostic customer notification. Senders pick the
// fields they can deliver on; a missing phone simply skips WhatsApp.
type Message struct {
	Kind          Kind
	OrderNumber   string
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
	Subject       string
	Body          string
}
