package payments

import (
	"net/http"

	"github.com/google/uuid"
)

// Result is the provider-neutral outcome of a payment callback.
type Result struct {
	Provider   string    `json:"provider"`
	OrderID    uuid.UUID `json:"order_id"`
	ExternalID string    `json:"external_id"`
	AmountFCFA int64     `json:"amount_fcfa"`
	Succeeded  bool      `json:"succeeded"`
	Status     string    `json:"status"`
}

// Provider normalizes one gateway's webhook into a Result. Signature
// verification happens before any payload field is trusted; a callback the
// provider does not care about yields (nil, nil) so the HTTP layer can ack it
// without touching the state machine.
type Provider interface {
	Name() string
	VerifyAndParse(header http.Header, body []byte) (*Result, error)
}
