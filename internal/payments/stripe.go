package payments

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v84"
	"github.com/stripe/stripe-go/v84/webhook"

	pkgerrors "github.com/kmensah/boutique-backend/pkg/errors"
)

const (
	stripeName            = "stripe"
	stripeSignatureHeader = "Stripe-Signature"
)

// Stripe verifies webhook signatures and normalizes payment_intent events.
// Event types outside the payment intent lifecycle are acked without a Result.
type Stripe struct {
	signingSecret string
}

func NewStripe(signingSecret string) (*Stripe, error) {
	if signingSecret == "" {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "stripe signing secret required")
	}
	return &Stripe{signingSecret: signingSecret}, nil
}

func (s *Stripe) Name() string { return stripeName }

func (s *Stripe) VerifyAndParse(header http.Header, body []byte) (*Result, error) {
	sigHeader := header.Get(stripeSignatureHeader)
	if sigHeader == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "stripe signature missing")
	}

	event, err := webhook.ConstructEvent(body, sigHeader, s.signingSecret)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "verify stripe signature")
	}

	switch event.Type {
	case stripe.EventTypePaymentIntentSucceeded, stripe.EventTypePaymentIntentPaymentFailed:
	default:
		return nil, nil
	}
	if event.Data == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "stripe event data required")
	}

	var intent stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode payment intent event")
	}

	orderID, err := uuid.Parse(intent.Metadata["order_id"])
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order id in metadata")
	}

	succeeded := event.Type == stripe.EventTypePaymentIntentSucceeded
	status := "failed"
	if succeeded {
		status = "succeeded"
	}

	return &Result{
		Provider:   stripeName,
		OrderID:    orderID,
		ExternalID: intent.ID,
		AmountFCFA: intent.Amount,
		Succeeded:  succeeded,
		Status:     status,
	}, nil
}
