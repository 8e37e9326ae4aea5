package payments

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v84"
)

const stripeTestSecret = "whsec_test"

func buildStripeSignatureHeader(payload []byte, secret string, ts int64) string {
	signedPayload := fmt.Sprintf("%d.%s", ts, payload)
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(signedPayload))
	return fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

func buildSignedIntentEvent(t *testing.T, eventType stripe.EventType, orderID uuid.UUID, amount int64) ([]byte, string) {
	t.Helper()
	intent := &stripe.PaymentIntent{
		ID:     "pi_" + uuid.NewString(),
		Amount: amount,
		Metadata: map[string]string{
			"order_id": orderID.String(),
		},
	}
	raw, err := json.Marshal(intent)
	require.NoError(t, err)
	event := &stripe.Event{
		ID:         "evt_" + uuid.NewString(),
		Type:       eventType,
		Object:     "event",
		APIVersion: stripe.APIVersion,
		Data:       &stripe.EventData{Raw: raw},
	}
	payload, err := json.Marshal(event)
	require.NoError(t, err)
	return payload, buildStripeSignatureHeader(payload, stripeTestSecret, time.Now().Unix())
}

func TestStripe_PaymentIntentSucceeded(t *testing.T) {
	provider, err := NewStripe(stripeTestSecret)
	require.NoError(t, err)
	require.Equal(t, "stripe", provider.Name())

	orderID := uuid.New()
	payload, sig := buildSignedIntentEvent(t, stripe.EventTypePaymentIntentSucceeded, orderID, 45000)
	header := http.Header{}
	header.Set("Stripe-Signature", sig)

	result, err := provider.VerifyAndParse(header, payload)
	require.NoError(t, err)
	require.NotNil(t, result)
	require.Equal(t, orderID, result.OrderID)
	require.Equal(t, int64(45000), result.AmountFCFA)
	require.True(t, result.Succeeded)
}

func TestStripe_PaymentIntentFailed(t *testing.T) {
	provider, err := NewStripe(stripeTestSecret)
	require.NoError(t, err)

	payload, sig := buildSignedIntentEvent(t, stripe.EventTypePaymentIntentPaymentFailed, uuid.New(), 45000)
	header := http.Header{}
	header.Set("Stripe-Signature", sig)

	result, err := provider.VerifyAndParse(header, payload)
	require.NoError(t, err)
	require.NotNil(t, result)
	require.False(t, result.Succeeded)
}

func TestStripe_UnhandledEventIgnored(t *testing.T) {
	provider, err := NewStripe(stripeTestSecret)
	require.NoError(t, err)

	payload, sig := buildSignedIntentEvent(t, stripe.EventTypeChargeRefunded, uuid.New(), 45000)
	header := http.Header{}
	header.Set("Stripe-Signature", sig)

	result, err := provider.VerifyAndParse(header, payload)
	require.NoError(t, err)
	require.Nil(t, result)
}

func TestStripe_InvalidSignature(t *testing.T) {
	provider, err := NewStripe(stripeTestSecret)
	require.NoError(t, err)

	payload, _ := buildSignedIntentEvent(t, stripe.EventTypePaymentIntentSucceeded, uuid.New(), 45000)
	header := http.Header{}
	header.Set("Stripe-Signature", "t=1,v1=invalid")

	result, err := provider.VerifyAndParse(header, payload)
	require.Error(t, err)
	require.Nil(t, result)
}
