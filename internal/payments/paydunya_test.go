package payments

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

const payDunyaTestSecret = "pd_test_secret"

func signPayDunya(t *testing.T, body []byte) string {
	t.Helper()
	mac := hmac.New(sha256.New, []byte(payDunyaTestSecret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func buildPayDunyaBody(t *testing.T, orderID uuid.UUID, status string, amount int64) []byte {
	t.Helper()
	body, err := json.Marshal(map[string]any{
		"invoice": map[string]any{
			"token":        "inv_" + uuid.NewString(),
			"status":       status,
			"total_amount": amount,
		},
		"custom_data": map[string]any{
			"order_id": orderID.String(),
		},
	})
	require.NoError(t, err)
	return body
}

func TestPayDunya_VerifyAndParse(t *testing.T) {
	provider, err := NewPayDunya(payDunyaTestSecret)
	require.NoError(t, err)
	require.Equal(t, "paydunya", provider.Name())

	orderID := uuid.New()
	body := buildPayDunyaBody(t, orderID, "completed", 25000)
	header := http.Header{}
	header.Set("Paydunya-Signature", signPayDunya(t, body))

	result, err := provider.VerifyAndParse(header, body)
	require.NoError(t, err)
	require.NotNil(t, result)
	require.Equal(t, orderID, result.OrderID)
	require.Equal(t, int64(25000), result.AmountFCFA)
	require.True(t, result.Succeeded)
	require.NotEmpty(t, result.ExternalID)
}

func TestPayDunya_FailedStatus(t *testing.T) {
	provider, err := NewPayDunya(payDunyaTestSecret)
	require.NoError(t, err)

	body := buildPayDunyaBody(t, uuid.New(), "cancelled", 1000)
	header := http.Header{}
	header.Set("Paydunya-Signature", signPayDunya(t, body))

	result, err := provider.VerifyAndParse(header, body)
	require.NoError(t, err)
	require.NotNil(t, result)
	require.False(t, result.Succeeded)
}

func TestPayDunya_PendingIgnored(t *testing.T) {
	provider, err := NewPayDunya(payDunyaTestSecret)
	require.NoError(t, err)

	body := buildPayDunyaBody(t, uuid.New(), "pending", 1000)
	header := http.Header{}
	header.Set("Paydunya-Signature", signPayDunya(t, body))

	result, err := provider.VerifyAndParse(header, body)
	require.NoError(t, err)
	require.Nil(t, result)
}

func TestPayDunya_BadSignature(t *testing.T) {
	provider, err := NewPayDunya(payDunyaTestSecret)
	require.NoError(t, err)

	body := buildPayDunyaBody(t, uuid.New(), "completed", 1000)
	header := http.Header{}
	header.Set("Paydunya-Signature", "deadbeef")

	result, err := provider.VerifyAndParse(header, body)
	require.Error(t, err)
	require.Nil(t, result)

	header.Del("Paydunya-Signature")
	result, err = provider.VerifyAndParse(header, body)
	require.Error(t, err)
	require.Nil(t, result)
}
