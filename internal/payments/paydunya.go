package payments

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"

	pkgerrors "github.com/kmensah/boutique-backend/pkg/errors"
)

const (
	payDunyaName            = "paydunya"
	payDunyaSignatureHeader = "Paydunya-Signature"

	payDunyaStatusCompleted = "completed"
	payDunyaStatusCancelled = "cancelled"
	payDunyaStatusFailed    = "failed"
)

type payDunyaPayload struct {
	Invoice struct {
		Token       string `json:"token"`
		Status      string `json:"status"`
		TotalAmount int64  `json:"total_amount"`
	} `json:"invoice"`
	CustomData struct {
		OrderID string `json:"order_id"`
	} `json:"custom_data"`
}

// PayDunya verifies and normalizes PayDunya IPN callbacks. The signature is an
// HMAC-SHA256 of the raw body keyed with the shared secret, hex-encoded.
type PayDunya struct {
	secret []byte
}

func NewPayDunya(secret string) (*PayDunya, error) {
	if secret == "" {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "paydunya secret required")
	}
	return &PayDunya{secret: []byte(secret)}, nil
}

func (p *PayDunya) Name() string { return payDunyaName }

func (p *PayDunya) VerifyAndParse(header http.Header, body []byte) (*Result, error) {
	supplied := strings.TrimSpace(header.Get(payDunyaSignatureHeader))
	if supplied == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "signature missing")
	}

	mac := hmac.New(sha256.New, p.secret)
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	if !hmac.Equal([]byte(strings.ToLower(supplied)), []byte(expected)) {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "signature mismatch")
	}

	var payload payDunyaPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decode paydunya payload")
	}
	if payload.Invoice.Token == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invoice token missing")
	}

	orderID, err := uuid.Parse(payload.CustomData.OrderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order id")
	}

	status := strings.ToLower(payload.Invoice.Status)
	switch status {
	case payDunyaStatusCompleted, payDunyaStatusCancelled, payDunyaStatusFailed:
	default:
		// Pending and other interim notifications are acked without action.
		return nil, nil
	}

	return &Result{
		Provider:   payDunyaName,
		OrderID:    orderID,
		ExternalID: payload.Invoice.Token,
		AmountFCFA: payload.Invoice.TotalAmount,
		Succeeded:  status == payDunyaStatusCompleted,
		Status:     status,
	}, nil
}
