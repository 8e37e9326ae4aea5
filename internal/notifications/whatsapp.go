package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/kmensah/boutique-backend/pkg/config"
	pkgerrors "github.com/kmensah/boutique-backend/pkg/errors"
)

// WhatsAppSender delivers short status texts through the WhatsApp Business
// API. Messages without a phone number are skipped silently.
type WhatsAppSender struct {
	endpoint string
	token    string
	client   *http.Client
}

func NewWhatsAppSender(cfg config.NotificationsConfig) (*WhatsAppSender, error) {
	endpoint := strings.TrimSpace(cfg.WhatsAppEndpoint)
	if endpoint == "" {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "whatsapp endpoint required")
	}
	if strings.TrimSpace(cfg.WhatsAppToken) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "whatsapp token required")
	}
	return &WhatsAppSender{
		endpoint: endpoint,
		token:    cfg.WhatsAppToken,
		client:   &http.Client{Timeout: cfg.SendTimeout},
	}, nil
}

func (s *WhatsAppSender) Channel() string { return "whatsapp" }

func (s *WhatsAppSender) Send(ctx context.Context, msg Message) error {
	if msg.CustomerPhone == "" {
		return nil
	}
	payload, err := json.Marshal(map[string]any{
		"messaging_product": "whatsapp",
		"to":                msg.CustomerPhone,
		"type":              "text",
		"text":              map[string]string{"body": msg.Body},
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode whatsapp payload")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(payload))
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build whatsapp request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.token)

	resp, err := s.client.Do(req)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "send whatsapp message")
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= http.StatusBadRequest {
		return pkgerrors.New(pkgerrors.CodeDependency, fmt.Sprintf("whatsapp api returned %d", resp.StatusCode))
	}
	return nil
}
