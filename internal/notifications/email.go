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

// EmailSender posts transactional mail to the configured provider endpoint.
type EmailSender struct {
	endpoint string
	apiKey   string
	from     string
	client   *http.Client
}

func NewEmailSender(cfg config.NotificationsConfig) (*EmailSender, error) {
	endpoint := strings.TrimSpace(cfg.EmailEndpoint)
	if endpoint == "" {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "email endpoint required")
	}
	if strings.TrimSpace(cfg.EmailAPIKey) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "email api key required")
	}
	return &EmailSender{
		endpoint: endpoint,
		apiKey:   cfg.EmailAPIKey,
		from:     cfg.EmailFrom,
		client:   &http.Client{Timeout: cfg.SendTimeout},
	}, nil
}

func (s *EmailSender) Channel() string { return "email" }

func (s *EmailSender) Send(ctx context.Context, msg Message) error {
	if msg.CustomerEmail == "" {
		return nil
	}
	payload, err := json.Marshal(map[string]any{
		"from":    s.from,
		"to":      msg.CustomerEmail,
		"subject": msg.Subject,
		"text":    msg.Body,
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode email payload")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(payload))
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build email request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "send email")
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= http.StatusBadRequest {
		return pkgerrors.New(pkgerrors.CodeDependency, fmt.Sprintf("email provider returned %d", resp.StatusCode))
	}
	return nil
}
