package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/kmensah/boutique-backend/pkg/config"
	"github.com/kmensah/boutique-backend/pkg/logger"
)

type recordingSender struct {
	channel string
	sent    []Message
	err     error
}

func (r *recordingSender) Channel() string { return r.channel }

func (r *recordingSender) Send(ctx context.Context, msg Message) error {
	r.sent = append(r.sent, msg)
	return r.err
}

func notifTestLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Level: zerolog.Disabled})
}

func TestDispatcherFansOutToAllChannels(t *testing.T) {
	email := &recordingSender{channel: "email"}
	whatsapp := &recordingSender{channel: "whatsapp"}
	dispatcher := NewDispatcher(notifTestLogger(), time.Second, email, whatsapp)

	msg := Message{Kind: KindPaymentConfirmed, OrderNumber: "BTQ-000042", CustomerEmail: "a@b.cm"}
	dispatcher.Send(context.Background(), msg)

	require.Len(t, email.sent, 1)
	require.Len(t, whatsapp.sent, 1)
	require.Equal(t, "BTQ-000042", email.sent[0].OrderNumber)
}

func TestDispatcherContinuesPastFailingChannel(t *testing.T) {
	failing := &recordingSender{channel: "email", err: errors.New("smtp relay down")}
	healthy := &recordingSender{channel: "whatsapp"}
	dispatcher := NewDispatcher(notifTestLogger(), time.Second, failing, healthy)

	dispatcher.Send(context.Background(), Message{Kind: KindOrderShipped, OrderNumber: "BTQ-000007"})

	require.Len(t, failing.sent, 1)
	require.Len(t, healthy.sent, 1)
}

func TestDispatcherOutlivesCancelledRequest(t *testing.T) {
	sender := &recordingSender{channel: "email"}
	dispatcher := NewDispatcher(notifTestLogger(), time.Second, sender)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	dispatcher.Send(ctx, Message{Kind: KindOrderCancelled, OrderNumber: "BTQ-000009"})

	require.Len(t, sender.sent, 1)
}

func TestEmailSenderPostsPayload(t *testing.T) {
	var got map[string]any
	var auth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	sender, err := NewEmailSender(config.NotificationsConfig{
		EmailEndpoint: server.URL,
		EmailAPIKey:   "key",
		EmailFrom:     "commandes@boutique.cm",
		SendTimeout:   time.Second,
	})
	require.NoError(t, err)

	msg := Message{
		Kind:          KindPaymentConfirmed,
		OrderNumber:   "BTQ-000001",
		CustomerEmail: "client@example.cm",
		Subject:       "Paiement confirmé",
		Body:          "Votre commande BTQ-000001 est en cours de traitement.",
	}
	require.NoError(t, sender.Send(context.Background(), msg))
	require.Equal(t, "Bearer key", auth)
	require.Equal(t, "client@example.cm", got["to"])
	require.Equal(t, "Paiement confirmé", got["subject"])
}

func TestEmailSenderSkipsWithoutAddress(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected")
	}))
	defer server.Close()

	sender, err := NewEmailSender(config.NotificationsConfig{
		EmailEndpoint: server.URL,
		EmailAPIKey:   "key",
		SendTimeout:   time.Second,
	})
	require.NoError(t, err)
	require.NoError(t, sender.Send(context.Background(), Message{OrderNumber: "BTQ-000002"}))
}

func TestEmailSenderSurfacesProviderError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	sender, err := NewEmailSender(config.NotificationsConfig{
		EmailEndpoint: server.URL,
		EmailAPIKey:   "key",
		SendTimeout:   time.Second,
	})
	require.NoError(t, err)
	require.Error(t, sender.Send(context.Background(), Message{CustomerEmail: "x@y.cm"}))
}
