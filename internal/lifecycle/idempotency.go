package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kmensah/boutique-backend/pkg/redis"
)

// WebhookGuard deduplicates provider callbacks. The key embeds the provider,
// the reported status and the provider's event identifier, so a retried
// delivery of the same notification is dropped while a later notification for
// the same payment with a different status is still processed.
type WebhookGuard struct {
	store redis.IdempotencyStore
	ttl   time.Duration
}

func NewWebhookGuard(store redis.IdempotencyStore, ttl time.Duration) (*WebhookGuard, error) {
	if store == nil {
		return nil, errors.New("idempotency store is required")
	}
	if ttl < 0 {
		return nil, errors.New("ttl must be non-negative")
	}
	return &WebhookGuard{store: store, ttl: ttl}, nil
}

func (g *WebhookGuard) key(provider, status, externalID string) string {
	return g.store.IdempotencyKey(fmt.Sprintf("%s:webhook", provider), fmt.Sprintf("%s:%s", status, externalID))
}

// CheckAndMark returns true when the event was already seen. The mark is
// written before the state change is applied; callers must Delete it if the
// change fails so the provider's retry is not swallowed.
func (g *WebhookGuard) CheckAndMark(ctx context.Context, provider, status, externalID string) (bool, error) {
	if externalID == "" {
		return false, errors.New("external id is required")
	}
	set, err := g.store.SetNX(ctx, g.key(provider, status, externalID), "1", g.ttl)
	if err != nil {
		return false, fmt.Errorf("set idempotency key: %w", err)
	}
	return !set, nil
}

func (g *WebhookGuard) Delete(ctx context.Context, provider, status, externalID string) error {
	if externalID == "" {
		return errors.New("external id is required")
	}
	return g.store.Del(ctx, g.key(provider, status, externalID))
}
