package notifications

import (
	"context"
	"time"

	"github.com/kmensah/boutique-backend/pkg/logger"
)

// Sender delivers a message over one channel.
type Sender interface {
	Channel() string
	Send(ctx context.Context, msg Message) error
}

// Dispatcher fans a message out to every configured channel. Delivery is
// best-effort: a failing channel is logged with order context and skipped,
// and Send never surfaces an error to the caller. There is no retry queue;
// the next lifecycle event produces the next message.
type Dispatcher struct {
	senders []Sender
	timeout time.Duration
	logger  *logger.Logger
}

func NewDispatcher(logg *logger.Logger, timeout time.Duration, senders ...Sender) *Dispatcher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Dispatcher{senders: senders, timeout: timeout, logger: logg}
}

func (d *Dispatcher) Send(ctx context.Context, msg Message) {
	if d == nil {
		return
	}
	for _, sender := range d.senders {
		sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.timeout)
		err := sender.Send(sendCtx, msg)
		cancel()
		if err != nil && d.logger != nil {
			logCtx := d.logger.WithFields(ctx, map[string]any{
				"channel":      sender.Channel(),
				"kind":         string(msg.Kind),
				"order_number": msg.OrderNumber,
				"error":        err.Error(),
			})
			d.logger.Warn(logCtx, "notification delivery failed")
		}
	}
}
