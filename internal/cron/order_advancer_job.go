package cron

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/kmensah/boutique-backend/internal/notifications"
	"github.com/kmensah/boutique-backend/internal/orders"
	"github.com/kmensah/boutique-backend/pkg/db/models"
	"github.com/kmensah/boutique-backend/pkg/enums"
	"github.com/kmensah/boutique-backend/pkg/logger"
)

const (
	shipAfter    = 24 * time.Hour
	deliverAfter = 3 * 24 * time.Hour
	advancerPage = 200
)

// OrderAdvancerResult reports what one advancer pass changed.
type OrderAdvancerResult struct {
	Shipped   int `json:"shipped"`
	Delivered int `json:"delivered"`
}

type advancerNotifier interface {
	Send(ctx context.Context, msg notifications.Message)
}

// OrderAdvancerJobParams configure the order advancer.
type OrderAdvancerJobParams struct {
	Logger   *logger.Logger
	Orders   orders.Repository
	Notifier advancerNotifier
	Now      func() time.Time
}

// OrderAdvancerJob walks paid orders through shipping and delivery on a day
// cadence. Until a carrier integration exists the shipment rows carry a
// random placeholder carrier.
type OrderAdvancerJob struct {
	logg     *logger.Logger
	orders   orders.Repository
	notifier advancerNotifier
	now      func() time.Time
}

// NewOrderAdvancerJob builds the cron job that ships and delivers orders.
func NewOrderAdvancerJob(params OrderAdvancerJobParams) (*OrderAdvancerJob, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Orders == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &OrderAdvancerJob{
		logg:     params.Logger,
		orders:   params.Orders,
		notifier: params.Notifier,
		now:      now,
	}, nil
}

func (j *OrderAdvancerJob) Name() string { return "order-advancer" }

func (j *OrderAdvancerJob) Run(ctx context.Context) error {
	_, err := j.Execute(ctx)
	return err
}

// Execute runs one advancer pass. Orders fail individually; one broken order
// does not stop the batch.
func (j *OrderAdvancerJob) Execute(ctx context.Context) (OrderAdvancerResult, error) {
	var result OrderAdvancerResult
	var errs []error

	shipped, err := j.shipProcessingOrders(ctx)
	result.Shipped = shipped
	if err != nil {
		errs = append(errs, err)
	}

	delivered, err := j.deliverShippedOrders(ctx)
	result.Delivered = delivered
	if err != nil {
		errs = append(errs, err)
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"shipped":   result.Shipped,
		"delivered": result.Delivered,
	})
	j.logg.Info(logCtx, "order advancer pass complete")
	return result, multierr.Combine(errs...)
}

func (j *OrderAdvancerJob) shipProcessingOrders(ctx context.Context) (int, error) {
	now := j.now().UTC()
	batch, err := j.orders.FindProcessingToShip(ctx, now.Add(-shipAfter), advancerPage)
	if err != nil {
		return 0, fmt.Errorf("query orders to ship: %w", err)
	}

	shipped := 0
	var errs []error
	for _, order := range batch {
		if err := j.shipOrder(ctx, order, now); err != nil {
			errs = append(errs, fmt.Errorf("ship order %s: %w", order.ID, err))
			continue
		}
		shipped++
	}
	return shipped, multierr.Combine(errs...)
}

func (j *OrderAdvancerJob) shipOrder(ctx context.Context, order models.Order, now time.Time) error {
	carrier := randomCarrier()
	trackingNumber := newTrackingNumber()
	estimated := now.AddDate(0, 0, order.DeliveryDurationDays)

	rows, err := j.orders.MarkShipped(ctx, order.ID, carrier, trackingNumber, now, estimated)
	if err != nil {
		return err
	}
	if rows == 0 {
		// A concurrent pass shipped it already.
		return nil
	}

	if _, err := j.orders.CreateShipment(ctx, &models.Shipment{
		OrderID:        order.ID,
		Carrier:        carrier,
		TrackingNumber: trackingNumber,
		ShippedAt:      now,
	}); err != nil {
		j.logg.Error(ctx, "shipment record failed", err)
	}
	if err := j.orders.AppendTracking(ctx, &models.DeliveryTracking{
		OrderID:    order.ID,
		Status:     enums.OrderStatusShipped.String(),
		Note:       "remis au transporteur " + carrier.String(),
		OccurredAt: now,
	}); err != nil {
		j.logg.Error(ctx, "tracking row failed", err)
	}

	j.send(ctx, order, notifications.KindOrderShipped,
		"Commande expédiée — "+order.OrderNumber,
		fmt.Sprintf("Votre commande %s a été expédiée via %s. Numéro de suivi : %s.", order.OrderNumber, carrier, trackingNumber))
	return nil
}

func (j *OrderAdvancerJob) deliverShippedOrders(ctx context.Context) (int, error) {
	now := j.now().UTC()
	batch, err := j.orders.FindShippedToDeliver(ctx, now.Add(-deliverAfter), advancerPage)
	if err != nil {
		return 0, fmt.Errorf("query orders to deliver: %w", err)
	}

	delivered := 0
	var errs []error
	for _, order := range batch {
		rows, err := j.orders.MarkDelivered(ctx, order.ID, now)
		if err != nil {
			errs = append(errs, fmt.Errorf("deliver order %s: %w", order.ID, err))
			continue
		}
		if rows == 0 {
			continue
		}
		if err := j.orders.AppendTracking(ctx, &models.DeliveryTracking{
			OrderID:    order.ID,
			Status:     enums.OrderStatusDelivered.String(),
			OccurredAt: now,
		}); err != nil {
			j.logg.Error(ctx, "tracking row failed", err)
		}
		j.send(ctx, order, notifications.KindOrderDelivered,
			"Commande livrée — "+order.OrderNumber,
			fmt.Sprintf("Votre commande %s a été livrée. Merci pour votre confiance.", order.OrderNumber))
		delivered++
	}
	return delivered, multierr.Combine(errs...)
}

func (j *OrderAdvancerJob) send(ctx context.Context, order models.Order, kind notifications.Kind, subject, body string) {
	if j.notifier == nil {
		return
	}
	j.notifier.Send(ctx, notifications.Message{
		Kind:          kind,
		OrderNumber:   order.OrderNumber,
		CustomerName:  order.CustomerName,
		CustomerEmail: order.CustomerEmail,
		CustomerPhone: order.CustomerPhone,
		Subject:       subject,
		Body:          body,
	})
}

func randomCarrier() enums.Carrier {
	carriers := enums.Carriers()
	return carriers[rand.Intn(len(carriers))]
}

func newTrackingNumber() string {
	return "BTQ-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:12])
}
