package cron

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/multierr"

	"github.com/kmensah/boutique-backend/internal/customorders"
	"github.com/kmensah/boutique-backend/internal/notifications"
	"github.com/kmensah/boutique-backend/pkg/db/models"
	"github.com/kmensah/boutique-backend/pkg/logger"
)

const (
	finalizationNoticeAfter = 10 * 24 * time.Hour
	completionAfter         = 20 * 24 * time.Hour
	customOrderPage         = 200
)

// CustomOrderResult reports what one bespoke-order pass changed.
type CustomOrderResult struct {
	Notified  int `json:"notified"`
	Completed int `json:"completed"`
}

// CustomOrderJobParams configure the bespoke order scheduler.
type CustomOrderJobParams struct {
	Logger       *logger.Logger
	CustomOrders customorders.Repository
	Notifier     advancerNotifier
	Now          func() time.Time
}

// CustomOrderJob drives the day-count milestones of bespoke orders: a
// finalization notice around day 10 of processing and completion around day
// 20, both skipped for orders already delivered.
type CustomOrderJob struct {
	logg     *logger.Logger
	customs  customorders.Repository
	notifier advancerNotifier
	now      func() time.Time
}

// NewCustomOrderJob builds the cron job for bespoke order milestones.
func NewCustomOrderJob(params CustomOrderJobParams) (*CustomOrderJob, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.CustomOrders == nil {
		return nil, fmt.Errorf("custom orders repository required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &CustomOrderJob{
		logg:     params.Logger,
		customs:  params.CustomOrders,
		notifier: params.Notifier,
		now:      now,
	}, nil
}

func (j *CustomOrderJob) Name() string { return "custom-order" }

func (j *CustomOrderJob) Run(ctx context.Context) error {
	_, err := j.Execute(ctx)
	return err
}

// Execute runs one milestone pass.
func (j *CustomOrderJob) Execute(ctx context.Context) (CustomOrderResult, error) {
	var result CustomOrderResult
	var errs []error

	notified, err := j.sendFinalizationNotices(ctx)
	result.Notified = notified
	if err != nil {
		errs = append(errs, err)
	}

	completed, err := j.completeFinishedOrders(ctx)
	result.Completed = completed
	if err != nil {
		errs = append(errs, err)
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"notified":  result.Notified,
		"completed": result.Completed,
	})
	j.logg.Info(logCtx, "custom order pass complete")
	return result, multierr.Combine(errs...)
}

func (j *CustomOrderJob) sendFinalizationNotices(ctx context.Context) (int, error) {
	now := j.now().UTC()
	batch, err := j.customs.FindAwaitingFinalizationNotice(ctx, now.Add(-finalizationNoticeAfter), customOrderPage)
	if err != nil {
		return 0, fmt.Errorf("query customs awaiting notice: %w", err)
	}

	notified := 0
	var errs []error
	for _, order := range batch {
		// The stamp goes first so a notification hiccup cannot spam the
		// customer on the next pass.
		rows, err := j.customs.StampFinalizationNotified(ctx, order.ID, now)
		if err != nil {
			errs = append(errs, fmt.Errorf("stamp custom order %s: %w", order.ID, err))
			continue
		}
		if rows == 0 {
			continue
		}
		j.send(ctx, order, notifications.KindCustomFinalization,
			"Votre commande sur mesure arrive bientôt — "+order.OrderNumber,
			fmt.Sprintf("La confection de votre commande %s touche à sa fin. Nous vous contacterons pour les derniers ajustements.", order.OrderNumber))
		notified++
	}
	return notified, multierr.Combine(errs...)
}

func (j *CustomOrderJob) completeFinishedOrders(ctx context.Context) (int, error) {
	now := j.now().UTC()
	batch, err := j.customs.FindDueForCompletion(ctx, now.Add(-completionAfter), customOrderPage)
	if err != nil {
		return 0, fmt.Errorf("query customs due for completion: %w", err)
	}

	completed := 0
	var errs []error
	for _, order := range batch {
		rows, err := j.customs.Complete(ctx, order.ID, now)
		if err != nil {
			errs = append(errs, fmt.Errorf("complete custom order %s: %w", order.ID, err))
			continue
		}
		if rows == 0 {
			continue
		}
		j.send(ctx, order, notifications.KindCustomCompleted,
			"Commande sur mesure terminée — "+order.OrderNumber,
			fmt.Sprintf("Votre commande sur mesure %s est terminée et prête.", order.OrderNumber))
		completed++
	}
	return completed, multierr.Combine(errs...)
}

func (j *CustomOrderJob) send(ctx context.Context, order models.CustomOrder, kind notifications.Kind, subject, body string) {
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
