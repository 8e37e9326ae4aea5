package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kmensah/boutique-backend/internal/notifications"
	"github.com/kmensah/boutique-backend/internal/payments"
	"github.com/kmensah/boutique-backend/pkg/db/models"
	"github.com/kmensah/boutique-backend/pkg/enums"
	pkgerrors "github.com/kmensah/boutique-backend/pkg/errors"
	"github.com/kmensah/boutique-backend/pkg/logger"
)

type orderRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	MarkPaid(ctx context.Context, id uuid.UUID, estimatedDelivery time.Time) (int64, error)
	MarkPaymentFailed(ctx context.Context, id uuid.UUID) (int64, error)
	Cancel(ctx context.Context, id uuid.UUID, cancelledAt time.Time) (int64, error)
}

type customOrderRepository interface {
	MarkPaid(ctx context.Context, id uuid.UUID, now time.Time) (int64, error)
}

type reservationLedger interface {
	Finalize(ctx context.Context, orderID uuid.UUID, now time.Time) (int64, error)
	Release(ctx context.Context, orderID uuid.UUID, now time.Time) (int64, error)
}

type notifier interface {
	Send(ctx context.Context, msg notifications.Message)
}

type ServiceParams struct {
	Orders       orderRepository
	CustomOrders customOrderRepository
	Reservations reservationLedger
	Guard        *WebhookGuard
	Notifier     notifier
	Logger       *logger.Logger
	Now          func() time.Time
}

// Service applies payment outcomes and admin cancellations to orders. Every
// state change goes through a guarded UPDATE; the webhook guard in front of
// it absorbs provider retries without reapplying anything.
type Service struct {
	orders   orderRepository
	customs  customOrderRepository
	ledger   reservationLedger
	guard    *WebhookGuard
	machine  *Machine
	notifier notifier
	logger   *logger.Logger
	now      func() time.Time
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Orders == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "orders repo required")
	}
	if params.Reservations == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "reservation ledger required")
	}
	if params.Guard == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "webhook guard required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "logger required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		orders:   params.Orders,
		customs:  params.CustomOrders,
		ledger:   params.Reservations,
		guard:    params.Guard,
		machine:  NewMachine(),
		notifier: params.Notifier,
		logger:   params.Logger,
		now:      now,
	}, nil
}

// HandlePaymentResult applies a verified provider callback. The dedup mark is
// written first; if the state change then fails the mark is removed so the
// provider's retry gets another attempt. Notification failures never remove
// the mark.
func (s *Service) HandlePaymentResult(ctx context.Context, res *payments.Result) error {
	if res == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "payment result required")
	}
	ctx = s.logger.WithProvider(ctx, res.Provider)
	ctx = s.logger.WithOrderID(ctx, res.OrderID.String())

	duplicate, err := s.guard.CheckAndMark(ctx, res.Provider, res.Status, res.ExternalID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "webhook dedup check")
	}
	if duplicate {
		s.logger.Info(ctx, "duplicate webhook ignored")
		return nil
	}

	unmark := func() {
		if delErr := s.guard.Delete(ctx, res.Provider, res.Status, res.ExternalID); delErr != nil {
			s.logger.Error(ctx, "failed to release dedup key", delErr)
		}
	}

	order, err := s.orders.FindByID(ctx, res.OrderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return s.handleCustomOrderPayment(ctx, res, unmark)
		}
		unmark()
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}

	if res.Succeeded && res.AmountFCFA != order.TotalFCFA {
		unmark()
		return pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("payment amount %d does not match order total %d", res.AmountFCFA, order.TotalFCFA))
	}

	now := s.now().UTC()
	if res.Succeeded {
		return s.applyPaymentSuccess(ctx, order, now, unmark)
	}
	return s.applyPaymentFailure(ctx, order, now, unmark)
}

func (s *Service) applyPaymentSuccess(ctx context.Context, order *models.Order, now time.Time, unmark func()) error {
	estimated := now.AddDate(0, 0, order.DeliveryDurationDays)
	rows, err := s.orders.MarkPaid(ctx, order.ID, estimated)
	if err != nil {
		unmark()
		return err
	}

	// Finalize runs even when the order was already paid: a late duplicate
	// past the dedup TTL must still leave no open reservations behind.
	if _, err := s.ledger.Finalize(ctx, order.ID, now); err != nil {
		unmark()
		return err
	}

	if rows == 0 {
		s.logger.Info(ctx, "payment already applied")
		return nil
	}

	s.logger.Info(ctx, "order paid")
	s.send(ctx, notifications.Message{
		Kind:          notifications.KindPaymentConfirmed,
		OrderNumber:   order.OrderNumber,
		CustomerName:  order.CustomerName,
		CustomerEmail: order.CustomerEmail,
		CustomerPhone: order.CustomerPhone,
		Subject:       "Paiement confirmé — commande " + order.OrderNumber,
		Body:          fmt.Sprintf("Votre paiement de %d FCFA pour la commande %s est confirmé.", order.TotalFCFA, order.OrderNumber),
	})
	return nil
}

func (s *Service) applyPaymentFailure(ctx context.Context, order *models.Order, now time.Time, unmark func()) error {
	rows, err := s.orders.MarkPaymentFailed(ctx, order.ID)
	if err != nil {
		unmark()
		return err
	}

	if _, err := s.ledger.Release(ctx, order.ID, now); err != nil {
		unmark()
		return err
	}

	if rows == 0 {
		s.logger.Info(ctx, "payment failure already applied")
		return nil
	}

	s.logger.Info(ctx, "payment failed")
	s.send(ctx, notifications.Message{
		Kind:          notifications.KindPaymentFailed,
		OrderNumber:   order.OrderNumber,
		CustomerName:  order.CustomerName,
		CustomerEmail: order.CustomerEmail,
		CustomerPhone: order.CustomerPhone,
		Subject:       "Échec du paiement — commande " + order.OrderNumber,
		Body:          fmt.Sprintf("Le paiement de la commande %s a échoué. Vos articles ont été remis en vente.", order.OrderNumber),
	})
	return nil
}

// Bespoke orders share the payment providers with catalogue orders; when the
// referenced id is not a catalogue order we try the custom ledger before
// declaring the callback unknown.
func (s *Service) handleCustomOrderPayment(ctx context.Context, res *payments.Result, unmark func()) error {
	if s.customs == nil || !res.Succeeded {
		unmark()
		return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	rows, err := s.customs.MarkPaid(ctx, res.OrderID, s.now().UTC())
	if err != nil {
		unmark()
		return err
	}
	if rows == 0 {
		unmark()
		return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	s.logger.Info(ctx, "custom order paid")
	return nil
}

// Cancel is the admin path out of any non-terminal status. Open reservations
// go back to availability.
func (s *Service) Cancel(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	ctx = s.logger.WithOrderID(ctx, orderID.String())

	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}

	if err := s.machine.Transition(order.Status, enums.OrderStatusCancelled); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	rows, err := s.orders.Cancel(ctx, orderID, now)
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order already closed")
	}

	if _, err := s.ledger.Release(ctx, orderID, now); err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "order cancelled")
	s.send(ctx, notifications.Message{
		Kind:          notifications.KindOrderCancelled,
		OrderNumber:   order.OrderNumber,
		CustomerName:  order.CustomerName,
		CustomerEmail: order.CustomerEmail,
		CustomerPhone: order.CustomerPhone,
		Subject:       "Commande annulée — " + order.OrderNumber,
		Body:          fmt.Sprintf("Votre commande %s a été annulée.", order.OrderNumber),
	})

	updated, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload order")
	}
	return updated, nil
}

func (s *Service) send(ctx context.Context, msg notifications.Message) {
	if s.notifier == nil {
		return
	}
	s.notifier.Send(ctx, msg)
}
