package returns

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kmensah/boutique-backend/internal/notifications"
	"github.com/kmensah/boutique-backend/pkg/db/models"
	"github.com/kmensah/boutique-backend/pkg/enums"
	pkgerrors "github.com/kmensah/boutique-backend/pkg/errors"
	"github.com/kmensah/boutique-backend/pkg/logger"
)

// ReturnWindow is how long after order creation a return may be opened.
// The boundary is strict: exactly 30 days is already out of window.
const ReturnWindow = 30 * 24 * time.Hour

type orderFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
}

type notifier interface {
	Send(ctx context.Context, msg notifications.Message)
}

type ServiceParams struct {
	Repo     Repository
	Orders   orderFinder
	Notifier notifier
	Logger   *logger.Logger
	Now      func() time.Time
}

type Service struct {
	repo     Repository
	orders   orderFinder
	notifier notifier
	logger   *logger.Logger
	now      func() time.Time
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "returns repo required")
	}
	if params.Orders == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "orders repo required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "logger required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		repo:     params.Repo,
		orders:   params.Orders,
		notifier: params.Notifier,
		logger:   params.Logger,
		now:      now,
	}, nil
}

func (s *Service) Create(ctx context.Context, orderID uuid.UUID, reason string) (*models.ReturnRequest, error) {
	if reason == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "return reason required")
	}

	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}

	if !s.now().UTC().Before(order.CreatedAt.UTC().Add(ReturnWindow)) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "return window has closed")
	}

	request, err := s.repo.Create(ctx, &models.ReturnRequest{
		OrderID: orderID,
		Reason:  reason,
		Status:  enums.ReturnStatusPending,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create return request")
	}

	ctx = s.logger.WithOrderID(ctx, orderID.String())
	s.logger.Info(ctx, "return request opened")
	return request, nil
}

func (s *Service) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]models.ReturnRequest, error) {
	rows, err := s.repo.ListByOrder(ctx, orderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list return requests")
	}
	return rows, nil
}

// UpdateStatus moves a request forward. Backward moves and moves out of
// rejected are refused before any write.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, next enums.ReturnStatus) (*models.ReturnRequest, error) {
	if !next.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown return status")
	}

	request, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "return request not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load return request")
	}

	if !request.Status.CanProgressTo(next) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			"cannot move return from "+request.Status.String()+" to "+next.String())
	}

	rows, err := s.repo.UpdateStatus(ctx, id, request.Status, next)
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "return request changed concurrently")
	}
	request.Status = next

	ctx = s.logger.WithOrderID(ctx, request.OrderID.String())
	s.logger.Info(ctx, "return status updated")
	s.sendStatusNotification(ctx, request)
	return request, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	request, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "return request not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load return request")
	}
	if request.Status != enums.ReturnStatusPending {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "only pending return requests can be deleted")
	}

	rows, err := s.repo.DeletePending(ctx, id)
	if err != nil {
		return err
	}
	if rows == 0 {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "return request changed concurrently")
	}
	return nil
}

func (s *Service) sendStatusNotification(ctx context.Context, request *models.ReturnRequest) {
	if s.notifier == nil {
		return
	}
	order, err := s.orders.FindByID(ctx, request.OrderID)
	if err != nil {
		s.logger.Warn(ctx, "skipping return notification, order lookup failed")
		return
	}
	s.notifier.Send(ctx, notifications.Message{
		Kind:          notifications.KindReturnStatusChanged,
		OrderNumber:   order.OrderNumber,
		CustomerName:  order.CustomerName,
		CustomerEmail: order.CustomerEmail,
		CustomerPhone: order.CustomerPhone,
		Subject:       "Retour " + request.Status.String() + " — commande " + order.OrderNumber,
		Body:          "Votre demande de retour pour la commande " + order.OrderNumber + " est maintenant « " + request.Status.String() + " ».",
	})
}
