package checkout

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kmensah/boutique-backend/internal/orders"
	"github.com/kmensah/boutique-backend/internal/reservations"
	"github.com/kmensah/boutique-backend/pkg/config"
	"github.com/kmensah/boutique-backend/pkg/db"
	"github.com/kmensah/boutique-backend/pkg/db/models"
	pkgerrors "github.com/kmensah/boutique-backend/pkg/errors"
	"github.com/kmensah/boutique-backend/pkg/logger"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type orderNumberSource interface {
	NextOrderNumber(ctx context.Context, sequence string) (int64, error)
}

// Item is one requested catalogue line.
type Item struct {
	ProductID     uuid.UUID `json:"product_id" validate:"required"`
	Name          string    `json:"name" validate:"required"`
	Qty           int       `json:"qty" validate:"required,gt=0"`
	UnitPriceFCFA int64     `json:"unit_price_fcfa" validate:"required,gt=0"`
}

// Request is the validated checkout payload.
type Request struct {
	CustomerName         string `json:"customer_name" validate:"required"`
	CustomerEmail        string `json:"customer_email" validate:"required,email"`
	CustomerPhone        string `json:"customer_phone"`
	DeliveryDurationDays int    `json:"delivery_duration_days" validate:"omitempty,gt=0"`
	Items                []Item `json:"items" validate:"required,min=1,dive"`
}

type ServiceParams struct {
	Orders       orders.Repository
	Reservations reservations.Ledger
	TxRunner     txRunner
	OrderNumbers orderNumberSource
	Config       config.CheckoutConfig
	Logger       *logger.Logger
}

// Service creates the order, its items and the stock holds in one
// transaction, so a failed checkout leaves neither orphan rows nor holds.
type Service struct {
	orders       orders.Repository
	ledger       reservations.Ledger
	txRunner     txRunner
	orderNumbers orderNumberSource
	ttl          time.Duration
	logger       *logger.Logger
}

const orderNumberSequence = "orders"

func NewService(params ServiceParams) (*Service, error) {
	if params.Orders == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "orders repo required")
	}
	if params.Reservations == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "reservation ledger required")
	}
	if params.TxRunner == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "transaction runner required")
	}
	if params.OrderNumbers == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "order number source required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "logger required")
	}
	ttl := params.Config.ReservationTTL
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &Service{
		orders:       params.Orders,
		ledger:       params.Reservations,
		txRunner:     params.TxRunner,
		orderNumbers: params.OrderNumbers,
		ttl:          ttl,
		logger:       params.Logger,
	}, nil
}

func (s *Service) Checkout(ctx context.Context, req *Request) (*models.Order, error) {
	if req == nil || len(req.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "checkout requires at least one item")
	}

	sequence, err := s.orderNumbers.NextOrderNumber(ctx, orderNumberSequence)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "allocate order number")
	}
	orderNumber := fmt.Sprintf("BTQ-%06d", sequence)

	duration := req.DeliveryDurationDays
	if duration <= 0 {
		duration = 3
	}

	var total int64
	items := make([]models.OrderItem, 0, len(req.Items))
	for _, item := range req.Items {
		total += int64(item.Qty) * item.UnitPriceFCFA
		items = append(items, models.OrderItem{
			ProductID:     item.ProductID,
			Name:          item.Name,
			Qty:           item.Qty,
			UnitPriceFCFA: item.UnitPriceFCFA,
		})
	}

	var created *models.Order
	err = s.txRunner.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.orders.WithTx(tx)
		ledger := s.ledger.WithTx(tx)

		order := &models.Order{
			OrderNumber:          orderNumber,
			CustomerName:         req.CustomerName,
			CustomerEmail:        req.CustomerEmail,
			CustomerPhone:        req.CustomerPhone,
			TotalFCFA:            total,
			DeliveryDurationDays: duration,
			Items:                items,
		}
		if _, err := repo.Create(ctx, order); err != nil {
			if db.IsUniqueViolation(err, "order_number") {
				return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "order number already allocated")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
		}

		reservationIDs := make([]uuid.UUID, 0, len(req.Items))
		for _, item := range req.Items {
			reservation, err := ledger.Reserve(ctx, item.ProductID, item.Qty, s.ttl)
			if err != nil {
				return err
			}
			reservationIDs = append(reservationIDs, reservation.ID)
		}
		if err := ledger.AttachOrder(ctx, reservationIDs, order.ID); err != nil {
			return err
		}

		created = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	ctx = s.logger.WithOrderID(ctx, created.ID.String())
	s.logger.Info(ctx, "checkout completed")
	return created, nil
}
