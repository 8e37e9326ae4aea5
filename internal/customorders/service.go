package customorders

import (
	"context"
	"fmt"

	"github.com/kmensah/boutique-backend/pkg/db/models"
	"github.com/kmensah/boutique-backend/pkg/enums"
	pkgerrors "github.com/kmensah/boutique-backend/pkg/errors"
	"github.com/kmensah/boutique-backend/pkg/logger"
)

type orderNumberSource interface {
	NextOrderNumber(ctx context.Context, sequence string) (int64, error)
}

// Request is the validated bespoke-order intake payload. Measurements are in
// centimeters, keyed by the tailor's own labels.
type Request struct {
	CustomerName  string             `json:"customer_name" validate:"required"`
	CustomerEmail string             `json:"customer_email" validate:"required,email"`
	CustomerPhone string             `json:"customer_phone"`
	Measurements  map[string]float64 `json:"measurements" validate:"required,min=1"`
	Preferences   string             `json:"preferences"`
	BudgetFCFA    int64              `json:"budget_fcfa" validate:"required,gt=0"`
}

type ServiceParams struct {
	Repo         Repository
	OrderNumbers orderNumberSource
	Logger       *logger.Logger
}

// Service takes in bespoke orders. Payment and the day-count milestones are
// driven elsewhere; intake only records the request under its own number.
type Service struct {
	repo         Repository
	orderNumbers orderNumberSource
	logger       *logger.Logger
}

const orderNumberSequence = "custom-orders"

func NewService(params ServiceParams) (*Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "custom orders repo required")
	}
	if params.OrderNumbers == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "order number source required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "logger required")
	}
	return &Service{
		repo:         params.Repo,
		orderNumbers: params.OrderNumbers,
		logger:       params.Logger,
	}, nil
}

func (s *Service) Intake(ctx context.Context, req *Request) (*models.CustomOrder, error) {
	if req == nil || len(req.Measurements) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "bespoke order requires measurements")
	}
	if req.BudgetFCFA <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "budget must be positive")
	}

	sequence, err := s.orderNumbers.NextOrderNumber(ctx, orderNumberSequence)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "allocate order number")
	}

	order := &models.CustomOrder{
		OrderNumber:   fmt.Sprintf("BTQ-C-%06d", sequence),
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		CustomerPhone: req.CustomerPhone,
		Status:        enums.CustomOrderStatusPending,
		PaymentStatus: enums.PaymentStatusPending,
		Measurements:  models.Measurements(req.Measurements),
		Preferences:   req.Preferences,
		BudgetFCFA:    req.BudgetFCFA,
	}
	if _, err := s.repo.Create(ctx, order); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create custom order")
	}

	ctx = s.logger.WithOrderID(ctx, order.ID.String())
	s.logger.Info(ctx, "bespoke order received")
	return order, nil
}
