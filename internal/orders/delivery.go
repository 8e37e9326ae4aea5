package orders

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kmensah/boutique-backend/pkg/db/models"
	"github.com/kmensah/boutique-backend/pkg/enums"
	pkgerrors "github.com/kmensah/boutique-backend/pkg/errors"
	"github.com/kmensah/boutique-backend/pkg/logger"
)

// DeliveryUpdate is the admin's partial correction of delivery fields.
// Every field is optional; only the ones present are written.
type DeliveryUpdate struct {
	Status         *string    `json:"status" validate:"omitempty,oneof=processing shipped delivered"`
	ShippedAt      *time.Time `json:"shipped_at"`
	TrackingNumber *string    `json:"tracking_number" validate:"omitempty,min=1"`
	Carrier        *string    `json:"carrier" validate:"omitempty,oneof=dhl chronopost la_poste coursier_local"`
}

// DeliveryService lets an admin override what the scheduler would do, for
// the cases the real world gets ahead of the day-count model.
type DeliveryService struct {
	repo   Repository
	logger *logger.Logger
	now    func() time.Time
}

func NewDeliveryService(repo Repository, logg *logger.Logger) (*DeliveryService, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "orders repo required")
	}
	if logg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "logger required")
	}
	return &DeliveryService{repo: repo, logger: logg, now: time.Now}, nil
}

func (s *DeliveryService) UpdateDelivery(ctx context.Context, orderID uuid.UUID, update *DeliveryUpdate) (*models.Order, error) {
	if update == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "delivery update required")
	}

	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}

	fields := map[string]any{}
	if update.Status != nil {
		status, err := enums.ParseOrderStatus(*update.Status)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, err.Error())
		}
		fields["status"] = status
		if status == enums.OrderStatusDelivered && order.DeliveredAt == nil {
			now := s.now().UTC()
			fields["delivered_at"] = now
			// A delivered order has necessarily shipped; backfill the
			// timestamp when the admin skips the shipped step.
			if order.ShippedAt == nil && update.ShippedAt == nil {
				fields["shipped_at"] = now
			}
		}
	}
	if update.ShippedAt != nil {
		fields["shipped_at"] = update.ShippedAt.UTC()
	}
	if update.TrackingNumber != nil {
		fields["tracking_number"] = *update.TrackingNumber
	}
	if update.Carrier != nil {
		carrier := enums.Carrier(*update.Carrier)
		if !carrier.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown carrier")
		}
		fields["carrier"] = carrier
	}
	if len(fields) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no delivery fields to update")
	}

	if _, err := s.repo.UpdateDelivery(ctx, orderID, fields); err != nil {
		return nil, err
	}

	// History row is best-effort; the order update already landed.
	if update.Status != nil {
		if err := s.repo.AppendTracking(ctx, &models.DeliveryTracking{
			OrderID:    orderID,
			Status:     *update.Status,
			Note:       "mise à jour manuelle",
			OccurredAt: s.now().UTC(),
		}); err != nil {
			s.logger.Error(ctx, "tracking row failed", err)
		}
	}

	updated, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload order")
	}

	ctx = s.logger.WithOrderID(ctx, orderID.String())
	s.logger.Info(ctx, "delivery fields updated")
	return updated, nil
}
