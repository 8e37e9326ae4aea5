package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kmensah/boutique-backend/pkg/db/models"
	"github.com/kmensah/boutique-backend/pkg/enums"
	pkgerrors "github.com/kmensah/boutique-backend/pkg/errors"
)

// Repository persists orders and their fulfillment artifacts. Status-advancing
// writes are single guarded UPDATEs: the WHERE clause carries the progress
// predicate (shipped_at IS NULL, delivered_at IS NULL, ...) and the affected
// row count tells the caller whether the write landed or someone got there
// first.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.Order) (*models.Order, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	FindByOrderNumber(ctx context.Context, orderNumber string) (*models.Order, error)

	MarkPaid(ctx context.Context, id uuid.UUID, estimatedDelivery time.Time) (int64, error)
	MarkPaymentFailed(ctx context.Context, id uuid.UUID) (int64, error)
	MarkShipped(ctx context.Context, id uuid.UUID, carrier enums.Carrier, trackingNumber string, shippedAt, estimatedDelivery time.Time) (int64, error)
	MarkDelivered(ctx context.Context, id uuid.UUID, deliveredAt time.Time) (int64, error)
	Cancel(ctx context.Context, id uuid.UUID, cancelledAt time.Time) (int64, error)
	UpdateDelivery(ctx context.Context, id uuid.UUID, fields map[string]any) (int64, error)

	FindProcessingToShip(ctx context.Context, cutoff time.Time, limit int) ([]models.Order, error)
	FindShippedToDeliver(ctx context.Context, cutoff time.Time, limit int) ([]models.Order, error)

	CreateShipment(ctx context.Context, shipment *models.Shipment) (*models.Shipment, error)
	AppendTracking(ctx context.Context, row *models.DeliveryTracking) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	for i := range order.Items {
		if order.Items[i].ID == uuid.Nil {
			order.Items[i].ID = uuid.New()
		}
	}
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("id = ?", id).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) FindByOrderNumber(ctx context.Context, orderNumber string) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("order_number = ?", orderNumber).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) MarkPaid(ctx context.Context, id uuid.UUID, estimatedDelivery time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND payment_status = ?", id, enums.PaymentStatusPending).
		Updates(map[string]any{
			"payment_status":          enums.PaymentStatusPaid,
			"status":                  enums.OrderStatusProcessing,
			"estimated_delivery_date": estimatedDelivery.UTC(),
		})
	if result.Error != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, result.Error, "mark order paid")
	}
	return result.RowsAffected, nil
}

func (r *repository) MarkPaymentFailed(ctx context.Context, id uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND payment_status = ?", id, enums.PaymentStatusPending).
		Update("payment_status", enums.PaymentStatusFailed)
	if result.Error != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, result.Error, "mark payment failed")
	}
	return result.RowsAffected, nil
}

func (r *repository) MarkShipped(ctx context.Context, id uuid.UUID, carrier enums.Carrier, trackingNumber string, shippedAt, estimatedDelivery time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND status = ? AND shipped_at IS NULL", id, enums.OrderStatusProcessing).
		Updates(map[string]any{
			"status":                  enums.OrderStatusShipped,
			"carrier":                 carrier,
			"tracking_number":         trackingNumber,
			"shipped_at":              shippedAt.UTC(),
			"estimated_delivery_date": estimatedDelivery.UTC(),
		})
	if result.Error != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, result.Error, "mark order shipped")
	}
	return result.RowsAffected, nil
}

func (r *repository) MarkDelivered(ctx context.Context, id uuid.UUID, deliveredAt time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND status = ? AND delivered_at IS NULL", id, enums.OrderStatusShipped).
		Updates(map[string]any{
			"status":       enums.OrderStatusDelivered,
			"delivered_at": deliveredAt.UTC(),
		})
	if result.Error != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, result.Error, "mark order delivered")
	}
	return result.RowsAffected, nil
}

func (r *repository) Cancel(ctx context.Context, id uuid.UUID, cancelledAt time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND status NOT IN ? AND cancelled_at IS NULL", id,
			[]enums.OrderStatus{enums.OrderStatusDelivered, enums.OrderStatusCancelled}).
		Updates(map[string]any{
			"status":       enums.OrderStatusCancelled,
			"cancelled_at": cancelledAt.UTC(),
		})
	if result.Error != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, result.Error, "cancel order")
	}
	return result.RowsAffected, nil
}

// UpdateDelivery applies an admin-validated partial update. Callers own the
// field whitelist; the repository only refuses an empty set.
func (r *repository) UpdateDelivery(ctx context.Context, id uuid.UUID, fields map[string]any) (int64, error) {
	if len(fields) == 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "no delivery fields to update")
	}
	result := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", id).
		Updates(fields)
	if result.Error != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, result.Error, "update delivery fields")
	}
	return result.RowsAffected, nil
}

func (r *repository) FindProcessingToShip(ctx context.Context, cutoff time.Time, limit int) ([]models.Order, error) {
	var rows []models.Order
	err := r.db.WithContext(ctx).
		Where("status = ? AND shipped_at IS NULL AND created_at < ?", enums.OrderStatusProcessing, cutoff.UTC()).
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) FindShippedToDeliver(ctx context.Context, cutoff time.Time, limit int) ([]models.Order, error) {
	var rows []models.Order
	err := r.db.WithContext(ctx).
		Where("status = ? AND delivered_at IS NULL AND shipped_at < ?", enums.OrderStatusShipped, cutoff.UTC()).
		Order("shipped_at ASC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) CreateShipment(ctx context.Context, shipment *models.Shipment) (*models.Shipment, error) {
	if shipment.ID == uuid.Nil {
		shipment.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(shipment).Error; err != nil {
		return nil, err
	}
	return shipment, nil
}

func (r *repository) AppendTracking(ctx context.Context, row *models.DeliveryTracking) error {
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(row).Error
}
