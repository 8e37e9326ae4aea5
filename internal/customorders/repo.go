package customorders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kmensah/boutique-backend/pkg/db/models"
	"github.com/kmensah/boutique-backend/pkg/enums"
	pkgerrors "github.com/kmensah/boutique-backend/pkg/errors"
)

// Repository persists bespoke orders. The day-count milestones (finalization
// notice, completion) are guarded UPDATEs keyed on the stamp columns, so a
// rerun of the scheduler cannot double-fire either milestone.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.CustomOrder) (*models.CustomOrder, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.CustomOrder, error)

	MarkPaid(ctx context.Context, id uuid.UUID, now time.Time) (int64, error)
	FindAwaitingFinalizationNotice(ctx context.Context, cutoff time.Time, limit int) ([]models.CustomOrder, error)
	StampFinalizationNotified(ctx context.Context, id uuid.UUID, now time.Time) (int64, error)
	FindDueForCompletion(ctx context.Context, cutoff time.Time, limit int) ([]models.CustomOrder, error)
	Complete(ctx context.Context, id uuid.UUID, now time.Time) (int64, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, order *models.CustomOrder) (*models.CustomOrder, error) {
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.CustomOrder, error) {
	var order models.CustomOrder
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// MarkPaid moves a pending bespoke order straight into processing; tailoring
// starts as soon as the deposit clears.
func (r *repository) MarkPaid(ctx context.Context, id uuid.UUID, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.CustomOrder{}).
		Where("id = ? AND payment_status = ?", id, enums.PaymentStatusPending).
		Updates(map[string]any{
			"payment_status":        enums.PaymentStatusPaid,
			"status":                enums.CustomOrderStatusProcessing,
			"processing_started_at": now.UTC(),
		})
	if result.Error != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, result.Error, "mark custom order paid")
	}
	return result.RowsAffected, nil
}

func (r *repository) FindAwaitingFinalizationNotice(ctx context.Context, cutoff time.Time, limit int) ([]models.CustomOrder, error) {
	var rows []models.CustomOrder
	err := r.db.WithContext(ctx).
		Where("status = ? AND finalization_notified_at IS NULL AND delivered_at IS NULL AND processing_started_at < ?",
			enums.CustomOrderStatusProcessing, cutoff.UTC()).
		Order("processing_started_at ASC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) StampFinalizationNotified(ctx context.Context, id uuid.UUID, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.CustomOrder{}).
		Where("id = ? AND finalization_notified_at IS NULL", id).
		Update("finalization_notified_at", now.UTC())
	if result.Error != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, result.Error, "stamp finalization notice")
	}
	return result.RowsAffected, nil
}

func (r *repository) FindDueForCompletion(ctx context.Context, cutoff time.Time, limit int) ([]models.CustomOrder, error) {
	var rows []models.CustomOrder
	err := r.db.WithContext(ctx).
		Where("status = ? AND delivered_at IS NULL AND processing_started_at < ?",
			enums.CustomOrderStatusProcessing, cutoff.UTC()).
		Order("processing_started_at ASC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) Complete(ctx context.Context, id uuid.UUID, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.CustomOrder{}).
		Where("id = ? AND status = ? AND delivered_at IS NULL", id, enums.CustomOrderStatusProcessing).
		Updates(map[string]any{
			"status":       enums.CustomOrderStatusCompleted,
			"completed_at": now.UTC(),
		})
	if result.Error != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, result.Error, "complete custom order")
	}
	return result.RowsAffected, nil
}
