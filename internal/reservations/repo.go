package reservations

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kmensah/boutique-backend/pkg/db/models"
	pkgerrors "github.com/kmensah/boutique-backend/pkg/errors"
)

// Ledger tracks stock holds independent of order finality. Finalize and
// Release update rows through a predicate that excludes already-closed
// reservations, which makes both calls idempotent and mutually exclusive
// without any in-process locking.
type Ledger interface {
	WithTx(tx *gorm.DB) Ledger
	Reserve(ctx context.Context, productID uuid.UUID, qty int, ttl time.Duration) (*models.StockReservation, error)
	AttachOrder(ctx context.Context, reservationIDs []uuid.UUID, orderID uuid.UUID) error
	Finalize(ctx context.Context, orderID uuid.UUID, now time.Time) (int64, error)
	Release(ctx context.Context, orderID uuid.UUID, now time.Time) (int64, error)
	SweepExpired(ctx context.Context, now time.Time) (int64, error)
	FindByOrder(ctx context.Context, orderID uuid.UUID) ([]models.StockReservation, error)
}

type ledger struct {
	db *gorm.DB
}

// NewLedger builds a reservation ledger bound to the provided DB.
func NewLedger(db *gorm.DB) Ledger {
	return &ledger{db: db}
}

func (l *ledger) WithTx(tx *gorm.DB) Ledger {
	if tx == nil {
		return l
	}
	return &ledger{db: tx}
}

func (l *ledger) Reserve(ctx context.Context, productID uuid.UUID, qty int, ttl time.Duration) (*models.StockReservation, error) {
	if productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	if qty <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "reservation qty must be positive")
	}
	if ttl <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "reservation ttl must be positive")
	}

	reservation := &models.StockReservation{
		ID:        uuid.New(),
		ProductID: productID,
		Qty:       qty,
		ExpiresAt: time.Now().UTC().Add(ttl),
	}
	if err := l.db.WithContext(ctx).Create(reservation).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create reservation")
	}
	return reservation, nil
}

func (l *ledger) AttachOrder(ctx context.Context, reservationIDs []uuid.UUID, orderID uuid.UUID) error {
	if len(reservationIDs) == 0 {
		return nil
	}
	if orderID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	err := l.db.WithContext(ctx).
		Model(&models.StockReservation{}).
		Where("id IN ? AND order_id IS NULL AND finalized_at IS NULL AND released_at IS NULL", reservationIDs).
		Update("order_id", orderID).Error
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "attach reservations to order")
	}
	return nil
}

// Finalize commits every open reservation tied to the order. Closed rows are
// excluded by the WHERE clause, so repeat calls are no-ops.
func (l *ledger) Finalize(ctx context.Context, orderID uuid.UUID, now time.Time) (int64, error) {
	return l.closeByOrder(ctx, orderID, "finalized_at", now)
}

// Release returns every open reservation tied to the order to availability.
func (l *ledger) Release(ctx context.Context, orderID uuid.UUID, now time.Time) (int64, error) {
	return l.closeByOrder(ctx, orderID, "released_at", now)
}

func (l *ledger) closeByOrder(ctx context.Context, orderID uuid.UUID, column string, now time.Time) (int64, error) {
	if orderID == uuid.Nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	result := l.db.WithContext(ctx).
		Model(&models.StockReservation{}).
		Where("order_id = ? AND finalized_at IS NULL AND released_at IS NULL", orderID).
		Update(column, now.UTC())
	if result.Error != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, result.Error, "close reservations")
	}
	return result.RowsAffected, nil
}

// SweepExpired releases open reservations whose hold window has lapsed,
// regardless of order linkage, so carts abandoned before checkout age out too.
func (l *ledger) SweepExpired(ctx context.Context, now time.Time) (int64, error) {
	result := l.db.WithContext(ctx).
		Model(&models.StockReservation{}).
		Where("finalized_at IS NULL AND released_at IS NULL AND expires_at < ?", now.UTC()).
		Update("released_at", now.UTC())
	if result.Error != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, result.Error, "sweep expired reservations")
	}
	return result.RowsAffected, nil
}

func (l *ledger) FindByOrder(ctx context.Context, orderID uuid.UUID) ([]models.StockReservation, error) {
	var rows []models.StockReservation
	err := l.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load reservations")
	}
	return rows, nil
}
