package models

import (
	"time"

	"github.com/google/uuid"
)

// StockReservation is a time-boxed hold of quantity against a product.
// At most one of FinalizedAt/ReleasedAt is ever set; once either is set the
// row is terminal. A row with both null and ExpiresAt in the past is
// expired-but-unswept and will be closed by the periodic sweep.
type StockReservation struct {
	ID          uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID   uuid.UUID  `gorm:"column:product_id;type:uuid;not null;index"`
	Qty         int        `gorm:"column:qty;not null"`
	OrderID     *uuid.UUID `gorm:"column:order_id;type:uuid;index"`
	ExpiresAt   time.Time  `gorm:"column:expires_at;not null"`
	FinalizedAt *time.Time `gorm:"column:finalized_at"`
	ReleasedAt  *time.Time `gorm:"column:released_at"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime"`
}

// Open reports whether the reservation has not been finalized or released yet.
func (r StockReservation) Open() bool {
	return r.FinalizedAt == nil && r.ReleasedAt == nil
}
