package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/kmensah/boutique-backend/pkg/enums"
)

// ReturnRequest asks to send an order back. Eligibility is gated by a 30-day
// window from the order's creation; deletion is only allowed while pending.
type ReturnRequest struct {
	ID        uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID   uuid.UUID          `gorm:"column:order_id;type:uuid;not null;index"`
	Reason    string             `gorm:"column:reason;not null"`
	Status    enums.ReturnStatus `gorm:"column:status;type:text;not null;default:'pending'"`
	CreatedAt time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}
