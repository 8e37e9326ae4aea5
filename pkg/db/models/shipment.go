package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/kmensah/boutique-backend/pkg/enums"
)

// Shipment records the hand-off of an order to a carrier.
type Shipment struct {
	ID             uuid.UUID     `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID        uuid.UUID     `gorm:"column:order_id;type:uuid;not null;index"`
	Carrier        enums.Carrier `gorm:"column:carrier;type:text;not null"`
	TrackingNumber string        `gorm:"column:tracking_number;not null"`
	ShippedAt      time.Time     `gorm:"column:shipped_at;not null"`
	CreatedAt      time.Time     `gorm:"column:created_at;autoCreateTime"`
}

// DeliveryTracking is an append-only history row describing where an order is.
type DeliveryTracking struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID    uuid.UUID `gorm:"column:order_id;type:uuid;not null;index"`
	Status     string    `gorm:"column:status;not null"`
	Note       string    `gorm:"column:note"`
	OccurredAt time.Time `gorm:"column:occurred_at;not null"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
}
