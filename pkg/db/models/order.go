package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/kmensah/boutique-backend/pkg/enums"
)

// Order is the aggregate whose status and payment_status columns are the
// source of truth for fulfillment. Rows are never deleted, only cancelled.
type Order struct {
	ID                    uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderNumber           string              `gorm:"column:order_number;not null;uniqueIndex"`
	CustomerName          string              `gorm:"column:customer_name;not null"`
	CustomerEmail         string              `gorm:"column:customer_email;not null"`
	CustomerPhone         string              `gorm:"column:customer_phone"`
	Status                enums.OrderStatus   `gorm:"column:status;type:text;not null;default:'pending'"`
	PaymentStatus         enums.PaymentStatus `gorm:"column:payment_status;type:text;not null;default:'pending'"`
	TotalFCFA             int64               `gorm:"column:total_fcfa;not null"`
	DeliveryDurationDays  int                 `gorm:"column:delivery_duration_days;not null;default:3"`
	TrackingNumber        *string             `gorm:"column:tracking_number"`
	Carrier               *enums.Carrier      `gorm:"column:carrier;type:text"`
	ShippedAt             *time.Time          `gorm:"column:shipped_at"`
	DeliveredAt           *time.Time          `gorm:"column:delivered_at"`
	EstimatedDeliveryDate *time.Time          `gorm:"column:estimated_delivery_date"`
	CancelledAt           *time.Time          `gorm:"column:cancelled_at"`
	Items                 []OrderItem         `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt             time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt             time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

// OrderItem is one catalogue line on an order.
type OrderItem struct {
	ID            uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID       uuid.UUID `gorm:"column:order_id;type:uuid;not null;index"`
	ProductID     uuid.UUID `gorm:"column:product_id;type:uuid;not null"`
	Name          string    `gorm:"column:name;not null"`
	Qty           int       `gorm:"column:qty;not null"`
	UnitPriceFCFA int64     `gorm:"column:unit_price_fcfa;not null"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime"`
}
