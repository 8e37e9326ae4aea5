package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/kmensah/boutique-backend/pkg/enums"
)

// Measurements holds the tailor's numbers for a bespoke piece, in centimeters.
type Measurements map[string]float64

// CustomOrder is a bespoke/tailored order with a day-count-gated lifecycle:
// a finalization notice goes out around day 10 of processing and the order
// completes around day 20 unless it was already delivered.
type CustomOrder struct {
	ID                     uuid.UUID               `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderNumber            string                  `gorm:"column:order_number;not null;uniqueIndex"`
	CustomerName           string                  `gorm:"column:customer_name;not null"`
	CustomerEmail          string                  `gorm:"column:customer_email;not null"`
	CustomerPhone          string                  `gorm:"column:customer_phone"`
	Status                 enums.CustomOrderStatus `gorm:"column:status;type:text;not null;default:'pending'"`
	PaymentStatus          enums.PaymentStatus     `gorm:"column:payment_status;type:text;not null;default:'pending'"`
	Measurements           Measurements            `gorm:"column:measurements;type:jsonb;serializer:json"`
	Preferences            string                  `gorm:"column:preferences"`
	BudgetFCFA             int64                   `gorm:"column:budget_fcfa;not null"`
	FinalizationNotifiedAt *time.Time              `gorm:"column:finalization_notified_at"`
	DeliveredAt            *time.Time              `gorm:"column:delivered_at"`
	ProcessingStartedAt    *time.Time              `gorm:"column:processing_started_at"`
	CompletedAt            *time.Time              `gorm:"column:completed_at"`
	CreatedAt              time.Time               `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt              time.Time               `gorm:"column:updated_at;autoUpdateTime"`
}
