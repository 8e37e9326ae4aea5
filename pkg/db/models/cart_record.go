package models

import (
	"time"

	"github.com/google/uuid"
)

// CartRecord is a browsing cart kept server-side so checkout can rebuild it.
// Carts untouched for a month are purged by the cleanup job.
type CartRecord struct {
	ID           uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CustomerName string    `gorm:"column:customer_name"`
	Status       string    `gorm:"column:status;not null;default:'active'"`
	Payload      string    `gorm:"column:payload;type:jsonb"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
