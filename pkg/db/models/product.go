package models

import (
	"time"

	"github.com/google/uuid"
)

// Product is the catalogue row open reservations are counted against.
// Stock is advisory: reservations do not decrement it, the availability
// query subtracts open holds at read time.
type Product struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name      string    `gorm:"column:name;not null"`
	PriceFCFA int64     `gorm:"column:price_fcfa;not null"`
	Stock     int       `gorm:"column:stock;not null;default:0"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
