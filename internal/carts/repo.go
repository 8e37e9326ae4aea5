package carts

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/kmensah/boutique-backend/pkg/db/models"
	pkgerrors "github.com/kmensah/boutique-backend/pkg/errors"
)

// Repository only exists for hygiene: carts with no activity for a month are
// deleted outright.
type Repository interface {
	PurgeAbandoned(ctx context.Context, cutoff time.Time) (int64, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) PurgeAbandoned(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("updated_at < ?", cutoff.UTC()).
		Delete(&models.CartRecord{})
	if result.Error != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, result.Error, "purge abandoned carts")
	}
	return result.RowsAffected, nil
}
