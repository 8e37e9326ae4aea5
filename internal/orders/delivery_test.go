package orders

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/kmensah/boutique-backend/pkg/db/models"
	"github.com/kmensah/boutique-backend/pkg/enums"
	pkgerrors "github.com/kmensah/boutique-backend/pkg/errors"
	"github.com/kmensah/boutique-backend/pkg/logger"
)

func newDeliveryService(t *testing.T, repo Repository) *DeliveryService {
	t.Helper()

	service, err := NewDeliveryService(repo, logger.New(logger.Options{ServiceName: "test", Level: zerolog.Disabled}))
	require.NoError(t, err)
	return service
}

func strPtr(s string) *string { return &s }

func TestUpdateDeliveryPartialFields(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	order := seedOrder(t, repo, enums.OrderStatusProcessing, enums.PaymentStatusPaid)
	service := newDeliveryService(t, repo)

	shippedAt := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)
	updated, err := service.UpdateDelivery(context.Background(), order.ID, &DeliveryUpdate{
		Status:         strPtr("shipped"),
		ShippedAt:      &shippedAt,
		TrackingNumber: strPtr("TRK-ADMIN-1"),
		Carrier:        strPtr("chronopost"),
	})
	require.NoError(t, err)
	require.Equal(t, enums.OrderStatusShipped, updated.Status)
	require.NotNil(t, updated.ShippedAt)
	require.Equal(t, "TRK-ADMIN-1", *updated.TrackingNumber)
	require.Equal(t, enums.CarrierChronopost, *updated.Carrier)

	var trackingCount int64
	require.NoError(t, db.Model(&models.DeliveryTracking{}).Where("order_id = ?", order.ID).Count(&trackingCount).Error)
	require.EqualValues(t, 1, trackingCount)
}

func TestUpdateDeliveryMarksDeliveredAt(t *testing.T) {
	repo := NewRepository(setupOrdersTestDB(t))
	order := seedOrder(t, repo, enums.OrderStatusShipped, enums.PaymentStatusPaid)
	service := newDeliveryService(t, repo)

	updated, err := service.UpdateDelivery(context.Background(), order.ID, &DeliveryUpdate{
		Status: strPtr("delivered"),
	})
	require.NoError(t, err)
	require.Equal(t, enums.OrderStatusDelivered, updated.Status)
	require.NotNil(t, updated.DeliveredAt)
}

func TestUpdateDeliveryBackfillsShippedAt(t *testing.T) {
	repo := NewRepository(setupOrdersTestDB(t))
	order := seedOrder(t, repo, enums.OrderStatusProcessing, enums.PaymentStatusPaid)
	service := newDeliveryService(t, repo)

	// Jumping straight to delivered must not leave shipped_at empty.
	updated, err := service.UpdateDelivery(context.Background(), order.ID, &DeliveryUpdate{
		Status: strPtr("delivered"),
	})
	require.NoError(t, err)
	require.NotNil(t, updated.DeliveredAt)
	require.NotNil(t, updated.ShippedAt)

	// An explicit shipped_at from the admin wins over the backfill.
	other := seedOrder(t, repo, enums.OrderStatusProcessing, enums.PaymentStatusPaid)
	shippedAt := time.Date(2025, 6, 12, 14, 30, 0, 0, time.UTC)
	updated, err = service.UpdateDelivery(context.Background(), other.ID, &DeliveryUpdate{
		Status:    strPtr("delivered"),
		ShippedAt: &shippedAt,
	})
	require.NoError(t, err)
	require.NotNil(t, updated.ShippedAt)
	require.True(t, shippedAt.Equal(*updated.ShippedAt))
}

func TestUpdateDeliveryRejectsBadInput(t *testing.T) {
	repo := NewRepository(setupOrdersTestDB(t))
	order := seedOrder(t, repo, enums.OrderStatusProcessing, enums.PaymentStatusPaid)
	service := newDeliveryService(t, repo)

	_, err := service.UpdateDelivery(context.Background(), order.ID, &DeliveryUpdate{})
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())

	_, err = service.UpdateDelivery(context.Background(), order.ID, &DeliveryUpdate{Status: strPtr("teleported")})
	require.Error(t, err)

	_, err = service.UpdateDelivery(context.Background(), uuid.New(), &DeliveryUpdate{Status: strPtr("shipped")})
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}
