package orders

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/kmensah/boutique-backend/pkg/db/models"
	"github.com/kmensah/boutique-backend/pkg/enums"
)

func setupOrdersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	ordersTable := `
CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  order_number TEXT NOT NULL UNIQUE,
  customer_name TEXT NOT NULL,
  customer_email TEXT NOT NULL,
  customer_phone TEXT,
  status TEXT NOT NULL DEFAULT 'pending',
  payment_status TEXT NOT NULL DEFAULT 'pending',
  total_fcfa INTEGER NOT NULL,
  delivery_duration_days INTEGER NOT NULL DEFAULT 3,
  tracking_number TEXT,
  carrier TEXT,
  shipped_at DATETIME,
  delivered_at DATETIME,
  estimated_delivery_date DATETIME,
  cancelled_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`
	orderItems := `
CREATE TABLE IF NOT EXISTS order_items (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  name TEXT NOT NULL,
  qty INTEGER NOT NULL,
  unit_price_fcfa INTEGER NOT NULL,
  created_at DATETIME
);`
	shipments := `
CREATE TABLE IF NOT EXISTS shipments (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  carrier TEXT NOT NULL,
  tracking_number TEXT NOT NULL,
  shipped_at DATETIME NOT NULL,
  created_at DATETIME
);`
	tracking := `
CREATE TABLE IF NOT EXISTS delivery_trackings (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  status TEXT NOT NULL,
  note TEXT,
  occurred_at DATETIME NOT NULL,
  created_at DATETIME
);`
	require.NoError(t, db.Exec(ordersTable).Error)
	require.NoError(t, db.Exec(orderItems).Error)
	require.NoError(t, db.Exec(shipments).Error)
	require.NoError(t, db.Exec(tracking).Error)
	return db
}

func seedOrder(t *testing.T, repo Repository, status enums.OrderStatus, payment enums.PaymentStatus) *models.Order {
	t.Helper()

	order := &models.Order{
		OrderNumber:          "BTQ-" + uuid.NewString()[:8],
		CustomerName:         "Fatou Ndiaye",
		CustomerEmail:        "fatou@example.com",
		Status:               status,
		PaymentStatus:        payment,
		TotalFCFA:            30000,
		DeliveryDurationDays: 3,
		Items: []models.OrderItem{
			{ProductID: uuid.New(), Name: "Robe wax", Qty: 2, UnitPriceFCFA: 15000},
		},
	}
	_, err := repo.Create(context.Background(), order)
	require.NoError(t, err)
	return order
}

func TestMarkPaidGuardedOnPendingPayment(t *testing.T) {
	repo := NewRepository(setupOrdersTestDB(t))
	order := seedOrder(t, repo, enums.OrderStatusPending, enums.PaymentStatusPending)
	estimated := time.Now().UTC().AddDate(0, 0, 3)

	rows, err := repo.MarkPaid(context.Background(), order.ID, estimated)
	require.NoError(t, err)
	require.EqualValues(t, 1, rows)

	rows, err = repo.MarkPaid(context.Background(), order.ID, estimated)
	require.NoError(t, err)
	require.EqualValues(t, 0, rows)

	reloaded, err := repo.FindByID(context.Background(), order.ID)
	require.NoError(t, err)
	require.Equal(t, enums.OrderStatusProcessing, reloaded.Status)
	require.Equal(t, enums.PaymentStatusPaid, reloaded.PaymentStatus)
	require.NotNil(t, reloaded.EstimatedDeliveryDate)
	require.Len(t, reloaded.Items, 1)
}

func TestMarkShippedGuardedOnShippedAt(t *testing.T) {
	repo := NewRepository(setupOrdersTestDB(t))
	order := seedOrder(t, repo, enums.OrderStatusProcessing, enums.PaymentStatusPaid)
	now := time.Now().UTC()

	rows, err := repo.MarkShipped(context.Background(), order.ID, enums.CarrierDHL, "TRK-1", now, now.AddDate(0, 0, 3))
	require.NoError(t, err)
	require.EqualValues(t, 1, rows)

	// Second pass must not move shipped_at.
	rows, err = repo.MarkShipped(context.Background(), order.ID, enums.CarrierChronopost, "TRK-2", now.Add(time.Hour), now.AddDate(0, 0, 4))
	require.NoError(t, err)
	require.EqualValues(t, 0, rows)

	reloaded, err := repo.FindByID(context.Background(), order.ID)
	require.NoError(t, err)
	require.Equal(t, enums.OrderStatusShipped, reloaded.Status)
	require.NotNil(t, reloaded.TrackingNumber)
	require.Equal(t, "TRK-1", *reloaded.TrackingNumber)
}

func TestMarkDeliveredGuardedOnDeliveredAt(t *testing.T) {
	repo := NewRepository(setupOrdersTestDB(t))
	order := seedOrder(t, repo, enums.OrderStatusProcessing, enums.PaymentStatusPaid)
	now := time.Now().UTC()

	// Not shipped yet: guard refuses.
	rows, err := repo.MarkDelivered(context.Background(), order.ID, now)
	require.NoError(t, err)
	require.EqualValues(t, 0, rows)

	_, err = repo.MarkShipped(context.Background(), order.ID, enums.CarrierDHL, "TRK-1", now, now.AddDate(0, 0, 3))
	require.NoError(t, err)

	rows, err = repo.MarkDelivered(context.Background(), order.ID, now.AddDate(0, 0, 3))
	require.NoError(t, err)
	require.EqualValues(t, 1, rows)

	rows, err = repo.MarkDelivered(context.Background(), order.ID, now.AddDate(0, 0, 4))
	require.NoError(t, err)
	require.EqualValues(t, 0, rows)
}

func TestCancelRefusesTerminalStatuses(t *testing.T) {
	repo := NewRepository(setupOrdersTestDB(t))
	now := time.Now().UTC()

	delivered := seedOrder(t, repo, enums.OrderStatusDelivered, enums.PaymentStatusPaid)
	rows, err := repo.Cancel(context.Background(), delivered.ID, now)
	require.NoError(t, err)
	require.EqualValues(t, 0, rows)

	open := seedOrder(t, repo, enums.OrderStatusProcessing, enums.PaymentStatusPaid)
	rows, err = repo.Cancel(context.Background(), open.ID, now)
	require.NoError(t, err)
	require.EqualValues(t, 1, rows)
}

func TestAdvancerQueries(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	now := time.Now().UTC()

	stale := seedOrder(t, repo, enums.OrderStatusProcessing, enums.PaymentStatusPaid)
	require.NoError(t, db.Model(&models.Order{}).Where("id = ?", stale.ID).
		Update("created_at", now.Add(-36*time.Hour)).Error)
	fresh := seedOrder(t, repo, enums.OrderStatusProcessing, enums.PaymentStatusPaid)
	_ = fresh

	// The ship clock runs from order age; a recent admin write must not reset it.
	require.NoError(t, db.Model(&models.Order{}).Where("id = ?", stale.ID).
		Update("tracking_number", "TRK-TOUCHED").Error)

	toShip, err := repo.FindProcessingToShip(context.Background(), now.Add(-24*time.Hour), 100)
	require.NoError(t, err)
	require.Len(t, toShip, 1)
	require.Equal(t, stale.ID, toShip[0].ID)

	shippedAt := now.Add(-4 * 24 * time.Hour)
	_, err = repo.MarkShipped(context.Background(), stale.ID, enums.CarrierDHL, "TRK-1", shippedAt, shippedAt.AddDate(0, 0, 3))
	require.NoError(t, err)

	toDeliver, err := repo.FindShippedToDeliver(context.Background(), now.Add(-3*24*time.Hour), 100)
	require.NoError(t, err)
	require.Len(t, toDeliver, 1)
	require.Equal(t, stale.ID, toDeliver[0].ID)
}

func TestShipmentAndTrackingRows(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	order := seedOrder(t, repo, enums.OrderStatusProcessing, enums.PaymentStatusPaid)
	now := time.Now().UTC()

	shipment, err := repo.CreateShipment(context.Background(), &models.Shipment{
		OrderID:        order.ID,
		Carrier:        enums.CarrierLaPoste,
		TrackingNumber: "TRK-9",
		ShippedAt:      now,
	})
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, shipment.ID)

	require.NoError(t, repo.AppendTracking(context.Background(), &models.DeliveryTracking{
		OrderID:    order.ID,
		Status:     "shipped",
		Note:       "remis au transporteur",
		OccurredAt: now,
	}))

	var count int64
	require.NoError(t, db.Model(&models.DeliveryTracking{}).Where("order_id = ?", order.ID).Count(&count).Error)
	require.EqualValues(t, 1, count)
}
