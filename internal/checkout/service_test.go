package checkout

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/kmensah/boutique-backend/internal/orders"
	"github.com/kmensah/boutique-backend/internal/reservations"
	"github.com/kmensah/boutique-backend/pkg/config"
	"github.com/kmensah/boutique-backend/pkg/db/models"
	"github.com/kmensah/boutique-backend/pkg/enums"
	"github.com/kmensah/boutique-backend/pkg/logger"
)

type gormTxRunner struct {
	db *gorm.DB
}

func (r *gormTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

type fakeCounter struct {
	next int64
}

func (c *fakeCounter) NextOrderNumber(ctx context.Context, sequence string) (int64, error) {
	c.next++
	return c.next, nil
}

func setupCheckoutTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	statements := []string{`
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
);`, `
CREATE TABLE IF NOT EXISTS order_items (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  name TEXT NOT NULL,
  qty INTEGER NOT NULL,
  unit_price_fcfa INTEGER NOT NULL,
  created_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS stock_reservations (
  id TEXT PRIMARY KEY,
  product_id TEXT NOT NULL,
  qty INTEGER NOT NULL,
  order_id TEXT,
  expires_at DATETIME NOT NULL,
  finalized_at DATETIME,
  released_at DATETIME,
  created_at DATETIME
);`}
	for _, stmt := range statements {
		require.NoError(t, db.Exec(stmt).Error)
	}
	return db
}

func newCheckoutService(t *testing.T, db *gorm.DB) *Service {
	t.Helper()

	service, err := NewService(ServiceParams{
		Orders:       orders.NewRepository(db),
		Reservations: reservations.NewLedger(db),
		TxRunner:     &gormTxRunner{db: db},
		OrderNumbers: &fakeCounter{},
		Config:       config.CheckoutConfig{},
		Logger:       logger.New(logger.Options{ServiceName: "test", Level: zerolog.Disabled}),
	})
	require.NoError(t, err)
	return service
}

func TestCheckoutCreatesOrderItemsAndReservations(t *testing.T) {
	db := setupCheckoutTestDB(t)
	service := newCheckoutService(t, db)

	productA := uuid.New()
	productB := uuid.New()
	order, err := service.Checkout(context.Background(), &Request{
		CustomerName:  "Awa Diop",
		CustomerEmail: "awa@example.com",
		Items: []Item{
			{ProductID: productA, Name: "Boubou brodé", Qty: 1, UnitPriceFCFA: 25000},
			{ProductID: productB, Name: "Sandales cuir", Qty: 2, UnitPriceFCFA: 10000},
		},
	})
	require.NoError(t, err)
	require.Equal(t, "BTQ-000001", order.OrderNumber)
	require.Equal(t, enums.OrderStatusPending, order.Status)
	require.Equal(t, enums.PaymentStatusPending, order.PaymentStatus)
	require.EqualValues(t, 45000, order.TotalFCFA)

	reloaded, err := orders.NewRepository(db).FindByID(context.Background(), order.ID)
	require.NoError(t, err)
	require.Len(t, reloaded.Items, 2)

	rows, err := reservations.NewLedger(db).FindByOrder(context.Background(), order.ID)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	for _, row := range rows {
		require.True(t, row.Open())
		require.NotNil(t, row.OrderID)
		require.Equal(t, order.ID, *row.OrderID)
	}
}

func TestCheckoutRollsBackOnReservationFailure(t *testing.T) {
	db := setupCheckoutTestDB(t)
	service := newCheckoutService(t, db)

	_, err := service.Checkout(context.Background(), &Request{
		CustomerName:  "Awa Diop",
		CustomerEmail: "awa@example.com",
		Items: []Item{
			{ProductID: uuid.New(), Name: "Boubou brodé", Qty: 1, UnitPriceFCFA: 25000},
			{ProductID: uuid.Nil, Name: "Ligne invalide", Qty: 1, UnitPriceFCFA: 1000},
		},
	})
	require.Error(t, err)

	var orderCount, reservationCount int64
	require.NoError(t, db.Model(&models.Order{}).Count(&orderCount).Error)
	require.NoError(t, db.Model(&models.StockReservation{}).Count(&reservationCount).Error)
	require.EqualValues(t, 0, orderCount)
	require.EqualValues(t, 0, reservationCount)
}

func TestCheckoutRejectsEmptyCart(t *testing.T) {
	service := newCheckoutService(t, setupCheckoutTestDB(t))

	_, err := service.Checkout(context.Background(), &Request{
		CustomerName:  "Awa Diop",
		CustomerEmail: "awa@example.com",
	})
	require.Error(t, err)
}
