package customorders

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

func setupCustomOrdersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.Exec(`
CREATE TABLE IF NOT EXISTS custom_orders (
  id TEXT PRIMARY KEY,
  order_number TEXT NOT NULL UNIQUE,
  customer_name TEXT NOT NULL,
  customer_email TEXT NOT NULL,
  customer_phone TEXT,
  status TEXT NOT NULL DEFAULT 'pending',
  payment_status TEXT NOT NULL DEFAULT 'pending',
  measurements TEXT,
  preferences TEXT,
  budget_fcfa INTEGER NOT NULL,
  finalization_notified_at DATETIME,
  delivered_at DATETIME,
  processing_started_at DATETIME,
  completed_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`).Error)
	return db
}

func seedCustomOrder(t *testing.T, repo Repository) *models.CustomOrder {
	t.Helper()

	order, err := repo.Create(context.Background(), &models.CustomOrder{
		OrderNumber:   "BTQ-C-" + uuid.NewString()[:8],
		CustomerName:  "Awa Diallo",
		CustomerEmail: "awa@example.cm",
		Status:        enums.CustomOrderStatusPending,
		PaymentStatus: enums.PaymentStatusPending,
		Measurements:  models.Measurements{"tour_de_taille": 74.5},
		BudgetFCFA:    85000,
	})
	require.NoError(t, err)
	return order
}

func TestMarkPaidOnlyOnce(t *testing.T) {
	repo := NewRepository(setupCustomOrdersTestDB(t))
	order := seedCustomOrder(t, repo)
	now := time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC)

	rows, err := repo.MarkPaid(context.Background(), order.ID, now)
	require.NoError(t, err)
	require.EqualValues(t, 1, rows)

	reloaded, err := repo.FindByID(context.Background(), order.ID)
	require.NoError(t, err)
	require.Equal(t, enums.CustomOrderStatusProcessing, reloaded.Status)
	require.Equal(t, enums.PaymentStatusPaid, reloaded.PaymentStatus)
	require.NotNil(t, reloaded.ProcessingStartedAt)

	rows, err = repo.MarkPaid(context.Background(), order.ID, now.Add(time.Minute))
	require.NoError(t, err)
	require.Zero(t, rows)
}

func TestFinalizationNoticeStampIsGuarded(t *testing.T) {
	repo := NewRepository(setupCustomOrdersTestDB(t))
	order := seedCustomOrder(t, repo)
	now := time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC)

	_, err := repo.MarkPaid(context.Background(), order.ID, now.Add(-11*24*time.Hour))
	require.NoError(t, err)

	due, err := repo.FindAwaitingFinalizationNotice(context.Background(), now.Add(-10*24*time.Hour), 50)
	require.NoError(t, err)
	require.Len(t, due, 1)

	rows, err := repo.StampFinalizationNotified(context.Background(), order.ID, now)
	require.NoError(t, err)
	require.EqualValues(t, 1, rows)

	rows, err = repo.StampFinalizationNotified(context.Background(), order.ID, now.Add(time.Hour))
	require.NoError(t, err)
	require.Zero(t, rows)

	due, err = repo.FindAwaitingFinalizationNotice(context.Background(), now.Add(-10*24*time.Hour), 50)
	require.NoError(t, err)
	require.Empty(t, due)
}

func TestCompleteSkipsDeliveredOrders(t *testing.T) {
	repo := NewRepository(setupCustomOrdersTestDB(t))
	db := repo.(*repository).db
	now := time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC)

	due := seedCustomOrder(t, repo)
	_, err := repo.MarkPaid(context.Background(), due.ID, now.Add(-21*24*time.Hour))
	require.NoError(t, err)

	delivered := seedCustomOrder(t, repo)
	_, err = repo.MarkPaid(context.Background(), delivered.ID, now.Add(-25*24*time.Hour))
	require.NoError(t, err)
	deliveredAt := now.Add(-2 * 24 * time.Hour)
	require.NoError(t, db.Model(&models.CustomOrder{}).Where("id = ?", delivered.ID).
		Update("delivered_at", deliveredAt).Error)

	candidates, err := repo.FindDueForCompletion(context.Background(), now.Add(-20*24*time.Hour), 50)
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	require.Equal(t, due.ID, candidates[0].ID)

	rows, err := repo.Complete(context.Background(), due.ID, now)
	require.NoError(t, err)
	require.EqualValues(t, 1, rows)

	rows, err = repo.Complete(context.Background(), delivered.ID, now)
	require.NoError(t, err)
	require.Zero(t, rows)

	completed, err := repo.FindByID(context.Background(), due.ID)
	require.NoError(t, err)
	require.Equal(t, enums.CustomOrderStatusCompleted, completed.Status)
	require.NotNil(t, completed.CompletedAt)
}
