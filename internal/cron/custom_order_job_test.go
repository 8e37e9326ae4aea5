package cron

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/kmensah/boutique-backend/internal/customorders"
	"github.com/kmensah/boutique-backend/pkg/db/models"
	"github.com/kmensah/boutique-backend/pkg/enums"
)

func setupCustomOrderTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
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
);`
	require.NoError(t, db.Exec(schema).Error)
	return db
}

func seedCustomOrder(t *testing.T, db *gorm.DB, startedAt time.Time, deliveredAt *time.Time) *models.CustomOrder {
	t.Helper()

	order := &models.CustomOrder{
		ID:                  uuid.New(),
		OrderNumber:         "BTQC-" + uuid.NewString()[:8],
		CustomerName:        "Mariama Sow",
		CustomerEmail:       "mariama@example.com",
		Status:              enums.CustomOrderStatusProcessing,
		PaymentStatus:       enums.PaymentStatusPaid,
		BudgetFCFA:          80000,
		ProcessingStartedAt: &startedAt,
		DeliveredAt:         deliveredAt,
	}
	require.NoError(t, db.Create(order).Error)
	return order
}

func TestCustomOrderMilestones(t *testing.T) {
	now := time.Date(2025, 6, 25, 8, 0, 0, 0, time.UTC)
	db := setupCustomOrderTestDB(t)

	dueNotice := seedCustomOrder(t, db, now.Add(-11*24*time.Hour), nil)
	dueCompletion := seedCustomOrder(t, db, now.Add(-21*24*time.Hour), nil)
	fresh := seedCustomOrder(t, db, now.Add(-2*24*time.Hour), nil)
	delivered := seedCustomOrder(t, db, now.Add(-25*24*time.Hour), &now)

	notifier := &capturedNotifications{}
	job, err := NewCustomOrderJob(CustomOrderJobParams{
		Logger:       cronTestLogger(),
		CustomOrders: customorders.NewRepository(db),
		Notifier:     notifier,
		Now:          func() time.Time { return now },
	})
	require.NoError(t, err)

	result, err := job.Execute(context.Background())
	require.NoError(t, err)
	// Both stale orders pass the day-10 gate; only the day-20 one completes.
	require.Equal(t, 2, result.Notified)
	require.Equal(t, 1, result.Completed)

	repo := customorders.NewRepository(db)

	noticed, err := repo.FindByID(context.Background(), dueNotice.ID)
	require.NoError(t, err)
	require.NotNil(t, noticed.FinalizationNotifiedAt)
	require.Equal(t, enums.CustomOrderStatusProcessing, noticed.Status)

	completed, err := repo.FindByID(context.Background(), dueCompletion.ID)
	require.NoError(t, err)
	require.Equal(t, enums.CustomOrderStatusCompleted, completed.Status)
	require.NotNil(t, completed.CompletedAt)

	untouched, err := repo.FindByID(context.Background(), fresh.ID)
	require.NoError(t, err)
	require.Nil(t, untouched.FinalizationNotifiedAt)

	// Delivered orders are out of scope for both gates.
	skipped, err := repo.FindByID(context.Background(), delivered.ID)
	require.NoError(t, err)
	require.Nil(t, skipped.FinalizationNotifiedAt)
	require.Equal(t, enums.CustomOrderStatusProcessing, skipped.Status)

	// Second run changes nothing.
	rerun, err := job.Execute(context.Background())
	require.NoError(t, err)
	require.Equal(t, 0, rerun.Notified)
	require.Equal(t, 0, rerun.Completed)
}
