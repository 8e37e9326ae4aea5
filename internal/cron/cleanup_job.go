package cron

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/multierr"

	"github.com/kmensah/boutique-backend/internal/carts"
	"github.com/kmensah/boutique-backend/pkg/logger"
)

const abandonedCartAge = 30 * 24 * time.Hour

// CleanupResult reports what one hygiene pass removed.
type CleanupResult struct {
	ReservationsReleased int64 `json:"reservations_released"`
	CartsPurged          int64 `json:"carts_purged"`
}

type reservationSweeper interface {
	SweepExpired(ctx context.Context, now time.Time) (int64, error)
}

// CleanupJobParams configure the hygiene job.
type CleanupJobParams struct {
	Logger       *logger.Logger
	Reservations reservationSweeper
	Carts        carts.Repository
	Now          func() time.Time
}

// CleanupJob releases lapsed stock holds and purges month-old carts.
type CleanupJob struct {
	logg   *logger.Logger
	ledger reservationSweeper
	carts  carts.Repository
	now    func() time.Time
}

// NewCleanupJob builds the hygiene cron job.
func NewCleanupJob(params CleanupJobParams) (*CleanupJob, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Reservations == nil {
		return nil, fmt.Errorf("reservation sweeper required")
	}
	if params.Carts == nil {
		return nil, fmt.Errorf("carts repository required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &CleanupJob{
		logg:   params.Logger,
		ledger: params.Reservations,
		carts:  params.Carts,
		now:    now,
	}, nil
}

func (j *CleanupJob) Name() string { return "cleanup" }

func (j *CleanupJob) Run(ctx context.Context) error {
	_, err := j.Execute(ctx)
	return err
}

// Execute runs one hygiene pass.
func (j *CleanupJob) Execute(ctx context.Context) (CleanupResult, error) {
	var result CleanupResult
	var errs []error
	now := j.now().UTC()

	released, err := j.ledger.SweepExpired(ctx, now)
	result.ReservationsReleased = released
	if err != nil {
		errs = append(errs, fmt.Errorf("sweep reservations: %w", err))
	}

	purged, err := j.carts.PurgeAbandoned(ctx, now.Add(-abandonedCartAge))
	result.CartsPurged = purged
	if err != nil {
		errs = append(errs, fmt.Errorf("purge carts: %w", err))
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"reservations_released": result.ReservationsReleased,
		"carts_purged":          result.CartsPurged,
	})
	j.logg.Info(logCtx, "cleanup pass complete")
	return result, multierr.Combine(errs...)
}
