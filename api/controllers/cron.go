package controllers

import (
	"net/http"

	"github.com/kmensah/boutique-backend/api/responses"
	croninternal "github.com/kmensah/boutique-backend/internal/cron"
	pkgerrors "github.com/kmensah/boutique-backend/pkg/errors"
	"github.com/kmensah/boutique-backend/pkg/logger"
)

// CronAdvanceOrders runs the time-based order advancer on demand and returns
// how many orders moved.
func CronAdvanceOrders(job *croninternal.OrderAdvancerJob, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if job == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order advancer unavailable"))
			return
		}

		result, err := job.Execute(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// CronAdvanceCustomOrders runs the custom-order finalization pass on demand.
func CronAdvanceCustomOrders(job *croninternal.CustomOrderJob, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if job == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "custom order job unavailable"))
			return
		}

		result, err := job.Execute(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// CronCleanup sweeps lapsed stock holds and purges abandoned carts.
func CronCleanup(job *croninternal.CleanupJob, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if job == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cleanup job unavailable"))
			return
		}

		result, err := job.Execute(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
