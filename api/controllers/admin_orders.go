package controllers

import (
	"net/http"

	"github.com/kmensah/boutique-backend/api/responses"
	"github.com/kmensah/boutique-backend/api/validators"
	"github.com/kmensah/boutique-backend/internal/lifecycle"
	ordersvc "github.com/kmensah/boutique-backend/internal/orders"
	pkgerrors "github.com/kmensah/boutique-backend/pkg/errors"
	"github.com/kmensah/boutique-backend/pkg/logger"
)

// AdminUpdateDelivery lets back-office staff override delivery fields on an
// order, for the cases the scheduled advancer does not cover.
func AdminUpdateDelivery(svc *ordersvc.DeliveryService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "delivery service unavailable"))
			return
		}

		orderID, err := uuidParam(r, "orderId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload ordersvc.DeliveryUpdate
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		order, err := svc.UpdateDelivery(ctx, orderID, &payload)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, newOrderResponse(order))
	}
}

// AdminCancelOrder cancels an order and releases its stock holds.
func AdminCancelOrder(svc *lifecycle.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "lifecycle service unavailable"))
			return
		}

		orderID, err := uuidParam(r, "orderId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		order, err := svc.Cancel(ctx, orderID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, newOrderResponse(order))
	}
}
