package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/kmensah/boutique-backend/api/responses"
	"github.com/kmensah/boutique-backend/api/validators"
	checkoutsvc "github.com/kmensah/boutique-backend/internal/checkout"
	"github.com/kmensah/boutique-backend/pkg/db/models"
	pkgerrors "github.com/kmensah/boutique-backend/pkg/errors"
	"github.com/kmensah/boutique-backend/pkg/logger"
)

// Checkout turns a validated cart payload into a pending order with stock
// holds attached.
func Checkout(svc *checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		var payload checkoutsvc.Request
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		order, err := svc.Checkout(ctx, &payload)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, newOrderResponse(order))
	}
}

type orderItemResponse struct {
	ProductID     uuid.UUID `json:"product_id"`
	Name          string    `json:"name"`
	Qty           int       `json:"qty"`
	UnitPriceFCFA int64     `json:"unit_price_fcfa"`
}

type orderResponse struct {
	ID                    uuid.UUID           `json:"id"`
	OrderNumber           string              `json:"order_number"`
	CustomerName          string              `json:"customer_name"`
	Status                string              `json:"status"`
	PaymentStatus         string              `json:"payment_status"`
	TotalFCFA             int64               `json:"total_fcfa"`
	TrackingNumber        *string             `json:"tracking_number,omitempty"`
	Carrier               *string             `json:"carrier,omitempty"`
	ShippedAt             *time.Time          `json:"shipped_at,omitempty"`
	DeliveredAt           *time.Time          `json:"delivered_at,omitempty"`
	EstimatedDeliveryDate *time.Time          `json:"estimated_delivery_date,omitempty"`
	CancelledAt           *time.Time          `json:"cancelled_at,omitempty"`
	Items                 []orderItemResponse `json:"items,omitempty"`
	CreatedAt             time.Time           `json:"created_at"`
}

func newOrderResponse(order *models.Order) orderResponse {
	resp := orderResponse{
		ID:                    order.ID,
		OrderNumber:           order.OrderNumber,
		CustomerName:          order.CustomerName,
		Status:                string(order.Status),
		PaymentStatus:         string(order.PaymentStatus),
		TotalFCFA:             order.TotalFCFA,
		TrackingNumber:        order.TrackingNumber,
		ShippedAt:             order.ShippedAt,
		DeliveredAt:           order.DeliveredAt,
		EstimatedDeliveryDate: order.EstimatedDeliveryDate,
		CancelledAt:           order.CancelledAt,
		CreatedAt:             order.CreatedAt,
	}
	if order.Carrier != nil {
		carrier := string(*order.Carrier)
		resp.Carrier = &carrier
	}
	for _, item := range order.Items {
		resp.Items = append(resp.Items, orderItemResponse{
			ProductID:     item.ProductID,
			Name:          item.Name,
			Qty:           item.Qty,
			UnitPriceFCFA: item.UnitPriceFCFA,
		})
	}
	return resp
}
