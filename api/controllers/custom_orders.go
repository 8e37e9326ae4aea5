package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/kmensah/boutique-backend/api/responses"
	"github.com/kmensah/boutique-backend/api/validators"
	"github.com/kmensah/boutique-backend/internal/customorders"
	"github.com/kmensah/boutique-backend/pkg/db/models"
	pkgerrors "github.com/kmensah/boutique-backend/pkg/errors"
	"github.com/kmensah/boutique-backend/pkg/logger"
)

// CreateCustomOrder records a bespoke tailoring request.
func CreateCustomOrder(svc *customorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "custom orders service unavailable"))
			return
		}

		var payload customorders.Request
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		order, err := svc.Intake(ctx, &payload)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, newCustomOrderResponse(order))
	}
}

type customOrderResponse struct {
	ID            uuid.UUID          `json:"id"`
	OrderNumber   string             `json:"order_number"`
	CustomerName  string             `json:"customer_name"`
	Status        string             `json:"status"`
	PaymentStatus string             `json:"payment_status"`
	Measurements  map[string]float64 `json:"measurements,omitempty"`
	Preferences   string             `json:"preferences,omitempty"`
	BudgetFCFA    int64              `json:"budget_fcfa"`
	CreatedAt     time.Time          `json:"created_at"`
}

func newCustomOrderResponse(order *models.CustomOrder) customOrderResponse {
	return customOrderResponse{
		ID:            order.ID,
		OrderNumber:   order.OrderNumber,
		CustomerName:  order.CustomerName,
		Status:        string(order.Status),
		PaymentStatus: string(order.PaymentStatus),
		Measurements:  map[string]float64(order.Measurements),
		Preferences:   order.Preferences,
		BudgetFCFA:    order.BudgetFCFA,
		CreatedAt:     order.CreatedAt,
	}
}
