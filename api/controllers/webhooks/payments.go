package webhooks

import (
	"context"
	"io"
	"net/http"

	"github.com/kmensah/boutique-backend/api/responses"
	"github.com/kmensah/boutique-backend/internal/payments"
	pkgerrors "github.com/kmensah/boutique-backend/pkg/errors"
	"github.com/kmensah/boutique-backend/pkg/logger"
)

// maxWebhookBody caps provider callbacks well above any real payload size.
const maxWebhookBody = 1 << 20

type lifecycleService interface {
	HandlePaymentResult(ctx context.Context, res *payments.Result) error
}

// PaymentWebhook verifies a provider callback and feeds it into the order
// lifecycle. Callbacks the provider recognizes but does not act on are
// acknowledged so the gateway stops retrying them.
func PaymentWebhook(provider payments.Provider, svc lifecycleService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if provider == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payment provider unavailable"))
			return
		}
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "lifecycle service unavailable"))
			return
		}

		body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read request body"))
			return
		}

		result, err := provider.VerifyAndParse(r.Header, body)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if result == nil {
			responses.WriteSuccess(w, map[string]string{"status": "ignored"})
			return
		}

		if err := svc.HandlePaymentResult(ctx, result); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "processed"})
	}
}
