package middleware

import (
	"crypto/hmac"
	"net/http"

	"github.com/kmensah/boutique-backend/api/responses"
	"github.com/kmensah/boutique-backend/pkg/config"
	pkgerrors "github.com/kmensah/boutique-backend/pkg/errors"
	"github.com/kmensah/boutique-backend/pkg/logger"
)

const cronSecretHeader = "X-Cron-Secret"

// CronSecret guards the scheduler-invoked endpoints with a shared secret.
// Outside production a missing header is tolerated so local runs and staging
// schedulers keep working without extra wiring.
func CronSecret(app config.AppConfig, cron config.CronConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			supplied := r.Header.Get(cronSecretHeader)
			if supplied == "" && !app.IsProd() {
				next.ServeHTTP(w, r)
				return
			}
			if cron.Secret == "" || !hmac.Equal([]byte(supplied), []byte(cron.Secret)) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid cron secret"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
