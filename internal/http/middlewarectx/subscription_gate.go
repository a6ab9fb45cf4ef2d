package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/magabrotheeeer/safezone/internal/http/response"
	"github.com/magabrotheeeer/safezone/internal/lib/apperr"
	"github.com/magabrotheeeer/safezone/internal/lib/sl"
	"github.com/magabrotheeeer/safezone/internal/models"
)

// AccessChecker проверяет, разрешён ли пользователю доступ к функциям приложения.
type AccessChecker interface {
	CheckAccess(ctx context.Context, user *models.User) error
}

// SubscriptionGate создает middleware, который не пускает пользователей
// с заблокированной или отсутствующей подпиской. VIP проходят всегда.
func SubscriptionGate(log *slog.Logger, checker AccessChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFromContext(r.Context())
			if !ok {
				log.Error("user identification missing")
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("Token de acesso ausente"))
				return
			}

			if err := checker.CheckAccess(r.Context(), user); err != nil {
				if apperr.KindOf(err) == apperr.KindPaymentRequired {
					log.Info("subscription blocked, access denied", slog.String("user_id", user.ID))
				} else {
					log.Error("failed to check subscription", sl.Err(err))
				}
				response.FromError(w, r, err)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
