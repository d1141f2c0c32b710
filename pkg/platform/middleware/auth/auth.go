package auth

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"pbd/pkg/requestcontext"
)

// AppTokenValidator validates bearer tokens issued to apps.
type AppTokenValidator interface {
	ValidateAppToken(tokenString string) (*AppClaims, error)
}

// AppClaims are the claims the middleware needs from a validated app token.
type AppClaims struct {
	AppID string
	JTI   string
}

func writeJSONError(w http.ResponseWriter, status int, errCode, errDesc string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(fmt.Appendf(nil, `{"error":"%s","error_description":"%s"}`, errCode, errDesc))
}

// RequireApp rejects requests without a valid app token and stores the
// calling app's id in the request context.
func RequireApp(validator AppTokenValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || token == "" {
				logger.WarnContext(ctx, "unauthorized access - missing token",
					"request_id", requestcontext.RequestID(ctx),
				)
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Missing or invalid Authorization header")
				return
			}

			claims, err := validator.ValidateAppToken(token)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"error", err,
					"request_id", requestcontext.RequestID(ctx),
				)
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Invalid or expired token")
				return
			}
			if claims.AppID == "" {
				logger.WarnContext(ctx, "unauthorized access - token has no app",
					"request_id", requestcontext.RequestID(ctx),
				)
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Invalid or expired token")
				return
			}

			ctx = requestcontext.WithAppID(ctx, claims.AppID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
