package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/getsentry/sentry-go"

	"finance-serverless/internal/observability"
	"finance-serverless/internal/web"
)

const bearerPrefix = "Bearer "

// Gate authenticates every request before its operation runs. Operations on
// the public allow-list pass straight through; everything else needs a valid
// bearer token or the gate answers the request itself and the operation
// never executes.
type Gate struct {
	tokens *TokenService
	logger *observability.Logger
	public map[string]struct{}
}

func NewGate(tokens *TokenService, logger *observability.Logger, publicOperations ...string) *Gate {
	public := make(map[string]struct{}, len(publicOperations))
	for _, operation := range publicOperations {
		public[operation] = struct{}{}
	}

	return &Gate{tokens: tokens, logger: logger, public: public}
}

// Protect wraps the handler for a named operation. On success the verified
// identity is attached to the request context before next runs.
func (g *Gate) Protect(operation string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := g.public[operation]; ok {
			next.ServeHTTP(w, r)
			return
		}

		header := strings.TrimSpace(r.Header.Get("Authorization"))
		if header == "" {
			g.logger.Warn("request_without_token", observability.Fields{
				"operation": operation,
				"ip":        observability.ClientIP(r),
			})
			web.WriteMessage(w, http.StatusUnauthorized, "missing authorization header")
			return
		}

		if !strings.HasPrefix(header, bearerPrefix) {
			g.logger.Warn("malformed_authorization_header", observability.Fields{
				"operation": operation,
				"ip":        observability.ClientIP(r),
			})
			web.WriteMessage(w, http.StatusBadRequest, "invalid authorization header")
			return
		}

		token := strings.TrimSpace(header[len(bearerPrefix):])

		identity, err := g.tokens.Validate(token)
		if err != nil {
			if isTokenError(err) {
				g.logger.Warn("token_rejected", observability.Fields{
					"operation": operation,
					"reason":    err.Error(),
					"token":     truncateToken(token),
				})
				web.WriteMessage(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			sentry.CaptureException(err)
			g.logger.Error("token_validation_fault", observability.Fields{
				"operation": operation,
				"error":     err.Error(),
			})
			web.WriteMessage(w, http.StatusInternalServerError, "internal server error")
			return
		}

		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
	})
}

func isTokenError(err error) bool {
	return errors.Is(err, ErrTokenMalformed) ||
		errors.Is(err, ErrTokenSignature) ||
		errors.Is(err, ErrTokenExpired) ||
		errors.Is(err, ErrTokenClaims)
}

// truncateToken keeps just enough of a rejected token to correlate abuse
// attempts in the logs without recording usable credential material.
func truncateToken(token string) string {
	const keep = 8
	if len(token) <= keep {
		return token
	}
	return token[:keep] + "..."
}
