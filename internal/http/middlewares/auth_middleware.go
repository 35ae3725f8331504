package middlewares

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/geocoder89/reviewhub/internal/actorctx"
	"github.com/geocoder89/reviewhub/internal/auth"
	"github.com/geocoder89/reviewhub/internal/domain/user"
	"github.com/gin-gonic/gin"
)

// Keep this small interface so tests can fake it easily.
type KeyVerifier interface {
	Authenticate(ctx context.Context, key string) (user.Identity, error)
}

type AuthMiddleware struct {
	verifier KeyVerifier
	log      *slog.Logger
}

func NewAuthMiddleware(verifier KeyVerifier, log *slog.Logger) *AuthMiddleware {
	if log == nil {
		log = slog.Default()
	}
	return &AuthMiddleware{verifier: verifier, log: log}
}

// RequireAPIKey resolves the x-api-key header and aborts with 401 before the
// handler runs when the key is missing or unknown.
func (m *AuthMiddleware) RequireAPIKey() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := m.verifier.Authenticate(c.Request.Context(), c.GetHeader(auth.HeaderAPIKey))
		if err != nil {
			switch {
			case errors.Is(err, auth.ErrMissingAPIKey):
				abortUnauthorized(c, "Missing x-api-key header")
			case errors.Is(err, auth.ErrInvalidAPIKey):
				abortUnauthorized(c, "Invalid API key")
			default:
				m.log.ErrorContext(c.Request.Context(), "api key lookup failed", "err", err)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"error": gin.H{
						"code":      "internal_error",
						"message":   "Could not verify credentials",
						"requestId": c.GetString(CtxRequestID),
					},
				})
			}
			return
		}

		// Stash the identity on both the gin and the request context
		c.Set(CtxIdentity, id)
		c.Request = c.Request.WithContext(actorctx.WithIdentity(c.Request.Context(), id))

		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error": gin.H{
			"code":      "unauthorized",
			"message":   message,
			"requestId": c.GetString(CtxRequestID),
		},
	})
}

// IdentityFromContext returns the caller attached by RequireAPIKey.
func IdentityFromContext(c *gin.Context) (user.Identity, bool) {
	v, ok := c.Get(CtxIdentity)
	if !ok {
		return user.Identity{}, false
	}
	id, ok := v.(user.Identity)
	return id, ok && id.UserID != ""
}
