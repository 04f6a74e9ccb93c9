package middlewares

import (
	"net/http"
	"strings"

	"github.com/geocoder89/storefront/internal/actorctx"
	"github.com/geocoder89/storefront/internal/apperr"
	"github.com/geocoder89/storefront/internal/auth"
	"github.com/gin-gonic/gin"
)

// Guard is satisfied by *auth.Service: the middlewares only translate its
// answers to HTTP.
type Guard interface {
	RequireAuthenticated(token string) (auth.Identity, error)
	RequirePrivileged(token string) (auth.Identity, error)
}

type AuthMiddleware struct {
	guard Guard
}

func NewAuthMiddleware(guard Guard) *AuthMiddleware {
	return &AuthMiddleware{guard: guard}
}

// RequireAuth accepts "Authorization: Bearer <token>" and stores the token's
// identity on both the gin context and the request context.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return m.guardWith(m.guard.RequireAuthenticated)
}

func (m *AuthMiddleware) guardWith(check func(token string) (auth.Identity, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := check(bearerToken(c.GetHeader("Authorization")))
		if err != nil {
			if apperr.KindOf(err) == apperr.KindAuthorization {
				abortWithError(c, http.StatusForbidden, "forbidden", apperr.MessageOf(err))
				return
			}
			abortWithError(c, http.StatusUnauthorized, "unauthorized", apperr.MessageOf(err))
			return
		}

		c.Set(ctxIdentity, id)
		c.Request = c.Request.WithContext(actorctx.WithIdentity(c.Request.Context(), id))

		c.Next()
	}
}

// bearerToken returns "" when the header is missing or uses another scheme.
func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

func IdentityFromContext(c *gin.Context) (auth.Identity, bool) {
	v, ok := c.Get(ctxIdentity)
	if !ok {
		return auth.Identity{}, false
	}
	id, ok := v.(auth.Identity)
	return id, ok && id.AccountID != ""
}
