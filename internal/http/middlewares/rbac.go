package middlewares

import "github.com/gin-gonic/gin"

// RequireAdmin authenticates the bearer token and requires the admin flag it
// carries: 401 for a missing or bad token, 403 for a non-admin. It does not
// need RequireAuth in front of it.
func (m *AuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return m.guardWith(m.guard.RequirePrivileged)
}
