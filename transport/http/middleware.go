package http

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vu-thanh-do/blockchain-todu/core"
	"github.com/vu-thanh-do/blockchain-todu/service"
)

const currentPrincipalKey = "current_principal"

// AuthMiddleware resolves the bearer token to an active principal and stores it on both the
// gin context and the request context.
func AuthMiddleware(guard *service.Guard, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		token := ""
		if strings.HasPrefix(authHeader, "Bearer ") {
			token = strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		}

		principal, err := guard.Resolve(c.Request.Context(), token)
		if err != nil {
			abortWithError(c, log, err)
			return
		}

		c.Set(currentPrincipalKey, principal)
		c.Request = c.Request.WithContext(core.WithPrincipal(c.Request.Context(), principal))
		c.Next()
	}
}

// RequireRoles must run after AuthMiddleware.
func RequireRoles(log zerolog.Logger, roles ...core.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := currentPrincipal(c)
		if !ok {
			abortWithError(c, log, core.ErrMissingToken)
			return
		}
		if err := service.RequireRole(principal, roles...); err != nil {
			abortWithError(c, log, err)
			return
		}
		c.Next()
	}
}

func currentPrincipal(c *gin.Context) (core.Principal, bool) {
	val, exists := c.Get(currentPrincipalKey)
	if !exists {
		return core.Principal{}, false
	}
	principal, ok := val.(core.Principal)
	return principal, ok
}
