package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/bisolaadigun/tutor-hours-api/internal/models"
	appErrors "github.com/bisolaadigun/tutor-hours-api/pkg/errors"
	"github.com/bisolaadigun/tutor-hours-api/pkg/response"
)

// RequireRoles enforces role-based access control for routes. The services
// re-check role guards themselves; this is the outer gate only.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	allowed := make(map[models.UserRole]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}

	return func(c *gin.Context) {
		claimsValue, exists := c.Get(ContextUserKey)
		if !exists {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		claims, ok := claimsValue.(*models.JWTClaims)
		if !ok {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		if _, ok := allowed[claims.Role]; !ok {
			response.Error(c, appErrors.ErrForbidden)
			c.Abort()
			return
		}

		c.Next()
	}
}
