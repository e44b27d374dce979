package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/dhakalu/telehealth-web-app-sub001/internal/models"
	appErrors "github.com/dhakalu/telehealth-web-app-sub001/pkg/errors"
	"github.com/dhakalu/telehealth-web-app-sub001/pkg/response"
)

// RequireRoles blocks requests whose token does not carry one of the given
// roles. Must run after JWT.
func RequireRoles(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claimsValue, exists := c.Get(ContextUserKey)
		if !exists {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		claims, ok := claimsValue.(*models.Claims)
		if !ok || !claims.HasRole(roles...) {
			response.Error(c, appErrors.ErrForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}

// CurrentClaims extracts the authenticated claims from the request context.
func CurrentClaims(c *gin.Context) *models.Claims {
	claimsValue, exists := c.Get(ContextUserKey)
	if !exists {
		return nil
	}
	claims, _ := claimsValue.(*models.Claims)
	return claims
}
