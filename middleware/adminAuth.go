package middleware

import (
	"net/http"
	"strings"

	"bookly/utils"

	"github.com/gin-gonic/gin"
)

// JWTAuthAdminMiddleware admits requests bearing a valid token with the admin role.
func JWTAuthAdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, utils.ErrorResponse{Message: "Missing or invalid Authorization header"})
			return
		}
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")

		sub, role, err := utils.ExtractRoleFromToken(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, utils.ErrorResponse{Message: "Invalid or expired token"})
			return
		}
		if role != utils.AdminRole {
			c.AbortWithStatusJSON(http.StatusForbidden, utils.ErrorResponse{Message: "Unauthorized admin access"})
			return
		}

		c.Set("adminID", sub)
		c.Set("isAdmin", true)
		c.Next()
	}
}
