package middleware

import (
	"net/http"
	"strings"

	"fantasy-doubles-api/packages/auth/models"
	"fantasy-doubles-api/packages/auth/utils"

	"github.com/gin-gonic/gin"
)

const (
	userIDKey    = "user_id"
	userEmailKey = "user_email"
	userRolesKey = "user_roles"
)

// JWTMiddleware requires a valid bearer token and stores its claims in the context.
func JWTMiddleware(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		tokenString, found := strings.CutPrefix(header, "Bearer ")
		if !found || tokenString == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			c.Abort()
			return
		}

		claims, err := utils.ParseToken(secret, tokenString)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			c.Abort()
			return
		}

		c.Set(userIDKey, claims.UserID)
		c.Set(userEmailKey, claims.Email)
		c.Set(userRolesKey, claims.Roles)
		c.Next()
	}
}

func GetUserID(c *gin.Context) (uint, bool) {
	v, exists := c.Get(userIDKey)
	if !exists {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok
}

func GetUserRoles(c *gin.Context) models.Roles {
	v, exists := c.Get(userRolesKey)
	if !exists {
		return nil
	}
	roles, _ := v.(models.Roles)
	return roles
}
