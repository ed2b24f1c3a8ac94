package auth

import (
	"fantasy-doubles-api/packages/auth/middleware"
	"fantasy-doubles-api/packages/auth/models"

	"github.com/gin-gonic/gin"
)

// Module verifies access tokens issued by the account service.
type Module struct {
	secret []byte
}

func NewModule(secret string) *Module {
	return &Module{secret: []byte(secret)}
}

// RequireAdmin chains token verification with the admin role check.
func (m *Module) RequireAdmin() []gin.HandlerFunc {
	return []gin.HandlerFunc{
		middleware.JWTMiddleware(m.secret),
		middleware.RequireRole(models.RoleAdmin),
	}
}
