package middleware

import (
	"crypto/subtle"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/lodgio/lodgio-api/internal/utils"
)

// AuthMiddleware enforces API key authentication on the mutation surface.
// Identity and access control proper live in the platform gateway; this layer
// only keeps unauthenticated traffic off the engine.
type AuthMiddleware struct {
	apiKey string
}

// NewAuthMiddleware constructs a new AuthMiddleware.
func NewAuthMiddleware(apiKey string) *AuthMiddleware {
	return &AuthMiddleware{apiKey: apiKey}
}

// Handle returns a Gin middleware function that enforces authentication.
func (m *AuthMiddleware) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			utils.Error(c, 401, "INVALID_TOKEN", "Missing or invalid authorization header")
			c.Abort()
			return
		}
		token := strings.TrimPrefix(authHeader, "Bearer ")

		if subtle.ConstantTimeCompare([]byte(token), []byte(m.apiKey)) != 1 {
			utils.Error(c, 401, "INVALID_TOKEN", "Invalid API token")
			c.Abort()
			return
		}
		c.Next()
	}
}
