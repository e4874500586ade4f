package middleware

import (
	"strings"

	"github.com/claridoc/backend/internal/utils"
	"github.com/claridoc/backend/pkg/response"
	"github.com/gin-gonic/gin"
)

const (
	ContextUserID        = "user_id"
	ContextEmail         = "email"
	ContextEmailVerified = "email_verified"
)

// AuthRequired is a middleware that checks for a valid JWT token
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, "authorization header required")
			c.Abort()
			return
		}

		// Extract token from "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Unauthorized(c, "invalid authorization header format")
			c.Abort()
			return
		}

		claims, err := utils.ParseToken(parts[1])
		if err != nil {
			response.Unauthorized(c, "invalid or expired token")
			c.Abort()
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextEmail, claims.Email)
		c.Set(ContextEmailVerified, claims.EmailVerified)

		c.Next()
	}
}

// GetUserID gets the current user ID from context
func GetUserID(c *gin.Context) uint {
	if id, exists := c.Get(ContextUserID); exists {
		return id.(uint)
	}
	return 0
}

// GetUserEmail gets the current user's email from context
func GetUserEmail(c *gin.Context) string {
	if email, exists := c.Get(ContextEmail); exists {
		return email.(string)
	}
	return ""
}

// GetEmailVerified reports whether the current user's email is verified
func GetEmailVerified(c *gin.Context) bool {
	if v, exists := c.Get(ContextEmailVerified); exists {
		return v.(bool)
	}
	return false
}
