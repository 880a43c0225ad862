package middleware

import (
	"log"
	"net/http"
	"os"
	"strings"

	"cvstudio/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

// InternalTokenAuth protects the scheduler-facing job endpoints using a
// static bearer token shared with the external cron runner.
func InternalTokenAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			logInternalAuthFailure(c, "missing_auth")
			response.Error(c, http.StatusUnauthorized, "AUTH_MISSING", "Authorization header is required")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			logInternalAuthFailure(c, "invalid_auth_format")
			response.Error(c, http.StatusUnauthorized, "AUTH_INVALID", "Authorization header must be 'Bearer <token>'")
			c.Abort()
			return
		}

		expected := os.Getenv("CVSTUDIO_INTERNAL_TOKEN")
		if expected == "" {
			logInternalAuthFailure(c, "token_not_configured")
			response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal token is not configured")
			c.Abort()
			return
		}

		if parts[1] != expected {
			logInternalAuthFailure(c, "invalid_token")
			response.Error(c, http.StatusForbidden, "AUTH_INVALID", "Invalid internal token")
			c.Abort()
			return
		}

		c.Next()
	}
}

func logInternalAuthFailure(c *gin.Context, reason string) {
	log.Printf("internal_auth_failure reason=%s path=%s client_ip=%s", reason, c.Request.URL.Path, c.ClientIP())
}
