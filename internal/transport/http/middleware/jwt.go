package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"pinmap/internal/pkg/jwtutil"
	"pinmap/internal/transport/http/response"
)

const (
	ContextUserIDKey   = "user_id"
	ContextUsernameKey = "username"
)

// AuthJWT rejects requests without a valid bearer token.
func AuthJWT(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if strings.TrimSpace(c.GetHeader("Authorization")) == "" {
			unauthorized(c, "missing authorization header")
			return
		}
		if authenticate(c, secret) {
			c.Next()
		}
	}
}

// OptionalJWT lets anonymous requests through but still rejects a token
// that is present and invalid.
func OptionalJWT(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if strings.TrimSpace(c.GetHeader("Authorization")) == "" {
			c.Next()
			return
		}
		if authenticate(c, secret) {
			c.Next()
		}
	}
}

func authenticate(c *gin.Context, secret string) bool {
	authHeader := strings.TrimSpace(c.GetHeader("Authorization"))

	const prefix = "Bearer "
	if !strings.HasPrefix(authHeader, prefix) {
		unauthorized(c, "invalid authorization scheme")
		return false
	}

	token := strings.TrimSpace(strings.TrimPrefix(authHeader, prefix))
	claims, err := jwtutil.ParseToken(secret, token)
	if err != nil {
		unauthorized(c, "invalid or expired token")
		return false
	}

	c.Set(ContextUserIDKey, claims.UserID)
	c.Set(ContextUsernameKey, claims.Username)
	return true
}

func unauthorized(c *gin.Context, message string) {
	response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, response.ReasonUnauthorized, message)
	c.Abort()
}
