package middleware

import (
	"net/http"
	"strings"

	"quizapp/services"

	"github.com/gin-gonic/gin"
)

type TokenVerifier interface {
	Verify(token string) (services.Identity, error)
}

// AuthMiddleware requires a bearer token and stores the caller's identity
// under "user_id" and "email".
func AuthMiddleware(tokens TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "Access token required",
				"message": "No authorization token provided",
			})
			return
		}

		identity, err := tokens.Verify(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error":   "Invalid token",
				"message": "The provided token is invalid or expired",
			})
			return
		}

		c.Set("user_id", identity.UserID)
		c.Set("email", identity.Email)
		c.Next()
	}
}

func bearerToken(header string) string {
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}
