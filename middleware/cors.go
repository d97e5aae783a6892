package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// OriginPolicy is the CORS allow-list. With RequireOrigin set, requests that
// carry no Origin header are refused as well. Entries match literally, so a
// "*" entry never admits an arbitrary origin.
type OriginPolicy struct {
	Origins       []string
	RequireOrigin bool
}

func (p OriginPolicy) Allows(origin string) bool {
	if origin == "" {
		return !p.RequireOrigin
	}
	for _, o := range p.Origins {
		if strings.EqualFold(strings.TrimRight(o, "/"), origin) {
			return true
		}
	}
	return false
}

func CORS(policy OriginPolicy) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if !policy.Allows(origin) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error":   "Not allowed by CORS",
				"message": "Origin is not allowed to access this API",
			})
			return
		}

		if origin != "" {
			h := c.Writer.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Credentials", "true")
			h.Add("Vary", "Origin")
		}

		if c.Request.Method == http.MethodOptions {
			h := c.Writer.Header()
			h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			h.Set("Access-Control-Max-Age", "600")
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
