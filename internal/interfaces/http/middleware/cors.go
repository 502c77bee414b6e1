package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	corsAllowMethods = "GET, POST, PUT, DELETE, PATCH, OPTIONS"
	corsAllowHeaders = "Content-Type, Authorization, X-Request-ID, Idempotency-Key, Accept, Origin"
	corsMaxAge       = "43200"
)

// CORS returns a middleware that handles cross-origin requests.
// With an empty origin list all cross-origin requests are rejected;
// "*" allows everything.
func CORS(allowOrigins []string) gin.HandlerFunc {
	allowAll := false
	for _, o := range allowOrigins {
		if o == "*" {
			allowAll = true
			break
		}
	}

	allowed := func(origin string) string {
		if allowAll {
			return "*"
		}
		for _, o := range allowOrigins {
			if strings.EqualFold(o, origin) {
				return origin
			}
		}
		return ""
	}

	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")

		if match := allowed(origin); match != "" {
			c.Header("Access-Control-Allow-Origin", match)
			c.Header("Access-Control-Allow-Methods", corsAllowMethods)
			c.Header("Access-Control-Allow-Headers", corsAllowHeaders)
			c.Header("Access-Control-Expose-Headers", RequestIDHeader)
			c.Header("Access-Control-Max-Age", corsMaxAge)
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
