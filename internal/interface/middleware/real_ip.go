package middleware

import (
	"github.com/gin-gonic/gin"
)

// RealIP stores gin's ClientIP under "real_ip" for the rate limit keys.
// Forwarding headers count only from proxies set with TrustProxies.
func RealIP() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("real_ip", c.ClientIP())
		c.Next()
	}
}
