package middleware

import (
	"net"

	"github.com/gin-gonic/gin"
)

// AllowPrivateIP bypasses the limit for loopback and private-range clients,
// e.g. in-cluster scrapers of /debug/vars.
func AllowPrivateIP() AllowFunc {
	return func(c *gin.Context) bool {
		parsed := net.ParseIP(ipFromCtx(c))
		return parsed != nil && (parsed.IsLoopback() || parsed.IsPrivate())
	}
}
