package middleware

import "github.com/gin-gonic/gin"

// TrustProxies makes gin's ClientIP honour CF-Connecting-IP and
// X-Forwarded-For only when the peer is one of proxies. An empty list
// trusts no proxy and ClientIP is the socket peer.
func TrustProxies(r *gin.Engine, proxies []string) error {
	r.ForwardedByClientIP = true
	r.RemoteIPHeaders = []string{"CF-Connecting-IP", "X-Forwarded-For", "X-Real-IP"}
	if len(proxies) == 0 {
		return r.SetTrustedProxies(nil)
	}
	return r.SetTrustedProxies(proxies)
}
