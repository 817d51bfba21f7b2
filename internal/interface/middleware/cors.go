package middleware

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORS allows credentialed cross-origin calls from origins. With no origins
// configured it adds no CORS headers, so browsers fall back to same-origin.
func CORS(origins []string) gin.HandlerFunc {
	if len(origins) == 0 {
		return func(c *gin.Context) { c.Next() }
	}
	return cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", HeaderRequestID},
		ExposeHeaders:    []string{"Content-Length", HeaderRequestID, "Retry-After"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	})
}
