package modules

import (
	"expvar"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-jwt-identity/internal/interface/middleware"
)

type DebugModule struct {
	Redis  *redis.Client
	Logger *logrus.Logger
}

func NewDebugModule(rdb *redis.Client, logger *logrus.Logger) *DebugModule {
	return &DebugModule{Redis: rdb, Logger: logger}
}

// Register exposes expvar (including the "identity" counters) at /api/debug/vars.
func (m *DebugModule) Register(rg *gin.RouterGroup) {
	rl := middleware.RateLimit(m.Redis, middleware.Limit{
		Max:    120,
		Window: time.Minute,
		Key:    middleware.KeyByIP(),
		Allow:  middleware.AllowPrivateIP(),
	}, m.Logger)
	rg.GET("/debug/vars", rl, gin.WrapH(expvar.Handler()))
}
