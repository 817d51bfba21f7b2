package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-jwt-identity/internal/domain/entity"
	handlers "github.com/oksasatya/go-jwt-identity/internal/interface/http"
	"github.com/oksasatya/go-jwt-identity/internal/interface/middleware"
	"github.com/oksasatya/go-jwt-identity/pkg/helpers"
)

// AuthModule wires the identity endpoints.
// Public: POST /api/auth/register, POST /api/auth/token
// Bearer: GET /api/auth/me; Bearer + Admin: POST /api/auth/addrole
type AuthModule struct {
	Handler *handlers.AuthHandler
	JWT     *helpers.JWTManager
	Redis   *redis.Client
	Logger  *logrus.Logger
}

func NewAuthModule(h *handlers.AuthHandler, jwt *helpers.JWTManager, rdb *redis.Client, logger *logrus.Logger) *AuthModule {
	return &AuthModule{Handler: h, JWT: jwt, Redis: rdb, Logger: logger}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	registerLimiter := middleware.RateLimit(m.Redis, middleware.Limit{Max: 10, Window: time.Minute, Key: middleware.KeyByIPAndPath()}, m.Logger)
	tokenLimiter := middleware.RateLimit(m.Redis, middleware.Limit{Max: 20, Window: time.Minute, Key: middleware.KeyByIPAndPath()}, m.Logger)

	auth := rg.Group("/auth")
	auth.POST("/register", registerLimiter, m.Handler.Register)
	auth.POST("/token", tokenLimiter, m.Handler.Token)

	protected := auth.Group("/")
	protected.Use(
		middleware.Bearer(m.JWT, m.Logger),
		middleware.RateLimit(m.Redis, middleware.Limit{Max: 120, Window: time.Minute, Key: middleware.KeyByUserID()}, m.Logger),
	)
	{
		protected.GET("/me", m.Handler.Me)
		protected.POST("/addrole", middleware.RequireRole(entity.RoleAdmin), m.Handler.AddRole)
	}
}
