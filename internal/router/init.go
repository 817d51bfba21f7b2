package router

import (
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-jwt-identity/internal/application"
	handlers "github.com/oksasatya/go-jwt-identity/internal/interface/http"
	"github.com/oksasatya/go-jwt-identity/internal/router/modules"
	"github.com/oksasatya/go-jwt-identity/pkg/helpers"
)

// Deps are the shared components modules are built from.
type Deps struct {
	Service      *application.AuthService
	JWT          *helpers.JWTManager
	Redis        *redis.Client // nil disables rate limiting
	Logger       *logrus.Logger
	DebugMetrics bool
}

// InitModules builds every module from deps and adds it to r.
func InitModules(r *Registry, deps Deps) {
	authHandler := handlers.NewAuthHandler(deps.Service, deps.Logger)
	r.Add(modules.NewAuthModule(authHandler, deps.JWT, deps.Redis, deps.Logger))
	if deps.DebugMetrics {
		r.Add(modules.NewDebugModule(deps.Redis, deps.Logger))
	}
}
