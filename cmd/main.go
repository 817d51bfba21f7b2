package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/golang-migrate/migrate/v4"
	pgmigrate "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/oksasatya/go-jwt-identity/config"
	"github.com/oksasatya/go-jwt-identity/internal/application"
	repo "github.com/oksasatya/go-jwt-identity/internal/domain/repository"
	"github.com/oksasatya/go-jwt-identity/internal/infrastructure/memory"
	pginfra "github.com/oksasatya/go-jwt-identity/internal/infrastructure/postgres"
	"github.com/oksasatya/go-jwt-identity/internal/interface/middleware"
	"github.com/oksasatya/go-jwt-identity/internal/router"
	"github.com/oksasatya/go-jwt-identity/pkg/helpers"
	"github.com/oksasatya/go-jwt-identity/pkg/validation"
)

func main() {
	_ = godotenv.Load() // load .env if present

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}
	logger := helpers.NewLogger(cfg.AppName, cfg.Env)
	gin.SetMode(cfg.GinMode)

	ctx := context.Background()

	// Credential store
	var store repo.CredentialStore
	switch cfg.StoreDriver {
	case "memory":
		logger.Warn("using in-memory credential store; data is lost on restart")
		store = memory.NewCredentialStore(helpers.DefaultPasswordPolicy)
	default:
		pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), cfg.DBMaxConns, cfg.DBMinConns, cfg.DBMaxConnLife)
		if err != nil {
			log.Fatalf("failed to connect to postgres: %v", err)
		}
		defer pool.Close()

		if err := runMigrations(cfg.PostgresDSN(), cfg.MigrationsDir, logger); err != nil {
			log.Fatalf("migration failed: %v", err)
		}
		store = pginfra.NewCredentialStore(pool, helpers.DefaultPasswordPolicy)
	}

	// Redis backs rate limiting only
	var rdb *redis.Client
	if cfg.RateLimitEnabled {
		rdb = helpers.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		defer func() { _ = rdb.Close() }()
		if err := helpers.PingRedis(ctx, rdb, 3*time.Second); err != nil {
			helpers.LogError(logger, "redis unreachable; rate limits fail open until it recovers", err, logrus.Fields{"addr": cfg.RedisAddr})
		}
	}

	jwtManager := helpers.NewJWTManager(cfg.JWT.Key, cfg.JWT.Issuer, cfg.JWT.Audience, cfg.JWT.DurationInDays, helpers.ValidationOptions{
		ValidateSigningKey: cfg.JWT.ValidateSigningKey,
		ValidateIssuer:     cfg.JWT.ValidateIssuer,
		ValidateAudience:   cfg.JWT.ValidateAudience,
		ValidateLifetime:   cfg.JWT.ValidateLifetime,
		ClockSkew:          cfg.JWT.ClockSkew,
	})

	// Identity events
	var events application.EventPublisher
	if cfg.EventsEnabled {
		pub, err := helpers.NewRabbitPublisher(cfg.RabbitMQURL, cfg.RabbitMQEventsQueue)
		if err != nil {
			log.Fatalf("failed to connect to rabbitmq: %v", err)
		}
		defer pub.Close()
		events = pub
	}

	svc := application.NewAuthService(store, jwtManager, events, logger)

	validation.Init()

	// Gin engine and global middleware
	r := gin.New()
	if err := middleware.TrustProxies(r, cfg.TrustedProxyList()); err != nil {
		log.Fatalf("invalid TRUSTED_PROXIES: %v", err)
	}
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.RealIP())
	if len(cfg.CORSOrigins()) == 0 {
		logger.Info("CORS_ALLOWED_ORIGINS empty; cross-origin requests are not allowed")
	}
	r.Use(middleware.CORS(cfg.CORSOrigins()))
	if cfg.HTTPLogEnabled {
		r.Use(gin.Logger())
	}

	reg := router.NewRegistry(r)
	router.InitModules(reg, router.Deps{
		Service:      svc,
		JWT:          jwtManager,
		Redis:        rdb,
		Logger:       logger,
		DebugMetrics: cfg.DebugMetricsEnabled,
	})
	reg.RegisterAll()

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		logger.Infof("server starting on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("listen: %s\n", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		logger.Fatalf("server forced to shutdown: %v", err)
	}
	logger.Info("server exited properly")
}

func runMigrations(dsn string, migrationsDir string, logger *logrus.Logger) error {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()
	driver, err := pgmigrate.WithInstance(db, &pgmigrate.Config{})
	if err != nil {
		return err
	}
	m, err := migrate.NewWithDatabaseInstance(fmt.Sprintf("file://%s", migrationsDir), "postgres", driver)
	if err != nil {
		return err
	}
	logger.Info("running migrations...")
	err = m.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		logger.Info("no migrations to run")
		return nil
	}
	return err
}
