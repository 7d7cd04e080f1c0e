package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/carlosapgomes/eqmd-sub007/internal/config"
	"github.com/carlosapgomes/eqmd-sub007/internal/handler"
	authHandler "github.com/carlosapgomes/eqmd-sub007/internal/handler/auth"
	eventHandler "github.com/carlosapgomes/eqmd-sub007/internal/handler/event"
	patientHandler "github.com/carlosapgomes/eqmd-sub007/internal/handler/patient"
	reportHandler "github.com/carlosapgomes/eqmd-sub007/internal/handler/report"
	userHandler "github.com/carlosapgomes/eqmd-sub007/internal/handler/user"
	"github.com/carlosapgomes/eqmd-sub007/internal/middleware"
	"github.com/carlosapgomes/eqmd-sub007/internal/repository/postgres"
	"github.com/carlosapgomes/eqmd-sub007/internal/router"
	auditService "github.com/carlosapgomes/eqmd-sub007/internal/service/audit"
	authService "github.com/carlosapgomes/eqmd-sub007/internal/service/auth"
	"github.com/carlosapgomes/eqmd-sub007/internal/service/authz"
	eventService "github.com/carlosapgomes/eqmd-sub007/internal/service/event"
	patientService "github.com/carlosapgomes/eqmd-sub007/internal/service/patient"
	"github.com/carlosapgomes/eqmd-sub007/internal/service/prefetch"
	reportService "github.com/carlosapgomes/eqmd-sub007/internal/service/report"
	userService "github.com/carlosapgomes/eqmd-sub007/internal/service/user"
	"github.com/carlosapgomes/eqmd-sub007/pkg/auth"
	"github.com/carlosapgomes/eqmd-sub007/pkg/logger"
	"github.com/carlosapgomes/eqmd-sub007/pkg/metrics"
	"github.com/carlosapgomes/eqmd-sub007/pkg/permcache"
	"github.com/carlosapgomes/eqmd-sub007/pkg/security"
	"github.com/carlosapgomes/eqmd-sub007/pkg/validator"
)

func main() {
	log.Logger = logger.New(nil)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	if err := validator.RegisterCustomValidations(); err != nil {
		log.Fatal().Err(err).Msg("failed to register validations")
	}

	appMetrics := metrics.NewMetrics("eqmd", "authz")

	// Permission cache: shared Redis when configured, process-local
	// otherwise.
	cacheStore, closeStore, err := newCacheStore(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize permission cache store")
	}
	if closeStore != nil {
		defer closeStore()
	}
	cacheLogger := log.With().Str("component", "permcache").Logger()
	permCache := permcache.New(cacheStore, cfg.Authz.CacheTTL(), &cacheLogger)

	// Decision engine.
	checker := authz.NewChecker(authz.Config{
		EditWindow:   cfg.Authz.EditWindow(),
		DeleteWindow: cfg.Authz.DeleteWindow(),
	})
	cachedChecker := authz.NewCachedChecker(checker, permCache, appMetrics)

	// Repositories.
	userRepo := postgres.NewUserRepository(db)
	patientRepo := postgres.NewPatientRepository(db)
	eventRepo := postgres.NewEventRepository(db)

	// Services.
	auditor := auditService.NewService(log.With().Str("component", "audit").Logger())
	loaderLogger := log.With().Str("component", "prefetch").Logger()
	loader := prefetch.NewLoader(userRepo, appMetrics, &loaderLogger)

	hasher := security.NewBcryptHasher(12)
	jwtSvc := auth.NewJWTService(cfg.JWT.Secret, time.Duration(cfg.JWT.ExpiryHours)*time.Hour)

	authSvc := authService.NewService(userRepo, hasher, jwtSvc)
	userSvc := userService.NewService(userRepo, hasher, cachedChecker)
	patientSvc := patientService.NewService(patientRepo, cachedChecker, auditor)
	eventSvc := eventService.NewService(eventRepo, cachedChecker, loader, auditor)
	reportLogger := log.With().Str("component", "report").Logger()
	reportSvc := reportService.NewService(userRepo, &reportLogger)

	// Middleware and handlers.
	authMiddleware := middleware.NewAuthMiddleware(jwtSvc, userRepo)
	guards := middleware.NewAuthzMiddleware(cachedChecker, patientRepo, eventRepo, auditor)

	h := handler.NewHandler()
	r := router.NewRouter(
		authMiddleware,
		authHandler.NewHandler(authSvc),
		h,
		router.RouterConfig{
			RateLimitRPS:   cfg.Server.RateLimitRPS,
			RateLimitBurst: cfg.Server.RateLimitBurst,
			MetricsPrefix:  "eqmd",
		},
		patientHandler.NewHandler(patientSvc, guards),
		eventHandler.NewHandler(eventSvc, guards),
		userHandler.NewHandler(userSvc, guards),
		reportHandler.NewHandler(reportSvc, guards),
	)
	r.Setup()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  time.Duration(cfg.Server.TimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.TimeoutSeconds) * time.Second,
	}

	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}
}

func newCacheStore(cfg *config.Config) (permcache.Store, func() error, error) {
	if cfg.Authz.CacheBackend == "redis" && cfg.Redis.URL != "" {
		store, err := permcache.NewRedisStore(permcache.RedisConfig{
			URL:          cfg.Redis.URL,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
		})
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil
	}
	return permcache.NewMemoryStore(10 * time.Minute), nil, nil
}
