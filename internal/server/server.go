package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/api"
	"github.com/pageza/foodgram/backend/internal/auth"
	"github.com/pageza/foodgram/backend/internal/cache"
	"github.com/pageza/foodgram/backend/internal/database"
	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/repository"
	"github.com/pageza/foodgram/backend/internal/router"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/storage"
)

const tagCacheTTL = 10 * time.Minute

// Server represents the HTTP server
type Server struct {
	router *gin.Engine
	http   *http.Server
	db     *gorm.DB
	redis  *redis.Client
	log    *slog.Logger
}

// New wires repositories, services and handlers into a server. rdb may be
// nil, which disables the tag cache and rate limiting.
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, images storage.ImageStore, log *slog.Logger) (*Server, error) {
	if err := api.RegisterValidators(); err != nil {
		return nil, err
	}

	userRepo := repository.NewUserRepository(db)
	tagRepo := repository.NewTagRepository(db)
	ingredientRepo := repository.NewIngredientRepository(db)
	recipeRepo := repository.NewRecipeRepository(db)
	favoriteRepo := repository.NewMarkerRepository(db, models.FavoriteMarker)
	cartRepo := repository.NewMarkerRepository(db, models.ShoppingCartMarker)
	subscriptionRepo := repository.NewSubscriptionRepository(db)
	projector := service.NewProjector(recipeRepo, favoriteRepo, cartRepo, subscriptionRepo)

	var tagCache service.TagCache
	var createLimit gin.HandlerFunc
	if rdb != nil {
		tagCache = cache.NewTagCache(rdb, tagCacheTTL)
		if cfg.RecipeCreateRateLimit > 0 {
			createLimit = middleware.NewRecipeCreationRateLimiter(rdb, cfg.RecipeCreateRateLimit, log).RateLimitMiddleware()
		}
	}

	userService := service.NewUserService(userRepo, projector, cfg.ForbiddenUsernameList(), log)
	subscriptionService := service.NewSubscriptionService(subscriptionRepo, userRepo, projector, log)
	catalogService := service.NewCatalogService(tagRepo, ingredientRepo, tagCache, log)
	recipeService := service.NewRecipeService(recipeRepo, tagRepo, ingredientRepo, images, projector, log)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	engine := router.SetupRouter(router.Options{
		Log:            log,
		AllowedOrigins: cfg.AllowedOriginList(),
		Tokens:         auth.NewTokenService(cfg.JWTSecret),
		Users:          userRepo,
		Metrics:        middleware.NewMetrics(registry),
		Handlers: []router.RouteRegistrar{
			api.NewUserHandler(userService, subscriptionService, cfg.PageSize),
			api.NewCatalogHandler(catalogService),
			api.NewRecipeHandler(
				recipeService,
				service.NewMarkerService(favoriteRepo, recipeRepo, log),
				service.NewMarkerService(cartRepo, recipeRepo, log),
				service.NewShoppingListService(ingredientRepo),
				createLimit,
				cfg.PageSize,
			),
		},
	})

	s := &Server{router: engine, db: db, redis: rdb, log: log}
	engine.GET("/health", s.health)
	engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))
	if local, ok := images.(*storage.LocalStore); ok {
		engine.Static(strings.TrimSuffix(cfg.MediaURL, "/"), local.Root())
	}

	s.http = &http.Server{
		Addr:              net.JoinHostPort(cfg.ServerHost, cfg.ServerPort),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s, nil
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until Shutdown is called.
func (s *Server) Start() error {
	s.log.Info("server listening", "addr", s.http.Addr)
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func (s *Server) health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := gin.H{"status": "healthy", "database": "ok"}
	code := http.StatusOK
	if err := database.HealthCheck(ctx, s.db); err != nil {
		s.log.WarnContext(ctx, "database health check failed", "error", err)
		status["status"], status["database"] = "unhealthy", "unavailable"
		code = http.StatusServiceUnavailable
	}
	if s.redis != nil {
		status["redis"] = "ok"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			s.log.WarnContext(ctx, "redis health check failed", "error", err)
			status["redis"] = "unavailable"
		}
	}
	c.JSON(code, status)
}
