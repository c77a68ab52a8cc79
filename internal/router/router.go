package router

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/pageza/foodgram/backend/internal/middleware"
)

// RouteRegistrar is implemented by every API handler.
type RouteRegistrar interface {
	RegisterRoutes(router *gin.RouterGroup)
}

// Options carries what the router needs to assemble the middleware chain.
type Options struct {
	Log            *slog.Logger
	AllowedOrigins []string
	Tokens         middleware.TokenValidator
	Users          middleware.UserLoader
	Metrics        *middleware.Metrics
	Handlers       []RouteRegistrar
}

// SetupRouter configures the application routes under /api.
func SetupRouter(opts Options) *gin.Engine {
	router := gin.New()
	router.Use(middleware.RequestLogger(opts.Log))
	if opts.Metrics != nil {
		router.Use(opts.Metrics.Middleware())
	}
	router.Use(
		middleware.ErrorHandler(opts.Log),
		middleware.CORS(opts.AllowedOrigins),
	)

	api := router.Group("/api")
	api.Use(middleware.Authenticate(opts.Tokens, opts.Users))
	for _, h := range opts.Handlers {
		h.RegisterRoutes(api)
	}

	return router
}
