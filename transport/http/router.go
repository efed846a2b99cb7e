package http

import (
	"github.com/gin-gonic/gin"
	"github.com/layer-3/walletauth/internal/metrics"
	"github.com/layer-3/walletauth/ports"
	"github.com/layer-3/walletauth/service"
	"github.com/rs/zerolog"
)

// RouterConfig holds what the router needs besides the service
type RouterConfig struct {
	Codec   ports.SessionCodec
	Cookie  CookieOptions
	Metrics *metrics.Metrics // optional
	Logger  zerolog.Logger
}

// SetupRouter sets up the Gin router
func SetupRouter(authService *service.AuthService, cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(RequestID(), RequestLogger(cfg.Logger, cfg.Metrics), Recovery(cfg.Logger))

	// Create handlers
	handlers := NewAuthHandlers(authService, cfg.Codec, cfg.Cookie, cfg.Metrics, cfg.Logger)

	// Auth routes
	auth := router.Group("/auth")
	{
		auth.GET("/nonce", handlers.Nonce)
		auth.POST("/verify", handlers.Verify)
		auth.GET("/session", handlers.Session)
	}

	// Protected API routes
	api := router.Group("/api")
	api.Use(AuthMiddleware(authService, handlers))
	{
		api.GET("/me", handlers.Me)
	}

	router.GET("/healthz", handlers.Health)
	if cfg.Metrics != nil {
		router.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	return router
}
