package http

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"pinmap/internal/app"
	"pinmap/internal/bootstrap"
	"pinmap/internal/transport/http/handler"
	"pinmap/internal/transport/http/middleware"
)

type routerOptions struct {
	ginMode            string
	jwtSecret          string
	requirePinToken    bool
	corsAllowedOrigins []string
}

func NewRouter(a *bootstrap.App) *gin.Engine {
	cfg := a.Config
	health := handler.NewHealthHandler(cfg.App.Name, cfg.App.Env, a.StartedAt, a.HealthChecks())
	return newRouter(routerOptions{
		ginMode:            cfg.App.GinMode,
		jwtSecret:          cfg.Auth.JWTSecret,
		requirePinToken:    cfg.Auth.RequirePinToken,
		corsAllowedOrigins: cfg.App.CORSAllowedOrigins,
	}, a.AuthService, a.PinService, health)
}

func newRouter(opts routerOptions, authService *app.AuthService, pinService *app.PinService, health *handler.HealthHandler) *gin.Engine {
	gin.SetMode(opts.ginMode)
	handler.UseJSONFieldNames()
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery(), corsMiddleware(opts.corsAllowedOrigins))

	if health != nil {
		router.GET("/healthz", health.Check)
	}

	authHandler := handler.NewAuthHandler(authService)
	pinHandler := handler.NewPinHandler(pinService)

	api := router.Group("/api")

	users := api.Group("/users")
	users.POST("/register", authHandler.Register)
	users.POST("/login", authHandler.Login)
	users.GET("/me", middleware.AuthJWT(opts.jwtSecret), authHandler.Me)

	pinAuth := middleware.OptionalJWT(opts.jwtSecret)
	if opts.requirePinToken {
		pinAuth = middleware.AuthJWT(opts.jwtSecret)
	}
	pins := api.Group("/pins")
	pins.GET("", pinHandler.List)
	pins.POST("", pinAuth, pinHandler.Create)

	return router
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	cfg := cors.DefaultConfig()
	cfg.AllowHeaders = append(cfg.AllowHeaders, "Authorization")
	cfg.MaxAge = 12 * time.Hour
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cors.New(cfg)
}
