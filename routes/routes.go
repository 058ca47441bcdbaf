package routes

import (
	"github.com/Govind-619/InfuseDesk/config"
	"github.com/Govind-619/InfuseDesk/controllers"
	"github.com/Govind-619/InfuseDesk/utils"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// SetupRouter initializes and returns the Gin router with all routes.
// rdb may be nil, which disables rate limiting.
func SetupRouter(cfg *config.Config, rdb *redis.Client) *gin.Engine {
	router := gin.New()

	router.Use(utils.RecoveryMiddleware())
	router.Use(utils.RequestIDMiddleware())
	router.Use(utils.LoggerMiddleware())
	router.Use(utils.CORSMiddleware(cfg.FrontendURL))
	router.Use(utils.SecurityHeadersMiddleware())

	store := cookie.NewStore([]byte(cfg.SessionSecret))
	store.Options(sessions.Options{
		MaxAge:   int(utils.TokenTTL.Seconds()),
		Path:     "/",
		Secure:   cfg.Env == "production",
		HttpOnly: true,
	})
	router.Use(sessions.Sessions(utils.SessionName, store))

	router.GET("/health", controllers.Health)

	api := router.Group("/api/v1")
	api.Use(utils.RateLimitMiddleware(cfg.RateLimit, rdb))
	{
		initAuthRoutes(api, cfg.JWTSecret)
		initStaffRoutes(api, cfg.JWTSecret)
		initAdminRoutes(api, cfg.JWTSecret)
	}

	return router
}
