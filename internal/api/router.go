package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"estateflow/crm/internal/api/handlers"
	"estateflow/crm/internal/api/middleware"
	"estateflow/crm/internal/auth"
	"estateflow/crm/internal/config"
	"estateflow/crm/internal/services"
	"estateflow/crm/internal/storage"
)

// SetupRouter configures and returns the main Gin engine.
func SetupRouter(cfg *config.Config, db *mongo.Database, rdb *redis.Client, imageStorage storage.IImageStorage) *gin.Engine {
	// Initialize services needed by API handlers
	userService := services.NewUserService(db)
	propertyService := services.NewPropertyService(db, cfg, rdb)
	leadService := services.NewLeadService(db)
	whatsAppService := services.NewWhatsAppService(cfg, propertyService)

	r := gin.Default()

	// Apply global middleware first (order matters)
	r.Use(middleware.CORSMiddleware(cfg.CorsOrigins))

	rateLimiter := middleware.NewRateLimiterMiddleware(cfg)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(cfg, userService)
	propertyHandler := handlers.NewPropertyHandler(cfg, propertyService, imageStorage)
	leadHandler := handlers.NewLeadHandler(leadService)
	whatsAppHandler := handlers.NewWhatsAppHandler(whatsAppService)
	statsHandler := handlers.NewStatsHandler(userService, propertyService, leadService)
	adminHandler := handlers.NewAdminHandler(userService, propertyService)

	api := r.Group("/api")
	{
		api.GET("/ping", func(c *gin.Context) {
			c.String(http.StatusOK, "pong")
		})

		// Public auth routes, rate limited since anonymous callers reach them
		authRoutes := api.Group("/auth")
		authRoutes.Use(rateLimiter.Limit())
		{
			authRoutes.POST("/register", authHandler.Register)
			authRoutes.POST("/register-admin", authHandler.RegisterAdmin)
			authRoutes.POST("/login", authHandler.Login)
		}

		// Everything below requires a valid bearer token resolved to a user
		authRequired := api.Group("/")
		authRequired.Use(middleware.AuthMiddleware(cfg.JwtSecret, userService))
		{
			authRequired.GET("/auth/me", authHandler.Me)

			authRequired.POST("/properties", middleware.RequireAction(auth.ActionCreateProperty), propertyHandler.Create)
			authRequired.POST("/properties/images", middleware.RequireAction(auth.ActionCreateProperty), propertyHandler.UploadImage)
			authRequired.GET("/properties", propertyHandler.List)
			authRequired.GET("/properties/approved", propertyHandler.ListApproved)
			authRequired.GET("/properties/:id", propertyHandler.Get)
			authRequired.POST("/properties/:id/approve", middleware.RequireAction(auth.ActionModerateProperty), propertyHandler.Approve)
			authRequired.POST("/properties/:id/reject", middleware.RequireAction(auth.ActionModerateProperty), propertyHandler.Reject)

			authRequired.POST("/leads", leadHandler.Create)
			authRequired.GET("/leads", leadHandler.List)

			authRequired.POST("/whatsapp/generate-message", whatsAppHandler.GenerateMessage)

			authRequired.GET("/stats", statsHandler.Get)

			adminRequired := authRequired.Group("/admin")
			adminRequired.Use(middleware.RequireAction(auth.ActionManageAgents))
			{
				adminRequired.GET("/agents", adminHandler.ListAgents)
				adminRequired.GET("/agents/:id/properties", adminHandler.AgentProperties)
			}
		}
	}

	return r
}
