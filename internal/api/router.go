package api

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/ufoundit-dev/ufoundit/internal/app"
	"github.com/ufoundit-dev/ufoundit/internal/auth"
	"github.com/ufoundit-dev/ufoundit/internal/handlers"
	"github.com/ufoundit-dev/ufoundit/internal/middleware"
	"github.com/ufoundit-dev/ufoundit/internal/realtime"
	"github.com/ufoundit-dev/ufoundit/internal/services"
)

// Dependencies bundles everything the router needs.
type Dependencies struct {
	Config *app.Config
	DB     *gorm.DB
	JWT    *auth.JWTService
	Hub    *realtime.Hub

	Users         *services.UserService
	Items         *services.ItemService
	Messages      *services.MessageService
	Notifications *services.NotificationService
	Custodians    *services.CustodianService
	Requests      *services.RequestService
}

// NewRouter builds the HTTP routing tree.
func NewRouter(deps Dependencies) *gin.Engine {
	router := gin.New()
	router.Use(
		middleware.Recovery(),
		middleware.RequestLogger(),
		middleware.Metrics(),
		middleware.CORS(),
		middleware.SecurityHeaders(),
	)
	router.NoRoute(middleware.NotFoundHandler())

	authHandler := handlers.NewAuthHandler(deps.Users)
	profileHandler := handlers.NewProfileHandler(deps.Users)
	itemHandler := handlers.NewItemHandler(deps.Items)
	messageHandler := handlers.NewMessageHandler(deps.Messages, deps.Notifications)
	custodianHandler := handlers.NewCustodianHandler(deps.Custodians, deps.Requests)
	adminHandler := handlers.NewAdminHandler(deps.Users, deps.Items, deps.Custodians, deps.Requests)
	realtimeHandler := handlers.NewRealtimeHandler(deps.Hub)
	healthHandler := handlers.NewHealthHandler(deps.DB, deps.Hub)

	requireAuth := middleware.RequireAuth(deps.JWT)
	requireAdmin := middleware.RequireAdmin()

	router.GET("/health", healthHandler.Check)
	if deps.Config == nil || deps.Config.Monitoring.Prometheus.Enabled {
		endpoint := "/metrics"
		if deps.Config != nil && deps.Config.Monitoring.Prometheus.Endpoint != "" {
			endpoint = deps.Config.Monitoring.Prometheus.Endpoint
		}
		router.GET(endpoint, gin.WrapH(promhttp.Handler()))
	}

	router.GET("/ws", requireAuth, realtimeHandler.Connect)

	api := router.Group("/api")
	{
		api.POST("/auth/register", authHandler.Register)
		api.POST("/auth/login", authHandler.Login)

		api.GET("/items", itemHandler.List)
		api.GET("/search", itemHandler.List)
		api.GET("/items/:id", itemHandler.Get)
		api.GET("/custodians", custodianHandler.List)
		api.GET("/custodians/:id", custodianHandler.Get)
		api.GET("/profile/:id", profileHandler.Get)
		api.GET("/admin/admin-user", profileHandler.AdminContact)

		authed := api.Group("", requireAuth)
		{
			authed.GET("/profile/me", profileHandler.Me)
			authed.PUT("/profile/me", profileHandler.Update)

			authed.POST("/items", itemHandler.Create)
			authed.PUT("/items/:id", itemHandler.Update)
			authed.DELETE("/items/:id", itemHandler.Delete)
			authed.GET("/items/user/my-items", itemHandler.Mine)

			authed.POST("/messages", messageHandler.Send)
			authed.GET("/messages/conversations", messageHandler.Conversations)
			authed.GET("/messages/conversation/:userId", messageHandler.Thread)
			authed.GET("/messages/notifications", messageHandler.Notifications)
			authed.PUT("/messages/notifications/:id/read", messageHandler.MarkNotificationRead)

			authed.POST("/custodians/dropoff", custodianHandler.CreateDropoff)
			authed.POST("/custodians/pickup", custodianHandler.CreatePickup)
			authed.GET("/custodians/dropoff/my-requests", custodianHandler.MyDropoffs)
			authed.GET("/custodians/pickup/my-requests", custodianHandler.MyPickups)

			admin := authed.Group("", requireAdmin)
			{
				admin.GET("/admin/users", adminHandler.Users)
				admin.DELETE("/admin/users/:id", adminHandler.DeleteUser)
				admin.GET("/admin/items", adminHandler.Items)
				admin.DELETE("/admin/items/:id", adminHandler.PurgeItem)
				admin.GET("/admin/stats", adminHandler.Stats)

				admin.POST("/custodians", adminHandler.CreateCustodian)
				admin.PUT("/custodians/:id", adminHandler.UpdateCustodian)
				admin.DELETE("/custodians/:id", adminHandler.DeleteCustodian)

				admin.GET("/custodians/admin/dropoff", adminHandler.Dropoffs)
				admin.GET("/custodians/admin/pickup", adminHandler.Pickups)
				admin.PUT("/custodians/admin/dropoff/:id", custodianHandler.UpdateDropoffStatus)
				admin.PUT("/custodians/admin/pickup/:id", custodianHandler.UpdatePickupStatus)
			}
		}
	}

	return router
}
