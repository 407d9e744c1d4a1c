package routes

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/campus-requests-api/config"
	"github.com/kendall-kelly/campus-requests-api/controllers"
	"github.com/kendall-kelly/campus-requests-api/middleware"
	"github.com/kendall-kelly/campus-requests-api/services"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Deps is everything the router needs
type Deps struct {
	Config     *config.Config
	Logger     *zap.Logger
	Controller *controllers.Controller
	// Authenticate replaces the Auth0 JWT middleware when set (tests)
	Authenticate gin.HandlerFunc
}

// Setup builds the API router
func Setup(d Deps) *gin.Engine {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	ctl := d.Controller

	router := gin.New()
	router.Use(
		middleware.RequestID(),
		middleware.RequestLogger(logger),
		gin.Recovery(),
		cors.New(corsConfig(d.Config)),
		middleware.OriginChannel(),
	)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authenticate := d.Authenticate
	if authenticate == nil {
		authenticate = middleware.EnsureValidToken(d.Config, logger)
	}

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", ctl.HealthCheck)
		v1.GET("/database/status", ctl.DatabaseStatus)

		authed := v1.Group("", authenticate)

		// Profile routes work before the user record exists
		authed.POST("/users", ctl.CreateUser)
		authed.GET("/users/me", ctl.GetMyProfile)
		authed.PUT("/users/me", ctl.UpdateMyProfile)

		member := authed.Group("", middleware.ResolveActor(ctl.Users))
		{
			member.GET("/requests", ctl.ListRequestTypes)

			// channel and role rules are applied by the request service
			own := member.Group("/student-requests")
			own.GET("", ctl.ListMyRequests)
			own.POST("", ctl.SubmitRequest)
			own.DELETE("/:id", ctl.DeleteMyRequest)

			member.GET("/receipts/:filename", ctl.GetReceipt)

			member.GET("/notifications", ctl.ListNotifications)
			member.GET("/notifications/unread-count", ctl.UnreadNotificationCount)
			member.POST("/notifications/:id/read", ctl.MarkNotificationRead)
		}

		admin := member.Group("/admin")
		{
			review := admin.Group("/student-requests", middleware.RequireCapability(services.CapabilityReviewRequests))
			review.GET("", ctl.ListRequests)
			review.GET("/export", ctl.ExportRequests)
			review.GET("/pending/:id", ctl.GetPendingRequest)
			review.PATCH("/:id/accept", ctl.AcceptRequest)
			review.PATCH("/:id/reject", ctl.RejectRequest)

			admin.GET("/dashboard", middleware.RequireCapability(services.CapabilityViewDashboard), ctl.GetDashboard)

			catalog := admin.Group("/request-types", middleware.RequireCapability(services.CapabilityManageCatalog))
			catalog.GET("", ctl.AdminListRequestTypes)
			catalog.GET("/:id", ctl.GetRequestType)
			catalog.POST("", ctl.CreateRequestType)
			catalog.PUT("/:id", ctl.UpdateRequestType)
			catalog.DELETE("/:id", ctl.DeleteRequestType)

			admin.PATCH("/users/:id/role", middleware.RequireCapability(services.CapabilityManageUsers), ctl.ChangeUserRole)
		}
	}

	return router
}

func corsConfig(cfg *config.Config) cors.Config {
	c := cors.DefaultConfig()
	c.AllowOrigins = cfg.AllowedOrigins
	if len(c.AllowOrigins) == 0 {
		c.AllowAllOrigins = true
	}
	c.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	c.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", middleware.OriginHeader}
	c.ExposeHeaders = []string{"Content-Disposition", "X-Request-ID"}
	c.MaxAge = 12 * time.Hour
	return c
}
