package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jakeh134/motionflow/config"
	"github.com/jakeh134/motionflow/middleware"
	"github.com/jakeh134/motionflow/service"
)

// Deps are the services the HTTP API is built on.
type Deps struct {
	Config      *config.Config
	Motions     *service.MotionService
	Dashboards  *service.DashboardService
	Intake      *service.IntakeService
	MotionStore *service.MotionStore
	Batches     *service.BatchStore
	Revocations service.RevocationStore
}

// NewRouter wires middleware and routes.
func NewRouter(d Deps) *gin.Engine {
	authHandler := NewAuthHandler(d.Config, d.Revocations, d.Dashboards)
	motionHandler := NewMotionHandler(d.Motions, d.Dashboards)
	selectionHandler := NewSelectionHandler(d.Dashboards)
	batchHandler := NewBatchHandler(d.Batches, d.MotionStore)
	uploadHandler := NewUploadHandler(d.Intake, &d.Config.Intake)
	referenceHandler := NewReferenceHandler(d.Motions.Validator().Schemas)

	router := gin.New() // Use New() instead of Default() to avoid default middleware

	router.Use(middleware.RequestID())              // Request ID for tracing
	router.Use(middleware.Recovery())               // Panic recovery
	router.Use(middleware.RequestLogger("/health")) // Access logging
	router.Use(corsMiddleware())
	router.Use(noCache())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().Format(time.RFC3339),
		})
	})

	rate := d.Config.Server.RateLimit

	// Public routes, limited per IP
	api := router.Group("/api")
	api.POST("/auth/login", middleware.RateLimit(rate, time.Minute), authHandler.Login)

	// Protected routes, limited per clerk
	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware(&d.Config.Auth, d.Revocations))
	protected.Use(middleware.RateLimit(rate, time.Minute))
	{
		protected.POST("/auth/logout", authHandler.Logout)
		protected.GET("/auth/me", authHandler.GetCurrentUser)

		protected.GET("/reference", referenceHandler.Get)

		protected.GET("/motions", motionHandler.List)
		protected.GET("/motions/export", motionHandler.Export)
		protected.GET("/motions/:id", motionHandler.Get)
		protected.GET("/motions/:id/document", motionHandler.Document)
		protected.GET("/motions/:id/fields", motionHandler.Fields)
		protected.PATCH("/motions/:id/fields", motionHandler.SaveFields)
		protected.POST("/motions/:id/accept", motionHandler.Decide(service.DocAccept))
		protected.POST("/motions/:id/reject", motionHandler.Decide(service.DocReject))
		protected.POST("/motions/:id/fix", motionHandler.Decide(service.DocRequestFix))
		protected.POST("/motions/:id/manual-review", motionHandler.Decide(service.DocManualReview))

		protected.GET("/selection", selectionHandler.Get)
		protected.POST("/selection/toggle", selectionHandler.Toggle)
		protected.POST("/selection/toggle-all", selectionHandler.ToggleAll)
		protected.DELETE("/selection", selectionHandler.Clear)
		protected.POST("/selection/accept", selectionHandler.Accept)
		protected.POST("/selection/reject", selectionHandler.Reject)

		protected.GET("/batches", batchHandler.List)
		protected.GET("/batches/:id", batchHandler.Get)

		protected.POST("/uploads", uploadHandler.Create)
		protected.GET("/uploads/:id", uploadHandler.Get)
		protected.GET("/uploads/:id/events", uploadHandler.Events)
		protected.DELETE("/uploads/:id", uploadHandler.Cancel)
		protected.GET("/uploads/:id/current", uploadHandler.Current)
		protected.POST("/uploads/:id/next", uploadHandler.Next)
		protected.POST("/uploads/:id/prev", uploadHandler.Prev)
		protected.POST("/uploads/:id/finish", uploadHandler.Finish)
		protected.GET("/uploads/:id/documents/:docId/url", uploadHandler.Document)
		protected.POST("/uploads/:id/documents/:docId/:action", uploadHandler.Act)
	}

	return router
}

// corsMiddleware handles CORS headers
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, PATCH, DELETE")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "X-Request-ID, Content-Disposition, X-RateLimit-Limit, X-RateLimit-Remaining, Retry-After")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

// noCache disables caching of API responses
func noCache() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Cache-Control", "no-cache, no-store, must-revalidate")
		c.Header("Pragma", "no-cache")
		c.Header("Expires", "0")
		c.Next()
	}
}
