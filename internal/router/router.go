// Package router wires the Gin engine.
package router

import (
	"github.com/gin-gonic/gin"

	"dochub/internal/config"
	"dochub/internal/handler"
	"dochub/internal/middleware"
	"dochub/internal/service"
)

// Setup configures the Gin engine with all routes and middleware. When the
// operator credential is unset, the API runs open for local use.
func Setup(
	cfg *config.Config,
	authSvc service.AuthService,
	authH *handler.AuthHandler,
	docH *handler.DocumentHandler,
	jobH *handler.JobHandler,
	runH *handler.RunHandler,
	healthH *handler.HealthHandler,
) *gin.Engine {
	r := gin.New()

	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS())

	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)

	v1 := r.Group("/api/v1")

	auth := v1.Group("/auth")
	auth.POST("/login", authH.Login)

	protected := v1.Group("")
	if cfg.Auth.Enabled() {
		protected.Use(middleware.AuthMiddleware(authSvc))
	}

	documents := protected.Group("/documents")
	documents.POST("/process", docH.Process)
	documents.GET("/inspect", docH.Inspect)

	protected.POST("/options/validate", docH.ValidateOptions)

	batches := protected.Group("/batches")
	batches.POST("", jobH.Start)
	batches.GET("", jobH.List)
	batches.GET("/:id", jobH.Get)
	batches.POST("/:id/cancel", jobH.Cancel)

	runs := protected.Group("/runs")
	runs.GET("", runH.List)
	runs.GET("/export", runH.Export)
	runs.GET("/:id", runH.GetByID)
	runs.DELETE("/:id", runH.Delete)

	return r
}
