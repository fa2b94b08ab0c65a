package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"docchooser/internal/chooser"
	"docchooser/internal/documents"
	"docchooser/internal/services/health"
	"docchooser/internal/shared/config"
	"docchooser/internal/shared/metrics"
	"docchooser/internal/shared/server/middleware"
	"docchooser/internal/shared/server/respond"
)

// RouterDeps bundles handlers needed to build the router.
type RouterDeps struct {
	Config          config.Config
	Metrics         *metrics.Metrics
	Health          *health.Service
	DocumentHandler *documents.Handler
	ChooserHandler  *chooser.Handler
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	if !deps.Config.IsDevLike() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		deps.Metrics.Middleware(),
	)

	if deps.Metrics != nil {
		r.GET("/metrics", deps.Metrics.Handler())
	}

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		if deps.Health == nil {
			respond.JSON(c, http.StatusOK, gin.H{"ok": true})
			return
		}
		report := deps.Health.Status(c.Request.Context())
		status := http.StatusOK
		if !report.OK {
			status = http.StatusServiceUnavailable
		}
		respond.JSON(c, status, report)
	})

	if deps.DocumentHandler != nil {
		deps.DocumentHandler.RegisterRoutes(r.Group(prefixOr(deps.Config.DocumentsServePrefix, "/documents")))
	}

	if deps.ChooserHandler != nil {
		admin := r.Group(prefixOr(deps.Config.AdminPrefix, "/admin"))
		admin.Use(middleware.Auth(middleware.AuthConfig{Secret: deps.Config.JWTSecret, Env: deps.Config.Env}))
		deps.ChooserHandler.RegisterRoutes(admin)
	}

	r.NoRoute(func(c *gin.Context) {
		respond.Error(c, http.StatusNotFound, "not_found", "route not found", nil)
	})

	return r
}

func prefixOr(prefix, fallback string) string {
	if prefix == "" {
		return fallback
	}
	return prefix
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
