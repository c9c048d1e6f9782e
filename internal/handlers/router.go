package handlers

import (
	"net/http"
	"time"

	"real-estate-marketplace/internal/logger"
	"real-estate-marketplace/internal/ratelimit"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouterConfig collects the handlers and middleware the API is built from
type RouterConfig struct {
	Properties     *PropertyHandler
	SavedSearches  *SavedSearchHandler
	Admin          *AdminHandler
	RateLimiter    *ratelimit.RateLimiter
	Logger         logger.Logger
	AllowedOrigins []string
	LogRequests    bool
}

// NewRouter registers every route of the API
func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.LogRequests {
		r.Use(RequestLogger(cfg.Logger))
	}

	if len(cfg.AllowedOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE"},
			AllowHeaders:     []string{"Origin", "Content-Type", requestIDHeader},
			ExposeHeaders:    []string{requestIDHeader},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	r.GET("/health", healthCheck)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	if cfg.RateLimiter != nil {
		api.Use(RateLimit(cfg.RateLimiter))
		api.GET("/ratelimit/stats", RateLimitStats(cfg.RateLimiter))
	}

	properties := api.Group("/properties")
	{
		properties.GET("", cfg.Properties.List)
		properties.POST("", cfg.Properties.Create)
		properties.POST("/filters", cfg.Properties.DescribeFilters)
		properties.GET("/:id", cfg.Properties.Get)
		properties.PATCH("/:id/status", cfg.Properties.UpdateStatus)
		properties.PATCH("/:id/price", cfg.Properties.UpdatePrice)
		properties.GET("/:id/history", cfg.Properties.History)
	}

	saved := api.Group("/saved-searches")
	{
		saved.GET("", cfg.SavedSearches.List)
		saved.POST("", cfg.SavedSearches.Create)
		saved.GET("/:id", cfg.SavedSearches.Get)
		saved.GET("/:id/run", cfg.SavedSearches.Run)
		saved.PATCH("/:id/alerts", cfg.SavedSearches.SetAlerts)
		saved.DELETE("/:id", cfg.SavedSearches.Delete)
	}

	// Admin API routes (requires authentication in production)
	admin := api.Group("/admin")
	{
		admin.GET("/stats", cfg.Admin.GetStats)
		admin.GET("/price-distribution", cfg.Admin.GetPriceDistribution)
		admin.GET("/changes/recent", cfg.Admin.GetRecentChanges)
		admin.POST("/alerts/run", cfg.Admin.RunAlerts)
	}

	return r
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now(),
	})
}
