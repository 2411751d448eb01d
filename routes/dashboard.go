package routes

import (
	"net/http"
	"time"

	"fdv-chatbot-platform/models"

	"github.com/gin-gonic/gin"
)

func SetupDashboardRoutes(router gin.IRouter) {
	dashboard := func(c *gin.Context) {
		c.JSON(http.StatusOK, models.DefaultFDVDashboard())
	}
	router.GET("/fdv-dashboard", dashboard)
	router.GET("/fdv-dashboard/", dashboard)
}

// SetupHealthRoutes registers liveness and, when metrics is non-nil, the
// Prometheus scrape endpoint.
func SetupHealthRoutes(router gin.IRouter, metrics http.Handler) {
	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "API running"})
	})
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "timestamp": time.Now()})
	})
	if metrics != nil {
		router.GET("/metrics", gin.WrapH(metrics))
	}
}
