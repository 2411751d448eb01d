package routes

import (
	"context"
	"net/http"
	"path/filepath"

	"fdv-chatbot-platform/internal/config"
	"fdv-chatbot-platform/internal/documents"
	"fdv-chatbot-platform/internal/logger"
	"fdv-chatbot-platform/internal/queue"
	"fdv-chatbot-platform/middleware"
	"fdv-chatbot-platform/models"
	"fdv-chatbot-platform/utils"

	"github.com/gin-gonic/gin"
)

// VendorRebuilder rebuilds every index of one vendor.
type VendorRebuilder interface {
	BuildAllForVendor(ctx context.Context, vendor string) (models.RebuildReport, error)
}

// SetupAdminRoutes registers login and the document management endpoints.
// enqueuer may be nil, in which case rebuilds always run in the request.
func SetupAdminRoutes(
	router gin.IRouter,
	cfg *config.Config,
	library *documents.Library,
	rebuilder VendorRebuilder,
	enqueuer queue.Enqueuer,
) {
	admin := router.Group("/admin")

	admin.POST("/login", func(c *gin.Context) {
		if !cfg.AdminEnabled() {
			utils.RespondWithServiceUnavailable(c, "Admin access is not configured")
			return
		}

		var req models.LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithBindError(c, err)
			return
		}

		// always run bcrypt so unknown usernames take as long as bad passwords
		passwordOK := utils.CheckPassword(req.Password, cfg.AdminPasswordHash)
		if req.Username != cfg.AdminUsername || !passwordOK {
			logger.Warn("Admin login failed", "username", req.Username, "client_ip", c.ClientIP())
			utils.RespondWithUnauthorized(c, "Invalid username or password")
			return
		}

		token, expiresAt, err := utils.GenerateJWT(req.Username, utils.RoleAdmin, cfg.JWTSecret, cfg.JWTExpiry())
		if err != nil {
			respondWithServiceError(c, err)
			return
		}
		logger.Info("Admin logged in", "username", req.Username)
		c.JSON(http.StatusOK, models.LoginResponse{Token: token, ExpiresAt: expiresAt})
	})

	protected := admin.Group("")
	protected.Use(middleware.RequireAdmin(cfg.JWTSecret))

	protected.GET("/vendors", func(c *gin.Context) {
		vendors, err := library.Vendors()
		if err != nil {
			respondWithServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"vendors": vendors})
	})

	protected.POST("/vendors/:vendor/documents", uploadBodyLimit(cfg.MaxFileSize), func(c *gin.Context) {
		vendor := c.Param("vendor")
		fileHeader, err := c.FormFile("file")
		if err != nil {
			utils.RespondWithBadRequest(c, "Multipart field \"file\" is required", gin.H{"error": err.Error()})
			return
		}
		if cfg.MaxFileSize > 0 && fileHeader.Size > cfg.MaxFileSize {
			respondWithServiceError(c, documents.ErrFileTooLarge)
			return
		}

		f, err := fileHeader.Open()
		if err != nil {
			respondWithServiceError(c, err)
			return
		}
		defer f.Close()

		info, err := library.Save(vendor, filepath.Base(fileHeader.Filename), f)
		if err != nil {
			respondWithServiceError(c, err)
			return
		}
		c.JSON(http.StatusCreated, info)
	})

	protected.POST("/vendors/:vendor/rebuild", func(c *gin.Context) {
		vendor := c.Param("vendor")

		if cfg.AsyncRebuild && enqueuer != nil {
			accepted, err := queue.EnqueueRebuild(c.Request.Context(), enqueuer, vendor)
			if err != nil {
				respondWithServiceError(c, err)
				return
			}
			c.JSON(http.StatusAccepted, accepted)
			return
		}

		report, err := rebuilder.BuildAllForVendor(c.Request.Context(), vendor)
		if err != nil {
			respondWithServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, report)
	})
}

// uploadBodyLimit allows the document plus 1 MiB of multipart framing.
func uploadBodyLimit(maxFileSize int64) gin.HandlerFunc {
	if maxFileSize <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	return middleware.RequestSizeLimit(maxFileSize + 1<<20)
}
