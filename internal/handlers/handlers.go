package handlers

import (
	"database/sql"
	"net/http"

	"wardrobe/internal/apperr"
	"wardrobe/internal/config"
	"wardrobe/internal/database"
	"wardrobe/internal/logger"
	"wardrobe/internal/middleware"
	"wardrobe/internal/recommend"
	"wardrobe/internal/storage"
	"wardrobe/internal/wardrobe"

	"github.com/gin-gonic/gin"
)

// Services bundles the collaborators the handlers dispatch to. Handlers
// never implement business rules themselves; each one calls a store or
// service operation and translates the result.
type Services struct {
	Wardrobe    *wardrobe.Store
	Images      *storage.ImageStore
	Email       database.ResetSender
	Recommender *recommend.Runner
}

func SetupRoutes(r *gin.Engine, db *sql.DB, cfg *config.Config, svc *Services) {
	r.Use(middleware.LogRequests())
	r.Use(middleware.SecurityHeaders(cfg))
	r.Use(middleware.AddDBContext(db))
	r.Use(middleware.AddConfigContext(cfg))
	r.Use(addServicesContext(svc))
	r.Use(middleware.TrimSpaces())

	r.GET("/", handleHome)
	r.POST("/register", middleware.AuthRateLimit(cfg), handleRegister)
	r.POST("/login", middleware.AuthRateLimit(cfg), handleLogin)
	r.POST("/logout", middleware.AuthRequired(db, cfg), handleLogout)
	r.POST("/password/forgot", middleware.AuthRateLimit(cfg), handleForgotPassword)
	r.POST("/password/reset", middleware.AuthRateLimit(cfg), handleResetPassword)

	// Reading a wardrobe needs no session, matching the public surface.
	r.GET("/clothing/:userId", handleGetWardrobe)

	protected := r.Group("/")
	protected.Use(middleware.AuthRequired(db, cfg))
	protected.Use(middleware.CSRF(cfg))
	{
		protected.GET("/profile/:userId", handleProfile)
		protected.POST("/clothing/add", handleAddClothing)
		protected.PUT("/clothing/items/:id", handleUpdateClothing)
		protected.DELETE("/clothing/items/:id", handleDeleteClothing)
		protected.GET("/clothing/images/:id", handleClothingImage)
		protected.GET("/clothing/recommendation/:userId", handleRecommendation)

		protected.GET("/api/csrf-token", handleCSRFToken)
	}

	r.NoRoute(func(c *gin.Context) {
		c.Redirect(http.StatusFound, "/")
	})
}

func handleHome(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Wardrobe API"})
}

func addServicesContext(svc *Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("services", svc)
		c.Next()
	}
}

func getServices(c *gin.Context) *Services {
	return c.MustGet("services").(*Services)
}

// respondError translates a store-layer failure into its status code and
// user-facing message. Internal detail stays in the server log.
func respondError(c *gin.Context, err error) {
	ae := apperr.From(err)
	if ae.Kind == apperr.Server {
		logger.Error("Request failed", "path", c.FullPath(), "error", err)
	}
	c.JSON(ae.Status(), gin.H{"error": ae.Message})
}

func handleCSRFToken(c *gin.Context) {
	userID := c.MustGet("user_id").(int)
	db := c.MustGet("db").(*sql.DB)

	token, err := database.CreateCSRFToken(db, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate CSRF token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token.Token})
}
