package routes

import (
	"log/slog"
	"net/http"

	"contact-intake-api/controllers"
	"contact-intake-api/middleware"

	"github.com/gin-gonic/gin"
)

// Dependencies is everything the route table needs.
type Dependencies struct {
	Logger         *slog.Logger
	Production     bool
	AllowedOrigins []string
	TrustedProxies []string
	RateLimiter    *middleware.RateLimiter
	MaxBodyBytes   int64
	Verifier       middleware.TokenVerifier
	Auth           *controllers.AuthController
	Submissions    *controllers.SubmissionController
}

// NewRouter builds the engine with the global middleware chain and routes.
func NewRouter(deps Dependencies) *gin.Engine {
	router := gin.New()
	// Without trusted proxies ClientIP is the socket address, so rate limit
	// keys cannot be chosen by the client through X-Forwarded-For.
	if err := router.SetTrustedProxies(deps.TrustedProxies); err != nil {
		deps.Logger.Warn("invalid trusted proxies, ignoring forwarded headers", "error", err)
		_ = router.SetTrustedProxies(nil)
	}
	router.Use(
		middleware.Recovery(deps.Logger),
		middleware.RequestID(),
		middleware.RequestLogger(deps.Logger),
		middleware.SecurityHeaders(),
		middleware.CORSMiddleware(deps.Production, deps.AllowedOrigins),
	)
	SetupRoutes(router, deps)
	return router
}

func SetupRoutes(router *gin.Engine, deps Dependencies) {
	api := router.Group("/api")
	api.Use(deps.RateLimiter.Middleware(), middleware.BodyLimit(deps.MaxBodyBytes))
	{
		// Health check
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"success": true,
				"status":  "ok",
			})
		})

		// Public intake
		api.POST("/submit-form", deps.Submissions.SubmitForm)

		// Authentication
		api.POST("/admin/login", deps.Auth.AdminLogin)
		api.POST("/mobile/login", deps.Auth.MobileLogin)

		// Protected routes (require authentication)
		admin := api.Group("/admin/submissions")
		admin.Use(middleware.AuthMiddleware(deps.Verifier))
		{
			admin.GET("", deps.Submissions.ListSubmissions)
			admin.GET("/:id", deps.Submissions.GetSubmission)
			admin.PUT("/:id/complete", deps.Submissions.CompleteSubmission)
			admin.DELETE("/:id", deps.Submissions.DeleteSubmission)
		}
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Ruta no encontrada"})
	})
}
