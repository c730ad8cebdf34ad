package handlers

import (
	"net/http"

	"praytogether-backend/logger"
	"praytogether-backend/observability"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// RouterConfig carries the handlers and middleware settings for NewRouter
type RouterConfig struct {
	Auth        *AuthHandler
	Plans       *PlanHandler
	Profile     *ProfileHandler
	Files       *FileHandler
	Catalog     *CatalogHandler
	Authn       Authenticator
	Log         *logger.Logger
	CORSOrigins []string
	Tracing     bool

	// MaxUploadBytes bounds multipart bodies held in memory
	MaxUploadBytes int64
}

// NewRouter builds the HTTP routes
func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.Tracing {
		r.Use(otelgin.Middleware(observability.ServiceName))
	}
	r.Use(CORS(cfg.CORSOrigins))
	r.Use(LocaleMiddleware())
	r.Use(RequestLogger(cfg.Log))
	if cfg.MaxUploadBytes > 0 {
		r.MaxMultipartMemory = cfg.MaxUploadBytes
	}

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
		})
	})

	requireAuth := RequireAuth(cfg.Authn)
	optionalAuth := OptionalAuth(cfg.Authn)

	api := r.Group("/api")
	{
		// Catalog endpoints
		api.GET("/catalog/languages", cfg.Catalog.Languages)
		api.GET("/catalog/bible-versions", cfg.Catalog.BibleVersions)
		api.GET("/catalog/religions", cfg.Catalog.Religions)

		// Auth endpoints
		api.POST("/auth/register", cfg.Auth.Register)
		api.POST("/auth/login", cfg.Auth.Login)
		api.GET("/auth/google/login", cfg.Auth.GoogleLogin)
		api.GET("/auth/google/callback", cfg.Auth.GoogleCallback)
		api.GET("/auth/me", requireAuth, cfg.Auth.Me)

		// Plan endpoints
		api.POST("/plans", optionalAuth, cfg.Plans.CreatePlan)
		api.POST("/plans/daily-content", optionalAuth, cfg.Plans.DailyContent)
		api.GET("/plans/saved", requireAuth, cfg.Plans.ListSaved)
		api.POST("/plans/saved", requireAuth, cfg.Plans.SavePlan)
		api.DELETE("/plans/saved/:id", requireAuth, cfg.Plans.DeleteSaved)

		// Profile endpoints
		api.GET("/profile", requireAuth, cfg.Profile.GetProfile)
		api.PUT("/profile", requireAuth, cfg.Profile.UpdateProfile)
		api.POST("/profile/photo", requireAuth, cfg.Profile.UploadPhoto)

		// File endpoints
		api.GET("/files/:id", cfg.Files.GetFile)
	}

	return r
}
