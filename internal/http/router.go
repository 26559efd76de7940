package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/wshinigamic/wtg-backend/internal/http/handlers"
	httpMW "github.com/wshinigamic/wtg-backend/internal/http/middleware"
	"github.com/wshinigamic/wtg-backend/internal/observability"
	"github.com/wshinigamic/wtg-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log         *logger.Logger
	ServiceName string
	CORSOrigins []string
	Metrics     *observability.Metrics

	AuthMiddleware *httpMW.AuthMiddleware
	Idempotency    gin.HandlerFunc

	PreferenceHandler *httpH.PreferenceHandler
	FeedHandler       *httpH.FeedHandler
	HealthHandler     *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	if cfg.Log != nil {
		r.Use(httpMW.RequestLogger(cfg.Log))
	}
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.CORSOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	api := r.Group("/api")
	if cfg.AuthMiddleware != nil {
		api.Use(cfg.AuthMiddleware.Identify())
	}

	// Preference profiles (public)
	if cfg.PreferenceHandler != nil {
		api.POST("/preferences/anonymous", cfg.PreferenceHandler.CreateAnonymous)
	}

	identified := api.Group("/")
	{
		if cfg.AuthMiddleware != nil {
			identified.Use(cfg.AuthMiddleware.RequireIdentity())
		}

		if cfg.PreferenceHandler != nil {
			writes := identified.Group("/")
			if cfg.Idempotency != nil {
				writes.Use(cfg.Idempotency)
			}
			writes.POST("/preferences/bulk-update", cfg.PreferenceHandler.BulkUpdate)
			writes.POST("/preferences/wishlist", cfg.PreferenceHandler.AddWishlist)

			identified.DELETE("/preferences", cfg.PreferenceHandler.Delete)
			identified.GET("/preferences/dislikes", cfg.PreferenceHandler.ListDislikes)
			identified.GET("/preferences/dislikes/:id", cfg.PreferenceHandler.GetDislike)
			identified.GET("/preferences/wishlist", cfg.PreferenceHandler.ListWishlist)
			identified.DELETE("/preferences/wishlist/:variant_id", cfg.PreferenceHandler.RemoveWishlist)
		}

		// Feed
		if cfg.FeedHandler != nil {
			identified.GET("/products/by-score", cfg.FeedHandler.ProductsByScore)
			identified.GET("/products/:id/colors", cfg.FeedHandler.ProductColors)
		}
	}

	users := api.Group("/")
	{
		if cfg.AuthMiddleware != nil {
			users.Use(cfg.AuthMiddleware.RequireUser())
		}
		if cfg.PreferenceHandler != nil {
			users.POST("/preferences/link", cfg.PreferenceHandler.Link)
		}
	}

	return r
}
