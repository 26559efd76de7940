package app

import (
	"github.com/gin-gonic/gin"

	"github.com/wshinigamic/wtg-backend/internal/http"
	httpH "github.com/wshinigamic/wtg-backend/internal/http/handlers"
	httpMW "github.com/wshinigamic/wtg-backend/internal/http/middleware"
	"github.com/wshinigamic/wtg-backend/internal/observability"
	"github.com/wshinigamic/wtg-backend/internal/platform/logger"
)

type Middleware struct {
	Auth        *httpMW.AuthMiddleware
	Idempotency gin.HandlerFunc
}

type Handlers struct {
	Health     *httpH.HealthHandler
	Preference *httpH.PreferenceHandler
	Feed       *httpH.FeedHandler
}

func wireHandlers(log *logger.Logger, cfg Config, services Services, ping httpH.Pinger) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:     httpH.NewHealthHandler(ping),
		Preference: httpH.NewPreferenceHandler(log, services.Preference),
		Feed:       httpH.NewFeedHandler(log, services.Preference, services.Feed, cfg.FeedMaxPageSize),
	}
}

func wireMiddleware(log *logger.Logger, cfg Config, clients Clients, metrics *observability.Metrics) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Auth:        httpMW.NewAuthMiddleware(log, cfg.JWTSecretKey),
		Idempotency: httpMW.Idempotency(clients.Idempotency, cfg.IdempotencyTTL, metrics, log),
	}
}

func wireServer(log *logger.Logger, cfg Config, serviceName string, handlers Handlers, middleware Middleware, metrics *observability.Metrics) *http.Server {
	return http.NewServer(http.RouterConfig{
		Log:               log,
		ServiceName:       serviceName,
		CORSOrigins:       cfg.CORSOrigins,
		Metrics:           metrics,
		AuthMiddleware:    middleware.Auth,
		Idempotency:       middleware.Idempotency,
		PreferenceHandler: handlers.Preference,
		FeedHandler:       handlers.Feed,
		HealthHandler:     handlers.Health,
	})
}
