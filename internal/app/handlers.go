package app

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/ehon-backend/internal/http"
	httpH "github.com/yungbote/ehon-backend/internal/http/handlers"
	"github.com/yungbote/ehon-backend/internal/observability"
	"github.com/yungbote/ehon-backend/internal/platform/logger"
)

type Handlers struct {
	Health  *httpH.HealthHandler
	Session *httpH.SessionHandler
	Book    *httpH.BookHandler
}

func wireHandlers(log *logger.Logger, cfg Config, services Services, repos Repos, metrics *observability.Metrics) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:  httpH.NewHealthHandler(),
		Session: httpH.NewSessionHandler(log, services.Flow, metrics, cfg.MaxUploadBytes),
		Book:    httpH.NewBookHandler(log, repos.Books),
	}
}

func wireRouter(log *logger.Logger, cfg Config, handlers Handlers, metrics *observability.Metrics) *gin.Engine {
	serviceName := ""
	if cfg.OtelEnabled {
		serviceName = cfg.OtelServiceName
	}
	return http.NewRouter(http.RouterConfig{
		Log:            log,
		ServiceName:    serviceName,
		CORSOrigins:    cfg.CORSOrigins,
		Metrics:        metrics,
		HealthHandler:  handlers.Health,
		SessionHandler: handlers.Session,
		BookHandler:    handlers.Book,
	})
}
