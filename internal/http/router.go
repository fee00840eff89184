package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/ehon-backend/internal/http/handlers"
	httpMW "github.com/yungbote/ehon-backend/internal/http/middleware"
	"github.com/yungbote/ehon-backend/internal/observability"
	"github.com/yungbote/ehon-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log         *logger.Logger
	ServiceName string
	CORSOrigins []string
	// Metrics enables /metrics and request instrumentation when non-nil.
	Metrics *observability.Metrics

	HealthHandler  *httpH.HealthHandler
	SessionHandler *httpH.SessionHandler
	BookHandler    *httpH.BookHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.CORSOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapF(cfg.Metrics.WriteHTTP))
	}

	api := r.Group("/api")
	{
		// Sessions
		if cfg.SessionHandler != nil {
			api.POST("/sessions", cfg.SessionHandler.Create)
			api.GET("/sessions/:id", cfg.SessionHandler.Get)
			api.DELETE("/sessions/:id", cfg.SessionHandler.Delete)
			api.POST("/sessions/:id/events", cfg.SessionHandler.Fire)
			api.POST("/sessions/:id/image", cfg.SessionHandler.Upload)
		}

		// Books
		if cfg.BookHandler != nil {
			api.GET("/books/:id", cfg.BookHandler.Get)
		}
	}

	return r
}
