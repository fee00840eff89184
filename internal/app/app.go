package app

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/ehon-backend/internal/http"
	"github.com/yungbote/ehon-backend/internal/observability"
	"github.com/yungbote/ehon-backend/internal/platform/logger"
)

type App struct {
	Log      *logger.Logger
	Router   *gin.Engine
	Cfg      Config
	Repos    Repos
	Services Services

	closers      []func() error
	otelShutdown func(context.Context) error
}

func New(ctx context.Context) (*App, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, err
	}
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	a := &App{Log: log, Cfg: cfg}
	a.otelShutdown = observability.InitOTel(ctx, log, observability.OtelConfig{
		Enabled:     cfg.OtelEnabled,
		ServiceName: cfg.OtelServiceName,
		Environment: cfg.Environment,
		Version:     cfg.Version,
		Endpoint:    cfg.OtelEndpoint,
		Headers:     cfg.OtelHeaders,
		Insecure:    cfg.OtelInsecure,
		SampleRatio: cfg.OtelSampleRatio,
	})

	clients, closers, err := wireClients(ctx, log, cfg)
	a.closers = append(a.closers, closers...)
	if err != nil {
		a.Close()
		return nil, err
	}
	reposet, closers, err := wireRepos(ctx, log, cfg)
	a.closers = append(a.closers, closers...)
	if err != nil {
		a.Close()
		return nil, err
	}
	serviceset, err := wireServices(log, cfg, clients, reposet)
	if err != nil {
		a.Close()
		return nil, err
	}

	var metrics *observability.Metrics
	if cfg.MetricsEnabled {
		metrics = observability.NewMetrics()
	}
	handlerset := wireHandlers(log, cfg, serviceset, reposet, metrics)

	a.Repos = reposet
	a.Services = serviceset
	a.Router = wireRouter(log, cfg, handlerset, metrics)
	return a, nil
}

// Run serves on PORT until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Router == nil {
		return fmt.Errorf("app not initialized")
	}
	srv := &http.Server{Engine: a.Router}
	a.Log.Info("HTTP server listening", "port", a.Cfg.Port)
	return srv.Run(ctx, ":"+a.Cfg.Port, 30*time.Second)
}

func (a *App) Close() {
	if a == nil {
		return
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && a.Log != nil {
			a.Log.Warn("close failed", "error", err)
		}
	}
	a.closers = nil
	if a.otelShutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = a.otelShutdown(ctx)
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
