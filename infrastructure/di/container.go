package di

import (
	"context"
	"net/http"

	"kgms-backend/application/ports"
	"kgms-backend/application/services"
	"kgms-backend/infrastructure/config"
	"kgms-backend/infrastructure/observability"
	"kgms-backend/interfaces/http/rest/handlers"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// GraphStore bundles the repositories of one backend
type GraphStore struct {
	Nodes  ports.NodeRepository
	Edges  ports.EdgeRepository
	Health handlers.HealthChecker
}

// Container holds all application dependencies
type Container struct {
	Config      *config.Config
	Logger      *zap.Logger
	LogLevel    zap.AtomicLevel
	Collector   *observability.Collector
	Tracing     *observability.TracerProvider
	Store       *GraphStore
	NodeService *services.NodeService
	EdgeService *services.EdgeService
	Limits      *handlers.Limits
	Handler     http.Handler
}

// ApplyReload pushes reloadable settings into the running components
func (c *Container) ApplyReload(r config.Reloadable) {
	if r.LogLevel != "" {
		if level, err := zapcore.ParseLevel(r.LogLevel); err == nil {
			c.LogLevel.SetLevel(level)
		} else {
			c.Logger.Warn("Ignoring invalid log level", zap.String("level", r.LogLevel))
		}
	}
	c.Limits.Set(r.DefaultNodeLimit, r.DefaultEdgeLimit, r.MaxListLimit)
	c.Logger.Info("Configuration reloaded",
		zap.String("logLevel", c.LogLevel.String()),
		zap.Int("defaultNodeLimit", r.DefaultNodeLimit),
		zap.Int("defaultEdgeLimit", r.DefaultEdgeLimit),
		zap.Int("maxListLimit", r.MaxListLimit),
	)
}

// Ping checks the store connection
func (c *Container) Ping(ctx context.Context) error {
	if c.Store == nil || c.Store.Health == nil {
		return nil
	}
	return c.Store.Health.Ping(ctx)
}
