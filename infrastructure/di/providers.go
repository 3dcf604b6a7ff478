package di

import (
	"context"
	"fmt"
	"net/http"

	"kgms-backend/application/ports"
	"kgms-backend/application/services"
	"kgms-backend/infrastructure/config"
	"kgms-backend/infrastructure/observability"
	"kgms-backend/infrastructure/persistence/memory"
	neo4jstore "kgms-backend/infrastructure/persistence/neo4j"
	"kgms-backend/interfaces/http/rest"
	"kgms-backend/interfaces/http/rest/handlers"
	"kgms-backend/interfaces/http/rest/middleware"
	apperrors "kgms-backend/pkg/errors"

	"go.uber.org/zap"
)

const (
	serviceName    = "kgms-backend"
	serviceVersion = "1.0.0"
)

// ProvideLogLevel parses the configured level into an adjustable level
func ProvideLogLevel(cfg *config.Config) (zap.AtomicLevel, error) {
	level := zap.NewAtomicLevel()
	if cfg.LogLevel != "" {
		if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
			return level, fmt.Errorf("invalid LOG_LEVEL %q: %w", cfg.LogLevel, err)
		}
	}
	return level, nil
}

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config, level zap.AtomicLevel) (*zap.Logger, error) {
	var zapCfg zap.Config
	if cfg.IsProduction() {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}
	zapCfg.Level = level
	return zapCfg.Build()
}

// ProvideCollector creates the Prometheus collector, or nil when metrics
// are disabled
func ProvideCollector(cfg *config.Config) *observability.Collector {
	if !cfg.EnableMetrics {
		return nil
	}
	return observability.NewCollector("kgms")
}

// ProvideMetrics exposes the collector through the services port
func ProvideMetrics(collector *observability.Collector) ports.Metrics {
	if collector == nil {
		return nil
	}
	return collector
}

// ProvideTracing initializes tracing and returns its shutdown hook
func ProvideTracing(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*observability.TracerProvider, func(), error) {
	tp, err := observability.InitTracing(ctx, observability.TracingConfig{
		ServiceName:    serviceName,
		ServiceVersion: serviceVersion,
		Environment:    cfg.Environment,
		Endpoint:       cfg.OTLPEndpoint,
		Enabled:        cfg.EnableTracing,
	})
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			logger.Warn("Tracer shutdown failed", zap.Error(err))
		}
	}
	return tp, cleanup, nil
}

// ProvideGraphStore connects to the configured backend
func ProvideGraphStore(
	ctx context.Context,
	cfg *config.Config,
	tracing *observability.TracerProvider,
	collector *observability.Collector,
	logger *zap.Logger,
) (*GraphStore, func(), error) {
	switch cfg.StoreBackend {
	case config.StoreMemory:
		logger.Warn("Using the in-memory graph store; data is lost on restart")
		store := memory.NewStore()
		return &GraphStore{Nodes: store.Nodes(), Edges: store.Edges(), Health: store}, func() {}, nil

	case config.StoreNeo4j:
		client, err := neo4jstore.NewClient(ctx, neo4jstore.Settings{
			URI:      cfg.Neo4jURI,
			User:     cfg.Neo4jUser,
			Password: cfg.Neo4jPassword,
			Database: cfg.Neo4jDatabase,
		}, logger)
		if err != nil {
			return nil, nil, err
		}

		var observer neo4jstore.OperationObserver
		if collector != nil {
			observer = collector
		}
		runner := neo4jstore.NewInstrumentedRunner(client, tracing.Tracer(), observer)

		cleanup := func() {
			if err := client.Close(context.Background()); err != nil {
				logger.Warn("Failed to close Neo4j driver", zap.Error(err))
			}
		}
		return &GraphStore{
			Nodes:  neo4jstore.NewNodeRepository(runner),
			Edges:  neo4jstore.NewEdgeRepository(runner),
			Health: client,
		}, cleanup, nil

	default:
		return nil, nil, fmt.Errorf("unsupported store backend %q", cfg.StoreBackend)
	}
}

// ProvideNodeRepository exposes the store's node repository
func ProvideNodeRepository(store *GraphStore) ports.NodeRepository {
	return store.Nodes
}

// ProvideEdgeRepository exposes the store's edge repository
func ProvideEdgeRepository(store *GraphStore) ports.EdgeRepository {
	return store.Edges
}

// ProvideNodeService creates the node service
func ProvideNodeService(nodes ports.NodeRepository, metrics ports.Metrics, logger *zap.Logger) *services.NodeService {
	return services.NewNodeService(nodes, metrics, logger)
}

// ProvideEdgeService creates the relationship service
func ProvideEdgeService(
	nodes ports.NodeRepository,
	edges ports.EdgeRepository,
	metrics ports.Metrics,
	logger *zap.Logger,
) *services.EdgeService {
	return services.NewEdgeService(nodes, edges, metrics, logger)
}

// ProvideErrorHandler exposes error causes outside production
func ProvideErrorHandler(cfg *config.Config, logger *zap.Logger) *apperrors.ErrorHandler {
	return apperrors.NewErrorHandler(logger, !cfg.IsProduction())
}

// ProvideLimits creates the runtime adjustable list limits
func ProvideLimits(cfg *config.Config) *handlers.Limits {
	return handlers.NewLimits(cfg.DefaultNodeLimit, cfg.DefaultEdgeLimit, cfg.MaxListLimit)
}

// ProvideNodeHandler creates the node handler
func ProvideNodeHandler(
	service *services.NodeService,
	limits *handlers.Limits,
	errorHandler *apperrors.ErrorHandler,
	logger *zap.Logger,
) *handlers.NodeHandler {
	return handlers.NewNodeHandler(service, limits, errorHandler, logger)
}

// ProvideEdgeHandler creates the relationship handler
func ProvideEdgeHandler(
	service *services.EdgeService,
	limits *handlers.Limits,
	errorHandler *apperrors.ErrorHandler,
	logger *zap.Logger,
) *handlers.EdgeHandler {
	return handlers.NewEdgeHandler(service, limits, errorHandler, logger)
}

// ProvideSystemHandler creates the info and health handler
func ProvideSystemHandler(
	cfg *config.Config,
	store *GraphStore,
	errorHandler *apperrors.ErrorHandler,
	logger *zap.Logger,
) *handlers.SystemHandler {
	return handlers.NewSystemHandler(serviceName, serviceVersion, cfg.Environment, store.Health, errorHandler, logger)
}

// ProvideRouter creates the router. The circuit breaker only guards a
// remote store, and request spans are only started when tracing is on.
func ProvideRouter(
	cfg *config.Config,
	nodes *handlers.NodeHandler,
	edges *handlers.EdgeHandler,
	system *handlers.SystemHandler,
	collector *observability.Collector,
	tracing *observability.TracerProvider,
	errorHandler *apperrors.ErrorHandler,
	logger *zap.Logger,
) *rest.Router {
	options := rest.RouterOptions{AllowedOrigin: cfg.CORSOrigin()}
	if cfg.StoreBackend == config.StoreNeo4j {
		breaker := middleware.DefaultCircuitBreakerConfig("graph-store")
		options.CircuitBreaker = &breaker
	}
	if cfg.EnableTracing && tracing != nil {
		options.Tracer = tracing.Tracer()
	}
	return rest.NewRouter(nodes, edges, system, collector, errorHandler, options, logger)
}

// ProvideHTTPHandler builds the routes
func ProvideHTTPHandler(router *rest.Router) http.Handler {
	return router.Setup()
}
