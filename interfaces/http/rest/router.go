package rest

import (
	"net/http"

	"kgms-backend/docs"
	"kgms-backend/infrastructure/observability"
	"kgms-backend/interfaces/http/rest/handlers"
	"kgms-backend/interfaces/http/rest/middleware"
	apperrors "kgms-backend/pkg/errors"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// RouterOptions controls the cross-cutting behaviour of the router
type RouterOptions struct {
	AllowedOrigin  string
	CircuitBreaker *middleware.CircuitBreakerConfig
	// Tracer enables a server span per request when set
	Tracer trace.Tracer
}

// Router creates and configures the HTTP router
type Router struct {
	nodes     *handlers.NodeHandler
	edges     *handlers.EdgeHandler
	system    *handlers.SystemHandler
	collector *observability.Collector
	errors    *apperrors.ErrorHandler
	options   RouterOptions
	logger    *zap.Logger
}

// NewRouter creates a new router instance. collector may be nil when
// metrics are disabled.
func NewRouter(
	nodes *handlers.NodeHandler,
	edges *handlers.EdgeHandler,
	system *handlers.SystemHandler,
	collector *observability.Collector,
	errorHandler *apperrors.ErrorHandler,
	options RouterOptions,
	logger *zap.Logger,
) *Router {
	return &Router{
		nodes:     nodes,
		edges:     edges,
		system:    system,
		collector: collector,
		errors:    errorHandler,
		options:   options,
		logger:    logger,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(middleware.RequestIDHeader)
	router.Use(rt.errors.Middleware)
	router.Use(middleware.Logger(rt.logger))
	if rt.options.Tracer != nil {
		router.Use(observability.TracingMiddleware(rt.options.Tracer))
	}
	if rt.collector != nil {
		router.Use(observability.MetricsMiddleware(rt.collector))
	}

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{rt.options.AllowedOrigin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	router.NotFound(rt.system.NotFound)
	router.MethodNotAllowed(rt.system.MethodNotAllowed)

	router.Get("/", rt.system.Info)
	router.Get("/health", rt.system.Health)
	router.Get("/ready", rt.system.Ready)
	if rt.collector != nil {
		router.Handle("/metrics", rt.collector.Handler())
	}

	router.Route("/api", func(r chi.Router) {
		r.Get("/", rt.system.Info)
		r.Get("/health", rt.system.Health)
		r.Get("/docs", docs.Handler())

		r.Group(func(r chi.Router) {
			if rt.options.CircuitBreaker != nil {
				r.Use(middleware.CircuitBreaker(*rt.options.CircuitBreaker, rt.errors, rt.logger))
			}

			r.Route("/nodes", func(r chi.Router) {
				r.Get("/", rt.nodes.ListNodes)
				r.Post("/", rt.nodes.CreateNode)
				r.Get("/search/{key}/{value}", rt.nodes.SearchNodes)
				r.Get("/label/{label}", rt.nodes.ListNodesByLabel)
				r.Get("/{id}", rt.nodes.GetNode)
				r.Put("/{id}", rt.nodes.UpdateNode)
				r.Delete("/{id}", rt.nodes.DeleteNode)
			})

			r.Route("/edges", func(r chi.Router) {
				r.Get("/", rt.edges.ListEdges)
				r.Post("/", rt.edges.CreateEdge)
				r.Get("/type/{type}", rt.edges.ListEdgesByType)
				r.Get("/node/{nodeId}", rt.edges.ListEdgesForNode)
				r.Get("/{id}", rt.edges.GetEdge)
				r.Put("/{id}", rt.edges.UpdateEdge)
				r.Delete("/{id}", rt.edges.DeleteEdge)
			})
		})
	})

	return router
}
