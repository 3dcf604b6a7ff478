//go:build wireinject
// +build wireinject

package di

import (
	"context"

	"kgms-backend/infrastructure/config"

	"github.com/google/wire"
)

// SuperSet is the main provider set containing all providers
var SuperSet = wire.NewSet(
	ProvideLogLevel,
	ProvideLogger,
	ProvideCollector,
	ProvideMetrics,
	ProvideTracing,
	ProvideGraphStore,
	ProvideNodeRepository,
	ProvideEdgeRepository,
	ProvideNodeService,
	ProvideEdgeService,
	ProvideErrorHandler,
	ProvideLimits,
	ProvideNodeHandler,
	ProvideEdgeHandler,
	ProvideSystemHandler,
	ProvideRouter,
	ProvideHTTPHandler,
	wire.Struct(new(Container), "*"),
)

// InitializeContainer creates a fully wired container
func InitializeContainer(ctx context.Context, cfg *config.Config) (*Container, func(), error) {
	wire.Build(SuperSet)
	return nil, nil, nil
}
