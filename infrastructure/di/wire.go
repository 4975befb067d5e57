//go:build wireinject
// +build wireinject

package di

import (
	"context"

	"github.com/google/wire"

	"github.com/humbertoamdc/torvek-sub000/infrastructure/config"
)

// SuperSet is the main provider set containing all providers
var SuperSet = wire.NewSet(
	ProvideLogger,
	ProvideAWSConfig,
	ProvideDynamoDBClient,
	ProvideS3Client,
	ProvideEventBridgeClient,
	ProvideCloudWatchClient,
	ProvideStoreClient,
	ProvideTables,
	ProvideProjectRepository,
	ProvideQuotationRepository,
	ProvidePartRepository,
	ProvideOrderRepository,
	ProvideQuotationWorkflow,
	ProvideProjectCascader,
	ProvideObjectStorage,
	ProvidePaymentsProcessor,
	ProvideCache,
	ProvideIdentityManager,
	ProvideEventPublisher,
	ProvideNotifier,
	ProvideMetrics,
	ProvideRateLimiters,
	ProvideCommandHandlers,
	ProvideQueryHandlers,
	ProvideRouter,
	wire.Struct(new(Container), "*"),
)

// InitializeContainer creates a fully wired container
func InitializeContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	wire.Build(SuperSet)
	return nil, nil // Wire will replace this
}
