//go:build !wireinject
// +build !wireinject

package di

import (
	"context"

	"github.com/humbertoamdc/torvek-sub000/infrastructure/config"
)

// InitializeContainer creates a fully wired container. Kept in sync by hand
// with the wire provider set so deployments do not depend on code
// generation.
func InitializeContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	logger, err := ProvideLogger(cfg)
	if err != nil {
		return nil, err
	}

	awsCfg, err := ProvideAWSConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}

	dynamoClient := ProvideDynamoDBClient(awsCfg)
	storeClient := ProvideStoreClient(dynamoClient)
	tables := ProvideTables(cfg)

	projects := ProvideProjectRepository(storeClient, tables, logger)
	quotations := ProvideQuotationRepository(storeClient, tables, logger)
	parts := ProvidePartRepository(storeClient, tables, logger)
	orders := ProvideOrderRepository(storeClient, tables, logger)
	workflow := ProvideQuotationWorkflow(storeClient, tables, logger)

	storage := ProvideObjectStorage(ProvideS3Client(awsCfg), cfg, logger)
	cascader := ProvideProjectCascader(projects, quotations, parts, storage, logger)

	processor, err := ProvidePaymentsProcessor(cfg, logger)
	if err != nil {
		return nil, err
	}

	sessionCache := ProvideCache()
	identityManager := ProvideIdentityManager(cfg, sessionCache, logger)
	publisher := ProvideEventPublisher(ProvideEventBridgeClient(awsCfg), cfg, logger)
	notifier := ProvideNotifier(awsCfg, dynamoClient, cfg, logger)
	metrics := ProvideMetrics(ProvideCloudWatchClient(awsCfg), cfg)
	limiters := ProvideRateLimiters(dynamoClient, cfg)

	commandHandlers := ProvideCommandHandlers(
		projects, quotations, parts, orders,
		workflow, cascader, storage, processor, publisher, notifier,
		cfg, logger,
	)
	queryHandlers := ProvideQueryHandlers(projects, quotations, parts, orders, storage, cfg, logger)

	router := ProvideRouter(identityManager, limiters, commandHandlers, queryHandlers, metrics, cfg, logger)

	return &Container{
		Config:   cfg,
		Logger:   logger,
		Identity: identityManager,
		Notifier: notifier,
		Commands: commandHandlers,
		Queries:  queryHandlers,
		Metrics:  metrics,
		Router:   router,
	}, nil
}
