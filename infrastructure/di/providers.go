package di

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/apigatewaymanagementapi"
	awscloudwatch "github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awseventbridge "github.com/aws/aws-sdk-go-v2/service/eventbridge"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/humbertoamdc/torvek-sub000/application/commands"
	"github.com/humbertoamdc/torvek-sub000/application/ports"
	"github.com/humbertoamdc/torvek-sub000/application/queries"
	"github.com/humbertoamdc/torvek-sub000/infrastructure/cache"
	"github.com/humbertoamdc/torvek-sub000/infrastructure/config"
	"github.com/humbertoamdc/torvek-sub000/infrastructure/identity"
	"github.com/humbertoamdc/torvek-sub000/infrastructure/messaging/eventbridge"
	"github.com/humbertoamdc/torvek-sub000/infrastructure/notifications"
	"github.com/humbertoamdc/torvek-sub000/infrastructure/objectstorage"
	"github.com/humbertoamdc/torvek-sub000/infrastructure/payments"
	"github.com/humbertoamdc/torvek-sub000/infrastructure/persistence/dynamodb"
	"github.com/humbertoamdc/torvek-sub000/interfaces/http/rest"
	"github.com/humbertoamdc/torvek-sub000/interfaces/http/rest/handlers"
	"github.com/humbertoamdc/torvek-sub000/pkg/auth"
	"github.com/humbertoamdc/torvek-sub000/pkg/observability"
)

const (
	ipRequestsPerMinute   = 100
	userRequestsPerMinute = 200
)

// RateLimiters groups the request limiters the router installs.
type RateLimiters struct {
	IP   auth.RateLimiter
	User auth.RateLimiter
}

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	var zapCfg zap.Config
	if cfg.IsProduction() {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	if level, err := zapcore.ParseLevel(cfg.LogLevel); err == nil {
		zapCfg.Level = zap.NewAtomicLevelAt(level)
	}

	return zapCfg.Build()
}

// ProvideAWSConfig creates AWS configuration
func ProvideAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWSRegion),
	)
	if err != nil {
		return aws.Config{}, err
	}
	if cfg.EnableTracing {
		observability.InstrumentAWSClients(&awsCfg)
	}
	return awsCfg, nil
}

// ProvideDynamoDBClient creates a DynamoDB client
func ProvideDynamoDBClient(awsCfg aws.Config) *awsdynamodb.Client {
	return awsdynamodb.NewFromConfig(awsCfg)
}

// ProvideS3Client creates an S3 client
func ProvideS3Client(awsCfg aws.Config) *awss3.Client {
	return awss3.NewFromConfig(awsCfg)
}

// ProvideEventBridgeClient creates an EventBridge client
func ProvideEventBridgeClient(awsCfg aws.Config) *awseventbridge.Client {
	return awseventbridge.NewFromConfig(awsCfg)
}

// ProvideCloudWatchClient creates a CloudWatch client
func ProvideCloudWatchClient(awsCfg aws.Config) *awscloudwatch.Client {
	return awscloudwatch.NewFromConfig(awsCfg)
}

// ProvideStoreClient exposes the DynamoDB client through the repository seam.
func ProvideStoreClient(client *awsdynamodb.Client) dynamodb.Client {
	return client
}

// ProvideTables maps configured table and index names into the persistence
// layer's table descriptors.
func ProvideTables(cfg *config.Config) dynamodb.Tables {
	return dynamodb.Tables{
		Projects: dynamodb.ProjectTable{
			Name:              cfg.ProjectsTable,
			CreationDateIndex: cfg.ProjectsCreationDateIndex,
		},
		Quotations: dynamodb.QuotationTable{
			Name:               cfg.QuotationsTable,
			PendingReviewIndex: cfg.QuotationsPendingReviewIdx,
			ClientIndex:        cfg.QuotationsClientIndex,
		},
		Parts: dynamodb.PartTable{
			Name:           cfg.PartsTable,
			HierarchyIndex: cfg.PartsHierarchyIndex,
		},
		Orders: dynamodb.OrderTable{
			Name:              cfg.OrdersTable,
			CreationDateIndex: cfg.OrdersCreationDateIndex,
			StatusIndex:       cfg.OrdersStatusIndex,
			OpenOrdersIndex:   cfg.OrdersOpenOrdersIndex,
			HierarchyIndex:    cfg.OrdersHierarchyIndex,
		},
	}
}

// ProvideProjectRepository creates a project repository
func ProvideProjectRepository(client dynamodb.Client, tables dynamodb.Tables, logger *zap.Logger) ports.ProjectRepository {
	return dynamodb.NewProjectRepository(client, tables.Projects, logger)
}

// ProvideQuotationRepository creates a quotation repository
func ProvideQuotationRepository(client dynamodb.Client, tables dynamodb.Tables, logger *zap.Logger) ports.QuotationRepository {
	return dynamodb.NewQuotationRepository(client, tables.Quotations, logger)
}

// ProvidePartRepository creates a part repository
func ProvidePartRepository(client dynamodb.Client, tables dynamodb.Tables, logger *zap.Logger) ports.PartRepository {
	return dynamodb.NewPartRepository(client, tables.Parts, logger)
}

// ProvideOrderRepository creates an order repository
func ProvideOrderRepository(client dynamodb.Client, tables dynamodb.Tables, logger *zap.Logger) ports.OrderRepository {
	return dynamodb.NewOrderRepository(client, tables.Orders, logger)
}

// ProvideQuotationWorkflow creates the cross-table transaction coordinator
func ProvideQuotationWorkflow(client dynamodb.Client, tables dynamodb.Tables, logger *zap.Logger) ports.QuotationWorkflow {
	return dynamodb.NewQuotationWorkflow(client, tables, logger)
}

// ProvideProjectCascader creates the cascade-delete orchestrator
func ProvideProjectCascader(
	projects ports.ProjectRepository,
	quotations ports.QuotationRepository,
	parts ports.PartRepository,
	storage ports.ObjectStorage,
	logger *zap.Logger,
) ports.ProjectCascader {
	return dynamodb.NewProjectCascader(projects, quotations, parts, storage, logger)
}

// ProvideObjectStorage creates the S3-backed blob storage adapter
func ProvideObjectStorage(client *awss3.Client, cfg *config.Config, logger *zap.Logger) ports.ObjectStorage {
	return objectstorage.NewS3Storage(client, cfg.PartsBucket, logger)
}

// ProvidePaymentsProcessor creates the Mercado Pago adapter
func ProvidePaymentsProcessor(cfg *config.Config, logger *zap.Logger) (ports.PaymentsProcessor, error) {
	return payments.NewMercadoPagoProcessor(cfg.MercadoPagoAccessToken, logger)
}

// ProvideCache creates a simple in-memory cache
func ProvideCache() ports.Cache {
	return cache.NewInMemoryCache()
}

// ProvideIdentityManager creates the JWT session manager
func ProvideIdentityManager(cfg *config.Config, sessionCache ports.Cache, logger *zap.Logger) ports.IdentityManager {
	return identity.NewJWTIdentityManager(cfg.JWTSecret, cfg.JWTIssuer, sessionCache, logger)
}

// ProvideEventPublisher creates the EventBridge publisher
func ProvideEventPublisher(client *awseventbridge.Client, cfg *config.Config, logger *zap.Logger) ports.EventPublisher {
	return eventbridge.NewPublisher(client, cfg.EventBusName, logger)
}

// ProvideNotifier creates the WebSocket notifier, or a no-op when no
// WebSocket endpoint is configured.
func ProvideNotifier(awsCfg aws.Config, store *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) ports.Notifier {
	if cfg.WebSocketEndpoint == "" {
		return notifications.NewNoopNotifier()
	}

	gateway := apigatewaymanagementapi.NewFromConfig(awsCfg, func(o *apigatewaymanagementapi.Options) {
		o.BaseEndpoint = aws.String(cfg.WebSocketEndpoint)
	})
	return notifications.NewWebSocketNotifier(store, gateway, cfg.ConnectionsTable, logger)
}

// ProvideMetrics creates a metrics instance, or nil when disabled.
func ProvideMetrics(client *awscloudwatch.Client, cfg *config.Config) *observability.Metrics {
	if !cfg.EnableMetrics {
		return nil
	}
	namespace := fmt.Sprintf("Torvek/%s", cfg.Environment)
	return observability.NewMetrics(namespace, client)
}

// ProvideCommandHandlers wires every command handler
func ProvideCommandHandlers(
	projects ports.ProjectRepository,
	quotations ports.QuotationRepository,
	parts ports.PartRepository,
	orders ports.OrderRepository,
	workflow ports.QuotationWorkflow,
	cascader ports.ProjectCascader,
	storage ports.ObjectStorage,
	processor ports.PaymentsProcessor,
	publisher ports.EventPublisher,
	notifier ports.Notifier,
	cfg *config.Config,
	logger *zap.Logger,
) *CommandHandlers {
	return &CommandHandlers{
		CreateProject:   commands.NewCreateProjectHandler(projects, logger),
		DeleteProject:   commands.NewDeleteProjectHandler(cascader, logger),
		CreateQuotation: commands.NewCreateQuotationHandler(projects, quotations, logger),
		SubmitQuotation: commands.NewSubmitQuotationHandler(quotations, parts, logger),
		DeleteQuotation: commands.NewDeleteQuotationHandler(cascader, logger),
		CreateParts:     commands.NewCreatePartsHandler(quotations, parts, storage, cfg.PresignedURLTTL, logger),
		UpdatePart:      commands.NewUpdatePartHandler(quotations, parts, storage, cfg.PresignedURLTTL, logger),
		DeletePart:      commands.NewDeletePartHandler(quotations, parts, storage, logger),
		PriceQuotation:  commands.NewPriceQuotationHandler(quotations, parts, workflow, logger),
		CreateCheckout:  commands.NewCreateCheckoutHandler(quotations, parts, processor, cfg.CheckoutSuccessURL, cfg.CheckoutCancelURL, logger),
		ConfirmPayment:  commands.NewConfirmPaymentHandler(quotations, processor, publisher, logger),
		CreateOrders:    commands.NewCreateOrdersHandler(quotations, parts, workflow, publisher, logger),
		UpdateOrder:     commands.NewUpdateOrderHandler(orders, publisher, notifier, logger),
	}
}

// ProvideQueryHandlers wires every query handler
func ProvideQueryHandlers(
	projects ports.ProjectRepository,
	quotations ports.QuotationRepository,
	parts ports.PartRepository,
	orders ports.OrderRepository,
	storage ports.ObjectStorage,
	cfg *config.Config,
	logger *zap.Logger,
) *QueryHandlers {
	return &QueryHandlers{
		ListProjects:   queries.NewListProjectsHandler(projects, logger),
		ListQuotations: queries.NewListQuotationsHandler(quotations, logger),
		ListParts:      queries.NewListPartsHandler(parts, storage, cfg.PresignedURLTTL, logger),
		ListOrders:     queries.NewListOrdersHandler(orders, logger),
		GetOrder:       queries.NewGetOrderHandler(orders, logger),
	}
}

// ProvideRateLimiters picks DynamoDB-backed limiters when a rate limit table
// is configured, so limits hold across Lambda instances. Otherwise each
// instance counts in memory.
func ProvideRateLimiters(store *awsdynamodb.Client, cfg *config.Config) *RateLimiters {
	if cfg.RateLimitTable != "" {
		return &RateLimiters{
			IP:   auth.NewDynamoIPRateLimiter(store, cfg.RateLimitTable, ipRequestsPerMinute),
			User: auth.NewDynamoUserRateLimiter(store, cfg.RateLimitTable, userRequestsPerMinute),
		}
	}
	return &RateLimiters{
		IP:   auth.NewIPRateLimiter(ipRequestsPerMinute),
		User: auth.NewUserRateLimiter(userRequestsPerMinute),
	}
}

// ProvideRouter assembles the HTTP router from the wired handlers
func ProvideRouter(
	identityManager ports.IdentityManager,
	limiters *RateLimiters,
	cmd *CommandHandlers,
	qry *QueryHandlers,
	metrics *observability.Metrics,
	cfg *config.Config,
	logger *zap.Logger,
) *rest.Router {
	return rest.NewRouter(
		identityManager,
		limiters.IP,
		limiters.User,
		handlers.NewProjectHandler(cmd.CreateProject, cmd.DeleteProject, qry.ListProjects, logger),
		handlers.NewQuotationHandler(cmd.CreateQuotation, cmd.SubmitQuotation, cmd.DeleteQuotation, cmd.CreateCheckout, qry.ListQuotations, logger),
		handlers.NewPartHandler(cmd.CreateParts, cmd.UpdatePart, cmd.DeletePart, qry.ListParts, logger),
		handlers.NewOrderHandler(cmd.UpdateOrder, qry.ListOrders, qry.GetOrder, logger),
		handlers.NewAdminHandler(cmd.PriceQuotation, cmd.CreateOrders, qry.ListQuotations, qry.ListParts, logger),
		handlers.NewPaymentWebhookHandler(cmd.ConfirmPayment, cmd.CreateOrders, logger),
		cfg.AllowedOrigins,
		metrics,
		logger,
	)
}
