// Package main implements the WebSocket push Lambda. EventBridge routes
// order.status_changed events here and the handler fans them out to the
// customer's live portal connections.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	awsevents "github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/apigatewaymanagementapi"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"go.uber.org/zap"

	"github.com/humbertoamdc/torvek-sub000/domain/events"
	"github.com/humbertoamdc/torvek-sub000/infrastructure/notifications"
)

var notifier *notifications.WebSocketNotifier

func init() {
	cfg, err := awsconfig.LoadDefaultConfig(context.Background())
	if err != nil {
		log.Fatalf("Failed to load AWS config: %v", err)
	}

	endpoint := os.Getenv("WEBSOCKET_ENDPOINT")
	if endpoint == "" {
		log.Fatal("WEBSOCKET_ENDPOINT is required")
	}
	connectionsTable := os.Getenv("CONNECTIONS_TABLE")
	if connectionsTable == "" {
		connectionsTable = "torvek-connections"
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}

	gateway := apigatewaymanagementapi.NewFromConfig(cfg, func(o *apigatewaymanagementapi.Options) {
		o.BaseEndpoint = aws.String(endpoint)
	})
	notifier = notifications.NewWebSocketNotifier(
		dynamodb.NewFromConfig(cfg),
		gateway,
		connectionsTable,
		logger,
	)
}

func handler(ctx context.Context, event awsevents.CloudWatchEvent) error {
	if event.DetailType != "order.status_changed" {
		log.Printf("Ignoring event type %s", event.DetailType)
		return nil
	}

	var statusChanged events.OrderStatusChanged
	if err := json.Unmarshal(event.Detail, &statusChanged); err != nil {
		return fmt.Errorf("failed to parse event detail: %w", err)
	}
	if statusChanged.ClientID == "" {
		return fmt.Errorf("event %s has no client id", event.ID)
	}

	return notifier.NotifyOrderStatus(ctx, statusChanged)
}

func main() {
	lambda.Start(handler)
}
