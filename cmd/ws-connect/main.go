// Package main implements the WebSocket connect/disconnect Lambda. It
// authenticates the customer's session token and records the connection in
// the connections table so order status changes can be pushed to the portal.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"github.com/humbertoamdc/torvek-sub000/application/ports"
	"github.com/humbertoamdc/torvek-sub000/infrastructure/cache"
	"github.com/humbertoamdc/torvek-sub000/infrastructure/identity"
)

// connectionTTL expires abandoned connections the gateway never reported as
// disconnected.
const connectionTTL = 24 * time.Hour

var (
	dynamoClient     *dynamodb.Client
	identityManager  ports.IdentityManager
	connectionsTable string
)

func init() {
	cfg, err := awsconfig.LoadDefaultConfig(context.Background())
	if err != nil {
		log.Fatalf("Failed to load AWS config: %v", err)
	}
	dynamoClient = dynamodb.NewFromConfig(cfg)

	connectionsTable = os.Getenv("CONNECTIONS_TABLE")
	if connectionsTable == "" {
		connectionsTable = "torvek-connections"
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	identityManager = identity.NewJWTIdentityManager(
		os.Getenv("JWT_SECRET"),
		os.Getenv("JWT_ISSUER"),
		cache.NewInMemoryCache(),
		logger,
	)
}

func storeConnection(ctx context.Context, clientID, connectionID string, now time.Time) error {
	_, err := dynamoClient.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(connectionsTable),
		Item: map[string]types.AttributeValue{
			"client_id":     &types.AttributeValueMemberS{Value: clientID},
			"connection_id": &types.AttributeValueMemberS{Value: connectionID},
			"connected_at":  &types.AttributeValueMemberS{Value: now.UTC().Format(time.RFC3339)},
			"ttl":           &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", now.Add(connectionTTL).Unix())},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to store connection: %w", err)
	}
	return nil
}

func removeConnection(ctx context.Context, clientID, connectionID string) error {
	_, err := dynamoClient.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(connectionsTable),
		Key: map[string]types.AttributeValue{
			"client_id":     &types.AttributeValueMemberS{Value: clientID},
			"connection_id": &types.AttributeValueMemberS{Value: connectionID},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to remove connection: %w", err)
	}
	return nil
}

func handler(ctx context.Context, request events.APIGatewayWebsocketProxyRequest) (events.APIGatewayProxyResponse, error) {
	connectionID := request.RequestContext.ConnectionID

	// The browser WebSocket API cannot set headers, so the session token
	// travels as a query parameter on $connect.
	token := request.QueryStringParameters["token"]
	if token == "" {
		token = request.Headers["Authorization"]
	}

	session, err := identityManager.GetSession(ctx, token)
	if err != nil {
		log.Printf("WebSocket authentication failed for connection %s: %v", connectionID, err)
		return events.APIGatewayProxyResponse{
			StatusCode: http.StatusUnauthorized,
			Body:       `{"error": "unauthorized"}`,
		}, nil
	}

	switch request.RequestContext.RouteKey {
	case "$disconnect":
		if err := removeConnection(ctx, session.IdentityID, connectionID); err != nil {
			log.Printf("Disconnect cleanup failed: %v", err)
		}
	default:
		if err := storeConnection(ctx, session.IdentityID, connectionID, time.Now()); err != nil {
			log.Printf("Failed to store connection: %v", err)
			return events.APIGatewayProxyResponse{
				StatusCode: http.StatusInternalServerError,
				Body:       `{"error": "internal server error"}`,
			}, nil
		}
		log.Printf("Connection %s established for client %s", connectionID, session.IdentityID)
	}

	return events.APIGatewayProxyResponse{StatusCode: http.StatusOK}, nil
}

func main() {
	lambda.Start(handler)
}
