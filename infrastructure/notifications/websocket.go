package notifications

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/apigatewaymanagementapi"
	apigwtypes "github.com/aws/aws-sdk-go-v2/service/apigatewaymanagementapi/types"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"github.com/humbertoamdc/torvek-sub000/application/ports"
	"github.com/humbertoamdc/torvek-sub000/domain/events"
	"github.com/humbertoamdc/torvek-sub000/pkg/apperrors"
)

// connectionsClient is the slice of the store API the notifier needs for the
// connections table.
type connectionsClient interface {
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
}

// gatewayClient posts messages to connected WebSocket clients.
type gatewayClient interface {
	PostToConnection(ctx context.Context, params *apigatewaymanagementapi.PostToConnectionInput, optFns ...func(*apigatewaymanagementapi.Options)) (*apigatewaymanagementapi.PostToConnectionOutput, error)
}

// WebSocketNotifier pushes order status changes to a customer's live portal
// sessions. Connections live in a table keyed client_id / connection_id,
// written by the ws-connect handler.
type WebSocketNotifier struct {
	store            connectionsClient
	gateway          gatewayClient
	connectionsTable string
	logger           *zap.Logger
}

var _ ports.Notifier = (*WebSocketNotifier)(nil)

func NewWebSocketNotifier(store connectionsClient, gateway gatewayClient, connectionsTable string, logger *zap.Logger) *WebSocketNotifier {
	return &WebSocketNotifier{
		store:            store,
		gateway:          gateway,
		connectionsTable: connectionsTable,
		logger:           logger,
	}
}

type statusMessage struct {
	Type      string `json:"type"`
	OrderID   string `json:"order_id"`
	OldStatus string `json:"old_status"`
	NewStatus string `json:"new_status"`
	Timestamp int64  `json:"timestamp"`
}

// NotifyOrderStatus fans the status change out to every live connection of
// the order's customer. Stale connections are pruned as they are discovered;
// delivery is best effort and partial failures do not abort the rest.
func (n *WebSocketNotifier) NotifyOrderStatus(ctx context.Context, event events.OrderStatusChanged) error {
	connectionIDs, err := n.connectionsFor(ctx, event.ClientID)
	if err != nil {
		return err
	}
	if len(connectionIDs) == 0 {
		return nil
	}

	payload, err := json.Marshal(statusMessage{
		Type:      event.GetEventType(),
		OrderID:   event.OrderID,
		OldStatus: event.OldStatus,
		NewStatus: event.NewStatus,
		Timestamp: event.GetTimestamp().Unix(),
	})
	if err != nil {
		return apperrors.NewUnknown("marshal status message", err)
	}

	for _, connectionID := range connectionIDs {
		_, err := n.gateway.PostToConnection(ctx, &apigatewaymanagementapi.PostToConnectionInput{
			ConnectionId: aws.String(connectionID),
			Data:         payload,
		})
		if err != nil {
			var gone *apigwtypes.GoneException
			if errors.As(err, &gone) {
				n.prune(ctx, event.ClientID, connectionID)
				continue
			}
			n.logger.Warn("notification delivery failed",
				zap.String("connection_id", connectionID),
				zap.Error(err),
			)
		}
	}
	return nil
}

func (n *WebSocketNotifier) connectionsFor(ctx context.Context, clientID string) ([]string, error) {
	out, err := n.store.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(n.connectionsTable),
		KeyConditionExpression: aws.String("client_id = :client_id"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":client_id": &types.AttributeValueMemberS{Value: clientID},
		},
	})
	if err != nil {
		return nil, apperrors.NewUnavailable("query connections", err)
	}

	connectionIDs := make([]string, 0, len(out.Items))
	for _, item := range out.Items {
		if id, ok := item["connection_id"].(*types.AttributeValueMemberS); ok {
			connectionIDs = append(connectionIDs, id.Value)
		}
	}
	return connectionIDs, nil
}

func (n *WebSocketNotifier) prune(ctx context.Context, clientID, connectionID string) {
	_, err := n.store.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(n.connectionsTable),
		Key: map[string]types.AttributeValue{
			"client_id":     &types.AttributeValueMemberS{Value: clientID},
			"connection_id": &types.AttributeValueMemberS{Value: connectionID},
		},
	})
	if err != nil {
		n.logger.Warn("stale connection cleanup failed",
			zap.String("connection_id", connectionID),
			zap.Error(err),
		)
	}
}
