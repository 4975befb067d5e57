package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// DynamoRateLimiter counts requests in fixed windows in a DynamoDB table so
// limits hold across Lambda invocations. The counter is an atomic conditional
// increment; store errors fail open so an outage in the limiter table never
// blocks traffic.
type DynamoRateLimiter struct {
	client    *dynamodb.Client
	tableName string
	limit     int
	window    time.Duration
	prefix    string
}

// NewDynamoIPRateLimiter limits requests per source IP to requestsPerMinute,
// shared across instances.
func NewDynamoIPRateLimiter(client *dynamodb.Client, tableName string, requestsPerMinute int) *DynamoRateLimiter {
	return &DynamoRateLimiter{
		client:    client,
		tableName: tableName,
		limit:     requestsPerMinute,
		window:    time.Minute,
		prefix:    "ip",
	}
}

// NewDynamoUserRateLimiter limits requests per authenticated identity to
// requestsPerMinute, shared across instances.
func NewDynamoUserRateLimiter(client *dynamodb.Client, tableName string, requestsPerMinute int) *DynamoRateLimiter {
	return &DynamoRateLimiter{
		client:    client,
		tableName: tableName,
		limit:     requestsPerMinute,
		window:    time.Minute,
		prefix:    "user",
	}
}

func (l *DynamoRateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	windowStart := time.Now().Truncate(l.window)
	limitKey := fmt.Sprintf("%s:%s:%d", l.prefix, key, windowStart.Unix())

	_, err := l.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(l.tableName),
		Key: map[string]types.AttributeValue{
			"limit_key": &types.AttributeValueMemberS{Value: limitKey},
		},
		UpdateExpression:    aws.String("SET request_count = if_not_exists(request_count, :zero) + :one, #ttl = :ttl"),
		ConditionExpression: aws.String("attribute_not_exists(request_count) OR request_count < :limit"),
		ExpressionAttributeNames: map[string]string{
			"#ttl": "ttl",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":zero":  &types.AttributeValueMemberN{Value: "0"},
			":one":   &types.AttributeValueMemberN{Value: "1"},
			":limit": &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", l.limit)},
			":ttl":   &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", windowStart.Add(l.window+time.Hour).Unix())},
		},
	})
	if err != nil {
		var conditionFailed *types.ConditionalCheckFailedException
		if errors.As(err, &conditionFailed) {
			return false, nil
		}
		return true, fmt.Errorf("rate limiter unavailable: %w", err)
	}
	return true, nil
}
