package dynamodb

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/humbertoamdc/torvek-sub000/pkg/apperrors"
)

const (
	defaultQueryLimit int32 = 20
	maxQueryLimit     int32 = 100
)

// querySpec is the planner's output: exactly one index and key condition per
// call.
type querySpec struct {
	table   string
	index   string // empty means the primary key
	keyCond expression.KeyConditionBuilder
	cursor  string
	limit   int32
	forward bool // default is reverse scan, most recent first
}

func effectiveLimit(limit int32) int32 {
	if limit <= 0 {
		return defaultQueryLimit
	}
	if limit > maxQueryLimit {
		return maxQueryLimit
	}
	return limit
}

// runQuery executes a planned query: decodes the cursor into the native start
// position, issues one page, and re-wraps the resume position as an opaque
// token. Queries have no side effects, so Unavailable results are safe for
// the caller to retry with backoff.
func runQuery(ctx context.Context, client Client, spec querySpec) ([]map[string]types.AttributeValue, string, error) {
	startKey, err := DecodeCursor(spec.cursor)
	if err != nil {
		return nil, "", err
	}

	expr, err := expression.NewBuilder().WithKeyCondition(spec.keyCond).Build()
	if err != nil {
		return nil, "", apperrors.NewUnknown("build query expression", err)
	}

	input := &dynamodb.QueryInput{
		TableName:                 aws.String(spec.table),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		Limit:                     aws.Int32(effectiveLimit(spec.limit)),
		ExclusiveStartKey:         startKey,
		ScanIndexForward:          aws.Bool(spec.forward),
	}
	if spec.index != "" {
		input.IndexName = aws.String(spec.index)
	}

	out, err := client.Query(ctx, input)
	if err != nil {
		return nil, "", translateError("query "+spec.table, err)
	}

	nextCursor, err := EncodeCursor(out.LastEvaluatedKey)
	if err != nil {
		return nil, "", err
	}
	return out.Items, nextCursor, nil
}

// chunkKeys splits keys into store-sized batches.
func chunkKeys(keys []map[string]types.AttributeValue, size int) [][]map[string]types.AttributeValue {
	var chunks [][]map[string]types.AttributeValue
	for start := 0; start < len(keys); start += size {
		end := start + size
		if end > len(keys) {
			end = len(keys)
		}
		chunks = append(chunks, keys[start:end])
	}
	return chunks
}

// batchWrite issues write requests in store-sized batches, retrying
// unprocessed items a bounded number of times before giving up.
func batchWrite(ctx context.Context, client Client, table string, requests []types.WriteRequest) error {
	for start := 0; start < len(requests); start += batchWriteLimit {
		end := start + batchWriteLimit
		if end > len(requests) {
			end = len(requests)
		}

		pending := map[string][]types.WriteRequest{table: requests[start:end]}
		for attempt := 0; len(pending[table]) > 0; attempt++ {
			if attempt >= 3 {
				return apperrors.NewUnavailable("batch write "+table, nil).WithDetails(map[string]interface{}{
					"unprocessed": len(pending[table]),
				})
			}
			out, err := client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{RequestItems: pending})
			if err != nil {
				return translateError("batch write "+table, err)
			}
			pending = out.UnprocessedItems
		}
	}
	return nil
}

// batchGet fetches keys in store-sized batches, retrying unprocessed keys.
func batchGet(ctx context.Context, client Client, table string, keys []map[string]types.AttributeValue) ([]map[string]types.AttributeValue, error) {
	var items []map[string]types.AttributeValue
	for _, chunk := range chunkKeys(keys, batchGetLimit) {
		pending := map[string]types.KeysAndAttributes{table: {Keys: chunk}}
		for attempt := 0; len(pending) > 0 && len(pending[table].Keys) > 0; attempt++ {
			if attempt >= 3 {
				return nil, apperrors.NewUnavailable("batch get "+table, nil)
			}
			out, err := client.BatchGetItem(ctx, &dynamodb.BatchGetItemInput{RequestItems: pending})
			if err != nil {
				return nil, translateError("batch get "+table, err)
			}
			items = append(items, out.Responses[table]...)
			pending = out.UnprocessedKeys
		}
	}
	return items, nil
}
