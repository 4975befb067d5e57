package dynamodb

import (
	"encoding/base64"
	"encoding/json"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/humbertoamdc/torvek-sub000/pkg/apperrors"
)

// EncodeCursor wraps the store's resume position into an opaque token. All
// key attributes in this schema are strings, so the position serializes as a
// flat string map in canonical JSON, then base64url. A nil position (no
// further page) encodes as "".
func EncodeCursor(lastEvaluatedKey map[string]types.AttributeValue) (string, error) {
	if len(lastEvaluatedKey) == 0 {
		return "", nil
	}

	position := make(map[string]string, len(lastEvaluatedKey))
	for name, attr := range lastEvaluatedKey {
		s, ok := attr.(*types.AttributeValueMemberS)
		if !ok {
			return "", apperrors.NewUnknown("encode cursor", nil).WithDetails(map[string]interface{}{
				"attribute": name,
			})
		}
		position[name] = s.Value
	}

	raw, err := json.Marshal(position)
	if err != nil {
		return "", apperrors.NewUnknown("encode cursor", err)
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

// DecodeCursor is the inverse of EncodeCursor. A malformed token is a stale
// or tampered client value: it surfaces as InvalidCursorError and is never
// retried. An empty cursor decodes to nil (start from the beginning).
func DecodeCursor(cursor string) (map[string]types.AttributeValue, error) {
	if cursor == "" {
		return nil, nil
	}

	raw, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return nil, apperrors.NewInvalidCursor(err)
	}

	var position map[string]string
	if err := json.Unmarshal(raw, &position); err != nil {
		return nil, apperrors.NewInvalidCursor(err)
	}
	if len(position) == 0 {
		return nil, apperrors.NewInvalidCursor(nil)
	}

	key := make(map[string]types.AttributeValue, len(position))
	for name, value := range position {
		key[name] = &types.AttributeValueMemberS{Value: value}
	}
	return key, nil
}
