package dynamodb

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/humbertoamdc/torvek-sub000/pkg/apperrors"
)

func TestEncodeKeyRoundTrip(t *testing.T) {
	key := EncodeKey("2024-05-01T10:00:00Z", "ord_123")
	assert.Equal(t, "2024-05-01T10:00:00Z&ord_123", key)

	segments, err := DecodeKey(key, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-05-01T10:00:00Z", "ord_123"}, segments)
}

func TestDecodeKeyWrongArity(t *testing.T) {
	_, err := DecodeKey("a&b&c", 2)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeMalformedKey))
}

func TestEncodePrefixMatchesDescendants(t *testing.T) {
	prefix := EncodePrefix("proj_1", "quot_1")
	assert.Equal(t, "proj_1&quot_1&", prefix)

	child := EncodeKey("proj_1", "quot_1", "part_1")
	sibling := EncodeKey("proj_1", "quot_10", "part_1")
	assert.True(t, len(child) > len(prefix) && child[:len(prefix)] == prefix)
	assert.False(t, sibling[:len(prefix)] == prefix)
}

func TestFormatTimestampOrdersChronologically(t *testing.T) {
	early := time.Date(2024, 5, 1, 9, 59, 59, 0, time.UTC)
	late := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	assert.Less(t, FormatTimestamp(early), FormatTimestamp(late))

	// Zone offsets must not break the ordering.
	est := time.FixedZone("EST", -5*3600)
	assert.Equal(t, FormatTimestamp(late), FormatTimestamp(late.In(est)))
}

func TestTimestampRangeDefaults(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	lower, upper := timestampRange(nil, nil, now)
	assert.Equal(t, "1970-01-01T00:00:00Z", lower)
	assert.Equal(t, "2024-05-01T12:00:00Z+", upper)
}

func TestTimestampRangeUpperBoundIsInclusive(t *testing.T) {
	to := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	_, upper := timestampRange(nil, &to, to)

	// A key created exactly at the upper bound still sorts inside the range.
	boundary := EncodeKey(FormatTimestamp(to), "ord_zzz")
	assert.Less(t, boundary, upper)
}
