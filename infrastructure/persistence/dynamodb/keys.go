package dynamodb

import (
	"strings"
	"time"

	"github.com/humbertoamdc/torvek-sub000/pkg/apperrors"
)

// keySeparator joins the dimensions of a composite sort key. It never appears
// in ids (UUIDs) or in RFC3339 timestamps, so splitting on it is unambiguous.
const keySeparator = "&"

// keyUpperBound sorts after keySeparator plus any dimension value, making
// "prefix+keyUpperBound" a past-the-end bound for BETWEEN range conditions.
const keyUpperBound = "+"

// EncodeKey joins ordered dimensions and a tail id into one sort-key string.
// Dimension order is chosen per index so that lexicographic byte ordering of
// the result matches the desired query semantics.
func EncodeKey(dims ...string) string {
	return strings.Join(dims, keySeparator)
}

// EncodePrefix returns a begins_with prefix matching every key whose leading
// dimensions equal dims, including all deeper descendants.
func EncodePrefix(dims ...string) string {
	return strings.Join(dims, keySeparator) + keySeparator
}

// DecodeKey splits a composite key back into its dimensions. A segment count
// other than arity means the key was not written by this layer; callers log
// it and fail the operation rather than retry.
func DecodeKey(key string, arity int) ([]string, error) {
	segments := strings.Split(key, keySeparator)
	if len(segments) != arity {
		return nil, apperrors.NewMalformedKey(key, arity)
	}
	return segments, nil
}

// FormatTimestamp renders t so that string comparison equals chronological
// comparison: UTC RFC3339 with fixed-width fields and no fractional seconds.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// ParseTimestamp is the inverse of FormatTimestamp.
func ParseTimestamp(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, s)
}

// timestampRange returns the inclusive sort-key bounds for a creation-date
// query over keys of the form "timestamp&id". Nil bounds default to
// epoch-start and now.
func timestampRange(from, to *time.Time, now time.Time) (string, string) {
	lower := time.Unix(0, 0)
	if from != nil {
		lower = *from
	}
	upper := now
	if to != nil {
		upper = *to
	}
	return FormatTimestamp(lower), FormatTimestamp(upper) + keyUpperBound
}
