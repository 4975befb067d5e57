package observability

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
)

// MetricsClient is the CloudWatch surface metrics publishing needs.
type MetricsClient interface {
	PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error)
}

// Metrics publishes operational metrics to CloudWatch. Publishing is
// best-effort: a metric that fails to ship never fails the request.
type Metrics struct {
	namespace string
	client    MetricsClient
}

// NewMetrics creates a metrics instance
func NewMetrics(namespace string, client MetricsClient) *Metrics {
	return &Metrics{
		namespace: namespace,
		client:    client,
	}
}

// RecordLatency records the duration of an operation in milliseconds.
func (m *Metrics) RecordLatency(ctx context.Context, name string, d time.Duration, dimensions map[string]string) {
	m.put(ctx, types.MetricDatum{
		MetricName: aws.String(name),
		Value:      aws.Float64(float64(d.Milliseconds())),
		Unit:       types.StandardUnitMilliseconds,
		Dimensions: toDimensions(dimensions),
		Timestamp:  aws.Time(time.Now()),
	})
}

// IncrementCounter adds one to a counter metric.
func (m *Metrics) IncrementCounter(ctx context.Context, name string, dimensions map[string]string) {
	m.put(ctx, types.MetricDatum{
		MetricName: aws.String(name),
		Value:      aws.Float64(1),
		Unit:       types.StandardUnitCount,
		Dimensions: toDimensions(dimensions),
		Timestamp:  aws.Time(time.Now()),
	})
}

func (m *Metrics) put(ctx context.Context, datum types.MetricDatum) {
	_, _ = m.client.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
		Namespace:  aws.String(m.namespace),
		MetricData: []types.MetricDatum{datum},
	})
}

func toDimensions(dimensions map[string]string) []types.Dimension {
	if len(dimensions) == 0 {
		return nil
	}
	out := make([]types.Dimension, 0, len(dimensions))
	for name, value := range dimensions {
		out = append(out, types.Dimension{
			Name:  aws.String(name),
			Value: aws.String(value),
		})
	}
	return out
}
