package observability

import (
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-xray-sdk-go/instrumentation/awsv2"
	"github.com/aws/aws-xray-sdk-go/xray"
)

// InstrumentAWSClients adds X-Ray subsegments to every AWS SDK call made
// through clients built from cfg.
func InstrumentAWSClients(cfg *aws.Config) {
	awsv2.AWSV2Instrumentor(&cfg.APIOptions)
}

// TraceHandler opens an X-Ray segment per request around the HTTP surface.
// Used by the standalone server; on Lambda the runtime owns the segment.
func TraceHandler(serviceName string, next http.Handler) http.Handler {
	return xray.Handler(xray.NewFixedSegmentNamer(serviceName), next)
}
