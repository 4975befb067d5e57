package dynamodb

import (
	"context"
	"errors"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"

	"github.com/humbertoamdc/torvek-sub000/pkg/apperrors"
)

// translateError maps store failures into the shared taxonomy at the
// repository boundary. Nothing store-specific leaks upward.
func translateError(operation string, err error) error {
	if err == nil {
		return nil
	}
	if apperrors.Get(err) != nil {
		return err
	}

	var conditionFailed *types.ConditionalCheckFailedException
	if errors.As(err, &conditionFailed) {
		return apperrors.NewPreconditionFailed("storage condition rejected the write").WithCause(err)
	}

	var throughput *types.ProvisionedThroughputExceededException
	var limit *types.RequestLimitExceeded
	var internal *types.InternalServerError
	if errors.As(err, &throughput) || errors.As(err, &limit) || errors.As(err, &internal) {
		return apperrors.NewUnavailable(operation, err)
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return apperrors.NewUnavailable(operation, err)
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "ThrottlingException", "ServiceUnavailable", "RequestTimeout":
			return apperrors.NewUnavailable(operation, err)
		}
		switch apiErr.ErrorFault() {
		case smithy.FaultServer:
			return apperrors.NewUnavailable(operation, err)
		}
	}

	return apperrors.NewUnknown(operation, err)
}
