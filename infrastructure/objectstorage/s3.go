package objectstorage

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"go.uber.org/zap"

	"github.com/humbertoamdc/torvek-sub000/application/ports"
	"github.com/humbertoamdc/torvek-sub000/pkg/apperrors"
)

// deleteObjectsLimit is the store's cap on keys per DeleteObjects call.
const deleteObjectsLimit = 1000

// S3Storage implements ports.ObjectStorage over one bucket. Part uploads and
// downloads never pass through this service; clients talk to the bucket
// directly with short-lived presigned URLs.
type S3Storage struct {
	client  *s3.Client
	presign *s3.PresignClient
	bucket  string
	logger  *zap.Logger
}

var _ ports.ObjectStorage = (*S3Storage)(nil)

func NewS3Storage(client *s3.Client, bucket string, logger *zap.Logger) *S3Storage {
	return &S3Storage{
		client:  client,
		presign: s3.NewPresignClient(client),
		bucket:  bucket,
		logger:  logger,
	}
}

func (s *S3Storage) PutPresignedURL(ctx context.Context, path string, ttl time.Duration) (string, error) {
	if path == "" {
		return "", apperrors.NewMissingParameter("path is required")
	}

	req, err := s.presign.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(path),
	}, s3.WithPresignExpires(ttl))
	if err != nil {
		return "", apperrors.NewUnavailable("presign upload", err)
	}
	return req.URL, nil
}

func (s *S3Storage) GetPresignedURL(ctx context.Context, path string, ttl time.Duration) (string, error) {
	if path == "" {
		return "", apperrors.NewMissingParameter("path is required")
	}

	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(path),
	}, s3.WithPresignExpires(ttl))
	if err != nil {
		return "", apperrors.NewUnavailable("presign download", err)
	}
	return req.URL, nil
}

func (s *S3Storage) Delete(ctx context.Context, path string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(path),
	})
	if err != nil {
		return apperrors.NewUnavailable("delete object", err)
	}
	return nil
}

// BulkDelete removes blobs in provider-sized batches. Individual key errors
// are logged and folded into one failure; callers treat blob cleanup as best
// effort.
func (s *S3Storage) BulkDelete(ctx context.Context, paths []string) error {
	for start := 0; start < len(paths); start += deleteObjectsLimit {
		end := start + deleteObjectsLimit
		if end > len(paths) {
			end = len(paths)
		}

		objects := make([]types.ObjectIdentifier, 0, end-start)
		for _, path := range paths[start:end] {
			objects = append(objects, types.ObjectIdentifier{Key: aws.String(path)})
		}

		out, err := s.client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
			Bucket: aws.String(s.bucket),
			Delete: &types.Delete{Objects: objects, Quiet: aws.Bool(true)},
		})
		if err != nil {
			return apperrors.NewUnavailable("bulk delete objects", err)
		}
		if len(out.Errors) > 0 {
			for _, e := range out.Errors {
				s.logger.Warn("object delete failed",
					zap.String("key", aws.ToString(e.Key)),
					zap.String("code", aws.ToString(e.Code)),
				)
			}
			return apperrors.NewUnavailable("bulk delete objects", nil).WithDetails(map[string]interface{}{
				"failed": len(out.Errors),
			})
		}
	}
	return nil
}
