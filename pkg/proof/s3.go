package proof

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/nextcommerce/storedash/pkg/observability"
)

// S3API is the subset of the S3 client used for proofs
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
}

// S3Uploader stores proofs in an S3-compatible bucket under content-addressed keys
type S3Uploader struct {
	client        S3API
	bucket        string
	publicBaseURL string
	metrics       *observability.Metrics
}

// NewS3Uploader creates an uploader. Returned URLs are publicBaseURL + "/" + key.
// metrics may be nil.
func NewS3Uploader(client S3API, bucket, publicBaseURL string, metrics *observability.Metrics) *S3Uploader {
	return &S3Uploader{
		client:        client,
		bucket:        bucket,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
		metrics:       metrics,
	}
}

// Upload implements Uploader
func (u *S3Uploader) Upload(ctx context.Context, img Image) (string, error) {
	key := img.Key()

	ctx, span := observability.Tracer("proof").Start(ctx, "proof.Upload")
	defer span.End()
	span.SetAttributes(
		attribute.String("s3.bucket", u.bucket),
		attribute.String("s3.key", key),
		attribute.Int("proof.bytes", len(img.Data)),
	)

	start := time.Now()
	_, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(u.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(img.Data),
		ContentLength: aws.Int64(int64(len(img.Data))),
		ContentType:   aws.String(img.ContentType),
		CacheControl:  aws.String("public, max-age=31536000, immutable"),
		Metadata: map[string]string{
			"original-filename": img.Filename,
		},
	})
	u.observe(err, time.Since(start), len(img.Data))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "put object failed")
		return "", fmt.Errorf("%w: %v", ErrUpload, err)
	}

	return u.publicBaseURL + "/" + key, nil
}

func (u *S3Uploader) observe(err error, elapsed time.Duration, size int) {
	if u.metrics == nil {
		return
	}
	result := "success"
	if err != nil {
		result = "error"
	}
	u.metrics.ProofUploadsTotal.WithLabelValues(result).Inc()
	u.metrics.ProofUploadDuration.Observe(elapsed.Seconds())
	if err == nil {
		u.metrics.ProofUploadBytes.Observe(float64(size))
	}
}

// Ping checks the bucket is reachable
func (u *S3Uploader) Ping(ctx context.Context) error {
	_, err := u.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(u.bucket)})
	return err
}
