package storage

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const uploadTimeout = 10 * time.Second

// S3Uploader stores objects in an S3 bucket.
type S3Uploader struct {
	client *s3.Client
}

// NewS3Uploader resolves AWS credentials from the default chain for the given
// region.
func NewS3Uploader(ctx context.Context, region string) (*S3Uploader, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}
	return &S3Uploader{client: s3.NewFromConfig(cfg)}, nil
}

// Upload puts the bytes under a fresh collision-free key. Failures are
// captured in the Result.
func (u *S3Uploader) Upload(ctx context.Context, data []byte, bucket, suggestedName string) Result {
	key := buildKey(suggestedName)

	ctx, cancel := context.WithTimeout(ctx, uploadTimeout)
	defer cancel()

	_, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(data),
	})
	if err != nil {
		log.Printf("[storage] upload to s3://%s/%s failed: %v", bucket, key, err)
		return Result{Err: "Upload failed."}
	}

	log.Printf("[storage] uploaded s3://%s/%s (%d bytes)", bucket, key, len(data))
	return Result{Key: key}
}
