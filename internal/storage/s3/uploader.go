// internal/storage/s3/uploader.go
package s3

import (
	"bytes"
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"notification-engine/internal/models"
)

type putObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Uploader stores attachment binaries in an S3 bucket under their assigned
// storage paths.
type Uploader struct {
	client putObjectAPI
	bucket string
}

func NewUploader(ctx context.Context, region, bucket string) (*Uploader, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return &Uploader{client: s3.NewFromConfig(cfg), bucket: bucket}, nil
}

// NewUploaderWithClient injects a preconfigured client, used by tests.
func NewUploaderWithClient(client putObjectAPI, bucket string) *Uploader {
	return &Uploader{client: client, bucket: bucket}
}

// Upload writes every attachment in order. The first failure aborts the batch.
func (u *Uploader) Upload(ctx context.Context, attachments []models.Attachment) error {
	for _, attachment := range attachments {
		input := &s3.PutObjectInput{
			Bucket: &u.bucket,
			Key:    &attachment.StoragePath,
			Body:   bytes.NewReader(attachment.Content),
		}
		if attachment.Mime != "" {
			mime := attachment.Mime
			input.ContentType = &mime
		}
		if _, err := u.client.PutObject(ctx, input); err != nil {
			return fmt.Errorf("upload %s: %w", attachment.StoragePath, err)
		}
	}
	return nil
}
