package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	sc "github.com/dmitrijs2005/gophauth/internal/server/config"
	"github.com/google/uuid"
)

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}
)

// ObjectPutter is the part of *s3.Client the outbox needs.
type ObjectPutter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Outbox drops every reset notice as a JSON object into a bucket, where a
// mail relay picks it up.
type S3Outbox struct {
	client ObjectPutter
	bucket string
	now    func() time.Time
}

// NewS3Outbox builds an S3 (or MinIO) client from the server config.
func NewS3Outbox(ctx context.Context, cfg *sc.Config) (*S3Outbox, error) {
	awsCfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(cfg.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.S3RootUser,
			cfg.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := newS3ClientFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3BaseEndpoint)
			o.UsePathStyle = true
		}
	})

	return NewS3OutboxWithClient(client, cfg.S3Bucket), nil
}

// NewS3OutboxWithClient wires an outbox around an existing client.
func NewS3OutboxWithClient(client ObjectPutter, bucket string) *S3Outbox {
	return &S3Outbox{client: client, bucket: bucket, now: time.Now}
}

// ObjectKey returns the outbox key for a notice written at t.
func ObjectKey(t time.Time) string {
	return fmt.Sprintf("outbox/reset/%04d/%02d/%02d/%s.json", t.Year(), t.Month(), t.Day(), uuid.New())
}

func (o *S3Outbox) NotifyReset(ctx context.Context, notice ResetNotice) error {
	body, err := json.Marshal(notice)
	if err != nil {
		return err
	}

	key := ObjectKey(o.now().UTC())

	_, err = o.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(o.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}
