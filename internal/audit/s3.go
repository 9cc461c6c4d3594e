package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"ai_sdlc/internal/logging"
)

// Archiver receives flushed batches for long-term storage.
type Archiver interface {
	WriteBatch(ctx context.Context, batch []*Record) (string, error)
}

// S3Archiver writes audit batches to S3 as JSON Lines objects, keyed by
// date, for example audit/2026/08/25/gateway-20260825-143022-123456789.jsonl.
type S3Archiver struct {
	client *s3.Client
	bucket string
	prefix string
}

func NewS3Archiver(ctx context.Context, bucket, region, prefix string) (*S3Archiver, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &S3Archiver{
		client: s3.NewFromConfig(cfg),
		bucket: bucket,
		prefix: prefix,
	}, nil
}

func (a *S3Archiver) WriteBatch(ctx context.Context, batch []*Record) (string, error) {
	if len(batch) == 0 {
		return "", nil
	}

	now := time.Now()
	key := fmt.Sprintf("%s%04d/%02d/%02d/gateway-%s-%d.jsonl",
		a.prefix, now.Year(), now.Month(), now.Day(),
		now.Format("20060102-150405"), now.Nanosecond(),
	)

	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	for _, rec := range batch {
		if err := encoder.Encode(rec); err != nil {
			logging.Errorf("failed to encode audit record: %v", err)
			continue
		}
	}

	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(buf.Bytes()),
		ContentType: aws.String("application/x-ndjson"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload audit batch to S3: %w", err)
	}

	logging.Infof("archived %d audit records to s3://%s/%s", len(batch), a.bucket, key)
	return key, nil
}
