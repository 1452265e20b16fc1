package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/ajwill85/hri-3.0/internal/config"
	"github.com/ajwill85/hri-3.0/internal/processor"
)

type s3API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Exporter 把每轮结果写成静态 JSON，供前端或 CDN 直接读取
type S3Exporter struct {
	client s3API
	bucket string
	prefix string
}

func NewS3Exporter(client s3API, bucket, prefix string) *S3Exporter {
	if prefix != "" {
		prefix += "/"
	}
	return &S3Exporter{client: client, bucket: bucket, prefix: prefix}
}

// NewS3ExporterFromConfig 未配置 bucket 时返回 (nil, nil)
func NewS3ExporterFromConfig(ctx context.Context, cfg config.S3Config) (*S3Exporter, error) {
	if cfg.Bucket == "" {
		return nil, nil
	}
	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("storage: load aws config: %w", err)
	}
	return NewS3Exporter(s3.NewFromConfig(awsCfg), cfg.Bucket, cfg.Prefix), nil
}

// SaveFeed 写两份：latest.json 覆盖，runs/<runId>.json 归档
func (e *S3Exporter) SaveFeed(ctx context.Context, feed *processor.Feed) error {
	b, err := json.Marshal(feed)
	if err != nil {
		return fmt.Errorf("storage: marshal feed: %w", err)
	}

	keys := []struct {
		key          string
		cacheControl string
	}{
		{e.prefix + "feed/latest.json", "public, max-age=300"},
		{e.prefix + "feed/runs/" + feed.RunID + ".json", "public, max-age=86400"},
	}
	for _, k := range keys {
		_, err := e.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:       aws.String(e.bucket),
			Key:          aws.String(k.key),
			Body:         bytes.NewReader(b),
			ContentType:  aws.String("application/json"),
			CacheControl: aws.String(k.cacheControl),
		})
		if err != nil {
			return fmt.Errorf("storage: put s3://%s/%s: %w", e.bucket, k.key, err)
		}
	}
	return nil
}
