package refdata

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/aristath/valveprice/internal/config"
)

// objectDownloader is the subset of manager.Downloader the source needs
type objectDownloader interface {
	Download(ctx context.Context, w io.WriterAt, input *s3.GetObjectInput, options ...func(*manager.Downloader)) (int64, error)
}

// S3Source reads <prefix>/<table>.json objects from an S3-compatible bucket
type S3Source struct {
	downloader objectDownloader
	bucket     string
	prefix     string
}

// NewS3Source builds a bucket source from configuration.
// A custom endpoint (e.g. Cloudflare R2) switches to path-style addressing.
func NewS3Source(ctx context.Context, cfg config.S3Config) (*S3Source, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load S3 configuration: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return newS3SourceWithDownloader(manager.NewDownloader(client), cfg.Bucket, cfg.Prefix), nil
}

func newS3SourceWithDownloader(d objectDownloader, bucket, prefix string) *S3Source {
	return &S3Source{
		downloader: d,
		bucket:     bucket,
		prefix:     strings.Trim(prefix, "/"),
	}
}

// Name identifies the source in logs
func (s *S3Source) Name() string {
	return "s3://" + path.Join(s.bucket, s.prefix)
}

// Load downloads and decodes every required table
func (s *S3Source) Load(ctx context.Context) (*Tables, error) {
	return decodeJSONTables(ctx, s.fetch)
}

func (s *S3Source) objectKey(table string) string {
	return path.Join(s.prefix, table+".json")
}

func (s *S3Source) fetch(ctx context.Context, table string) ([]byte, error) {
	key := s.objectKey(table)
	buf := manager.NewWriteAtBuffer(nil)

	_, err := s.downloader.Download(ctx, buf, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: s3://%s/%s", ErrMissingTable, s.bucket, key)
		}
		return nil, fmt.Errorf("failed to download s3://%s/%s: %w", s.bucket, key, err)
	}

	return buf.Bytes(), nil
}

func isNotFound(err error) bool {
	var noKey *types.NoSuchKey
	if errors.As(err, &noKey) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound":
			return true
		}
	}
	return false
}
