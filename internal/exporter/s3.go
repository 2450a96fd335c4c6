package exporter

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog/log"
	"github.com/thirdweb-dev/ethereum-etl/internal/common"
)

// S3PutObjectAPI is the part of the s3 client used for uploads.
type S3PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Exporter writes through a local file exporter and uploads the finished
// file on Close.
type S3Exporter struct {
	inner     ItemExporter
	localPath string
	bucket    string
	key       string
	client    S3PutObjectAPI
	opened    bool
}

func NewS3Exporter(inner ItemExporter, localPath, bucket, key string, client S3PutObjectAPI) *S3Exporter {
	return &S3Exporter{inner: inner, localPath: localPath, bucket: bucket, key: key, client: client}
}

// ParseS3URI splits s3://bucket/key into bucket and key.
func ParseS3URI(uri string) (bucket, key string, err error) {
	parsed, err := url.Parse(uri)
	if err != nil {
		return "", "", fmt.Errorf("%w: invalid s3 uri %s: %v", common.ErrConfiguration, uri, err)
	}
	key = strings.TrimPrefix(parsed.Path, "/")
	if parsed.Scheme != "s3" || parsed.Host == "" || key == "" {
		return "", "", fmt.Errorf("%w: invalid s3 uri %s", common.ErrConfiguration, uri)
	}
	return parsed.Host, key, nil
}

// stagingFile reserves a unique local file an s3 object is written to before
// upload. The base name of the key is kept so the format is still chosen by
// extension.
func stagingFile(key string) (string, error) {
	f, err := os.CreateTemp("", "ethereumetl-*-"+filepath.Base(key))
	if err != nil {
		return "", fmt.Errorf("failed to create staging file for %s: %w", key, err)
	}
	path := f.Name()
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to create staging file for %s: %w", key, err)
	}
	return path, nil
}

func (e *S3Exporter) Open(ctx context.Context, schemas ...*common.Schema) error {
	if err := e.inner.Open(ctx, schemas...); err != nil {
		return err
	}
	e.opened = true
	return nil
}

func (e *S3Exporter) Export(ctx context.Context, item common.Item) error {
	return e.inner.Export(ctx, item)
}

func (e *S3Exporter) Close(ctx context.Context) error {
	if err := e.inner.Close(ctx); err != nil {
		return err
	}
	if !e.opened {
		return nil
	}
	e.opened = false
	return e.upload(ctx)
}

func (e *S3Exporter) upload(ctx context.Context) error {
	file, err := os.Open(e.localPath)
	if err != nil {
		return fmt.Errorf("failed to open file for upload: %w", err)
	}
	defer file.Close()

	_, err = e.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(e.bucket),
		Key:    aws.String(e.key),
		Body:   file,
	})
	if err != nil {
		return fmt.Errorf("failed to upload s3://%s/%s: %w", e.bucket, e.key, err)
	}
	log.Info().Str("bucket", e.bucket).Str("key", e.key).Msg("Uploaded export file to S3")

	if err := os.Remove(e.localPath); err != nil {
		log.Warn().Err(err).Str("file", e.localPath).Msg("Failed to remove uploaded file")
	}
	return nil
}
