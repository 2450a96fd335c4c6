package exporter

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/thirdweb-dev/ethereum-etl/internal/common"
)

const (
	SinkFile       = "file"
	SinkKafka      = "kafka"
	SinkClickHouse = "clickhouse"
	SinkPostgres   = "postgres"
)

type S3Config struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Endpoint        string
}

type Config struct {
	// Sink is one of file, kafka, clickhouse or postgres. Empty means file.
	Sink string
	// Outputs maps item types to output paths for the file sink.
	Outputs             map[common.ItemType]string
	ParquetRowGroupSize int64
	Kafka               KafkaConfig
	ClickHouse          ClickHouseConfig
	Postgres            PostgresConfig
	S3                  S3Config
}

// New builds the exporter for the given item types.
func New(ctx context.Context, cfg Config, itemTypes []common.ItemType) (ItemExporter, error) {
	switch cfg.Sink {
	case "", SinkFile:
		return newFileSink(ctx, cfg, itemTypes)
	case SinkKafka:
		return NewKafkaExporter(cfg.Kafka), nil
	case SinkClickHouse:
		return NewClickHouseExporter(cfg.ClickHouse), nil
	case SinkPostgres:
		return NewPostgresExporter(cfg.Postgres), nil
	default:
		return nil, fmt.Errorf("%w: unknown export sink %q", common.ErrConfiguration, cfg.Sink)
	}
}

func newFileSink(ctx context.Context, cfg Config, itemTypes []common.ItemType) (ItemExporter, error) {
	var s3Client S3PutObjectAPI
	byOutput := make(map[string]ItemExporter)
	exporters := make(map[common.ItemType]ItemExporter, len(itemTypes))
	for _, itemType := range itemTypes {
		output := cfg.Outputs[itemType]
		if output == "" {
			return nil, fmt.Errorf("%w: no output configured for %s", common.ErrConfiguration, itemType)
		}
		if shared, ok := byOutput[output]; ok {
			if formatOf(output) != formatJSON {
				return nil, fmt.Errorf("%w: output %s is shared by several item types, only json outputs can be shared", common.ErrConfiguration, output)
			}
			exporters[itemType] = shared
			continue
		}

		var exporter ItemExporter
		if strings.HasPrefix(output, "s3://") {
			bucket, key, err := ParseS3URI(output)
			if err != nil {
				return nil, err
			}
			if s3Client == nil {
				client, err := NewS3Client(ctx, cfg.S3)
				if err != nil {
					return nil, err
				}
				s3Client = client
			}
			if formatOf(key) == formatUnknown {
				return nil, fmt.Errorf("%w: unsupported output format %s", common.ErrConfiguration, output)
			}
			local, err := stagingFile(key)
			if err != nil {
				return nil, err
			}
			inner, err := NewFileExporter(local, itemType, cfg.ParquetRowGroupSize)
			if err != nil {
				os.Remove(local)
				return nil, err
			}
			exporter = NewS3Exporter(inner, local, bucket, key, s3Client)
		} else {
			fileExporter, err := NewFileExporter(output, itemType, cfg.ParquetRowGroupSize)
			if err != nil {
				return nil, err
			}
			exporter = fileExporter
		}
		byOutput[output] = exporter
		exporters[itemType] = exporter
	}
	return NewCompositeExporter(exporters), nil
}

type format int

const (
	formatUnknown format = iota
	formatCSV
	formatJSON
	formatParquet
)

// formatOf picks the file format from the extension, ignoring a trailing .gz.
// Stdout is written as json lines.
func formatOf(path string) format {
	if path == "-" {
		return formatJSON
	}
	ext := strings.ToLower(filepath.Ext(strings.TrimSuffix(path, ".gz")))
	switch ext {
	case ".csv":
		return formatCSV
	case ".json", ".jsonl":
		return formatJSON
	case ".parquet":
		if strings.HasSuffix(path, ".gz") {
			return formatUnknown
		}
		return formatParquet
	default:
		return formatUnknown
	}
}

// NewFileExporter returns the exporter for a local path based on its extension.
func NewFileExporter(path string, itemType common.ItemType, rowGroupSize int64) (ItemExporter, error) {
	switch formatOf(path) {
	case formatCSV:
		return NewCSVExporter(path, itemType), nil
	case formatJSON:
		return NewJSONExporter(path), nil
	case formatParquet:
		return NewParquetExporter(path, itemType, rowGroupSize), nil
	default:
		return nil, fmt.Errorf("%w: unsupported output format %s", common.ErrConfiguration, path)
	}
}

func NewS3Client(ctx context.Context, cfg S3Config) (*s3.Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(aws.CredentialsProviderFunc(func(ctx context.Context) (aws.Credentials, error) {
			return aws.Credentials{
				AccessKeyID:     cfg.AccessKeyID,
				SecretAccessKey: cfg.SecretAccessKey,
			}, nil
		})))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize AWS config: %w", err)
	}
	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	}), nil
}
