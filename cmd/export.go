package cmd

import (
	"context"

	configs "github.com/thirdweb-dev/ethereum-etl/configs"
	"github.com/thirdweb-dev/ethereum-etl/internal/common"
	"github.com/thirdweb-dev/ethereum-etl/internal/exporter"
)

// exporterConfig maps the loaded configuration to the exporter factory input.
func exporterConfig(cfg configs.Config) exporter.Config {
	return exporter.Config{
		Sink: cfg.Export.Sink,
		Outputs: map[common.ItemType]string{
			common.ItemTypeBlock:       cfg.Export.BlocksOutput,
			common.ItemTypeTransaction: cfg.Export.TransactionsOutput,
			common.ItemTypeReceipt:     cfg.Export.ReceiptsOutput,
			common.ItemTypeLog:         cfg.Export.LogsOutput,
		},
		ParquetRowGroupSize: cfg.Parquet.MaxRowsPerRowGroup,
		Kafka: exporter.KafkaConfig{
			Brokers:     cfg.Kafka.Brokers,
			Username:    cfg.Kafka.Username,
			Password:    cfg.Kafka.Password,
			TopicPrefix: cfg.Kafka.TopicPrefix,
		},
		ClickHouse: exporter.ClickHouseConfig{
			Host:      cfg.Clickhouse.Host,
			Port:      cfg.Clickhouse.Port,
			Username:  cfg.Clickhouse.Username,
			Password:  cfg.Clickhouse.Password,
			Database:  cfg.Clickhouse.Database,
			EnableTLS: cfg.Clickhouse.EnableTLS,
			BatchSize: cfg.Clickhouse.BatchSize,
		},
		Postgres: exporter.PostgresConfig{
			Host:            cfg.Postgres.Host,
			Port:            cfg.Postgres.Port,
			Username:        cfg.Postgres.Username,
			Password:        cfg.Postgres.Password,
			Database:        cfg.Postgres.Database,
			SSLMode:         cfg.Postgres.SSLMode,
			ConnectTimeout:  cfg.Postgres.ConnectTimeout,
			MaxOpenConns:    cfg.Postgres.MaxOpenConns,
			MaxIdleConns:    cfg.Postgres.MaxIdleConns,
			MaxConnLifetime: cfg.Postgres.MaxConnLifetime,
			BatchSize:       cfg.Postgres.BatchSize,
		},
		S3: exporter.S3Config{
			Region:          cfg.S3.Region,
			AccessKeyID:     cfg.S3.AccessKeyID,
			SecretAccessKey: cfg.S3.SecretAccessKey,
			Endpoint:        cfg.S3.Endpoint,
		},
	}
}

// enabled reports whether an item type is exported: either explicitly or,
// for the file sink, by having an output.
func enabled(cfg configs.Config, explicit bool, output string) bool {
	if explicit {
		return true
	}
	sink := cfg.Export.Sink
	return (sink == "" || sink == exporter.SinkFile) && output != ""
}

func newExporter(ctx context.Context, cfg configs.Config, itemTypes []common.ItemType) (exporter.ItemExporter, error) {
	return exporter.New(ctx, exporterConfig(cfg), itemTypes)
}
