package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type LogConfig struct {
	Level    string `mapstructure:"level"`
	Prettify bool   `mapstructure:"prettify"`
}

type RPCRetryConfig struct {
	MaxAttempts       int `mapstructure:"maxAttempts"`
	InitialIntervalMs int `mapstructure:"initialIntervalMs"`
	MaxIntervalMs     int `mapstructure:"maxIntervalMs"`
}

type RPCConfig struct {
	URL            string         `mapstructure:"url"`
	BatchSize      int            `mapstructure:"batchSize"`
	MaxWorkers     int            `mapstructure:"maxWorkers"`
	TimeoutSeconds int            `mapstructure:"timeoutSeconds"`
	Retry          RPCRetryConfig `mapstructure:"retry"`
}

type ExportConfig struct {
	StartBlock         int64  `mapstructure:"startBlock"`
	EndBlock           int64  `mapstructure:"endBlock"`
	Blocks             bool   `mapstructure:"blocks"`
	Transactions       bool   `mapstructure:"transactions"`
	Receipts           bool   `mapstructure:"receipts"`
	Logs               bool   `mapstructure:"logs"`
	Sink               string `mapstructure:"sink"`
	BlocksOutput       string `mapstructure:"blocksOutput"`
	TransactionsOutput string `mapstructure:"transactionsOutput"`
	ReceiptsOutput     string `mapstructure:"receiptsOutput"`
	LogsOutput         string `mapstructure:"logsOutput"`
	TransactionHashes  string `mapstructure:"transactionHashes"`
}

type ParquetConfig struct {
	MaxRowsPerRowGroup int64 `mapstructure:"maxRowsPerRowGroup"`
}

type S3Config struct {
	Region          string `mapstructure:"region"`
	AccessKeyID     string `mapstructure:"accessKeyId"`
	SecretAccessKey string `mapstructure:"secretAccessKey"`
	Endpoint        string `mapstructure:"endpoint"`
}

type KafkaConfig struct {
	Brokers     string `mapstructure:"brokers"`
	Username    string `mapstructure:"username"`
	Password    string `mapstructure:"password"`
	TopicPrefix string `mapstructure:"topicPrefix"`
}

type ClickhouseConfig struct {
	Host      string `mapstructure:"host"`
	Port      int    `mapstructure:"port"`
	Username  string `mapstructure:"username"`
	Password  string `mapstructure:"password"`
	Database  string `mapstructure:"database"`
	EnableTLS bool   `mapstructure:"enableTLS"`
	BatchSize int    `mapstructure:"batchSize"`
}

type PostgresConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Username        string `mapstructure:"username"`
	Password        string `mapstructure:"password"`
	Database        string `mapstructure:"database"`
	SSLMode         string `mapstructure:"sslMode"`
	ConnectTimeout  int    `mapstructure:"connectTimeout"`
	MaxOpenConns    int    `mapstructure:"maxOpenConns"`
	MaxIdleConns    int    `mapstructure:"maxIdleConns"`
	MaxConnLifetime int    `mapstructure:"maxConnLifetime"`
	BatchSize       int    `mapstructure:"batchSize"`
}

type MetricsConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	ListenAddr string `mapstructure:"listenAddr"`
}

type Config struct {
	RPC        RPCConfig        `mapstructure:"rpc"`
	Log        LogConfig        `mapstructure:"log"`
	Export     ExportConfig     `mapstructure:"export"`
	Parquet    ParquetConfig    `mapstructure:"parquet"`
	S3         S3Config         `mapstructure:"s3"`
	Kafka      KafkaConfig      `mapstructure:"kafka"`
	Clickhouse ClickhouseConfig `mapstructure:"clickhouse"`
	Postgres   PostgresConfig   `mapstructure:"postgres"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
}

var Cfg Config

func setDefaults() {
	viper.SetDefault("rpc.batchSize", 100)
	viper.SetDefault("rpc.maxWorkers", 5)
	viper.SetDefault("rpc.timeoutSeconds", 30)
	viper.SetDefault("rpc.retry.maxAttempts", 5)
	viper.SetDefault("rpc.retry.initialIntervalMs", 500)
	viper.SetDefault("rpc.retry.maxIntervalMs", 10000)
	viper.SetDefault("log.level", "info")
	viper.SetDefault("export.sink", "file")
	viper.SetDefault("parquet.maxRowsPerRowGroup", 100000)
	viper.SetDefault("s3.region", "us-west-2")
	viper.SetDefault("clickhouse.port", 9440)
	viper.SetDefault("clickhouse.database", "default")
	viper.SetDefault("clickhouse.batchSize", 1000)
	viper.SetDefault("postgres.port", 5432)
	viper.SetDefault("postgres.maxOpenConns", 10)
	viper.SetDefault("postgres.maxIdleConns", 5)
	viper.SetDefault("postgres.batchSize", 1000)
	viper.SetDefault("metrics.listenAddr", ":2112")
}

// LoadConfig reads the optional config file, applies environment overrides
// and unmarshals the result into Cfg. Without an explicit file,
// ./configs/config.yml is used when present.
func LoadConfig(cfgFile string) error {
	setDefaults()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("error reading config file, %s", err)
		}
	} else {
		viper.SetConfigName("config")
		viper.AddConfigPath("./configs")

		if err := viper.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return fmt.Errorf("error reading config file, %s", err)
			}
		}
	}

	// sets e.g. RPC_URL to rpc.url
	replacer := strings.NewReplacer(".", "_")
	viper.SetEnvKeyReplacer(replacer)

	viper.AutomaticEnv()

	err := viper.Unmarshal(&Cfg)
	if err != nil {
		return fmt.Errorf("error unmarshalling config: %v", err)
	}

	return nil
}
