package cmd

import (
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	configs "github.com/thirdweb-dev/ethereum-etl/configs"
	"github.com/thirdweb-dev/ethereum-etl/internal/env"
	customLogger "github.com/thirdweb-dev/ethereum-etl/internal/log"
)

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   "ethereumetl",
		Short: "Export Ethereum chain data over JSON-RPC",
		Long:  "ethereumetl exports blocks, transactions, receipts and logs from an Ethereum node to csv, json, parquet, s3, kafka, clickhouse or postgres",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return customLogger.InitLogger(cmd.Name())
		},
	}
)

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./configs/config.yml)")
	rootCmd.PersistentFlags().StringP("provider-uri", "p", "", "JSON-RPC endpoint of the node (http, ws or ipc)")
	rootCmd.PersistentFlags().IntP("batch-size", "b", 100, "How many requests to send in one JSON-RPC batch")
	rootCmd.PersistentFlags().IntP("max-workers", "w", 5, "Maximum number of batches in flight")
	rootCmd.PersistentFlags().Int("rpc-timeout", 30, "Timeout of one JSON-RPC batch call in seconds")
	rootCmd.PersistentFlags().Int("rpc-retry-max-attempts", 5, "How many times a failed JSON-RPC batch call is attempted")
	rootCmd.PersistentFlags().String("log-level", "", "Log level to use for the application")
	rootCmd.PersistentFlags().Bool("log-prettify", false, "Whether to prettify the log output")
	rootCmd.PersistentFlags().String("sink", "file", "Where items are written: file, kafka, clickhouse or postgres")
	rootCmd.PersistentFlags().Bool("metrics-enabled", false, "Serve prometheus metrics")
	rootCmd.PersistentFlags().String("metrics-listen-addr", ":2112", "Address of the metrics server")
	viper.BindPFlag("rpc.url", rootCmd.PersistentFlags().Lookup("provider-uri"))
	viper.BindPFlag("rpc.batchSize", rootCmd.PersistentFlags().Lookup("batch-size"))
	viper.BindPFlag("rpc.maxWorkers", rootCmd.PersistentFlags().Lookup("max-workers"))
	viper.BindPFlag("rpc.timeoutSeconds", rootCmd.PersistentFlags().Lookup("rpc-timeout"))
	viper.BindPFlag("rpc.retry.maxAttempts", rootCmd.PersistentFlags().Lookup("rpc-retry-max-attempts"))
	viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("log.prettify", rootCmd.PersistentFlags().Lookup("log-prettify"))
	viper.BindPFlag("export.sink", rootCmd.PersistentFlags().Lookup("sink"))
	viper.BindPFlag("metrics.enabled", rootCmd.PersistentFlags().Lookup("metrics-enabled"))
	viper.BindPFlag("metrics.listenAddr", rootCmd.PersistentFlags().Lookup("metrics-listen-addr"))
	rootCmd.AddCommand(exportBlocksCmd)
	rootCmd.AddCommand(exportReceiptsCmd)
}

func initConfig() {
	env.Load()
	if err := configs.LoadConfig(cfgFile); err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}
}

func startMetricsServer() {
	if !configs.Cfg.Metrics.Enabled {
		return
	}
	addr := configs.Cfg.Metrics.ListenAddr
	log.Info().Str("addr", addr).Msg("Starting Metrics Server")
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		if err := http.ListenAndServe(addr, mux); err != nil {
			log.Error().Err(err).Msg("Metrics server error")
		}
	}()
}
