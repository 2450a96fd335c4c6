package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	configs "github.com/thirdweb-dev/ethereum-etl/configs"
	"github.com/thirdweb-dev/ethereum-etl/internal/common"
	"github.com/thirdweb-dev/ethereum-etl/internal/jobs"
	"github.com/thirdweb-dev/ethereum-etl/internal/rpc"
)

var exportReceiptsCmd = &cobra.Command{
	Use:   "export_receipts_and_logs",
	Short: "Export receipts and logs of a list of transactions",
	Long:  "Export the receipts of the transactions listed in transaction-hashes, one hash per line, and their logs",
	Run:   RunExportReceipts,
}

func init() {
	exportReceiptsCmd.Flags().StringP("transaction-hashes", "t", "", "File with one transaction hash per line, - for stdin")
	exportReceiptsCmd.Flags().Bool("receipts", false, "Export receipts")
	exportReceiptsCmd.Flags().Bool("logs", false, "Export logs")
	exportReceiptsCmd.Flags().String("receipts-output", "", "Output of receipts: a .csv, .json or .parquet file, optionally .gz, an s3:// uri or - for stdout")
	exportReceiptsCmd.Flags().String("logs-output", "", "Output of logs: a .csv, .json or .parquet file, optionally .gz, an s3:// uri or - for stdout")
	viper.BindPFlag("export.transactionHashes", exportReceiptsCmd.Flags().Lookup("transaction-hashes"))
	viper.BindPFlag("export.receipts", exportReceiptsCmd.Flags().Lookup("receipts"))
	viper.BindPFlag("export.logs", exportReceiptsCmd.Flags().Lookup("logs"))
	viper.BindPFlag("export.receiptsOutput", exportReceiptsCmd.Flags().Lookup("receipts-output"))
	viper.BindPFlag("export.logsOutput", exportReceiptsCmd.Flags().Lookup("logs-output"))
}

func RunExportReceipts(cmd *cobra.Command, args []string) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := configs.Cfg
	hashes, err := readTransactionHashes(cfg.Export.TransactionHashes)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to read transaction hashes")
	}
	jobCfg, err := receiptsJobConfig(cfg, hashes)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid export configuration")
	}

	var itemTypes []common.ItemType
	if jobCfg.ExportReceipts {
		itemTypes = append(itemTypes, common.ItemTypeReceipt)
	}
	if jobCfg.ExportLogs {
		itemTypes = append(itemTypes, common.ItemTypeLog)
	}
	itemExporter, err := newExporter(ctx, cfg, itemTypes)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create exporter")
	}

	client, err := rpc.Initialize()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize RPC")
	}
	defer client.Close()

	job, err := jobs.NewExportReceiptsJob(jobCfg, client, itemExporter)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create export job")
	}

	startMetricsServer()
	if err := jobs.Run(ctx, job); err != nil {
		log.Fatal().Err(err).Msg("Export failed")
	}
}

// receiptsJobConfig builds and validates the job configuration before any
// exporter or node connection is made.
func receiptsJobConfig(cfg configs.Config, hashes []string) (jobs.ExportReceiptsConfig, error) {
	jobCfg := jobs.ExportReceiptsConfig{
		TransactionHashes: hashes,
		BatchSize:         cfg.RPC.BatchSize,
		MaxWorkers:        cfg.RPC.MaxWorkers,
		ExportReceipts:    enabled(cfg, cfg.Export.Receipts, cfg.Export.ReceiptsOutput),
		ExportLogs:        enabled(cfg, cfg.Export.Logs, cfg.Export.LogsOutput),
	}
	return jobCfg, jobCfg.Validate()
}

func readTransactionHashes(path string) ([]string, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: no transaction hashes file given", common.ErrConfiguration)
	}
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}
	return parseTransactionHashes(r)
}

// parseTransactionHashes reads one hash per line, skipping blank lines.
func parseTransactionHashes(r io.Reader) ([]string, error) {
	var hashes []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		hashes = append(hashes, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return hashes, nil
}
