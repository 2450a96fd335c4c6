package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	configs "github.com/thirdweb-dev/ethereum-etl/configs"
	"github.com/thirdweb-dev/ethereum-etl/internal/common"
	"github.com/thirdweb-dev/ethereum-etl/internal/jobs"
	"github.com/thirdweb-dev/ethereum-etl/internal/rpc"
)

var exportBlocksCmd = &cobra.Command{
	Use:   "export_blocks_and_transactions",
	Short: "Export blocks and transactions of a block range",
	Long:  "Export the blocks of the inclusive range [start-block, end-block] and their transactions. Records of batches completed before a failure stay in the outputs.",
	Run:   RunExportBlocks,
}

func init() {
	exportBlocksCmd.Flags().Int64P("start-block", "s", 0, "Start block, inclusive")
	exportBlocksCmd.Flags().Int64P("end-block", "e", 0, "End block, inclusive")
	exportBlocksCmd.Flags().Bool("blocks", false, "Export blocks")
	exportBlocksCmd.Flags().Bool("transactions", false, "Export transactions")
	exportBlocksCmd.Flags().String("blocks-output", "", "Output of blocks: a .csv, .json or .parquet file, optionally .gz, an s3:// uri or - for stdout")
	exportBlocksCmd.Flags().String("transactions-output", "", "Output of transactions: a .csv, .json or .parquet file, optionally .gz, an s3:// uri or - for stdout")
	viper.BindPFlag("export.startBlock", exportBlocksCmd.Flags().Lookup("start-block"))
	viper.BindPFlag("export.endBlock", exportBlocksCmd.Flags().Lookup("end-block"))
	viper.BindPFlag("export.blocks", exportBlocksCmd.Flags().Lookup("blocks"))
	viper.BindPFlag("export.transactions", exportBlocksCmd.Flags().Lookup("transactions"))
	viper.BindPFlag("export.blocksOutput", exportBlocksCmd.Flags().Lookup("blocks-output"))
	viper.BindPFlag("export.transactionsOutput", exportBlocksCmd.Flags().Lookup("transactions-output"))
}

func RunExportBlocks(cmd *cobra.Command, args []string) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := configs.Cfg
	jobCfg, err := blocksJobConfig(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid export configuration")
	}

	var itemTypes []common.ItemType
	if jobCfg.ExportBlocks {
		itemTypes = append(itemTypes, common.ItemTypeBlock)
	}
	if jobCfg.ExportTransactions {
		itemTypes = append(itemTypes, common.ItemTypeTransaction)
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

	job, err := jobs.NewExportBlocksJob(jobCfg, client, itemExporter)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create export job")
	}

	startMetricsServer()
	if err := jobs.Run(ctx, job); err != nil {
		log.Fatal().Err(err).Msg("Export failed")
	}
}

// blocksJobConfig builds and validates the job configuration before any
// exporter or node connection is made.
func blocksJobConfig(cfg configs.Config) (jobs.ExportBlocksConfig, error) {
	jobCfg := jobs.ExportBlocksConfig{
		StartBlock:         cfg.Export.StartBlock,
		EndBlock:           cfg.Export.EndBlock,
		BatchSize:          cfg.RPC.BatchSize,
		MaxWorkers:         cfg.RPC.MaxWorkers,
		ExportBlocks:       enabled(cfg, cfg.Export.Blocks, cfg.Export.BlocksOutput),
		ExportTransactions: enabled(cfg, cfg.Export.Transactions, cfg.Export.TransactionsOutput),
	}
	return jobCfg, jobCfg.Validate()
}
