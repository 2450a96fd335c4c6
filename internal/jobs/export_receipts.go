package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/thirdweb-dev/ethereum-etl/internal/common"
	"github.com/thirdweb-dev/ethereum-etl/internal/exporter"
	"github.com/thirdweb-dev/ethereum-etl/internal/mapper"
	"github.com/thirdweb-dev/ethereum-etl/internal/rpc"
	"github.com/thirdweb-dev/ethereum-etl/internal/worker"
)

type ExportReceiptsConfig struct {
	TransactionHashes []string
	BatchSize         int
	MaxWorkers        int
	ExportReceipts    bool
	ExportLogs        bool
}

// ExportReceiptsJob exports the receipts of a list of transactions and,
// optionally, their logs.
type ExportReceiptsJob struct {
	lifecycle
	cfg           ExportReceiptsConfig
	provider      rpc.BatchProvider
	executor      *worker.BatchWorkExecutor[string]
	receiptMapper *mapper.ReceiptMapper
	logMapper     *mapper.LogMapper
}

// Validate checks the configuration without touching the network.
func (cfg ExportReceiptsConfig) Validate() error {
	if !cfg.ExportReceipts && !cfg.ExportLogs {
		return fmt.Errorf("%w: at least one of receipts or logs must be exported", common.ErrConfiguration)
	}
	return validateSizing(cfg.BatchSize, cfg.MaxWorkers)
}

func NewExportReceiptsJob(cfg ExportReceiptsConfig, provider rpc.BatchProvider, itemExporter exporter.ItemExporter) (*ExportReceiptsJob, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	executor, err := worker.NewBatchWorkExecutor(cfg.BatchSize, cfg.MaxWorkers,
		worker.WithProgressLogger[string](worker.NewProgressLogger("receipts")))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrConfiguration, err)
	}

	var schemas []*common.Schema
	if cfg.ExportReceipts {
		schemas = append(schemas, mapper.ReceiptSchema)
	}
	if cfg.ExportLogs {
		schemas = append(schemas, mapper.LogSchema)
	}
	logMapper := mapper.NewLogMapper()
	return &ExportReceiptsJob{
		lifecycle: lifecycle{
			exporter: itemExporter,
			schemas:  schemas,
			shutdown: executor.Shutdown,
		},
		cfg:           cfg,
		provider:      provider,
		executor:      executor,
		receiptMapper: mapper.NewReceiptMapper(logMapper),
		logMapper:     logMapper,
	}, nil
}

func (j *ExportReceiptsJob) Export(ctx context.Context) error {
	if err := j.beginExport(); err != nil {
		return err
	}
	total := len(j.cfg.TransactionHashes)
	log.Info().
		Int("transactions", total).
		Int("batch_size", j.cfg.BatchSize).
		Int("max_workers", j.cfg.MaxWorkers).
		Bool("receipts", j.cfg.ExportReceipts).
		Bool("logs", j.cfg.ExportLogs).
		Msg("Exporting receipts")
	start := time.Now()
	err := j.executor.Execute(ctx, slices.Values(j.cfg.TransactionHashes), total, j.exportBatch)
	if err != nil {
		log.Error().Err(err).Int("transactions", total).Msg("Receipt export failed")
		return err
	}
	log.Info().Int("transactions", total).Dur("duration", time.Since(start)).Msg("Receipt export finished")
	return nil
}

func (j *ExportReceiptsJob) exportBatch(ctx context.Context, txHashes []string) error {
	requests := rpc.GetTransactionReceiptRequests(txHashes)
	responses, err := j.provider.MakeRequest(ctx, requests)
	if err != nil {
		return wrapTransportError(err)
	}
	results, err := rpc.ResponsesToResults(requests, responses)
	if err != nil {
		return err
	}

	items := make([]common.Item, 0, len(results))
	for i, result := range results {
		var raw mapper.Raw
		if err := json.Unmarshal(result, &raw); err != nil {
			return fmt.Errorf("%w: failed to decode receipt %s: %v", common.ErrRPCBatch, txHashes[i], err)
		}
		receipt, err := j.receiptMapper.FromRPC(raw)
		if err != nil {
			return err
		}
		if j.cfg.ExportReceipts {
			items = append(items, j.receiptMapper.ToItem(receipt))
		}
		if j.cfg.ExportLogs {
			for _, l := range receipt.Logs {
				items = append(items, j.logMapper.ToItem(l))
			}
		}
	}
	return j.exportItems(ctx, items)
}
