package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/thirdweb-dev/ethereum-etl/internal/common"
	"github.com/thirdweb-dev/ethereum-etl/internal/exporter"
	"github.com/thirdweb-dev/ethereum-etl/internal/mapper"
	"github.com/thirdweb-dev/ethereum-etl/internal/metrics"
	"github.com/thirdweb-dev/ethereum-etl/internal/rpc"
	"github.com/thirdweb-dev/ethereum-etl/internal/worker"
)

type ExportBlocksConfig struct {
	StartBlock         int64
	EndBlock           int64
	BatchSize          int
	MaxWorkers         int
	ExportBlocks       bool
	ExportTransactions bool
}

// ExportBlocksJob exports the blocks of an inclusive range and, optionally,
// their transactions.
type ExportBlocksJob struct {
	lifecycle
	cfg               ExportBlocksConfig
	provider          rpc.BatchProvider
	executor          *worker.BatchWorkExecutor[int64]
	lastExported      highWaterMark
	blockMapper       *mapper.BlockMapper
	transactionMapper *mapper.TransactionMapper
}

// Validate checks the range and sizing without touching the network.
func (cfg ExportBlocksConfig) Validate() error {
	if cfg.StartBlock > cfg.EndBlock {
		return fmt.Errorf("%w: start block %d is greater than end block %d", common.ErrInvalidRange, cfg.StartBlock, cfg.EndBlock)
	}
	if cfg.StartBlock < 0 {
		return fmt.Errorf("%w: start block %d is negative", common.ErrInvalidRange, cfg.StartBlock)
	}
	// the block count of [0, MaxInt64] does not fit an int64
	if cfg.EndBlock == math.MaxInt64 {
		return fmt.Errorf("%w: end block %d is out of range", common.ErrInvalidRange, cfg.EndBlock)
	}
	if !cfg.ExportBlocks && !cfg.ExportTransactions {
		return fmt.Errorf("%w: at least one of blocks or transactions must be exported", common.ErrConfiguration)
	}
	return validateSizing(cfg.BatchSize, cfg.MaxWorkers)
}

func NewExportBlocksJob(cfg ExportBlocksConfig, provider rpc.BatchProvider, itemExporter exporter.ItemExporter) (*ExportBlocksJob, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	executor, err := worker.NewBatchWorkExecutor(cfg.BatchSize, cfg.MaxWorkers,
		worker.WithProgressLogger[int64](worker.NewProgressLogger("blocks")))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrConfiguration, err)
	}

	var schemas []*common.Schema
	if cfg.ExportBlocks {
		schemas = append(schemas, mapper.BlockSchema)
	}
	if cfg.ExportTransactions {
		schemas = append(schemas, mapper.TransactionSchema)
	}
	transactionMapper := mapper.NewTransactionMapper()
	return &ExportBlocksJob{
		lifecycle: lifecycle{
			exporter: itemExporter,
			schemas:  schemas,
			shutdown: executor.Shutdown,
		},
		cfg:               cfg,
		provider:          provider,
		executor:          executor,
		blockMapper:       mapper.NewBlockMapper(transactionMapper),
		transactionMapper: transactionMapper,
	}, nil
}

func (j *ExportBlocksJob) Export(ctx context.Context) error {
	if err := j.beginExport(); err != nil {
		return err
	}
	total := j.cfg.EndBlock - j.cfg.StartBlock + 1
	log.Info().
		Int64("start_block", j.cfg.StartBlock).
		Int64("end_block", j.cfg.EndBlock).
		Int("batch_size", j.cfg.BatchSize).
		Int("max_workers", j.cfg.MaxWorkers).
		Bool("blocks", j.cfg.ExportBlocks).
		Bool("transactions", j.cfg.ExportTransactions).
		Msg("Exporting blocks")
	start := time.Now()
	err := j.executor.Execute(ctx, worker.Range(j.cfg.StartBlock, j.cfg.EndBlock), int(total), j.exportBatch)
	if err != nil {
		log.Error().Err(err).Int64("start_block", j.cfg.StartBlock).Int64("end_block", j.cfg.EndBlock).Msg("Block export failed")
		return err
	}
	log.Info().Int64("blocks", total).Dur("duration", time.Since(start)).Msg("Block export finished")
	return nil
}

func (j *ExportBlocksJob) exportBatch(ctx context.Context, blockNumbers []int64) error {
	requests := rpc.GetBlockByNumberRequests(blockNumbers, j.cfg.ExportTransactions)
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
			return fmt.Errorf("%w: failed to decode block %d: %v", common.ErrRPCBatch, blockNumbers[i], err)
		}
		block, err := j.blockMapper.FromRPC(raw)
		if err != nil {
			return err
		}
		if j.cfg.ExportBlocks {
			items = append(items, j.blockMapper.ToItem(block))
		}
		if j.cfg.ExportTransactions {
			for _, tx := range block.Transactions {
				items = append(items, j.transactionMapper.ToItem(tx))
			}
		}
	}

	if err := j.exportItems(ctx, items); err != nil {
		return err
	}
	if last := blockNumbers[len(blockNumbers)-1]; j.lastExported.Advance(last) {
		metrics.LastExportedBlock.Set(float64(last))
	}
	return nil
}
