// Package jobs runs range exports: a range of work units is split into
// batches, each batch is fetched with one JSON-RPC round trip, mapped, and
// written to an item exporter.
//
// A batch is exported only after every result in it was mapped. A failed job
// leaves the records of batches that completed before the failure in the
// sink, so rerunning a failed job against an append-only sink can produce
// duplicates.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/thirdweb-dev/ethereum-etl/internal/common"
	"github.com/thirdweb-dev/ethereum-etl/internal/exporter"
	"github.com/thirdweb-dev/ethereum-etl/internal/metrics"
)

var (
	ErrJobAlreadyRun = errors.New("export job already run")
	ErrJobNotStarted = errors.New("export job not started")
)

// Job is a single-use export. Start opens the sink, Export runs the range and
// End releases the executor and the sink.
type Job interface {
	Start(ctx context.Context) error
	Export(ctx context.Context) error
	End(ctx context.Context) error
}

// Run drives a job through Start, Export and End. End always runs. The first
// error is returned.
func Run(ctx context.Context, job Job) error {
	err := job.Start(ctx)
	if err == nil {
		err = job.Export(ctx)
	}
	if endErr := job.End(ctx); err == nil {
		err = endErr
	}
	return err
}

type state int

const (
	stateCreated state = iota
	stateStarted
	stateExporting
	stateFinished
)

// lifecycle holds the state machine shared by the export jobs.
type lifecycle struct {
	mu       sync.Mutex
	state    state
	exporter exporter.ItemExporter
	schemas  []*common.Schema
	shutdown func() error
}

func (l *lifecycle) Start(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state != stateCreated {
		return ErrJobAlreadyRun
	}
	l.state = stateStarted
	if err := l.exporter.Open(ctx, l.schemas...); err != nil {
		return fmt.Errorf("%w: failed to open exporter: %w", common.ErrExportSink, err)
	}
	return nil
}

// beginExport moves the job from started to exporting.
func (l *lifecycle) beginExport() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	switch l.state {
	case stateStarted:
		l.state = stateExporting
		return nil
	case stateCreated:
		return ErrJobNotStarted
	default:
		return ErrJobAlreadyRun
	}
}

func (l *lifecycle) End(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state == stateFinished {
		return nil
	}
	l.state = stateFinished
	shutdownErr := l.shutdown()
	if err := l.exporter.Close(ctx); err != nil {
		return fmt.Errorf("%w: failed to close exporter: %w", common.ErrExportSink, err)
	}
	return shutdownErr
}

func (l *lifecycle) exportItems(ctx context.Context, items []common.Item) error {
	for _, item := range items {
		if err := l.exporter.Export(ctx, item); err != nil {
			return fmt.Errorf("%w: failed to export %s: %w", common.ErrExportSink, item.Type(), err)
		}
		metrics.ItemsExported.WithLabelValues(string(item.Type())).Inc()
	}
	return nil
}

func validateSizing(batchSize, maxWorkers int) error {
	if batchSize < 1 {
		return fmt.Errorf("%w: batch size must be positive, got %d", common.ErrConfiguration, batchSize)
	}
	if maxWorkers < 1 {
		return fmt.Errorf("%w: max workers must be positive, got %d", common.ErrConfiguration, maxWorkers)
	}
	return nil
}

// highWaterMark tracks the highest block number reported by concurrently
// finishing chunks. Block numbers are non-negative and below MaxInt64.
type highWaterMark struct {
	// highest seen plus one, zero before the first Advance
	next atomic.Int64
}

// Advance records n and reports whether it is the new maximum.
func (h *highWaterMark) Advance(n int64) bool {
	for {
		cur := h.next.Load()
		if n+1 <= cur {
			return false
		}
		if h.next.CompareAndSwap(cur, n+1) {
			return true
		}
	}
}

func wrapTransportError(err error) error {
	if errors.Is(err, common.ErrRPCBatch) {
		return err
	}
	return fmt.Errorf("%w: %w", common.ErrRPCBatch, err)
}
