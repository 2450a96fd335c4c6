package worker

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog/log"
	"github.com/thirdweb-dev/ethereum-etl/internal/metrics"
	"golang.org/x/sync/errgroup"
)

var ErrExecutorShutdown = errors.New("batch work executor is shut down")

// BatchFunc processes one batch of work units. It must be idempotent and must
// not leave externally visible side effects when it fails.
type BatchFunc[K any] func(ctx context.Context, batch []K) error

// BatchWorkExecutor splits a sequence of work units into batches and runs a
// BatchFunc over them on a bounded pool of workers. Batches complete in no
// particular order. After the first failed batch no new batch is scheduled,
// batches already running are allowed to finish, and the first error is
// returned.
type BatchWorkExecutor[K any] struct {
	batchSize  int
	maxWorkers int
	progress   *ProgressLogger

	mu       sync.Mutex
	group    *errgroup.Group
	shutdown bool
}

type Option[K any] func(*BatchWorkExecutor[K])

func WithProgressLogger[K any](progress *ProgressLogger) Option[K] {
	return func(e *BatchWorkExecutor[K]) {
		e.progress = progress
	}
}

func NewBatchWorkExecutor[K any](batchSize int, maxWorkers int, opts ...Option[K]) (*BatchWorkExecutor[K], error) {
	if batchSize < 1 {
		return nil, fmt.Errorf("batch size must be positive, got %d", batchSize)
	}
	if maxWorkers < 1 {
		return nil, fmt.Errorf("max workers must be positive, got %d", maxWorkers)
	}
	e := &BatchWorkExecutor[K]{
		batchSize:  batchSize,
		maxWorkers: maxWorkers,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	if e.progress == nil {
		e.progress = NewProgressLogger("work")
	}
	return e, nil
}

func (e *BatchWorkExecutor[K]) BatchSize() int {
	return e.batchSize
}

func (e *BatchWorkExecutor[K]) MaxWorkers() int {
	return e.maxWorkers
}

// Execute runs fn over units in batches of at most BatchSize and blocks until
// every scheduled batch has returned. total is the declared number of units
// and is only used for progress reporting.
func (e *BatchWorkExecutor[K]) Execute(ctx context.Context, units iter.Seq[K], total int, fn BatchFunc[K]) error {
	e.mu.Lock()
	if e.shutdown {
		e.mu.Unlock()
		return ErrExecutorShutdown
	}
	group := new(errgroup.Group)
	group.SetLimit(e.maxWorkers)
	e.group = group
	e.mu.Unlock()

	e.progress.Start(total)
	var failed atomic.Bool

	scheduleErr := func() error {
		for batch := range Batches(units, e.batchSize) {
			if failed.Load() {
				return nil
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			// blocks while maxWorkers batches are in flight
			group.Go(func() error {
				if failed.Load() {
					return nil
				}
				metrics.ExecutorInFlightBatches.Inc()
				defer metrics.ExecutorInFlightBatches.Dec()
				if err := fn(ctx, batch); err != nil {
					failed.Store(true)
					metrics.ExecutorBatchesFailed.Inc()
					log.Error().Err(err).Int("batch_size", len(batch)).Msg("Batch failed, no further batches will be scheduled")
					return err
				}
				metrics.ExecutorBatchesCompleted.Inc()
				e.progress.Track(len(batch))
				return nil
			})
		}
		return nil
	}()

	err := group.Wait()
	e.progress.Finish()
	if err != nil {
		return err
	}
	return scheduleErr
}

// Shutdown waits for in-flight batches and releases the executor. It is safe
// to call more than once; Execute fails after it.
func (e *BatchWorkExecutor[K]) Shutdown() error {
	e.mu.Lock()
	if e.shutdown {
		e.mu.Unlock()
		return nil
	}
	e.shutdown = true
	group := e.group
	e.group = nil
	e.mu.Unlock()

	if group != nil {
		// the error was already returned by Execute
		_ = group.Wait()
	}
	return nil
}

// Batches partitions units into consecutive slices of at most size elements.
// Every yielded slice is freshly allocated.
func Batches[K any](units iter.Seq[K], size int) iter.Seq[[]K] {
	return func(yield func([]K) bool) {
		batch := make([]K, 0, size)
		for unit := range units {
			batch = append(batch, unit)
			if len(batch) == size {
				if !yield(batch) {
					return
				}
				batch = make([]K, 0, size)
			}
		}
		if len(batch) > 0 {
			yield(batch)
		}
	}
}

// Range yields the integers from start to end inclusive.
func Range(start, end int64) iter.Seq[int64] {
	return func(yield func(int64) bool) {
		if start > end {
			return
		}
		for n := start; ; n++ {
			if !yield(n) || n == end {
				return
			}
		}
	}
}
