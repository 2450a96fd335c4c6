package worker

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/thirdweb-dev/ethereum-etl/internal/metrics"
)

// ProgressLogger counts processed work units against a declared total and
// logs each time another step percent of the total is done.
type ProgressLogger struct {
	name string
	step int

	mu        sync.Mutex
	total     int
	processed atomic.Int64
	lastStep  int
	startedAt time.Time
}

func NewProgressLogger(name string) *ProgressLogger {
	return &ProgressLogger{name: name, step: 10}
}

func (p *ProgressLogger) Start(total int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.total = total
	p.processed.Store(0)
	p.lastStep = 0
	p.startedAt = time.Now()
	metrics.ExecutorProgressPercent.Set(0)
	log.Info().Str("name", p.name).Int("total", total).Msg("Started work")
}

func (p *ProgressLogger) Track(units int) {
	processed := p.processed.Add(int64(units))
	metrics.ExecutorUnitsProcessed.Add(float64(units))

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.total <= 0 {
		return
	}
	percent := int(processed * 100 / int64(p.total))
	metrics.ExecutorProgressPercent.Set(float64(percent))
	if percent/p.step > p.lastStep/p.step {
		p.lastStep = percent
		log.Info().Str("name", p.name).Int64("processed", processed).Int("total", p.total).Int("percent", percent).Msg("Progress")
	}
}

func (p *ProgressLogger) Processed() int64 {
	return p.processed.Load()
}

func (p *ProgressLogger) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	log.Info().
		Str("name", p.name).
		Int64("processed", p.processed.Load()).
		Int("total", p.total).
		Dur("duration", time.Since(p.startedAt)).
		Msg("Finished work")
}
