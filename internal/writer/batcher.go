package writer

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/rickgao/abri-data/internal/database"
	"github.com/rickgao/abri-data/internal/model"
)

// WriterConfig contains configuration for batch writers.
type WriterConfig struct {
	// BatchSize is the number of rows to accumulate before flushing.
	BatchSize int

	// FlushInterval is the maximum time between flushes.
	FlushInterval time.Duration
}

// DefaultWriterConfig returns sensible defaults.
func DefaultWriterConfig() WriterConfig {
	return WriterConfig{
		BatchSize:     500,
		FlushInterval: 5 * time.Second,
	}
}

// WriterMetrics holds metrics for a writer.
type WriterMetrics struct {
	Written int64 // Rows reported affected by the database
	Dropped int64 // Rows lost to failed flushes
	Errors  int64
	Flushes int64
}

// Runner runs fn in one unit of work, committing when it returns nil.
type Runner interface {
	Run(ctx context.Context, fn func(ctx context.Context, db DB) error) error
}

// StoreRunner runs writes in sessions of a database.Store.
type StoreRunner struct {
	Store *database.Store
}

// Run implements Runner.
func (r StoreRunner) Run(ctx context.Context, fn func(ctx context.Context, db DB) error) error {
	return r.Store.WithSession(ctx, func(ctx context.Context, sess *database.Session) error {
		return fn(ctx, sess)
	})
}

// FlushFunc writes one batch and returns the rows affected.
// UpsertEquityPrices and the other slice writers have this shape.
type FlushFunc[T any] func(ctx context.Context, db DB, rows []T) (int64, error)

// BatchWriter buffers rows from collectors and writes them in batches,
// one session per flush.
type BatchWriter[T any] struct {
	name   string
	cfg    WriterConfig
	logger *slog.Logger

	runner  Runner
	flushFn FlushFunc[T]

	// Batching
	batch       []T
	batchMu     sync.Mutex
	flushMu     sync.Mutex
	flushTicker *time.Ticker

	// Lifecycle
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	metricsMu sync.Mutex
	metrics   WriterMetrics
}

// NewBatchWriter creates a BatchWriter. name labels its log lines.
func NewBatchWriter[T any](name string, cfg WriterConfig, runner Runner, fn FlushFunc[T], logger *slog.Logger) *BatchWriter[T] {
	if logger == nil {
		logger = slog.Default()
	}
	def := DefaultWriterConfig()
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = def.BatchSize
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = def.FlushInterval
	}
	return &BatchWriter[T]{
		name:    name,
		cfg:     cfg,
		runner:  runner,
		flushFn: fn,
		logger:  logger.With("writer", name),
		batch:   make([]T, 0, cfg.BatchSize),
	}
}

// Flush functions for the slice writers.
var (
	FlushEquityPrices       FlushFunc[model.EquityPrice]       = UpsertEquityPrices
	FlushMarketMetrics      FlushFunc[model.MarketMetric]      = UpsertMarketMetrics
	FlushCreditSpreads      FlushFunc[model.CreditSpread]      = UpsertCreditSpreads
	FlushGPUPricing         FlushFunc[model.GPUPricing]        = UpsertGPUPricing
	FlushHyperscalerMetrics FlushFunc[model.HyperscalerMetric] = UpsertHyperscalerMetrics
	FlushNewsItems          FlushFunc[model.NewsItem]          = InsertNewsItems
	FlushABRIHistory        FlushFunc[model.ABRIHistory]       = UpsertABRIHistory
)

// Start begins the periodic flush.
func (w *BatchWriter[T]) Start(ctx context.Context) error {
	w.ctx, w.cancel = context.WithCancel(ctx)
	w.flushTicker = time.NewTicker(w.cfg.FlushInterval)

	w.wg.Add(1)
	go w.flushLoop()

	w.logger.Info("batch writer started",
		"batch_size", w.cfg.BatchSize,
		"flush_interval", w.cfg.FlushInterval,
	)
	return nil
}

// Stop halts the periodic flush and writes whatever is buffered.
func (w *BatchWriter[T]) Stop(ctx context.Context) error {
	w.logger.Info("stopping batch writer")

	if w.cancel != nil {
		w.cancel()
	}
	if w.flushTicker != nil {
		w.flushTicker.Stop()
	}

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		w.logger.Warn("batch writer stop timed out")
	}

	// Final flush
	err := w.Flush(ctx)
	w.logger.Info("batch writer stopped")
	return err
}

// Add buffers rows. When the buffer reaches BatchSize it is flushed on
// the caller's goroutine.
func (w *BatchWriter[T]) Add(ctx context.Context, rows ...T) error {
	w.batchMu.Lock()
	w.batch = append(w.batch, rows...)
	shouldFlush := len(w.batch) >= w.cfg.BatchSize
	w.batchMu.Unlock()

	if shouldFlush {
		return w.Flush(ctx)
	}
	return nil
}

// Pending returns the number of buffered rows.
func (w *BatchWriter[T]) Pending() int {
	w.batchMu.Lock()
	defer w.batchMu.Unlock()
	return len(w.batch)
}

// Stats returns current metrics.
func (w *BatchWriter[T]) Stats() WriterMetrics {
	w.metricsMu.Lock()
	defer w.metricsMu.Unlock()
	return w.metrics
}

func (w *BatchWriter[T]) flushLoop() {
	defer w.wg.Done()

	for {
		select {
		case <-w.ctx.Done():
			return
		case <-w.flushTicker.C:
			_ = w.Flush(w.ctx)
		}
	}
}

// Flush writes the buffered rows in one session. On failure the rows are
// dropped and counted; the error is returned and logged.
func (w *BatchWriter[T]) Flush(ctx context.Context) error {
	w.flushMu.Lock()
	defer w.flushMu.Unlock()

	// Take ownership of current batch
	w.batchMu.Lock()
	if len(w.batch) == 0 {
		w.batchMu.Unlock()
		return nil
	}
	batch := w.batch
	w.batch = make([]T, 0, w.cfg.BatchSize)
	w.batchMu.Unlock()

	start := time.Now()

	var written int64
	err := w.runner.Run(ctx, func(ctx context.Context, db DB) error {
		n, err := w.flushFn(ctx, db, batch)
		written = n
		return err
	})

	w.metricsMu.Lock()
	if err != nil {
		w.metrics.Errors++
		w.metrics.Dropped += int64(len(batch))
	} else {
		w.metrics.Written += written
		w.metrics.Flushes++
	}
	w.metricsMu.Unlock()

	if err != nil {
		w.logger.Error("batch flush failed", "error", err, "count", len(batch))
		return err
	}

	w.logger.Debug("flushed batch",
		"count", len(batch),
		"written", written,
		"duration", time.Since(start),
	)
	return nil
}
