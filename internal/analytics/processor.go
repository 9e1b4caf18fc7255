// Package analytics moves access-count bookkeeping off the request path.
// The access endpoint acknowledges immediately and the increment is
// persisted by a small worker pool with retries.
package analytics

import (
	"LinkBoard-Backend/internal/repository"
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// AccessEvent is one recorded open of a link.
type AccessEvent struct {
	LinkID     int64
	AccessedAt time.Time
}

// ProcessorConfig holds configuration for the access processor.
type ProcessorConfig struct {
	WorkerCount     int           // Number of worker goroutines
	BufferSize      int           // Size of the job queue buffer
	RetryAttempts   int           // Number of retry attempts for failed jobs
	RetryDelay      time.Duration // Base delay between retries
	ShutdownTimeout time.Duration // Time to wait for graceful shutdown
}

// DefaultConfig returns sensible default configuration.
func DefaultConfig() ProcessorConfig {
	return ProcessorConfig{
		WorkerCount:     3,
		BufferSize:      1000,
		RetryAttempts:   3,
		RetryDelay:      time.Second,
		ShutdownTimeout: 30 * time.Second,
	}
}

// Processor persists access events asynchronously.
type Processor struct {
	config   ProcessorConfig
	storage  repository.Storage
	log      *zap.Logger
	jobQueue chan *AccessEvent
	wg       sync.WaitGroup
	ctx      context.Context
	cancel   context.CancelFunc
	started  bool
	mu       sync.RWMutex
}

func NewProcessor(storage repository.Storage, log *zap.Logger, config ProcessorConfig) *Processor {
	ctx, cancel := context.WithCancel(context.Background())

	return &Processor{
		config:   config,
		storage:  storage,
		log:      log,
		jobQueue: make(chan *AccessEvent, config.BufferSize),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start launches the worker pool.
func (p *Processor) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.started {
		return fmt.Errorf("processor already started")
	}

	p.log.Info("starting access processor",
		zap.Int("workers", p.config.WorkerCount),
		zap.Int("buffer_size", p.config.BufferSize))

	for i := 0; i < p.config.WorkerCount; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}

	p.started = true
	return nil
}

// Stop drains the queue and shuts the workers down.
func (p *Processor) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		return fmt.Errorf("processor not started")
	}

	p.log.Info("stopping access processor")

	close(p.jobQueue)

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.log.Info("access processor stopped gracefully")
	case <-time.After(p.config.ShutdownTimeout):
		p.cancel()
		p.log.Warn("access processor shutdown timeout reached")
		return fmt.Errorf("shutdown timeout reached")
	}

	p.cancel()
	p.started = false
	return nil
}

// Submit queues an access event. Returns an error when the processor is
// not running or the queue is saturated; callers treat both as non-fatal.
func (p *Processor) Submit(event *AccessEvent) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if !p.started {
		return fmt.Errorf("processor not started")
	}

	select {
	case p.jobQueue <- event:
		return nil
	case <-p.ctx.Done():
		return fmt.Errorf("processor is shutting down")
	default:
		p.log.Error("access queue is full, dropping event",
			zap.Int64("link_id", event.LinkID),
			zap.Int("queue_size", len(p.jobQueue)))
		return fmt.Errorf("access queue is full")
	}
}

func (p *Processor) worker(workerID int) {
	defer p.wg.Done()

	log := p.log.With(zap.Int("worker_id", workerID))
	log.Debug("access worker started")

	for event := range p.jobQueue {
		if event == nil {
			continue
		}
		p.processWithRetry(log, event)
	}

	log.Debug("access worker stopped")
}

func (p *Processor) processWithRetry(log *zap.Logger, event *AccessEvent) {
	var lastErr error

	for attempt := 1; attempt <= p.config.RetryAttempts; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		err := p.storage.IncrementAccessCount(ctx, event.LinkID, 1)
		cancel()

		if err == nil {
			if attempt > 1 {
				log.Info("access increment succeeded after retry",
					zap.Int64("link_id", event.LinkID),
					zap.Int("attempt", attempt))
			}
			return
		}

		// The link was deleted between submit and processing; not an error
		// worth retrying.
		if errors.Is(err, repository.ErrLinkNotFound) {
			log.Debug("access event for deleted link dropped", zap.Int64("link_id", event.LinkID))
			return
		}

		lastErr = err
		log.Warn("access increment failed",
			zap.Int64("link_id", event.LinkID),
			zap.Int("attempt", attempt),
			zap.Error(err))

		if attempt == p.config.RetryAttempts {
			break
		}

		// Exponential backoff between attempts.
		delay := p.config.RetryDelay * time.Duration(1<<(attempt-1))
		select {
		case <-time.After(delay):
		case <-p.ctx.Done():
			log.Info("worker shutdown during retry delay")
			return
		}
	}

	log.Error("access increment failed after all retries",
		zap.Int64("link_id", event.LinkID),
		zap.Int("attempts", p.config.RetryAttempts),
		zap.Error(lastErr))
}

// GetStats returns processor statistics for the health endpoint.
func (p *Processor) GetStats() map[string]interface{} {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return map[string]interface{}{
		"started":        p.started,
		"queue_length":   len(p.jobQueue),
		"queue_capacity": cap(p.jobQueue),
		"worker_count":   p.config.WorkerCount,
		"retry_attempts": p.config.RetryAttempts,
	}
}
