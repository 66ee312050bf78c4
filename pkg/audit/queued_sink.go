package audit

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// QueuedSinkConfig configures a QueuedSink.
type QueuedSinkConfig struct {
	// QueueSize is the size of the async event queue. Default: 1000.
	QueueSize int

	// WriteTimeout bounds a single write to the underlying sink. Default: 5s.
	WriteTimeout time.Duration
}

// DefaultQueuedSinkConfig returns sensible defaults for a queued sink.
func DefaultQueuedSinkConfig() QueuedSinkConfig {
	return QueuedSinkConfig{
		QueueSize:    1000,
		WriteTimeout: 5 * time.Second,
	}
}

// QueuedSink decouples event producers from a slow or flaky sink with a
// bounded queue and a single drain worker. When the queue is full events are
// dropped rather than blocking the admission path; drops are counted.
type QueuedSink struct {
	sink   Sink
	queue  chan *Event
	config QueuedSinkConfig
	logger *zap.Logger

	droppedEvents   atomic.Int64
	processedEvents atomic.Int64
	failedEvents    atomic.Int64

	wg     sync.WaitGroup
	closed atomic.Bool
	done   chan struct{}
}

// NewQueuedSink wraps sink with a bounded queue and starts the drain worker.
func NewQueuedSink(sink Sink, cfg QueuedSinkConfig, logger *zap.Logger) *QueuedSink {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = DefaultQueuedSinkConfig().QueueSize
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = DefaultQueuedSinkConfig().WriteTimeout
	}

	q := &QueuedSink{
		sink:   sink,
		queue:  make(chan *Event, cfg.QueueSize),
		config: cfg,
		logger: logger.Named("audit-queue"),
		done:   make(chan struct{}),
	}
	q.wg.Add(1)
	go q.drain()
	return q
}

// Write enqueues the event without blocking. A full queue drops the event.
func (q *QueuedSink) Write(_ context.Context, event *Event) error {
	if q.closed.Load() {
		return nil
	}
	select {
	case q.queue <- event:
	default:
		dropped := q.droppedEvents.Add(1)
		if dropped%100 == 1 {
			q.logger.Warn("audit queue full, dropping events",
				zap.String("sink", q.sink.Name()),
				zap.Int64("dropped_total", dropped))
		}
	}
	return nil
}

func (q *QueuedSink) drain() {
	defer q.wg.Done()
	for {
		select {
		case event := <-q.queue:
			q.deliver(event)
		case <-q.done:
			// flush whatever is still queued
			for {
				select {
				case event := <-q.queue:
					q.deliver(event)
				default:
					return
				}
			}
		}
	}
}

func (q *QueuedSink) deliver(event *Event) {
	ctx, cancel := context.WithTimeout(context.Background(), q.config.WriteTimeout)
	defer cancel()
	if err := q.sink.Write(ctx, event); err != nil {
		q.failedEvents.Add(1)
		q.logger.Warn("failed to deliver audit event",
			zap.String("sink", q.sink.Name()),
			zap.String("event_id", event.ID),
			zap.Error(err))
		return
	}
	q.processedEvents.Add(1)
}

// Stats returns delivery counters for health reporting.
func (q *QueuedSink) Stats() (processed, failed, dropped int64) {
	return q.processedEvents.Load(), q.failedEvents.Load(), q.droppedEvents.Load()
}

// Close stops the worker, flushes the queue and closes the wrapped sink.
func (q *QueuedSink) Close() error {
	if q.closed.Swap(true) {
		return nil
	}
	close(q.done)
	q.wg.Wait()
	return q.sink.Close()
}

// Name implements Sink.
func (q *QueuedSink) Name() string { return q.sink.Name() + "-queued" }
