package audit

import (
	"context"
	"sync"
	"time"

	"ai_sdlc/internal/logging"
)

// Record captures one capability call for the audit trail.
type Record struct {
	Timestamp  time.Time `json:"timestamp" db:"created_at"`
	RequestID  string    `json:"request_id" db:"request_id"`
	Provider   string    `json:"provider" db:"provider"`
	Capability string    `json:"capability" db:"capability"`
	DurationMs int64     `json:"duration_ms" db:"duration_ms"`
	Status     string    `json:"status" db:"status"`
	Error      string    `json:"error,omitempty" db:"error_message"`
}

// Sink receives audit records from the HTTP layer. Enqueue must never block
// a request.
type Sink interface {
	Enqueue(rec *Record) error
	Shutdown(ctx context.Context) error
}

// NoopSink discards records; used when auditing is disabled.
type NoopSink struct{}

func NewNoopSink() *NoopSink { return &NoopSink{} }

func (*NoopSink) Enqueue(*Record) error          { return nil }
func (*NoopSink) Shutdown(context.Context) error { return nil }

// Config holds buffered sink settings.
type Config struct {
	BufferSize    int
	BatchSize     int
	FlushInterval time.Duration
}

// DefaultConfig returns the settings used when none are configured.
func DefaultConfig() Config {
	return Config{
		BufferSize:    1000,
		BatchSize:     100,
		FlushInterval: 30 * time.Second,
	}
}

// BufferedSink queues records in memory and flushes batches to a Store (and
// optionally an Archiver) from a background worker. When the buffer is full
// new records are dropped rather than blocking the request path.
type BufferedSink struct {
	cfg      Config
	store    Store
	archiver Archiver

	ch   chan *Record
	done chan struct{}
	wg   sync.WaitGroup

	mu      sync.Mutex
	dropped int64
}

// NewBufferedSink starts the flush worker immediately.
func NewBufferedSink(cfg Config, store Store, archiver Archiver) *BufferedSink {
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = DefaultConfig().BufferSize
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultConfig().BatchSize
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = DefaultConfig().FlushInterval
	}

	s := &BufferedSink{
		cfg:      cfg,
		store:    store,
		archiver: archiver,
		ch:       make(chan *Record, cfg.BufferSize),
		done:     make(chan struct{}),
	}
	s.wg.Add(1)
	go s.run()
	return s
}

func (s *BufferedSink) Enqueue(rec *Record) error {
	select {
	case s.ch <- rec:
		return nil
	default:
		s.mu.Lock()
		s.dropped++
		s.mu.Unlock()
		return nil
	}
}

// Dropped returns how many records were discarded due to a full buffer.
func (s *BufferedSink) Dropped() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dropped
}

// Shutdown stops the worker and drains whatever is still buffered.
func (s *BufferedSink) Shutdown(ctx context.Context) error {
	close(s.done)
	s.wg.Wait()

	// Drain remaining records.
	var batch []*Record
	for {
		select {
		case rec := <-s.ch:
			batch = append(batch, rec)
		default:
			s.flush(ctx, batch)
			return nil
		}
	}
}

func (s *BufferedSink) run() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.cfg.FlushInterval)
	defer ticker.Stop()

	var batch []*Record
	for {
		select {
		case rec := <-s.ch:
			batch = append(batch, rec)
			if len(batch) >= s.cfg.BatchSize {
				s.flush(context.Background(), batch)
				batch = nil
			}
		case <-ticker.C:
			if len(batch) > 0 {
				s.flush(context.Background(), batch)
				batch = nil
			}
		case <-s.done:
			if len(batch) > 0 {
				s.flush(context.Background(), batch)
			}
			return
		}
	}
}

func (s *BufferedSink) flush(ctx context.Context, batch []*Record) {
	if len(batch) == 0 {
		return
	}
	if s.store != nil {
		if err := s.store.SaveBatch(ctx, batch); err != nil {
			logging.Errorf("failed to save audit batch: %v", err)
		}
	}
	if s.archiver != nil {
		if _, err := s.archiver.WriteBatch(ctx, batch); err != nil {
			logging.Errorf("failed to archive audit batch: %v", err)
		}
	}
}
