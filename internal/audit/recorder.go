package audit

import (
	"errors"
	"log/slog"
	"sync"
)

// Sink persists audit entries.
type Sink interface {
	Name() string
	Record(entry AuditEntry) error
}

// DefaultQueueSize bounds the number of entries waiting to be written.
const DefaultQueueSize = 256

// ErrRecorderClosed is reported to the failure hook for entries submitted
// after Close.
var ErrRecorderClosed = errors.New("audit: recorder closed")

// Recorder writes entries to its sinks on a background goroutine.
// Submit never blocks: when the queue is full, or a sink fails, the entry
// is written to the logger instead and the failure hook fires.
type Recorder struct {
	sinks     []Sink
	queue     chan AuditEntry
	logger    *slog.Logger
	onFailure func(sink string, err error)

	mu     sync.RWMutex
	closed bool
	done   chan struct{}
}

// RecorderOption configures a Recorder.
type RecorderOption func(*Recorder)

// WithQueueSize sets the queue capacity.
func WithQueueSize(n int) RecorderOption {
	return func(r *Recorder) {
		if n > 0 {
			r.queue = make(chan AuditEntry, n)
		}
	}
}

// WithFailureHook registers a callback for dropped or failed writes.
func WithFailureHook(fn func(sink string, err error)) RecorderOption {
	return func(r *Recorder) { r.onFailure = fn }
}

// NewRecorder starts a Recorder over the given sinks. A nil logger
// discards fallback output.
func NewRecorder(logger *slog.Logger, sinks []Sink, opts ...RecorderOption) *Recorder {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	r := &Recorder{
		sinks:  sinks,
		queue:  make(chan AuditEntry, DefaultQueueSize),
		logger: logger,
		done:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	go r.run()
	return r
}

// Submit queues an entry for writing. It returns immediately.
func (r *Recorder) Submit(entry AuditEntry) {
	entry = stamp(entry)

	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		r.fallback("recorder", entry, ErrRecorderClosed)
		return
	}

	select {
	case r.queue <- entry:
	default:
		r.fallback("queue", entry, errors.New("audit: queue full"))
	}
}

// Close stops accepting entries and waits for queued ones to be written.
func (r *Recorder) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	close(r.queue)
	r.mu.Unlock()

	<-r.done
	return nil
}

func (r *Recorder) run() {
	defer close(r.done)
	for entry := range r.queue {
		for _, sink := range r.sinks {
			if err := sink.Record(entry); err != nil {
				r.fallback(sink.Name(), entry, err)
			}
		}
	}
}

// fallback writes the entry to the console log so it is never lost silently.
func (r *Recorder) fallback(sink string, entry AuditEntry, err error) {
	r.logger.Warn("audit fallback",
		"sink", sink,
		"error", err,
		"id", entry.ID,
		"session_id", entry.SessionID,
		"action", entry.Action,
		"score", entry.Details.Score,
		"tier", entry.Details.Tier,
		"risk_level", entry.Details.RiskLevel,
	)
	if r.onFailure != nil {
		r.onFailure(sink, err)
	}
}
