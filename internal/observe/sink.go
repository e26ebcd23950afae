package observe

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// Kind names what an observation reports.
type Kind string

const (
	KindAllowed            Kind = "allowed"
	KindProtectedBlocked   Kind = "protected_blocked"
	KindConfirmationNeeded Kind = "confirmation_needed"
	KindConfirmed          Kind = "confirmed"
	KindConfirmationDenied Kind = "confirmation_denied"
	KindInvalidInput       Kind = "invalid_input"
)

// Observation is one event emitted by the decision point.
type Observation struct {
	Time           time.Time
	Kind           Kind
	Command        string
	Classification string
	Pattern        string
	Verdict        string
	RequestID      string
	Cause          string
	Truncated      bool
	Err            error
}

// Sink is a fire-and-forget observation consumer.
type Sink interface {
	Observe(o Observation)
}

// LogSink writes observations to a logger from a background goroutine.
// Observe never blocks; when the buffer is full, or the sink is closed, the
// observation is dropped.
type LogSink struct {
	logger  *slog.Logger
	ch      chan Observation
	dropped atomic.Uint64

	mu     sync.RWMutex
	closed bool
	done   chan struct{}
}

// NewLogSink starts a sink buffering up to size observations.
func NewLogSink(logger *slog.Logger, size int) *LogSink {
	if size <= 0 {
		size = 64
	}
	s := &LogSink{
		logger: logger,
		ch:     make(chan Observation, size),
		done:   make(chan struct{}),
	}
	go s.loop()
	return s
}

// Observe queues o for logging.
func (s *LogSink) Observe(o Observation) {
	if o.Time.IsZero() {
		o.Time = time.Now()
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		s.dropped.Add(1)
		return
	}
	select {
	case s.ch <- o:
	default:
		s.dropped.Add(1)
	}
}

// Dropped returns the number of observations lost to a full buffer.
func (s *LogSink) Dropped() uint64 {
	return s.dropped.Load()
}

// Close flushes queued observations and stops the sink.
func (s *LogSink) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	close(s.ch)
	s.mu.Unlock()

	<-s.done
	if n := s.dropped.Load(); n > 0 {
		s.logger.Warn("observations dropped", "count", n)
	}
}

func (s *LogSink) loop() {
	defer close(s.done)
	for o := range s.ch {
		s.write(o)
	}
}

func (s *LogSink) write(o Observation) {
	attrs := []slog.Attr{
		slog.String("kind", string(o.Kind)),
		slog.String("command", o.Command),
		slog.String("verdict", o.Verdict),
		slog.Time("at", o.Time),
	}
	if o.Classification != "" {
		attrs = append(attrs, slog.String("classification", o.Classification))
	}
	if o.Pattern != "" {
		attrs = append(attrs, slog.String("pattern", o.Pattern))
	}
	if o.RequestID != "" {
		attrs = append(attrs, slog.String("request_id", o.RequestID))
	}
	if o.Cause != "" {
		attrs = append(attrs, slog.String("cause", o.Cause))
	}
	if o.Truncated {
		attrs = append(attrs, slog.Bool("truncated", true))
	}
	if o.Err != nil {
		attrs = append(attrs, slog.String("error", o.Err.Error()))
	}

	s.logger.LogAttrs(context.Background(), levelFor(o.Kind), "exec attempt", attrs...)
}

func levelFor(k Kind) slog.Level {
	switch k {
	case KindProtectedBlocked, KindConfirmationNeeded, KindConfirmationDenied, KindInvalidInput:
		return slog.LevelWarn
	case KindConfirmed:
		return slog.LevelInfo
	default:
		return slog.LevelDebug
	}
}

// Discard is a Sink that drops every observation.
var Discard Sink = discard{}

type discard struct{}

func (discard) Observe(Observation) {}
