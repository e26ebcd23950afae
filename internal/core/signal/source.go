package signal

import (
	"context"
	"errors"
	"sync"
)

var errNilHandler = errors.New("nil event handler")

// Source delivers input events to subscribed handlers.
type Source interface {
	// Subscribe registers a handler. It must be called before Run.
	Subscribe(handler func(Event)) error
	// Run delivers events until ctx is done or the source is exhausted.
	Run(ctx context.Context) error
}

// ChannelSource is an in-process Source fed through Emit.
type ChannelSource struct {
	events   chan Event
	mu       sync.RWMutex
	handlers []func(Event)
}

// NewChannelSource creates a source buffering up to size events.
func NewChannelSource(size int) *ChannelSource {
	if size <= 0 {
		size = 16
	}
	return &ChannelSource{events: make(chan Event, size)}
}

// Subscribe registers a handler.
func (s *ChannelSource) Subscribe(handler func(Event)) error {
	if handler == nil {
		return errNilHandler
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers = append(s.handlers, handler)
	return nil
}

// Emit queues an event. It returns false if the buffer is full.
func (s *ChannelSource) Emit(ev Event) bool {
	select {
	case s.events <- ev:
		return true
	default:
		return false
	}
}

// Run dispatches queued events until ctx is done.
func (s *ChannelSource) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-s.events:
			s.dispatch(ev)
		}
	}
}

func (s *ChannelSource) dispatch(ev Event) {
	s.mu.RLock()
	handlers := make([]func(Event), len(s.handlers))
	copy(handlers, s.handlers)
	s.mu.RUnlock()

	for _, h := range handlers {
		h(ev)
	}
}
