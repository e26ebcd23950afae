package signal

import (
	"context"
	"sync"
)

// Linux input event types and values.
const (
	evKey      = 0x01
	keyPressed = 1
)

// EvdevSource reads key presses from a Linux input device such as
// /dev/input/event0. Releases and auto-repeats are filtered out.
type EvdevSource struct {
	path     string
	mu       sync.RWMutex
	handlers []func(Event)
}

// NewEvdevSource creates a source for the device at path.
func NewEvdevSource(path string) *EvdevSource {
	return &EvdevSource{path: path}
}

// Subscribe registers a handler.
func (s *EvdevSource) Subscribe(handler func(Event)) error {
	if handler == nil {
		return errNilHandler
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers = append(s.handlers, handler)
	return nil
}

// Run reads events until ctx is done or the device reaches EOF.
func (s *EvdevSource) Run(ctx context.Context) error {
	return s.run(ctx)
}

func (s *EvdevSource) dispatch(ev Event) {
	s.mu.RLock()
	handlers := make([]func(Event), len(s.handlers))
	copy(handlers, s.handlers)
	s.mu.RUnlock()

	for _, h := range handlers {
		h(ev)
	}
}
