package sinks

import (
	"sync"

	"peek-and-poke/sidecar/logging"
)

// Memory captures events for inspection in tests.
type Memory struct {
	mu     sync.RWMutex
	events []logging.Event
}

// NewMemory constructs an empty capture sink.
func NewMemory() *Memory {
	return &Memory{}
}

// Write implements logging.Sink.
func (s *Memory) Write(event logging.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

// Events copies every captured event.
func (s *Memory) Events() []logging.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]logging.Event(nil), s.events...)
}

// Reset discards captured events.
func (s *Memory) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = s.events[:0]
}

// Close implements logging.Sink.
func (s *Memory) Close() error {
	return nil
}
