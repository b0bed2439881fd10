// Package telemetry defines the logging and metrics capabilities the sidecar
// components depend on, decoupled from any concrete backend.
package telemetry

import (
	"log"
	"sync"
)

// Logger exposes the diagnostic logging used throughout the sidecar.
type Logger interface {
	Printf(format string, args ...any)
}

// LoggerFunc adapts functions into the Logger interface.
type LoggerFunc func(format string, args ...any)

// Printf implements Logger for LoggerFunc.
func (f LoggerFunc) Printf(format string, args ...any) {
	if f == nil {
		return
	}
	f(format, args...)
}

// WrapLogger adapts a standard library logger to the Logger interface.
func WrapLogger(logger *log.Logger) Logger {
	return &loggerAdapter{logger: logger}
}

type loggerAdapter struct {
	logger *log.Logger
}

func (l *loggerAdapter) Printf(format string, args ...any) {
	if l == nil || l.logger == nil {
		return
	}
	l.logger.Printf(format, args...)
}

// Metrics exposes the counters and gauges recorded by the sidecar.
type Metrics interface {
	Add(key string, delta uint64)
	Store(key string, value uint64)
}

// NopMetrics discards every recorded value.
type NopMetrics struct{}

// Add implements Metrics.
func (NopMetrics) Add(string, uint64) {}

// Store implements Metrics.
func (NopMetrics) Store(string, uint64) {}

// MemoryMetrics accumulates values in memory. Useful for tests and for the
// demo application's shutdown report.
type MemoryMetrics struct {
	mu     sync.Mutex
	values map[string]uint64
}

// NewMemoryMetrics constructs an empty in-memory recorder.
func NewMemoryMetrics() *MemoryMetrics {
	return &MemoryMetrics{values: make(map[string]uint64)}
}

// Add implements Metrics.
func (m *MemoryMetrics) Add(key string, delta uint64) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.values == nil {
		m.values = make(map[string]uint64)
	}
	m.values[key] += delta
}

// Store implements Metrics.
func (m *MemoryMetrics) Store(key string, value uint64) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.values == nil {
		m.values = make(map[string]uint64)
	}
	m.values[key] = value
}

// Value reports the current value recorded under key.
func (m *MemoryMetrics) Value(key string) uint64 {
	if m == nil {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.values[key]
}

// Snapshot copies every recorded key/value pair.
func (m *MemoryMetrics) Snapshot() map[string]uint64 {
	if m == nil {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := make(map[string]uint64, len(m.values))
	for k, v := range m.values {
		copied[k] = v
	}
	return copied
}
