package logging

import (
	"fmt"
	"log"
	"sync"
	"time"
)

// Router fans events out to every attached sink, filtering below a minimum
// level. Dispatch is synchronous: in a tick-driven host an event is either
// routed during the tick that produced it or not at all.
type Router struct {
	mu       sync.Mutex
	minLevel Level
	sinks    []Sink
	failures map[int]bool
	now      func() time.Time
}

// NewRouter constructs a router over the given sinks.
func NewRouter(minLevel Level, sinks ...Sink) *Router {
	return &Router{
		minLevel: minLevel,
		sinks:    sinks,
		failures: make(map[int]bool),
		now:      time.Now,
	}
}

// Publish routes one event. A sink failure is remembered and reported only
// once per sink so a dead sink cannot flood the others.
func (r *Router) Publish(event Event) {
	if r == nil {
		return
	}
	if event.Level < r.minLevel {
		return
	}
	if event.Time.IsZero() {
		event.Time = r.now()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, sink := range r.sinks {
		if err := sink.Write(event); err != nil && !r.failures[i] {
			r.failures[i] = true
			log.Printf("logging sink %d failed: %v", i, err)
		}
	}
}

// Debugf routes a formatted debug event.
func (r *Router) Debugf(target, format string, args ...any) {
	r.Publish(Event{Level: LevelDebug, Target: target, Message: fmt.Sprintf(format, args...)})
}

// Infof routes a formatted info event.
func (r *Router) Infof(target, format string, args ...any) {
	r.Publish(Event{Level: LevelInfo, Target: target, Message: fmt.Sprintf(format, args...)})
}

// Warnf routes a formatted warning event.
func (r *Router) Warnf(target, format string, args ...any) {
	r.Publish(Event{Level: LevelWarn, Target: target, Message: fmt.Sprintf(format, args...)})
}

// Errorf routes a formatted error event.
func (r *Router) Errorf(target, format string, args ...any) {
	r.Publish(Event{Level: LevelError, Target: target, Message: fmt.Sprintf(format, args...)})
}

// Printf implements the telemetry Logger interface at warning level, so the
// router can back the sidecar's internal diagnostics.
func (r *Router) Printf(format string, args ...any) {
	r.Warnf("sidecar", format, args...)
}

// Close closes every sink, returning the first failure.
func (r *Router) Close() error {
	if r == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var first error
	for _, sink := range r.sinks {
		if err := sink.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
