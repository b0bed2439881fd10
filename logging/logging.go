// Package logging carries the simulation's structured log events to one or
// more sinks: the console, an in-memory capture, or the inspector itself.
package logging

import "time"

// Level classifies an event's severity.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// String implements fmt.Stringer.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return "unknown"
	}
}

// MarshalText renders the level for JSON payloads.
func (l Level) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// Event is one structured log record.
type Event struct {
	Time    time.Time `json:"time"`
	Level   Level     `json:"level"`
	Target  string    `json:"target,omitempty"`
	File    string    `json:"file,omitempty"`
	Line    int       `json:"line,omitempty"`
	Message string    `json:"message"`
}

// Sink receives routed events.
type Sink interface {
	Write(Event) error
	Close() error
}
