// Package sinks provides the standard logging sinks: console output,
// in-memory capture for tests, and forwarding to the inspector.
package sinks

import (
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"

	"peek-and-poke/sidecar/logging"
)

var levelColors = map[logging.Level]*color.Color{
	logging.LevelDebug: color.New(color.FgHiBlack),
	logging.LevelInfo:  color.New(color.FgCyan),
	logging.LevelWarn:  color.New(color.FgYellow),
	logging.LevelError: color.New(color.FgRed, color.Bold),
}

// Console writes human-readable lines with the level colored.
type Console struct {
	mu sync.Mutex
	w  io.Writer
}

// NewConsole constructs a console sink over the given writer.
func NewConsole(w io.Writer) *Console {
	return &Console{w: w}
}

// Write implements logging.Sink.
func (s *Console) Write(event logging.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	level := event.Level.String()
	if c, ok := levelColors[event.Level]; ok {
		level = c.Sprint(level)
	}
	target := event.Target
	if target == "" {
		target = "-"
	}
	_, err := fmt.Fprintf(s.w, "%s %s [%s] %s\n",
		event.Time.Format("15:04:05.000"), level, target, event.Message)
	return err
}

// Close implements logging.Sink.
func (s *Console) Close() error {
	return nil
}
