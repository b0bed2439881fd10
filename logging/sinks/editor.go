package sinks

import "peek-and-poke/sidecar/logging"

// MessageSender queues a tagged message for the inspector. The sidecar's
// Connection satisfies this interface.
type MessageSender interface {
	SendMessage(msgType string, data any)
}

// Editor forwards every routed event to the inspector as a "log" message,
// letting it offer interactive filtering over the simulation's output. The
// messages ride the every-tick channel of the envelope, so log lines arrive
// with near-real-time latency even between full-sync ticks.
type Editor struct {
	sender MessageSender
}

// NewEditor constructs a sink that forwards events over the given sender.
func NewEditor(sender MessageSender) *Editor {
	return &Editor{sender: sender}
}

// Write implements logging.Sink.
func (s *Editor) Write(event logging.Event) error {
	if s.sender == nil {
		return nil
	}
	s.sender.SendMessage("log", event)
	return nil
}

// Close implements logging.Sink.
func (s *Editor) Close() error {
	return nil
}
