package sidecar

import (
	"encoding/json"

	"peek-and-poke/sidecar/internal/queue"
	"peek-and-poke/sidecar/internal/telemetry"
	"peek-and-poke/sidecar/internal/wire"
)

// Connection is a handle for pushing data to the inspector. Read stages use
// it internally; applications can use SendMessage to surface their own
// events (log lines, alerts, custom panels) in the inspector.
//
// A Connection is safe for concurrent use and never blocks: data is queued
// and transmitted by the coordinator on the next tick.
type Connection struct {
	out    *queue.Queue[wire.Blob]
	logger telemetry.Logger
}

func newConnection(out *queue.Queue[wire.Blob], logger telemetry.Logger) *Connection {
	return &Connection{out: out, logger: logger}
}

// SendMessage queues an arbitrary tagged message for the inspector. Unlike
// component and resource snapshots, messages are delivered on every tick,
// not just full-sync ticks. The message types understood by a given
// inspector are up to that inspector.
func (c *Connection) SendMessage(msgType string, data any) {
	if c == nil {
		return
	}
	raw, err := json.Marshal(struct {
		Type string `json:"type"`
		Data any    `json:"data"`
	}{Type: msgType, Data: data})
	if err != nil {
		if c.logger != nil {
			c.logger.Printf("failed to serialize %q message for inspector: %v", msgType, err)
		}
		return
	}
	c.out.Push(wire.Blob{Kind: wire.BlobMessage, JSON: raw})
}

// sendData transfers ownership of a completed blob to the coordinator.
func (c *Connection) sendData(blob wire.Blob) {
	if c == nil {
		return
	}
	c.out.Push(blob)
}
