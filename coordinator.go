package sidecar

import (
	"encoding/json"
	"fmt"
	"time"

	"peek-and-poke/sidecar/internal/queue"
	"peek-and-poke/sidecar/internal/telemetry"
	"peek-and-poke/sidecar/internal/transport"
	"peek-and-poke/sidecar/internal/wire"
)

const (
	metricEnvelopesSent   = "sync_envelopes_sent_total"
	metricFullSyncs       = "sync_full_syncs_total"
	metricInboundRouted   = "sync_inbound_routed_total"
	metricInboundDropped  = "sync_inbound_dropped_total"
	metricBlobsDiscarded  = "sync_blobs_discarded_total"
	metricOutboundDrained = "sync_outbound_drained_total"
)

// coordinator is the tick-driven orchestrator. It owns the transport, the
// outbound aggregation queue, the inbound demultiplexer, and the send-rate
// timer.
type coordinator struct {
	host      Host
	transport transport.Transport
	outbound  *queue.Queue[wire.Blob]

	componentIn map[string]*queue.Queue[componentRequest]
	resourceIn  map[string]*queue.Queue[json.RawMessage]
	entityIn    *queue.Queue[entityCommand]

	interval time.Duration
	nextSend time.Time

	logger  telemetry.Logger
	metrics telemetry.Metrics
}

func (c *coordinator) name() string { return "sync-coordinator" }

// tick frames and transmits one envelope, then routes whatever the
// inspector sent since the previous tick. The returned error is fatal: it
// means the local socket is broken, not that the inspector is absent.
func (c *coordinator) tick(now time.Time) error {
	sendThisFrame := c.advanceDeadline(now)

	var components, resources, messages []json.RawMessage
	drained := c.outbound.TryDrain()
	for _, blob := range drained {
		switch blob.Kind {
		case wire.BlobComponent:
			components = append(components, blob.JSON)
		case wire.BlobResource:
			resources = append(resources, blob.JSON)
		default:
			messages = append(messages, blob.JSON)
		}
	}
	c.metrics.Add(metricOutboundDrained, uint64(len(drained)))

	// On throttled ticks the queued component and resource blobs are
	// discarded rather than deferred: the read pipeline recomputes the full
	// state next tick anyway, so deferral would only transmit stale data.
	var payload []byte
	var err error
	if sendThisFrame {
		payload, err = wire.EncodeFullSync(c.host.LiveEntities(), components, resources, messages)
	} else {
		c.metrics.Add(metricBlobsDiscarded, uint64(len(components)+len(resources)))
		payload, err = wire.EncodeThrottled(messages)
	}
	if err != nil {
		return fmt.Errorf("encode sync envelope: %w", err)
	}
	payload = append(payload, wire.Delimiter)

	if err := c.transport.Send(payload); err != nil {
		return fmt.Errorf("sync send failed: %w", err)
	}
	c.metrics.Add(metricEnvelopesSent, 1)
	if sendThisFrame {
		c.metrics.Add(metricFullSyncs, 1)
	}

	for _, raw := range c.transport.Poll() {
		c.route(raw)
	}
	return nil
}

// advanceDeadline reports whether this tick is a full-sync tick and moves
// the deadline past now. Catch-up after a stall is collapsed to a single
// future deadline so queued sends never fire back-to-back.
func (c *coordinator) advanceDeadline(now time.Time) bool {
	if c.interval <= 0 {
		return true
	}
	if c.nextSend.IsZero() {
		c.nextSend = now.Add(c.interval)
		return true
	}
	if now.Before(c.nextSend) {
		return false
	}
	for !c.nextSend.After(now) {
		c.nextSend = c.nextSend.Add(c.interval)
	}
	return true
}

// route demultiplexes one reassembled inbound message onto the matching
// per-type channel or the entity lifecycle channel. Malformed messages are
// dropped without logging; updates naming an unregistered type are dropped
// with a log entry.
func (c *coordinator) route(raw []byte) {
	msg, err := wire.DecodeInbound(raw)
	if err != nil {
		c.metrics.Add(metricInboundDropped, 1)
		return
	}
	switch m := msg.(type) {
	case wire.ComponentUpdate:
		in, ok := c.componentIn[m.ID]
		if !ok {
			c.logf("dropping update for unregistered writable component %q", m.ID)
			c.metrics.Add(metricInboundDropped, 1)
			return
		}
		in.Push(componentRequest{Entity: m.Entity, Data: m.Data})
	case wire.ResourceUpdate:
		in, ok := c.resourceIn[m.ID]
		if !ok {
			c.logf("dropping update for unregistered writable resource %q", m.ID)
			c.metrics.Add(metricInboundDropped, 1)
			return
		}
		in.Push(m.Data)
	case wire.CreateEntities:
		c.entityIn.Push(entityCommand{create: m.Amount})
	case wire.DestroyEntities:
		ids := make([]uint32, 0, len(m.Entities))
		for _, ref := range m.Entities {
			ids = append(ids, ref.ID)
		}
		c.entityIn.Push(entityCommand{destroy: ids})
	}
	c.metrics.Add(metricInboundRouted, 1)
}

func (c *coordinator) logf(format string, args ...any) {
	if c.logger == nil {
		return
	}
	c.logger.Printf(format, args...)
}
