package sidecar

import (
	"encoding/json"
	"fmt"
	"log"
	"net"
	"time"

	"peek-and-poke/sidecar/internal/queue"
	"peek-and-poke/sidecar/internal/telemetry"
	"peek-and-poke/sidecar/internal/transport"
	"peek-and-poke/sidecar/internal/wire"
)

// DefaultInspectorAddr is the inspector's well-known datagram endpoint.
const DefaultInspectorAddr = "127.0.0.1:8000"

// DefaultSendInterval throttles full-state transmission. Messages still go
// out every tick; only the bulk snapshot is rate limited.
const DefaultSendInterval = 200 * time.Millisecond

// Config tunes a Sidecar. Use DefaultConfig as the starting point.
type Config struct {
	// SendInterval is the minimum spacing between full-sync envelopes. Zero
	// sends the full state on every tick.
	SendInterval time.Duration

	// InspectorAddr is the inspector's UDP endpoint. Ignored when Transport
	// is set.
	InspectorAddr string

	// Transport overrides the default UDP transport, e.g. with the
	// websocket transport or a test double.
	Transport transport.Transport

	Logger  telemetry.Logger
	Metrics telemetry.Metrics
}

// DefaultConfig returns the standard sidecar configuration.
func DefaultConfig() Config {
	return Config{
		SendInterval:  DefaultSendInterval,
		InspectorAddr: DefaultInspectorAddr,
	}
}

// Sidecar drives the synchronization pipelines. The host invokes Tick once
// per simulation tick from a single goroutine; no stage blocks or retains
// control between ticks.
type Sidecar struct {
	lifecycle *lifecycleStage
	writers   []stage
	readers   []stage
	coord     *coordinator
	conn      *Connection
	transport transport.Transport
}

// New materializes the registered type set against the host and wires the
// full pipeline. The set is traversed in declaration order: one read stage
// per readable entry, one inbound channel plus write stage per writable
// entry. Registration is complete after New; types cannot be added at
// runtime.
func New(host Host, set TypeSet, cfg Config) (*Sidecar, error) {
	if host == nil {
		return nil, fmt.Errorf("host is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = telemetry.WrapLogger(log.Default())
	}
	metrics := cfg.Metrics
	if metrics == nil {
		metrics = telemetry.NopMetrics{}
	}

	tr := cfg.Transport
	if tr == nil {
		addr := cfg.InspectorAddr
		if addr == "" {
			addr = DefaultInspectorAddr
		}
		udpAddr, err := net.ResolveUDPAddr("udp", addr)
		if err != nil {
			return nil, fmt.Errorf("resolve inspector address %q: %w", addr, err)
		}
		tr, err = transport.NewUDP(udpAddr, logger, metrics)
		if err != nil {
			return nil, err
		}
	}

	outbound := queue.New[wire.Blob]()
	conn := newConnection(outbound, logger)

	build := &buildContext{
		host:        host,
		conn:        conn,
		logger:      logger,
		metrics:     metrics,
		componentIn: make(map[string]*queue.Queue[componentRequest]),
		resourceIn:  make(map[string]*queue.Queue[json.RawMessage]),
	}
	readers, writers, err := set.materialize(build)
	if err != nil {
		tr.Close()
		return nil, fmt.Errorf("materialize type set: %w", err)
	}

	coord := &coordinator{
		host:        host,
		transport:   tr,
		outbound:    outbound,
		componentIn: build.componentIn,
		resourceIn:  build.resourceIn,
		entityIn:    queue.New[entityCommand](),
		interval:    cfg.SendInterval,
		logger:      logger,
		metrics:     metrics,
	}

	return &Sidecar{
		lifecycle: &lifecycleStage{host: host, in: coord.entityIn, logger: logger},
		writers:   writers,
		readers:   readers,
		coord:     coord,
		conn:      conn,
		transport: tr,
	}, nil
}

// Tick runs one synchronization round: apply inspector requests routed on
// the previous tick (entity lifecycle first, then per-type writes), snapshot
// every readable type, then aggregate, rate-limit, frame, transmit, and
// route newly received messages. The returned error is unrecoverable.
func (s *Sidecar) Tick(now time.Time) error {
	if s == nil {
		return nil
	}
	s.lifecycle.run(now)
	for _, st := range s.writers {
		st.run(now)
	}
	for _, st := range s.readers {
		st.run(now)
	}
	return s.coord.tick(now)
}

// Connection returns the handle for sending custom messages to the
// inspector.
func (s *Sidecar) Connection() *Connection {
	if s == nil {
		return nil
	}
	return s.conn
}

// LocalAddr reports the transport's local endpoint.
func (s *Sidecar) LocalAddr() net.Addr {
	if s == nil || s.transport == nil {
		return nil
	}
	return s.transport.LocalAddr()
}

// Close releases the transport.
func (s *Sidecar) Close() error {
	if s == nil || s.transport == nil {
		return nil
	}
	return s.transport.Close()
}
