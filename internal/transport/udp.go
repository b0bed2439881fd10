package transport

import (
	"errors"
	"fmt"
	"net"
	"syscall"
	"time"

	"peek-and-poke/sidecar/internal/telemetry"
	"peek-and-poke/sidecar/internal/wire"
)

const (
	// maxPollReads bounds the number of datagrams consumed per poll so a
	// flooding peer cannot stall the tick loop.
	maxPollReads = 64

	// readBufferSize holds the largest datagram a UDP socket can deliver.
	readBufferSize = 64 * 1024

	metricDatagramsSent     = "transport_datagrams_sent_total"
	metricDatagramsReceived = "transport_datagrams_received_total"
	metricUnknownSender     = "transport_unknown_sender_total"
)

// UDP is the default inspector transport: an unconnected datagram socket on
// an ephemeral loopback port, sending to the inspector's fixed address.
type UDP struct {
	conn      *net.UDPConn
	inspector *net.UDPAddr
	reasm     wire.Reassembler
	readBuf   []byte
	logger    telemetry.Logger
	metrics   telemetry.Metrics
}

// NewUDP binds an ephemeral local socket and targets the inspector address.
// Failure to bind is unrecoverable for the sidecar.
func NewUDP(inspector *net.UDPAddr, logger telemetry.Logger, metrics telemetry.Metrics) (*UDP, error) {
	if inspector == nil {
		return nil, fmt.Errorf("inspector address is required")
	}
	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4zero, Port: 0})
	if err != nil {
		return nil, fmt.Errorf("bind sidecar socket: %w", err)
	}
	if metrics == nil {
		metrics = telemetry.NopMetrics{}
	}
	return &UDP{
		conn:      conn,
		inspector: inspector,
		readBuf:   make([]byte, readBufferSize),
		logger:    logger,
		metrics:   metrics,
	}, nil
}

// Send implements Transport. Each chunk becomes one datagram, in order.
func (u *UDP) Send(payload []byte) error {
	for _, chunk := range Chunks(payload) {
		if _, err := u.conn.WriteToUDP(chunk, u.inspector); err != nil {
			return fmt.Errorf("send datagram to %s: %w", u.inspector, err)
		}
		u.metrics.Add(metricDatagramsSent, 1)
	}
	return nil
}

// Poll implements Transport. It drains at most maxPollReads datagrams:
// a would-block result ends the poll, a connection reset is the expected
// signal that no inspector is listening and is skipped, and any other read
// error is logged and skipped for this poll.
func (u *UDP) Poll() [][]byte {
	for reads := 0; reads < maxPollReads; reads++ {
		if err := u.conn.SetReadDeadline(time.Now()); err != nil {
			u.logf("failed to arm read deadline: %v", err)
			break
		}
		n, addr, err := u.conn.ReadFromUDP(u.readBuf)
		if err != nil {
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				break
			}
			if errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.ECONNREFUSED) {
				continue
			}
			u.logf("error reading from inspector socket: %v", err)
			continue
		}
		if addr == nil || !addr.IP.Equal(u.inspector.IP) || addr.Port != u.inspector.Port {
			u.metrics.Add(metricUnknownSender, 1)
			continue
		}
		u.metrics.Add(metricDatagramsReceived, 1)
		u.reasm.Feed(u.readBuf[:n])
	}

	var messages [][]byte
	for {
		msg, ok := u.reasm.Next()
		if !ok {
			break
		}
		messages = append(messages, msg)
	}
	return messages
}

// LocalAddr implements Transport.
func (u *UDP) LocalAddr() net.Addr {
	if u == nil || u.conn == nil {
		return nil
	}
	return u.conn.LocalAddr()
}

// Close implements Transport.
func (u *UDP) Close() error {
	if u == nil || u.conn == nil {
		return nil
	}
	return u.conn.Close()
}

func (u *UDP) logf(format string, args ...any) {
	if u.logger == nil {
		return
	}
	u.logger.Printf(format, args...)
}
