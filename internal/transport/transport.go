// Package transport moves framed envelope bytes between the simulation and
// the inspector process. Implementations never block the tick loop: sends
// complete synchronously and receiving is a bounded non-blocking poll.
package transport

import "net"

// MaxPacketSize caps the payload of a single outbound datagram. Larger
// envelopes are split across consecutive datagrams; the form-feed delimiter
// is the only re-segmentation signal on the receiving side.
const MaxPacketSize = 32 * 1024

// Transport is the inspector link used by the sync coordinator.
type Transport interface {
	// Send transmits a framed payload, splitting it into chunks of at most
	// MaxPacketSize bytes. A send failure is unrecoverable: it indicates a
	// broken local socket rather than an absent peer.
	Send(payload []byte) error

	// Poll performs a bounded amount of non-blocking receive work and
	// returns every complete delimiter-terminated message reassembled so
	// far. An absent inspector yields no messages and no error.
	Poll() [][]byte

	// LocalAddr reports the local endpoint, mainly for diagnostics.
	LocalAddr() net.Addr

	Close() error
}

// Chunks splits a payload into consecutive slices of at most MaxPacketSize
// bytes. The slices alias the payload.
func Chunks(payload []byte) [][]byte {
	if len(payload) == 0 {
		return nil
	}
	out := make([][]byte, 0, (len(payload)+MaxPacketSize-1)/MaxPacketSize)
	for start := 0; start < len(payload); start += MaxPacketSize {
		end := start + MaxPacketSize
		if end > len(payload) {
			end = len(payload)
		}
		out = append(out, payload[start:end])
	}
	return out
}
