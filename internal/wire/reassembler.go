package wire

import "bytes"

// Reassembler accumulates raw received bytes and splits them back into
// discrete delimiter-terminated messages. Datagram boundaries carry no
// meaning; a message may span several datagrams and a datagram may carry
// the tail of one message and the head of the next.
type Reassembler struct {
	buf []byte
}

// Feed appends received bytes to the accumulation buffer.
func (r *Reassembler) Feed(data []byte) {
	if r == nil || len(data) == 0 {
		return
	}
	r.buf = append(r.buf, data...)
}

// Next pops the earliest complete message, excluding its delimiter. It
// returns false when the buffer holds no complete message yet.
func (r *Reassembler) Next() ([]byte, bool) {
	if r == nil {
		return nil, false
	}
	idx := bytes.IndexByte(r.buf, Delimiter)
	if idx < 0 {
		return nil, false
	}
	msg := append([]byte(nil), r.buf[:idx]...)
	r.buf = r.buf[idx+1:]
	return msg, true
}

// Pending reports the number of buffered bytes not yet consumed.
func (r *Reassembler) Pending() int {
	if r == nil {
		return 0
	}
	return len(r.buf)
}
