package transport

import (
	"fmt"
	"net"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"peek-and-poke/sidecar/internal/queue"
	"peek-and-poke/sidecar/internal/telemetry"
	"peek-and-poke/sidecar/internal/wire"
)

// WebSocket carries the same delimiter-framed protocol over a websocket
// connection, for inspectors that cannot open a raw datagram port (e.g. a
// browser-hosted inspector). Frames are still capped at MaxPacketSize so
// both transports present identical reassembly behavior downstream.
type WebSocket struct {
	conn    *websocket.Conn
	inbound *queue.Queue[[]byte]
	reasm   wire.Reassembler
	logger  telemetry.Logger
	metrics telemetry.Metrics

	readDone chan struct{}
	readErr  atomic.Value
	reported bool
	closed   atomic.Bool
}

// DialWebSocket connects to the inspector's websocket endpoint and starts
// the background reader that feeds the poll queue.
func DialWebSocket(url string, logger telemetry.Logger, metrics telemetry.Metrics) (*WebSocket, error) {
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial inspector websocket %s: %w", url, err)
	}
	if metrics == nil {
		metrics = telemetry.NopMetrics{}
	}
	ws := &WebSocket{
		conn:     conn,
		inbound:  queue.New[[]byte](),
		logger:   logger,
		metrics:  metrics,
		readDone: make(chan struct{}),
	}
	go ws.readLoop()
	return ws, nil
}

// readLoop pushes every received frame onto the poll queue. Websocket reads
// must happen on a dedicated goroutine: arming short read deadlines on a
// stream connection poisons it, unlike a datagram socket.
func (w *WebSocket) readLoop() {
	defer close(w.readDone)
	for {
		_, data, err := w.conn.ReadMessage()
		if err != nil {
			if !w.closed.Load() && !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				w.readErr.Store(err)
			}
			return
		}
		w.metrics.Add(metricDatagramsReceived, 1)
		w.inbound.Push(data)
	}
}

// Send implements Transport. Only the tick goroutine may call Send; gorilla
// connections support a single concurrent writer.
func (w *WebSocket) Send(payload []byte) error {
	for _, chunk := range Chunks(payload) {
		if err := w.conn.WriteMessage(websocket.BinaryMessage, chunk); err != nil {
			return fmt.Errorf("send websocket frame: %w", err)
		}
		w.metrics.Add(metricDatagramsSent, 1)
	}
	return nil
}

// Poll implements Transport by draining frames the reader goroutine has
// accumulated since the previous tick.
func (w *WebSocket) Poll() [][]byte {
	if err, ok := w.readErr.Load().(error); ok && !w.reported {
		w.reported = true
		if w.logger != nil {
			w.logger.Printf("inspector websocket read failed: %v", err)
		}
	}
	for _, frame := range w.inbound.TryDrain() {
		w.reasm.Feed(frame)
	}

	var messages [][]byte
	for {
		msg, ok := w.reasm.Next()
		if !ok {
			break
		}
		messages = append(messages, msg)
	}
	return messages
}

// LocalAddr implements Transport.
func (w *WebSocket) LocalAddr() net.Addr {
	if w == nil || w.conn == nil {
		return nil
	}
	return w.conn.LocalAddr()
}

// Close implements Transport. It attempts a clean close handshake before
// tearing down the connection.
func (w *WebSocket) Close() error {
	if w == nil || w.conn == nil {
		return nil
	}
	w.closed.Store(true)
	_ = w.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
	err := w.conn.Close()
	<-w.readDone
	return err
}
