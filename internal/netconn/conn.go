// Package netconn implements the per-client connection plumbing shared by
// both game modes: a reader task, a writer task, bounded non-blocking
// sends, heartbeat deadlines, and an optional secondary metadata channel.
// It generalizes the original connection.go (one send path, no heartbeat,
// no secondary channel).
package netconn

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/niceyeti/channerics"
)

const (
	ReadDeadline  = 60 * time.Second
	WriteDeadline = 10 * time.Second
	PingInterval  = 30 * time.Second

	sendQueueSize = 64
	maxBatchDrain = 32
)

// Codec turns outbound frames into wire bytes and a WebSocket message type,
// and turns inbound wire bytes into a decoded message. The ocean mode plugs
// in the binary wire codec; the racing mode plugs in JSON.
type Codec interface {
	// EncodeBatch concatenates frames into one wire payload.
	EncodeBatch(frames []interface{}) ([]byte, error)
	// MessageType is the gorilla/websocket message type this codec emits.
	MessageType() int
	// Decode parses one inbound message into a typed value.
	Decode(data []byte) (interface{}, error)
}

// JSONCodec implements Codec for the racing mode: each outbound "batch" is
// actually always a single JSON value (racing's message rate is low enough
// that batching would only add latency), and inbound messages are decoded
// into the caller-supplied pointer-producing function.
type JSONCodec struct {
	NewInbound func() interface{}
}

func (JSONCodec) MessageType() int { return websocket.TextMessage }

func (c JSONCodec) EncodeBatch(frames []interface{}) ([]byte, error) {
	if len(frames) == 1 {
		return json.Marshal(frames[0])
	}
	// Multiple frames queued before a writer wakeup: send the latest one.
	// Racing frames are all superseding state snapshots, so dropping stale
	// intermediates here is correct, not lossy.
	return json.Marshal(frames[len(frames)-1])
}

func (c JSONCodec) Decode(data []byte) (interface{}, error) {
	v := c.NewInbound()
	if err := json.Unmarshal(data, v); err != nil {
		return nil, err
	}
	return v, nil
}

// Conn is one accepted WebSocket session: a reader task, a writer task, and
// (once a matching /ws/meta connection arrives) a secondary low-rate
// metadata channel.
type Conn struct {
	ID string

	ws    *websocket.Conn
	codec Codec

	mu        sync.Mutex
	metaWS    *websocket.Conn
	closed    bool
	closeOnce sync.Once
	done      chan struct{}

	send     chan interface{} // primary channel
	sendMeta chan interface{} // secondary (metadata) channel, fed only once a meta socket is attached
}

// New creates a Conn wrapping an already-upgraded WebSocket.
func New(id string, ws *websocket.Conn, codec Codec) *Conn {
	return &Conn{
		ID:       id,
		ws:       ws,
		codec:    codec,
		done:     make(chan struct{}),
		send:     make(chan interface{}, sendQueueSize),
		sendMeta: make(chan interface{}, sendQueueSize),
	}
}

// AttachMeta binds a second WebSocket (opened against /ws/meta?id=...) as
// this connection's low-rate metadata channel.
func (c *Conn) AttachMeta(ws *websocket.Conn) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.metaWS = ws
}

func (c *Conn) hasMeta() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.metaWS != nil
}

// Enqueue places frame on the primary send channel, non-blocking. A full
// channel means the client can't keep up, so the connection is torn down
// rather than blocking the caller.
func (c *Conn) Enqueue(frame interface{}) error {
	select {
	case c.send <- frame:
		return nil
	default:
		c.Close()
		return errSendFull
	}
}

// EnqueueMeta prefers the secondary channel if one is bound, else falls
// back to the primary channel; overflow on either disconnects the client.
func (c *Conn) EnqueueMeta(frame interface{}) error {
	if c.hasMeta() {
		select {
		case c.sendMeta <- frame:
			return nil
		default:
			c.Close()
			return errSendFull
		}
	}
	return c.Enqueue(frame)
}

// Close tears the connection down exactly once.
func (c *Conn) Close() {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.closed = true
		meta := c.metaWS
		c.mu.Unlock()
		close(c.done)
		_ = c.ws.Close()
		if meta != nil {
			_ = meta.Close()
		}
	})
}

// Done returns a channel closed once this connection has been torn down.
func (c *Conn) Done() <-chan struct{} { return c.done }

// ReadLoop blocks reading inbound messages until the socket errors or
// closes, dispatching each decoded message to onMessage. onClose runs
// exactly once, from this goroutine, when the loop exits.
func (c *Conn) ReadLoop(onMessage func(msg interface{}), onClose func()) {
	defer func() {
		onClose()
		c.Close()
	}()

	c.ws.SetReadDeadline(time.Now().Add(ReadDeadline))
	c.ws.SetPongHandler(func(string) error {
		c.ws.SetReadDeadline(time.Now().Add(ReadDeadline))
		return nil
	})

	for {
		_, raw, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("netconn: read error for %s: %v", c.ID, err)
			}
			return
		}
		msg, err := c.codec.Decode(raw)
		if err != nil {
			log.Printf("netconn: malformed frame from %s: %v", c.ID, err)
			continue
		}
		onMessage(msg)
	}
}

// WriteLoop drains the send channels and writes batched wire messages,
// plus a periodic ping, until ctx is cancelled or the connection closes.
// Draining up to maxBatchDrain queued frames per wakeup lets several
// frames queued between writer wakeups go out as one WebSocket message.
func (c *Conn) WriteLoop(ctx context.Context) {
	ticker := time.NewTicker(PingInterval)
	defer ticker.Stop()

	done := channerics.OrDone(ctx.Done(), c.done)

	for {
		select {
		case <-done:
			return
		case frame := <-c.send:
			c.flush(c.send, frame, c.ws)
		case frame := <-c.sendMeta:
			c.flush(c.sendMeta, frame, c.metaOrPrimary())
		case <-ticker.C:
			c.mu.Lock()
			closed := c.closed
			c.mu.Unlock()
			if closed {
				return
			}
			_ = c.ws.SetWriteDeadline(time.Now().Add(WriteDeadline))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.Close()
				return
			}
		}
	}
}

func (c *Conn) metaOrPrimary() *websocket.Conn {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.metaWS != nil {
		return c.metaWS
	}
	return c.ws
}

// flush greedily drains additional queued frames off ch (up to
// maxBatchDrain-1 more) and writes one concatenated wire message to target.
func (c *Conn) flush(ch chan interface{}, first interface{}, target *websocket.Conn) {
	frames := []interface{}{first}
drain:
	for len(frames) < maxBatchDrain {
		select {
		case f := <-ch:
			frames = append(frames, f)
		default:
			break drain
		}
	}
	payload, err := c.codec.EncodeBatch(frames)
	if err != nil {
		log.Printf("netconn: encode error for %s: %v", c.ID, err)
		return
	}
	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return
	}
	_ = target.SetWriteDeadline(time.Now().Add(WriteDeadline))
	if err := target.WriteMessage(c.codec.MessageType(), payload); err != nil {
		c.Close()
	}
}

// Manager tracks every active connection for a world or race.
type Manager struct {
	mu    sync.RWMutex
	conns map[string]*Conn
}

func NewManager() *Manager {
	return &Manager{conns: make(map[string]*Conn)}
}

func (m *Manager) Add(c *Conn) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.conns[c.ID] = c
}

func (m *Manager) Remove(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.conns, id)
}

func (m *Manager) Get(id string) (*Conn, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.conns[id]
	return c, ok
}

func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.conns)
}

// Snapshot returns a stable copy of the current connection set, the same
// way the original ConnManager.Snapshot lets the tick loop iterate without
// holding the manager lock.
func (m *Manager) Snapshot() []*Conn {
	m.mu.RLock()
	defer m.mu.RUnlock()
	list := make([]*Conn, 0, len(m.conns))
	for _, c := range m.conns {
		list = append(list, c)
	}
	return list
}

type sendFullError struct{}

func (sendFullError) Error() string { return "netconn: send channel full, connection dropped" }

var errSendFull error = sendFullError{}
