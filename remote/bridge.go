package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"

	"github.com/phanxgames/sceneedit"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
	maxMsgSize = 1 << 20
	sendBuffer = 256
	inboxSize  = 256
)

// ErrClosed is returned by Submit after the connection has gone away. The
// composite has still been applied locally.
var ErrClosed = fmt.Errorf("remote: connection closed: %w", sceneedit.ErrNotPublished)

// ErrSendBufferFull is returned by Submit when the outgoing queue is full.
// The composite has been applied locally but was not published.
var ErrSendBufferFull = fmt.Errorf("remote: send buffer full: %w", sceneedit.ErrNotPublished)

// Bridge is a sceneedit.ModelBridge that applies every composite to a local
// bridge first and then publishes it. Composites broadcast by other clients
// are queued and applied on the UI goroutine by Drain.
type Bridge struct {
	local     sceneedit.ModelBridge
	conn      *websocket.Conn
	projectID string
	clientID  string

	send  chan []byte
	inbox chan Message

	mu     sync.Mutex
	seq    int64
	closed bool

	pending map[int64]string // seq -> composite id, awaiting ack

	// OnNack is called from Drain when the server rejects a composite.
	OnNack func(opID, reason string)
}

// Dial connects to the server at url and starts the read and write pumps.
// The pumps stop when ctx is cancelled or the connection drops.
func Dial(ctx context.Context, url, projectID string, local sceneedit.ModelBridge) (*Bridge, error) {
	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("remote: dial %s: %w", url, err)
	}
	b := newBridge(conn, projectID, local)
	go b.readPump(ctx)
	go b.writePump(ctx)
	return b, nil
}

func newBridge(conn *websocket.Conn, projectID string, local sceneedit.ModelBridge) *Bridge {
	conn.SetReadLimit(maxMsgSize)
	return &Bridge{
		local:     local,
		conn:      conn,
		projectID: projectID,
		clientID:  uuid.New().String(),
		send:      make(chan []byte, sendBuffer),
		inbox:     make(chan Message, inboxSize),
		pending:   make(map[int64]string),
	}
}

// ClientID returns the id this client announces to the server.
func (b *Bridge) ClientID() string { return b.clientID }

// Submit implements sceneedit.ModelBridge.
func (b *Bridge) Submit(c sceneedit.CompositeOperation) error {
	if err := b.local.Submit(c); err != nil {
		return err
	}
	if c.Empty() {
		return nil
	}
	payload, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("remote: marshal composite: %w", err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrClosed
	}
	b.seq++
	data, err := json.Marshal(Message{
		Type:      TypeOpSubmit,
		ProjectID: b.projectID,
		ClientID:  b.clientID,
		Seq:       b.seq,
		Payload:   payload,
	})
	if err != nil {
		return fmt.Errorf("remote: marshal message: %w", err)
	}
	b.pending[b.seq] = c.ID
	select {
	case b.send <- data:
	default:
		delete(b.pending, b.seq)
		slog.Warn("remote: send buffer full, dropping composite", "op", c.ID)
		return fmt.Errorf("remote: publish %s: %w", c.ID, ErrSendBufferFull)
	}
	return nil
}

// Pending returns the number of composites not yet acknowledged.
func (b *Bridge) Pending() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.pending)
}

// Drain handles every message received since the last call. It must run on
// the UI goroutine, typically from a host tick hook.
func (b *Bridge) Drain() {
	for {
		select {
		case msg := <-b.inbox:
			b.handle(msg)
		default:
			return
		}
	}
}

func (b *Bridge) handle(msg Message) {
	switch msg.Type {
	case TypeOpAck, TypeOpNack:
		var ack AckPayload
		if err := json.Unmarshal(msg.Payload, &ack); err != nil {
			slog.Warn("remote: invalid ack", "error", err)
			return
		}
		b.mu.Lock()
		opID := b.pending[ack.Seq]
		delete(b.pending, ack.Seq)
		b.mu.Unlock()
		if msg.Type == TypeOpNack {
			slog.Warn("remote: composite rejected", "op", opID, "reason", ack.Reason)
			if b.OnNack != nil {
				b.OnNack(opID, ack.Reason)
			}
		}

	case TypeOpBroadcast:
		if msg.ClientID == b.clientID {
			return
		}
		var c sceneedit.CompositeOperation
		if err := json.Unmarshal(msg.Payload, &c); err != nil {
			slog.Warn("remote: invalid broadcast", "error", err)
			return
		}
		if err := b.local.Submit(c); err != nil {
			slog.Error("remote: apply broadcast", "op", c.ID, "from", msg.ClientID, "error", err)
		}

	case TypeWelcome:
		slog.Info("remote: connected", "project", b.projectID, "client", b.clientID)

	case TypeError:
		slog.Warn("remote: server error", "payload", string(msg.Payload))
	}
}

func (b *Bridge) readPump(ctx context.Context) {
	defer b.shutdown()
	for {
		_, data, err := b.conn.Read(ctx)
		if err != nil {
			if s := websocket.CloseStatus(err); s != websocket.StatusNormalClosure && s != websocket.StatusGoingAway {
				slog.Debug("remote: read error", "error", err)
			}
			return
		}
		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			slog.Warn("remote: invalid message", "error", err)
			continue
		}
		select {
		case b.inbox <- msg:
		case <-ctx.Done():
			return
		}
	}
}

func (b *Bridge) writePump(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		b.conn.Close(websocket.StatusNormalClosure, "")
	}()
	for {
		select {
		case data, ok := <-b.send:
			if !ok {
				return
			}
			writeCtx, cancel := context.WithTimeout(ctx, writeWait)
			err := b.conn.Write(writeCtx, websocket.MessageText, data)
			cancel()
			if err != nil {
				slog.Debug("remote: write error", "error", err)
				return
			}
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, writeWait)
			err := b.conn.Ping(pingCtx)
			cancel()
			if err != nil {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

func (b *Bridge) shutdown() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	close(b.send)
}

// Close ends the session. The write pump sends the close frame.
func (b *Bridge) Close() {
	b.shutdown()
}
