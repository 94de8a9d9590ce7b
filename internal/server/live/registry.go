// Package live tracks which peers currently hold an open websocket to the
// server and lets any part of the server push a message to one of them by
// remote address.
package live

import (
	"context"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/dmitrijs2005/jobhub/internal/logging"
	"github.com/gorilla/websocket"
)

const (
	// Maximum message size allowed from peer.
	maxMessageSize = 8192

	// Time allowed to read the next frame (or pong) from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10
)

// Outbound is the write half of a live channel. *websocket.Conn satisfies it.
type Outbound interface {
	WriteMessage(messageType int, data []byte) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

// Message is what SendTo delivers.
type Message struct {
	Binary bool
	Data   []byte
}

// TextMessage builds a text Message.
func TextMessage(s string) Message {
	return Message{Data: []byte(s)}
}

// Outcome is the result of SendTo. NotFound is a normal result, not a fault:
// the peer may have disconnected between enqueue and delivery.
type Outcome int

const (
	Sent Outcome = iota
	NotFound
	SendFailed
)

func (o Outcome) String() string {
	switch o {
	case Sent:
		return "sent"
	case NotFound:
		return "not_found"
	case SendFailed:
		return "send_failed"
	default:
		return "unknown"
	}
}

// Registry maps remote addresses to live outbound channels. It holds at most
// one entry per address. All methods are safe for concurrent use.
type Registry struct {
	mu           sync.RWMutex
	peers        map[string]Outbound
	logger       logging.Logger
	writeTimeout time.Duration
	pongWait     time.Duration
	pingPeriod   time.Duration
	upgrader     websocket.Upgrader
}

// NewRegistry creates an empty Registry. writeTimeout bounds every push and
// control write; zero means no deadline.
func NewRegistry(logger logging.Logger, writeTimeout time.Duration) *Registry {
	return &Registry{
		peers:        make(map[string]Outbound),
		logger:       logger.With("module", "live_registry"),
		writeTimeout: writeTimeout,
		pongWait:     pongWait,
		pingPeriod:   pingPeriod,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// Register maps addr to out. A different channel already registered under
// addr is closed: an address is reused only after its previous connection is
// gone, so the old channel is dead weight.
func (r *Registry) Register(addr string, out Outbound) {
	r.mu.Lock()
	prev := r.peers[addr]
	r.peers[addr] = out
	r.mu.Unlock()

	if prev != nil && prev != out {
		_ = prev.Close()
		r.logger.Warn(context.Background(), "superseded client closed", "addr", addr)
	}
	r.logger.Info(context.Background(), "client added", "addr", addr)
}

// Unregister removes addr. Removing an unknown address is a no-op. The
// channel itself is not closed; close it first to drop a peer.
func (r *Registry) Unregister(addr string) {
	r.mu.Lock()
	_, ok := r.peers[addr]
	delete(r.peers, addr)
	r.mu.Unlock()

	if ok {
		r.logger.Info(context.Background(), "client removed", "addr", addr)
	}
}

// unregisterIf removes addr only while it still maps to out, so a closing
// connection cannot evict the connection that superseded it.
func (r *Registry) unregisterIf(addr string, out Outbound) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.peers[addr] != out {
		return false
	}
	delete(r.peers, addr)
	return true
}

// SendTo writes msg to the channel registered under addr.
//
// The exclusive lock is held across the write because the write mutates the
// connection's state and gorilla allows one writer at a time. Transport
// errors are logged and reported as SendFailed; the entry stays registered
// and the receive loop cleans it up if the peer is really gone.
func (r *Registry) SendTo(ctx context.Context, addr string, msg Message) Outcome {
	r.mu.Lock()
	defer r.mu.Unlock()

	out, ok := r.peers[addr]
	if !ok {
		r.logger.Info(ctx, "client not found", "addr", addr)
		return NotFound
	}

	if r.writeTimeout > 0 {
		_ = out.SetWriteDeadline(time.Now().Add(r.writeTimeout))
	}

	messageType := websocket.TextMessage
	if msg.Binary {
		messageType = websocket.BinaryMessage
	}

	if err := out.WriteMessage(messageType, msg.Data); err != nil {
		r.logger.Warn(ctx, "error sending message", "addr", addr, "error", err)
		return SendFailed
	}

	r.logger.Debug(ctx, "message sent", "addr", addr, "bytes", len(msg.Data))
	return Sent
}

// Has reports whether addr is currently registered.
func (r *Registry) Has(addr string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.peers[addr]
	return ok
}

// Len returns the number of registered clients.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.peers)
}

// Addrs returns the registered addresses, sorted.
func (r *Registry) Addrs() []string {
	r.mu.RLock()
	addrs := make([]string, 0, len(r.peers))
	for a := range r.peers {
		addrs = append(addrs, a)
	}
	r.mu.RUnlock()

	slices.Sort(addrs)
	return addrs
}

// CloseAll closes and removes every channel. Used on shutdown; the receive
// loops observe the closed transport and exit.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	peers := r.peers
	r.peers = make(map[string]Outbound)
	r.mu.Unlock()

	for addr, out := range peers {
		_ = out.Close()
		r.logger.Info(context.Background(), "client closed on shutdown", "addr", addr)
	}
}
