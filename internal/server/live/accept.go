package live

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

// Accept upgrades the request to a websocket, registers it under the
// request's remote address and runs its receive loop on the calling
// goroutine until the peer closes or the transport fails. The entry is
// removed when the loop ends.
//
// An error is returned only when the upgrade fails; the upgrader has already
// written the HTTP error response by then.
func (r *Registry) Accept(w http.ResponseWriter, req *http.Request) error {
	conn, err := r.upgrader.Upgrade(w, req, nil)
	if err != nil {
		return fmt.Errorf("websocket upgrade: %w", err)
	}

	addr := req.RemoteAddr
	ctx := context.WithoutCancel(req.Context())

	r.logger.Info(ctx, "client connected", "addr", addr, "user_agent", userAgent(req))

	conn.SetReadLimit(maxMessageSize)
	r.Register(addr, conn)

	done := make(chan struct{})
	go r.keepAlive(conn, done)

	defer func() {
		close(done)
		if r.unregisterIf(addr, conn) {
			r.logger.Info(ctx, "client removed", "addr", addr)
		}
		_ = conn.Close()
		r.logger.Info(ctx, "client disconnected", "addr", addr)
	}()

	r.receive(ctx, addr, conn)
	return nil
}

// receive drains the peer's frames. Frames are observed, not acted upon.
func (r *Registry) receive(ctx context.Context, addr string, conn Inbound) {
	opts := FrameOptions{ControlWait: r.writeTimeout, IdleTimeout: r.pongWait}
	if opts.ControlWait <= 0 {
		opts.ControlWait = time.Second
	}

	for f, err := range Frames(conn, opts) {
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				r.logger.Warn(ctx, "websocket read error", "addr", addr, "error", err)
			}
			return
		}

		switch f.Kind {
		case FrameText:
			r.logger.Debug(ctx, "client sent text", "addr", addr, "text", string(f.Data))
		case FrameBinary:
			r.logger.Debug(ctx, "client sent binary", "addr", addr, "bytes", len(f.Data))
		case FramePing, FramePong:
			r.logger.Debug(ctx, "client sent "+f.Kind.String(), "addr", addr, "payload", f.Data)
		case FrameClose:
			r.logger.Info(ctx, "client sent close", "addr", addr, "code", f.CloseCode, "reason", f.CloseText)
		}
	}
}

// keepAlive pings the peer so a vanished client trips the read deadline.
// WriteControl is safe alongside SendTo's writes.
func (r *Registry) keepAlive(conn *websocket.Conn, done <-chan struct{}) {
	ticker := time.NewTicker(r.pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(time.Second)); err != nil {
				return
			}
		}
	}
}

func userAgent(req *http.Request) string {
	if ua := req.UserAgent(); ua != "" {
		return ua
	}
	return "Unknown browser"
}
