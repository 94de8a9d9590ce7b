package live

import (
	"errors"
	"iter"
	"net"
	"time"

	"github.com/gorilla/websocket"
)

// FrameKind classifies an inbound websocket frame.
type FrameKind int

const (
	FrameText FrameKind = iota
	FrameBinary
	FramePing
	FramePong
	FrameClose
)

func (k FrameKind) String() string {
	switch k {
	case FrameText:
		return "text"
	case FrameBinary:
		return "binary"
	case FramePing:
		return "ping"
	case FramePong:
		return "pong"
	case FrameClose:
		return "close"
	default:
		return "unknown"
	}
}

// Frame is one inbound frame. CloseCode and CloseText are set for FrameClose.
type Frame struct {
	Kind      FrameKind
	Data      []byte
	CloseCode int
	CloseText string
}

// Inbound is the read half of a websocket plus the control-frame plumbing
// the read half needs. *websocket.Conn satisfies it.
type Inbound interface {
	ReadMessage() (messageType int, p []byte, err error)
	SetReadDeadline(t time.Time) error
	SetPingHandler(h func(appData string) error)
	SetPongHandler(h func(appData string) error)
	SetCloseHandler(h func(code int, text string) error)
	WriteControl(messageType int, data []byte, deadline time.Time) error
}

// FrameOptions tunes Frames.
type FrameOptions struct {
	// ControlWait bounds the pong and close-echo writes.
	ControlWait time.Duration
	// IdleTimeout, when positive, fails the read if the peer sends nothing
	// (not even a pong) for that long.
	IdleTimeout time.Duration
}

// errStopped aborts the read in progress once the consumer stops ranging.
var errStopped = errors.New("live: frame consumer stopped")

// Frames returns the inbound frames of conn in arrival order.
//
// The sequence ends after a Close frame (yielded with a nil error) or after a
// read error (yielded once with a zero Frame). Pings are answered and closes
// echoed as gorilla's default handlers would. Control frames are yielded from
// the handlers themselves, which gorilla runs inside ReadMessage on the
// ranging goroutine, so nothing is buffered between frames.
func Frames(conn Inbound, opts FrameOptions) iter.Seq2[Frame, error] {
	return func(yield func(Frame, error) bool) {
		done := false

		emit := func(f Frame) bool {
			if done {
				return false
			}
			if !yield(f, nil) {
				done = true
			}
			return !done
		}

		touch := func() {
			if opts.IdleTimeout > 0 {
				_ = conn.SetReadDeadline(time.Now().Add(opts.IdleTimeout))
			}
		}
		touch()

		conn.SetPingHandler(func(appData string) error {
			touch()
			err := ignoreGone(conn.WriteControl(websocket.PongMessage, []byte(appData), time.Now().Add(opts.ControlWait)))
			if !emit(Frame{Kind: FramePing, Data: []byte(appData)}) {
				return errStopped
			}
			return err
		})
		conn.SetPongHandler(func(appData string) error {
			touch()
			if !emit(Frame{Kind: FramePong, Data: []byte(appData)}) {
				return errStopped
			}
			return nil
		})
		conn.SetCloseHandler(func(code int, text string) error {
			msg := websocket.FormatCloseMessage(code, "")
			_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(opts.ControlWait))
			emit(Frame{Kind: FrameClose, CloseCode: code, CloseText: text})
			// a close always ends the sequence
			done = true
			return nil
		})

		for !done {
			messageType, data, err := conn.ReadMessage()
			if done {
				return
			}
			if err != nil {
				yield(Frame{}, err)
				return
			}

			touch()
			kind := FrameText
			if messageType == websocket.BinaryMessage {
				kind = FrameBinary
			}
			if !yield(Frame{Kind: kind, Data: data}, nil) {
				return
			}
		}
	}
}

// ignoreGone swallows errors meaning the connection is already going away,
// which the next read reports anyway.
func ignoreGone(err error) error {
	if err == nil || errors.Is(err, websocket.ErrCloseSent) {
		return nil
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return nil
	}
	return err
}
