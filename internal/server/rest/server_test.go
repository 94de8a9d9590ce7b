package rest

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/jobhub/internal/logging"
	"github.com/dmitrijs2005/jobhub/internal/server/live"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func postSend(t *testing.T, base, addr string) map[string]string {
	t.Helper()
	resp, err := http.Post(base+"/send/"+addr, "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestPushToConnectedClient(t *testing.T) {
	f := newFixture(t)
	srv := httptest.NewServer(f.server.Handler())
	defer srv.Close()

	conn, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	_ = resp.Body.Close()
	defer conn.Close()

	addr := conn.LocalAddr().String()
	require.Eventually(t, func() bool { return f.registry.Has(addr) }, 2*time.Second, 10*time.Millisecond)

	assert.Equal(t, map[string]string{"status": "sent"}, postSend(t, srv.URL, addr))

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	mt, data, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, websocket.TextMessage, mt)
	assert.Equal(t, pushMessage, string(data))

	require.NoError(t, conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second)))
	require.Eventually(t, func() bool { return !f.registry.Has(addr) }, 2*time.Second, 10*time.Millisecond)

	assert.Equal(t, map[string]string{"status": "not_found"}, postSend(t, srv.URL, addr))
}

func TestWebsocket_PlainGetRejected(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodGet, "/ws", nil, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Zero(t, f.registry.Len())
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	t.Parallel()

	registry := live.NewRegistry(logging.Nop(), time.Second)
	srv := NewServer("127.0.0.1:0", logging.Nop(), nil, nil, nil, registry)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- srv.Run(ctx)
	}()

	select {
	case err := <-done:
		t.Fatalf("server exited too early: %v", err)
	case <-time.After(150 * time.Millisecond):
	}

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop within timeout after context cancel")
	}
}

func TestRun_ReturnsErrorOnBusyAddress(t *testing.T) {
	t.Parallel()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	registry := live.NewRegistry(logging.Nop(), time.Second)
	srv := NewServer(ln.Addr().String(), logging.Nop(), nil, nil, nil, registry)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	assert.Error(t, srv.Run(ctx))
}
