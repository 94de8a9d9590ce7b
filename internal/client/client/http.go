package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/jobhub/internal/common"
	"github.com/gorilla/websocket"
)

// HTTPClient implements Client over the server's JSON routes and websocket.
type HTTPClient struct {
	baseURL string
	http    *http.Client
	dialer  *websocket.Dialer
}

// NewHTTPClient targets addr, either "host:port" or a full http(s) URL.
// timeout bounds each JSON request and the websocket handshake.
func NewHTTPClient(addr string, timeout time.Duration) *HTTPClient {
	base := strings.TrimRight(addr, "/")
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "http://" + base
	}
	return &HTTPClient{
		baseURL: base,
		http:    &http.Client{Timeout: timeout},
		dialer: &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: timeout,
		},
	}
}

type credentials struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (c *HTTPClient) Register(ctx context.Context, login string, password []byte) (string, error) {
	var out tokenResponse
	if err := c.do(ctx, http.MethodPost, "/register", "", credentials{login, string(password)}, &out); err != nil {
		return "", err
	}
	return out.Token, nil
}

func (c *HTTPClient) Login(ctx context.Context, login string, password []byte) (string, error) {
	var out tokenResponse
	if err := c.do(ctx, http.MethodPost, "/login", "", credentials{login, string(password)}, &out); err != nil {
		return "", err
	}
	return out.Token, nil
}

func (c *HTTPClient) Me(ctx context.Context, token string) (*Profile, error) {
	var out Profile
	if err := c.do(ctx, http.MethodGet, "/me", token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) PresignLogo(ctx context.Context, token, contentType string) (*LogoUpload, error) {
	in := struct {
		ContentType string `json:"content_type,omitempty"`
	}{contentType}

	var out LogoUpload
	if err := c.do(ctx, http.MethodPost, "/companies/logo", token, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Listen connects to /ws, reports the local address the server will key the
// connection by, then delivers every text or binary message until ctx is
// cancelled or the server closes the connection. Both of those end with a
// nil error.
func (c *HTTPClient) Listen(ctx context.Context, onReady func(localAddr string), onMessage func(msg string)) error {
	conn, resp, err := c.dialer.DialContext(ctx, c.wsURL(), nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	defer conn.Close()

	if onReady != nil {
		onReady(conn.LocalAddr().String())
	}

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
			_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
			_ = conn.Close()
		case <-stop:
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("websocket read: %w", err)
		}
		if onMessage != nil {
			onMessage(string(data))
		}
	}
}

func (c *HTTPClient) wsURL() string {
	switch {
	case strings.HasPrefix(c.baseURL, "https://"):
		return "wss://" + strings.TrimPrefix(c.baseURL, "https://") + "/ws"
	default:
		return "ws://" + strings.TrimPrefix(c.baseURL, "http://") + "/ws"
	}
}

// do sends in as JSON and decodes a 2xx body into out. Non-2xx statuses are
// mapped onto the package's sentinel errors.
func (c *HTTPClient) do(ctx context.Context, method, path, token string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set(common.AuthorizationHeaderName, "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out == nil {
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		return nil
	}

	return statusError(resp)
}

func statusError(resp *http.Response) error {
	var er errorResponse
	_ = json.NewDecoder(io.LimitReader(resp.Body, 4096)).Decode(&er)
	msg := er.Error
	if msg == "" {
		msg = resp.Status
	}

	var sentinel error
	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		sentinel = ErrUnauthorized
	case http.StatusConflict:
		sentinel = ErrAlreadyExists
	case http.StatusBadRequest:
		sentinel = ErrBadRequest
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		sentinel = ErrUnavailable
	default:
		return errors.New("unexpected response: " + msg)
	}
	return fmt.Errorf("%w: %s", sentinel, msg)
}
