// Package rest exposes the HTTP API: sign-in, gated routes behind the bearer
// gate, the websocket endpoint backed by the live registry and the push
// trigger.
package rest

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/jobhub/internal/logging"
	"github.com/dmitrijs2005/jobhub/internal/server/live"
	"github.com/dmitrijs2005/jobhub/internal/server/models"
	"github.com/dmitrijs2005/jobhub/internal/server/services"
	"github.com/gin-gonic/gin"
)

const shutdownTimeout = 5 * time.Second

// UserService registers and signs in users.
type UserService interface {
	Register(ctx context.Context, login, password string) (string, error)
	Login(ctx context.Context, login, password string) (string, error)
}

// LogoService presigns logo uploads.
type LogoService interface {
	PresignUpload(ctx context.Context, userID int64, contentType string) (*services.LogoUpload, error)
}

// Gate resolves the Authorization header values into a verified user.
type Gate interface {
	Authenticate(ctx context.Context, headerValues []string) (*models.User, error)
}

type Server struct {
	address string
	logger  logging.Logger
	users   UserService
	logos   LogoService
	gate    Gate
	live    *live.Registry
	engine  *gin.Engine
}

func NewServer(a string, l logging.Logger, us UserService, ls LogoService, g Gate, r *live.Registry) *Server {
	s := &Server{
		address: a,
		logger:  l.With("module", "http_server"),
		users:   us,
		logos:   ls,
		gate:    g,
		live:    r,
	}
	s.engine = s.newRouter()
	return s
}

// Handler returns the routed engine, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) newRouter() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	r.GET("/health", s.health)
	r.POST("/register", s.register)
	r.POST("/login", s.login)

	r.GET("/ws", s.websocket)
	r.POST("/send/:addr", s.send)

	gated := r.Group("/", s.authRequired())
	gated.GET("/me", s.me)
	gated.POST("/companies/logo", s.companyLogo)

	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully and closes
// every live websocket.
func (s *Server) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()

		// hijacked websocket connections are not tracked by Shutdown
		s.live.CloseAll()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Warn(ctx, "HTTP server shutdown", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	// starts accepting incoming connections
	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	<-stopped
	return nil
}
