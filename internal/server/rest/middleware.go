package rest

import (
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/jobhub/internal/common"
	"github.com/dmitrijs2005/jobhub/internal/server/auth"
	"github.com/dmitrijs2005/jobhub/internal/server/models"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const currentUserKey = "currentUser"

// authRequired runs the bearer gate. On success the user rides on both the
// request context and the gin context and the chain continues exactly once.
func (s *Server) authRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		user, err := s.gate.Authenticate(ctx, c.Request.Header.Values(common.AuthorizationHeaderName))
		if err != nil {
			status, msg := gateStatus(err)
			if status == http.StatusInternalServerError {
				s.logger.Error(ctx, "gate lookup failed", "error", err)
			} else {
				s.logger.Info(ctx, "request denied", "path", c.Request.URL.Path, "reason", err.Error())
			}
			abortWithError(c, status, msg)
			return
		}

		c.Request = c.Request.WithContext(auth.WithUser(ctx, user))
		c.Set(currentUserKey, user)
		c.Next()
	}
}

// gateStatus maps a gate failure to the HTTP status and error body text.
// A missing or unreadable header is forbidden; a bad token or an unknown
// subject is unauthorized.
func gateStatus(err error) (int, string) {
	switch {
	case errors.Is(err, auth.ErrMissingHeader):
		return http.StatusForbidden, "missing authorization header"
	case errors.Is(err, auth.ErrUnreadableHeader):
		return http.StatusForbidden, "unreadable authorization header"
	case errors.Is(err, common.ErrInvalidToken):
		return http.StatusUnauthorized, "invalid or expired token"
	case errors.Is(err, auth.ErrUnknownSubject):
		return http.StatusUnauthorized, "unknown user"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

// currentUser returns the user the gate attached to c.
func currentUser(c *gin.Context) (*models.User, bool) {
	if v, ok := c.Get(currentUserKey); ok {
		if u, ok := v.(*models.User); ok && u != nil {
			return u, true
		}
	}
	return auth.UserFromContext(c.Request.Context())
}

// requestLogger tags each request with an id, echoes it as X-Request-ID and
// writes one access-log line when the handler chain returns.
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		id := c.GetHeader(common.RequestIDHeaderName)
		if id == "" {
			id = uuid.NewString()
		}
		c.Header(common.RequestIDHeaderName, id)

		c.Next()

		status := c.Writer.Status()
		args := []any{
			"request_id", id,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"latency", time.Since(start),
			"remote", c.Request.RemoteAddr,
		}

		ctx := c.Request.Context()
		if status >= http.StatusInternalServerError {
			s.logger.Error(ctx, "request", args...)
		} else {
			s.logger.Info(ctx, "request", args...)
		}
	}
}

func abortWithError(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}
