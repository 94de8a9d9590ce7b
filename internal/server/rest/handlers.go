package rest

import (
	"errors"
	"io"
	"net/http"
	"net/netip"

	"github.com/dmitrijs2005/jobhub/internal/common"
	"github.com/dmitrijs2005/jobhub/internal/server/live"
	"github.com/gin-gonic/gin"
)

// pushMessage is what POST /send/:addr delivers.
const pushMessage = "Hello, World!"

type credentialsRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

type logoRequest struct {
	ContentType string `json:"content_type"`
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "clients": s.live.Len()})
}

func (s *Server) register(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	token, err := s.users.Register(c.Request.Context(), req.Login, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrorValidation):
			abortWithError(c, http.StatusBadRequest, err.Error())
		case errors.Is(err, common.ErrAlreadyExists):
			abortWithError(c, http.StatusConflict, "login already taken")
		default:
			s.logger.Error(c.Request.Context(), "register failed", "error", err)
			abortWithError(c, http.StatusInternalServerError, "internal error")
		}
		return
	}

	c.JSON(http.StatusCreated, tokenResponse{Token: token})
}

func (s *Server) login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	token, err := s.users.Login(c.Request.Context(), req.Login, req.Password)
	if err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			abortWithError(c, http.StatusUnauthorized, "invalid credentials")
			return
		}
		s.logger.Error(c.Request.Context(), "login failed", "error", err)
		abortWithError(c, http.StatusInternalServerError, "internal error")
		return
	}

	c.JSON(http.StatusOK, tokenResponse{Token: token})
}

func (s *Server) me(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		abortWithError(c, http.StatusInternalServerError, "internal error")
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": user.ID, "login": user.Login})
}

func (s *Server) companyLogo(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		abortWithError(c, http.StatusInternalServerError, "internal error")
		return
	}

	// the body is optional
	var req logoRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		abortWithError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	up, err := s.logos.PresignUpload(c.Request.Context(), user.ID, req.ContentType)
	if err != nil {
		s.logger.Error(c.Request.Context(), "logo presign failed", "error", err)
		abortWithError(c, http.StatusInternalServerError, "internal error")
		return
	}

	c.JSON(http.StatusOK, gin.H{"key": up.Key, "url": up.URL})
}

func (s *Server) websocket(c *gin.Context) {
	if err := s.live.Accept(c.Writer, c.Request); err != nil {
		s.logger.Info(c.Request.Context(), "websocket rejected", "remote", c.Request.RemoteAddr, "error", err)
	}
}

func (s *Server) send(c *gin.Context) {
	ap, err := netip.ParseAddrPort(c.Param("addr"))
	if err != nil {
		// a bad target is a negative result like not_found, not a failed request
		c.JSON(http.StatusOK, gin.H{"error": "invalid address format"})
		return
	}

	outcome := s.live.SendTo(c.Request.Context(), ap.String(), live.TextMessage(pushMessage))
	c.JSON(http.StatusOK, gin.H{"status": outcome.String()})
}
