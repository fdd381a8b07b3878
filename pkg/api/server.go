// Package api exposes the inference pipeline over HTTP.
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/gilbertordx/rhcp-chatbot/pkg/chatbot"
	"github.com/gilbertordx/rhcp-chatbot/pkg/session"
)

// SessionHeader carries the caller's session id. Requests without it
// get a fresh session whose id comes back in the response.
const SessionHeader = "X-Session-ID"

type chatRequest struct {
	Message string `json:"message" binding:"required"`
}

type chatResponse struct {
	*chatbot.Result
	SessionID string `json:"session_id,omitempty"`
}

// Server routes HTTP traffic into the pipeline.
type Server struct {
	pipeline *chatbot.Pipeline
	sessions *session.Store
	log      *zap.Logger
	engine   *gin.Engine
}

func NewServer(pipeline *chatbot.Pipeline, sessions *session.Store, log *zap.Logger, debug bool) *Server {
	if debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		pipeline: pipeline,
		sessions: sessions,
		log:      log,
		engine:   gin.New(),
	}
	s.engine.Use(gin.Recovery())
	s.routes()
	return s
}

func (s *Server) routes() {
	s.engine.GET("/healthz", s.health)
	s.engine.GET("/readyz", s.ready)
	s.engine.POST("/chat", s.chat)
	s.engine.POST("/sessions", s.createSession)
	s.engine.GET("/sessions/stats", s.sessionStats)
	s.engine.GET("/sessions/:id/history", s.sessionHistory)
}

// Handler returns the router for mounting on an http.Server.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) ready(c *gin.Context) {
	if s.pipeline == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "pipeline not initialized"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

func (s *Server) chat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message is required"})
		return
	}

	// A request without the header gets a session created lazily so
	// follow-up questions work from the first turn. An explicitly
	// passed id that is unknown or expired is a client error, not a
	// reason to silently start over.
	sessionID := c.GetHeader(SessionHeader)
	if sessionID == "" {
		sessionID = s.sessions.CreateSession()
	} else if !s.sessions.IsSessionValid(sessionID) {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown or expired session"})
		return
	}

	res, err := s.pipeline.RunInference(c.Request.Context(), req.Message, sessionID)
	if err != nil {
		s.log.Error("inference failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "inference failed"})
		return
	}

	c.JSON(http.StatusOK, chatResponse{Result: res, SessionID: sessionID})
}

func (s *Server) createSession(c *gin.Context) {
	id := s.sessions.CreateSession()
	c.JSON(http.StatusCreated, gin.H{"session_id": id})
}

func (s *Server) sessionStats(c *gin.Context) {
	c.JSON(http.StatusOK, s.sessions.GetSessionStats())
}

func (s *Server) sessionHistory(c *gin.Context) {
	id := c.Param("id")
	if !s.sessions.IsSessionValid(id) {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown or expired session"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"session_id": id,
		"history":    s.sessions.GetConversationHistory(id, 10),
	})
}
