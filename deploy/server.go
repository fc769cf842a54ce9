package deploy

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/harshapalnati/agno/logging"
)

// ChatRequest is the body of POST /chat.
type ChatRequest struct {
	Message   string `json:"message" binding:"required"`
	SessionID string `json:"session_id"`
}

// ChatResponse is the body returned by POST /chat.
type ChatResponse struct {
	Response  string `json:"response"`
	SessionID string `json:"session_id"`
}

// StatusResponse is the body returned by GET /status.
type StatusResponse struct {
	AgentName     string  `json:"agent_name"`
	UptimeSeconds float64 `json:"uptime_seconds"`
	TurnCount     uint64  `json:"turn_count"`
}

// ServerOptions configures a Server.
type ServerOptions struct {
	// Logger receives request diagnostics. Defaults to NoOpLogger.
	Logger logging.Logger

	// ChatTimeout bounds one chat request end to end.
	ChatTimeout time.Duration
}

// Server serves the deployment contract for one target.
type Server struct {
	target      Target
	logger      logging.Logger
	chatTimeout time.Duration
	started     time.Time
	httpServer  *http.Server
}

// NewServer constructs a Server fronting target.
func NewServer(target Target, optFns ...func(o *ServerOptions)) *Server {
	opts := ServerOptions{
		ChatTimeout: 5 * time.Minute,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	return &Server{
		target:      target,
		logger:      logging.OrNoOp(opts.Logger),
		chatTimeout: opts.ChatTimeout,
		started:     time.Now().UTC(),
	}
}

// Handler returns the HTTP handler implementing the contract. It is exposed
// separately from Run so callers can mount it or drive it with httptest.
func (s *Server) Handler() http.Handler {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/health", s.handleHealth)
	router.GET("/status", s.handleStatus)
	router.POST("/chat", s.handleChat)
	return router
}

// Run serves the contract on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("deploy.server.listen", "addr", addr, "target", s.target.Name())
		errCh <- s.httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleStatus(c *gin.Context) {
	c.JSON(http.StatusOK, StatusResponse{
		AgentName:     s.target.Name(),
		UptimeSeconds: time.Since(s.started).Seconds(),
		TurnCount:     s.target.Turns(),
	})
}

func (s *Server) handleChat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message is required"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), s.chatTimeout)
	defer cancel()

	reply, sessionID, err := s.target.Respond(ctx, req.SessionID, req.Message)
	if err != nil {
		s.logger.Error("deploy.chat.failed", "target", s.target.Name(), "error", err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	s.logger.Info("deploy.chat.served", "target", s.target.Name(), "session_id", sessionID)
	c.JSON(http.StatusOK, ChatResponse{Response: reply, SessionID: sessionID})
}
