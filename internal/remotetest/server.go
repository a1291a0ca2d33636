// Package remotetest provides a fake messages endpoint for tests.
// It speaks the same GET/POST /messages contract as the real service.
package remotetest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/vovakirdan/pollchat/internal/chat"
)

// MessagesPath is where the fake mounts the resource.
const MessagesPath = "/messages"

// Server is an httptest server wrapping a gin router and a SQLite-backed store.
type Server struct {
	*httptest.Server

	store *Store

	mu         sync.Mutex
	failStatus int
	raw        string
	gets       int
	posts      []chat.Draft
	requestIDs []string
}

// ErrorResponse mirrors the JSON body returned on rejected requests.
type ErrorResponse struct {
	Error string `json:"error"`
}

type postRequest struct {
	Sender    string `json:"sender" binding:"required"`
	Text      string `json:"text" binding:"required"`
	Timestamp int64  `json:"timestamp"`
}

// NewServer starts a fake endpoint that is closed when the test ends.
func NewServer(t testing.TB) *Server {
	t.Helper()

	st, err := NewStore()
	if err != nil {
		t.Fatalf("failed to create fake store: %v", err)
	}

	gin.SetMode(gin.TestMode)
	s := &Server{store: st}

	router := gin.New()
	router.Use(s.record())
	router.GET(MessagesPath, s.list)
	router.POST(MessagesPath, s.create)

	s.Server = httptest.NewServer(router)
	t.Cleanup(func() {
		s.Server.Close()
		_ = st.Close()
	})
	return s
}

// MessagesURL is the full endpoint URL for clients under test.
func (s *Server) MessagesURL() string {
	return s.URL + MessagesPath
}

// Seed stores messages as if other users had posted them.
func (s *Server) Seed(t testing.TB, msgs ...chat.Message) {
	t.Helper()
	for _, m := range msgs {
		if _, err := s.store.Insert(context.Background(), m); err != nil {
			t.Fatalf("seed message: %v", err)
		}
	}
}

// Reset drops every stored message.
func (s *Server) Reset(t testing.TB) {
	t.Helper()
	if err := s.store.Clear(context.Background()); err != nil {
		t.Fatalf("reset store: %v", err)
	}
}

// FailWith makes every following request answer with status. Zero restores normal service.
func (s *Server) FailWith(status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failStatus = status
}

// RespondRaw makes GET answer 200 with body verbatim. Empty restores normal service.
func (s *Server) RespondRaw(body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.raw = body
}

// Gets reports how many GET requests reached the server.
func (s *Server) Gets() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gets
}

// Posts returns the payloads of every POST that reached the server, failed ones included.
func (s *Server) Posts() []chat.Draft {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]chat.Draft, len(s.posts))
	copy(out, s.posts)
	return out
}

// RequestIDs returns the X-Request-ID header of each request, in arrival order.
func (s *Server) RequestIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.requestIDs))
	copy(out, s.requestIDs)
	return out
}

func (s *Server) record() gin.HandlerFunc {
	return func(c *gin.Context) {
		s.mu.Lock()
		s.requestIDs = append(s.requestIDs, c.GetHeader("X-Request-ID"))
		if c.Request.Method == http.MethodGet {
			s.gets++
		}
		status := s.failStatus
		s.mu.Unlock()

		if status != 0 && c.Request.Method == http.MethodGet {
			c.AbortWithStatusJSON(status, ErrorResponse{Error: http.StatusText(status)})
			return
		}
		c.Next()
	}
}

func (s *Server) list(c *gin.Context) {
	s.mu.Lock()
	raw := s.raw
	s.mu.Unlock()
	if raw != "" {
		c.Data(http.StatusOK, "application/json", []byte(raw))
		return
	}

	msgs, err := s.store.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}
	c.JSON(http.StatusOK, msgs)
}

func (s *Server) create(c *gin.Context) {
	var req postRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	draft := chat.Draft{Sender: req.Sender, Text: req.Text, Timestamp: req.Timestamp}

	s.mu.Lock()
	s.posts = append(s.posts, draft)
	status := s.failStatus
	s.mu.Unlock()

	if status != 0 {
		c.JSON(status, ErrorResponse{Error: http.StatusText(status)})
		return
	}

	msg, err := s.store.Insert(c.Request.Context(), chat.Message{
		Text:      draft.Text,
		Sender:    draft.Sender,
		Timestamp: draft.Timestamp,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}
	c.JSON(http.StatusCreated, msg)
}
