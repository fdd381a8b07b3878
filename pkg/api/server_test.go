package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/gilbertordx/rhcp-chatbot/pkg/chatbot"
	"github.com/gilbertordx/rhcp-chatbot/pkg/classifier"
	"github.com/gilbertordx/rhcp-chatbot/pkg/knowledge"
	"github.com/gilbertordx/rhcp-chatbot/pkg/session"
)

type fixedClassifier struct {
	preds []classifier.Prediction
}

func (f fixedClassifier) Classify(string) []classifier.Prediction { return f.preds }

func testServer(t *testing.T) (*Server, *session.Store) {
	t.Helper()
	log := zap.NewNop()
	base := &knowledge.Base{
		Albums: []knowledge.Album{
			{Title: "Californication", Canonical: "californication", Year: 1999},
		},
	}
	resolver, err := knowledge.NewResolver(base, log)
	require.NoError(t, err)
	sessions := session.NewStore(10, time.Hour, log)
	responder := chatbot.NewResponder(base, nil, sessions, chatbot.Corpora{{
		Name: "test",
		Data: []chatbot.CorpusItem{
			{Intent: "greetings.hello", Answers: []string{"Hey there!"}},
		},
	}}, log)
	cls := fixedClassifier{preds: []classifier.Prediction{{Label: "greetings.hello", Probability: 0.95}}}
	pipeline, err := chatbot.NewPipeline(cls, chatbot.NewExtractor(base), resolver, responder, sessions, 0.60, log)
	require.NoError(t, err)
	return NewServer(pipeline, sessions, log, false), sessions
}

func TestHealthz(t *testing.T) {
	s, _ := testServer(t)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestChat(t *testing.T) {
	s, sessions := testServer(t)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(`{"message":"hello"}`))
	req.Header.Set("Content-Type", "application/json")
	s.Handler().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"intent":"greetings.hello"`)
	assert.Contains(t, w.Body.String(), "Hey there!")

	// Without a session header a session is created lazily and echoed
	// back so the caller can keep the conversation going.
	assert.Contains(t, w.Body.String(), `"session_id"`)
	assert.Equal(t, 1, sessions.GetSessionStats().TotalSessions)
}

func TestChatLazySessionKeepsContext(t *testing.T) {
	s, sessions := testServer(t)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(`{"message":"hello"}`))
	req.Header.Set("Content-Type", "application/json")
	s.Handler().ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		SessionID string `json:"session_id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.SessionID)
	require.True(t, sessions.IsSessionValid(resp.SessionID))

	// Reusing the echoed id accumulates history in the same session.
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(`{"message":"hello again"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(SessionHeader, resp.SessionID)
	s.Handler().ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	assert.Len(t, sessions.GetConversationHistory(resp.SessionID, 10), 2)
	assert.Equal(t, 1, sessions.GetSessionStats().TotalSessions)
}

func TestChatMissingMessage(t *testing.T) {
	s, _ := testServer(t)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	s.Handler().ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestChatUnknownSession(t *testing.T) {
	s, _ := testServer(t)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(`{"message":"hello"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(SessionHeader, "no-such-session")
	s.Handler().ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSessionLifecycleOverHTTP(t *testing.T) {
	s, sessions := testServer(t)

	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/sessions", nil))
	require.Equal(t, http.StatusCreated, w.Code)

	id := sessions.CreateSession()
	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(`{"message":"hello"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(SessionHeader, id)
	s.Handler().ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/sessions/"+id+"/history", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"user_message":"hello"`)

	w = httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/sessions/stats", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
