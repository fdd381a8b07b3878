package session

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Store holds every live session. A single store-wide mutex guards the
// map and the records behind it; that also serializes concurrent turns
// against the same session, which callers would otherwise have to do
// themselves.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*record

	maxSessions int
	timeout     time.Duration
	log         *zap.Logger
	now         func() time.Time
}

type record struct {
	createdAt    time.Time
	lastActivity time.Time
	messages     []Message
	context      Context
}

// NewStore creates a session store with the given capacity and
// inactivity timeout.
func NewStore(maxSessions int, timeout time.Duration, log *zap.Logger) *Store {
	if maxSessions <= 0 {
		maxSessions = 100
	}
	if timeout <= 0 {
		timeout = 24 * time.Hour
	}
	return &Store{
		sessions:    make(map[string]*record),
		maxSessions: maxSessions,
		timeout:     timeout,
		log:         log,
		now:         time.Now,
	}
}

// CreateSession allocates a new session and returns its id. When the
// store is at capacity, expired sessions are swept first; creation
// proceeds even if the sweep frees nothing.
func (s *Store) CreateSession() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.sessions) >= s.maxSessions {
		s.sweepLocked()
	}

	id := uuid.NewString()
	now := s.now()
	s.sessions[id] = &record{
		createdAt:    now,
		lastActivity: now,
		context:      NewContext(),
	}
	return id
}

// AddMessage records one exchange and folds the turn into the session
// context. Unknown session ids are a no-op.
func (s *Store) AddMessage(id, userMessage string, turn Turn) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.sessions[id]
	if !ok {
		return
	}
	now := s.now()
	rec.lastActivity = now
	if turn.Timestamp.IsZero() {
		turn.Timestamp = now
	}
	turn.UserMessage = userMessage

	rec.messages = append(rec.messages, Message{
		Timestamp:   turn.Timestamp,
		UserMessage: userMessage,
		BotMessage:  turn.BotMessage,
		Intent:      turn.Intent,
		Confidence:  turn.Confidence,
	})
	if len(rec.messages) > historyLimit {
		rec.messages = rec.messages[len(rec.messages)-historyLimit:]
	}

	rec.context = Reduce(rec.context, turn)
}

// GetContext returns a snapshot of the session context. Unknown or
// expired sessions yield a zero context and false.
func (s *Store) GetContext(id string) (Context, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.validLocked(id)
	if !ok {
		return Context{}, false
	}
	return cloneContext(rec.context), true
}

// MentionedNames returns the sorted members of one mention set, for
// serialization and display.
func MentionedNames(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for name := range set {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// GetFollowUpContext returns the last_* slots for follow-up
// resolution. Unknown or expired sessions yield the zero value.
func (s *Store) GetFollowUpContext(id string) FollowUp {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.validLocked(id)
	if !ok {
		return FollowUp{}
	}
	return FollowUp{
		LastAlbum:  rec.context.LastAlbum,
		LastSong:   rec.context.LastSong,
		LastMember: rec.context.LastMember,
		LastTopic:  rec.context.LastTopic,
	}
}

// GetConversationHistory returns up to max recent messages, oldest
// first. Unknown or expired sessions yield nil.
func (s *Store) GetConversationHistory(id string, max int) []Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.validLocked(id)
	if !ok {
		return nil
	}
	if max <= 0 || max > len(rec.messages) {
		max = len(rec.messages)
	}
	out := make([]Message, max)
	copy(out, rec.messages[len(rec.messages)-max:])
	return out
}

// IsSessionValid reports whether the session exists and has not
// exceeded the inactivity timeout.
func (s *Store) IsSessionValid(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.validLocked(id)
	return ok
}

// DeleteSession removes a session immediately.
func (s *Store) DeleteSession(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

// Stats summarizes the store.
type Stats struct {
	TotalSessions  int           `json:"total_sessions"`
	MaxSessions    int           `json:"max_sessions"`
	SessionTimeout time.Duration `json:"session_timeout"`
}

// GetSessionStats reports current occupancy and limits.
func (s *Store) GetSessionStats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Stats{
		TotalSessions:  len(s.sessions),
		MaxSessions:    s.maxSessions,
		SessionTimeout: s.timeout,
	}
}

// Sweep removes every expired session and returns how many were
// evicted. Exposed for the optional background sweeper; the store
// itself only sweeps lazily on CreateSession at capacity.
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sweepLocked()
}

func (s *Store) sweepLocked() int {
	cutoff := s.now().Add(-s.timeout)
	evicted := 0
	for id, rec := range s.sessions {
		if rec.lastActivity.Before(cutoff) {
			delete(s.sessions, id)
			evicted++
		}
	}
	if evicted > 0 && s.log != nil {
		s.log.Debug("swept expired sessions", zap.Int("evicted", evicted))
	}
	return evicted
}

func (s *Store) validLocked(id string) (*record, bool) {
	rec, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	if s.now().Sub(rec.lastActivity) > s.timeout {
		return nil, false
	}
	return rec, true
}
