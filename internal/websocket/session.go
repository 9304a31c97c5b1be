package websocket

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// Session is the per-connection conversation state. The transcript
// line buffer itself lives in the transcript service; the session keeps
// the generation and auto-detect state.
type Session struct {
	Id        string
	StartedAt time.Time

	// activeRequestId is the only request whose tokens are current.
	// Tokens tagged with any other id are stale and must be dropped.
	activeRequestId atomic.Int64

	mu                sync.Mutex
	cancelActive      context.CancelFunc
	autoDetectEnabled bool
	autoAssistantId   string
	lastTriggeredAt   time.Time
}

func NewSession(id string, autoDetectEnabled bool) *Session {
	return &Session{
		Id:                id,
		StartedAt:         time.Now(),
		autoDetectEnabled: autoDetectEnabled,
	}
}

// BeginRequest allocates the next request id, makes it active and
// cancels whichever request was active before. The returned context is
// cancelled when a newer request supersedes this one.
func (s *Session) BeginRequest(parent context.Context) (int64, context.Context) {
	requestId := s.activeRequestId.Add(1)

	ctx, cancel := context.WithCancel(parent)
	s.mu.Lock()
	if s.cancelActive != nil {
		s.cancelActive()
	}
	s.cancelActive = cancel
	s.mu.Unlock()

	return requestId, ctx
}

func (s *Session) ActiveRequestId() int64 {
	return s.activeRequestId.Load()
}

// IsStale reports whether a request id has been superseded.
func (s *Session) IsStale(requestId int64) bool {
	return s.activeRequestId.Load() != requestId
}

// Close cancels any in-flight generation.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancelActive != nil {
		s.cancelActive()
		s.cancelActive = nil
	}
}

func (s *Session) SetAutoDetect(enabled bool, assistantId string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.autoDetectEnabled = enabled
	if assistantId != "" {
		s.autoAssistantId = assistantId
	}
}

func (s *Session) AutoDetect() (bool, string, time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.autoDetectEnabled, s.autoAssistantId, s.lastTriggeredAt
}

func (s *Session) MarkTriggered(at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastTriggeredAt = at
}
